package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"cuprewards/internal/crypto"
	"cuprewards/internal/model"
)

// Profile is the role-tagged decrypted identity view returned after login
// and signup. Optional fields are populated per role by buildProfile, the
// single place role branching happens.
type Profile struct {
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Mobile    string     `json:"mobile,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	Onboarded *bool      `json:"onboarded,omitempty"`
}

// UserView is the client-facing user representation.
type UserView struct {
	ID      uuid.UUID `json:"id"`
	Role    string    `json:"role"`
	Profile *Profile  `json:"profile"`
}

// AuthResult carries the issued token pair and the user view. The refresh
// token travels back to the client as a cookie, never in the JSON body.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *UserView
}

// buildProfile maps a user plus its role-specific profile row to the
// decrypted view. Exhaustive over roles; an unknown role is a data bug.
func buildProfile(c *crypto.Cipher, user *model.User, customer *model.CustomerProfile, staff *model.StaffProfile) (*Profile, error) {
	email, err := c.Decrypt(user.EmailEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt email: %w", err)
	}

	switch user.Role {
	case model.RoleCustomer:
		if customer == nil {
			return nil, fmt.Errorf("customer %s has no profile", user.ID)
		}
		firstName, err := c.Decrypt(customer.FirstNameEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt first name: %w", err)
		}
		lastName, err := c.Decrypt(customer.LastNameEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt last name: %w", err)
		}
		mobile, err := c.Decrypt(user.MobileEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt mobile: %w", err)
		}
		return &Profile{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Mobile:    mobile,
			DOB:       customer.DOB,
		}, nil

	case model.RoleStaff:
		if staff == nil {
			return nil, fmt.Errorf("staff %s has no profile", user.ID)
		}
		firstName, err := c.Decrypt(staff.FirstNameEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt first name: %w", err)
		}
		lastName, err := c.Decrypt(staff.LastNameEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt last name: %w", err)
		}
		onboarded := user.Onboarded()
		return &Profile{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Onboarded: &onboarded,
		}, nil

	case model.RoleAdmin:
		return &Profile{Email: email}, nil

	default:
		return nil, fmt.Errorf("unknown role %q for user %s", user.Role, user.ID)
	}
}
