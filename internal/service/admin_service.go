package service

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/analytics"
	"cuprewards/internal/crypto"
	"cuprewards/internal/errors"
	"cuprewards/internal/mailer"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

const inviteTokenExpiry = 24 * time.Hour

// AddStaffInput is the payload for inviting a new staff member.
type AddStaffInput struct {
	Email     string
	FirstName string
	LastName  string
	Mobile    string
}

// StaffView is a staff member as listed to admins.
type StaffView struct {
	StaffID   uuid.UUID  `json:"staffId"`
	UserID    uuid.UUID  `json:"userId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Active    bool       `json:"active"`
	Onboarded bool       `json:"onboarded"`
	Sites     []SiteView `json:"sites"`
}

// LiveAnalytics is the chain-wide live cup counters.
type LiveAnalytics struct {
	CupsSold     int64 `json:"cupsSold"`
	CupsRedeemed int64 `json:"cupsRedeemed"`
}

// AdminService covers site management, staff onboarding and the live
// analytics read.
type AdminService interface {
	CreateSite(ctx context.Context, name, address string) (*SiteView, error)
	ListSites(ctx context.Context) ([]SiteView, error)
	AddStaff(ctx context.Context, in AddStaffInput) (*StaffView, error)
	ResendInvite(ctx context.Context, staffID uuid.UUID) error
	ListStaff(ctx context.Context) ([]StaffView, error)
	AssignSite(ctx context.Context, staffID, siteID uuid.UUID) error
	RemoveSite(ctx context.Context, staffID, siteID uuid.UUID) error
	Analytics(ctx context.Context) (*LiveAnalytics, error)
}

type adminService struct {
	users       repository.UserRepository
	staff       repository.StaffRepository
	sites       repository.SiteRepository
	cipher      *crypto.Cipher
	mail        mailer.Mailer
	live        *analytics.LiveCounters
	frontendURL string
}

// NewAdminService creates a new admin service.
func NewAdminService(
	users repository.UserRepository,
	staff repository.StaffRepository,
	sites repository.SiteRepository,
	cipher *crypto.Cipher,
	mail mailer.Mailer,
	live *analytics.LiveCounters,
	frontendURL string,
) AdminService {
	return &adminService{
		users:       users,
		staff:       staff,
		sites:       sites,
		cipher:      cipher,
		mail:        mail,
		live:        live,
		frontendURL: frontendURL,
	}
}

func (s *adminService) CreateSite(ctx context.Context, name, address string) (*SiteView, error) {
	site := &model.Site{Name: name, Address: address}
	if err := s.sites.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	view := siteView(*site)
	return &view, nil
}

func (s *adminService) ListSites(ctx context.Context) ([]SiteView, error) {
	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	views := make([]SiteView, 0, len(sites))
	for _, site := range sites {
		views = append(views, siteView(site))
	}
	return views, nil
}

// AddStaff creates an inactive STAFF user with a 24-hour set-password
// token and mails the invite link. The account stays unusable until the
// staff member sets a password.
func (s *adminService) AddStaff(ctx context.Context, in AddStaffInput) (*StaffView, error) {
	emailHash := crypto.LookupHash(in.Email)
	if _, err := s.users.FindByEmailHash(ctx, emailHash); err == nil {
		return nil, errors.ErrUserAlreadyExists
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	emailEnc, err := s.cipher.Encrypt(in.Email)
	if err != nil {
		return nil, fmt.Errorf("encrypt email: %w", err)
	}
	mobileEnc, err := s.cipher.Encrypt(in.Mobile)
	if err != nil {
		return nil, fmt.Errorf("encrypt mobile: %w", err)
	}
	firstNameEnc, err := s.cipher.Encrypt(in.FirstName)
	if err != nil {
		return nil, fmt.Errorf("encrypt first name: %w", err)
	}
	lastNameEnc, err := s.cipher.Encrypt(in.LastName)
	if err != nil {
		return nil, fmt.Errorf("encrypt last name: %w", err)
	}

	resetToken, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	resetExpiry := time.Now().Add(inviteTokenExpiry)

	user := &model.User{
		Role:                model.RoleStaff,
		EmailEnc:            emailEnc,
		EmailHash:           emailHash,
		MobileEnc:           mobileEnc,
		Active:              false,
		PasswordResetToken:  &resetToken,
		PasswordResetExpiry: &resetExpiry,
		StaffProfile: &model.StaffProfile{
			FirstNameEnc: firstNameEnc,
			LastNameEnc:  lastNameEnc,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create staff user: %w", err)
	}

	if err := s.mail.SendStaffInvite(in.Email, in.FirstName, s.inviteLink(resetToken)); err != nil {
		return nil, fmt.Errorf("send invite: %w", err)
	}

	return &StaffView{
		StaffID:   user.StaffProfile.ID,
		UserID:    user.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Active:    false,
		Onboarded: false,
		Sites:     []SiteView{},
	}, nil
}

// ResendInvite issues a fresh set-password token for a staff member who
// has not onboarded yet.
func (s *adminService) ResendInvite(ctx context.Context, staffID uuid.UUID) error {
	profile, user, err := s.staffWithUser(ctx, staffID)
	if err != nil {
		return err
	}
	if user.Onboarded() {
		return errors.ErrAlreadyOnboarded
	}

	resetToken, err := generateInviteToken()
	if err != nil {
		return fmt.Errorf("generate invite token: %w", err)
	}
	resetExpiry := time.Now().Add(inviteTokenExpiry)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpiry = &resetExpiry
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update reset token: %w", err)
	}

	email, err := s.cipher.Decrypt(user.EmailEnc)
	if err != nil {
		return fmt.Errorf("decrypt email: %w", err)
	}
	firstName, err := s.cipher.Decrypt(profile.FirstNameEnc)
	if err != nil {
		return fmt.Errorf("decrypt first name: %w", err)
	}
	if err := s.mail.SendStaffInvite(email, firstName, s.inviteLink(resetToken)); err != nil {
		return fmt.Errorf("send invite: %w", err)
	}
	return nil
}

func (s *adminService) ListStaff(ctx context.Context) ([]StaffView, error) {
	profiles, err := s.staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	views := make([]StaffView, 0, len(profiles))
	for _, profile := range profiles {
		view := StaffView{
			StaffID: profile.ID,
			UserID:  profile.UserID,
			Sites:   []SiteView{},
		}
		if view.FirstName, err = s.cipher.Decrypt(profile.FirstNameEnc); err != nil {
			return nil, fmt.Errorf("decrypt first name: %w", err)
		}
		if view.LastName, err = s.cipher.Decrypt(profile.LastNameEnc); err != nil {
			return nil, fmt.Errorf("decrypt last name: %w", err)
		}
		if profile.User != nil {
			if view.Email, err = s.cipher.Decrypt(profile.User.EmailEnc); err != nil {
				return nil, fmt.Errorf("decrypt email: %w", err)
			}
			view.Active = profile.User.Active
			view.Onboarded = profile.User.Onboarded()
		}
		for _, assignment := range profile.StaffSites {
			if assignment.Site != nil {
				view.Sites = append(view.Sites, siteView(*assignment.Site))
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// AssignSite links a staff member to a site. Duplicate assignments are
// rejected by the composite unique index.
func (s *adminService) AssignSite(ctx context.Context, staffID, siteID uuid.UUID) error {
	if _, _, err := s.staffWithUser(ctx, staffID); err != nil {
		return err
	}
	if _, err := s.sites.FindByID(ctx, siteID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrSiteNotFound
		}
		return fmt.Errorf("find site: %w", err)
	}

	if err := s.staff.Assign(ctx, staffID, siteID); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return errors.ErrAlreadyAssigned
		}
		return fmt.Errorf("assign site: %w", err)
	}
	return nil
}

func (s *adminService) RemoveSite(ctx context.Context, staffID, siteID uuid.UUID) error {
	if _, err := s.staff.FindAssignment(ctx, staffID, siteID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrAssignmentNotFound
		}
		return fmt.Errorf("find assignment: %w", err)
	}
	if err := s.staff.RemoveAssignment(ctx, staffID, siteID); err != nil {
		return fmt.Errorf("remove assignment: %w", err)
	}
	return nil
}

// Analytics reads the live chain-wide counters.
func (s *adminService) Analytics(ctx context.Context) (*LiveAnalytics, error) {
	sold, redeemed := s.live.Snapshot(ctx)
	return &LiveAnalytics{CupsSold: sold, CupsRedeemed: redeemed}, nil
}

func (s *adminService) staffWithUser(ctx context.Context, staffID uuid.UUID) (*model.StaffProfile, *model.User, error) {
	profile, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.ErrStaffNotFound
		}
		return nil, nil, fmt.Errorf("find staff profile: %w", err)
	}
	if profile.User == nil {
		return nil, nil, errors.ErrStaffNotFound
	}
	return profile, profile.User, nil
}

func (s *adminService) inviteLink(token string) string {
	return fmt.Sprintf("%s/set-password?token=%s", s.frontendURL, token)
}

func generateInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := cryptorand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
