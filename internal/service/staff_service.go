package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/crypto"
	"cuprewards/internal/errors"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

// CustomerScan is what staff see after scanning a customer's QR code.
type CustomerScan struct {
	CustomerID        uuid.UUID  `json:"customerId"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	DOB               *time.Time `json:"dob,omitempty"`
	Points            int        `json:"points"`
	FreeCupsAvailable int        `json:"freeCupsAvailable"`
	TotalRedeemedCups int        `json:"totalRedeemedCups"`
}

// SiteView is a site as shown to staff and admins.
type SiteView struct {
	SiteID  uuid.UUID `json:"siteId"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

// StaffService covers the staff point-of-sale surface other than the
// ledger itself: QR scans and the staff member's site list.
type StaffService interface {
	ScanQR(ctx context.Context, staffUserID uuid.UUID, qrToken string, siteID uuid.UUID) (*CustomerScan, error)
	Sites(ctx context.Context, staffUserID uuid.UUID) ([]SiteView, error)
}

type staffService struct {
	staff  repository.StaffRepository
	qr     QRService
	cipher *crypto.Cipher
}

// NewStaffService creates a new staff service.
func NewStaffService(staff repository.StaffRepository, qr QRService, cipher *crypto.Cipher) StaffService {
	return &staffService{staff: staff, qr: qr, cipher: cipher}
}

// ScanQR resolves a customer QR token for a staff member assigned to the
// site and returns the customer's reward standing.
func (s *staffService) ScanQR(ctx context.Context, staffUserID uuid.UUID, qrToken string, siteID uuid.UUID) (*CustomerScan, error) {
	staffProfile, err := s.staff.FindByUserID(ctx, staffUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotStaff
		}
		return nil, fmt.Errorf("find staff profile: %w", err)
	}

	if _, err := s.staff.FindAssignment(ctx, staffProfile.ID, siteID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrSiteForbidden
		}
		return nil, fmt.Errorf("check site assignment: %w", err)
	}

	customer, err := s.qr.Resolve(ctx, qrToken)
	if err != nil {
		return nil, err
	}

	firstName, err := s.cipher.Decrypt(customer.FirstNameEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt first name: %w", err)
	}
	lastName, err := s.cipher.Decrypt(customer.LastNameEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt last name: %w", err)
	}
	var email string
	if customer.User != nil {
		if email, err = s.cipher.Decrypt(customer.User.EmailEnc); err != nil {
			return nil, fmt.Errorf("decrypt email: %w", err)
		}
	}

	return &CustomerScan{
		CustomerID:        customer.ID,
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		DOB:               customer.DOB,
		Points:            customer.CurrentPoints(),
		FreeCupsAvailable: customer.AvailableFreeCups(),
		TotalRedeemedCups: customer.TotalRedeemedCups,
	}, nil
}

// Sites lists the sites the staff member is assigned to.
func (s *staffService) Sites(ctx context.Context, staffUserID uuid.UUID) ([]SiteView, error) {
	staffProfile, err := s.staff.FindByUserID(ctx, staffUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotStaff
		}
		return nil, fmt.Errorf("find staff profile: %w", err)
	}

	sites, err := s.staff.SitesFor(ctx, staffProfile.ID)
	if err != nil {
		return nil, fmt.Errorf("list staff sites: %w", err)
	}

	views := make([]SiteView, 0, len(sites))
	for _, site := range sites {
		views = append(views, siteView(site))
	}
	return views, nil
}

func siteView(site model.Site) SiteView {
	return SiteView{SiteID: site.ID, Name: site.Name, Address: site.Address}
}
