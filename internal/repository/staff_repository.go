package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/model"
)

// StaffRepository defines staff-profile and site-assignment persistence.
type StaffRepository interface {
	CreateProfile(ctx context.Context, profile *model.StaffProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StaffProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.StaffProfile, error)
	List(ctx context.Context) ([]model.StaffProfile, error)
	Assign(ctx context.Context, staffID, siteID uuid.UUID) error
	FindAssignment(ctx context.Context, staffID, siteID uuid.UUID) (*model.StaffSite, error)
	RemoveAssignment(ctx context.Context, staffID, siteID uuid.UUID) error
	SitesFor(ctx context.Context, staffID uuid.UUID) ([]model.Site, error)
}

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository builds a GORM-backed repository.
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) CreateProfile(ctx context.Context, profile *model.StaffProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// FindByID loads a staff profile with its user preloaded.
func (r *staffRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StaffProfile, error) {
	var profile model.StaffProfile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *staffRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.StaffProfile, error) {
	var profile model.StaffProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns every staff profile with user and site assignments preloaded.
func (r *staffRepository) List(ctx context.Context) ([]model.StaffProfile, error) {
	var profiles []model.StaffProfile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("StaffSites.Site").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *staffRepository) Assign(ctx context.Context, staffID, siteID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&model.StaffSite{StaffID: staffID, SiteID: siteID}).Error
}

func (r *staffRepository) FindAssignment(ctx context.Context, staffID, siteID uuid.UUID) (*model.StaffSite, error) {
	var assignment model.StaffSite
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND site_id = ?", staffID, siteID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *staffRepository) RemoveAssignment(ctx context.Context, staffID, siteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&model.StaffSite{}, "staff_id = ? AND site_id = ?", staffID, siteID).Error
}

// SitesFor returns the sites a staff member is assigned to.
func (r *staffRepository) SitesFor(ctx context.Context, staffID uuid.UUID) ([]model.Site, error) {
	var sites []model.Site
	if err := r.db.WithContext(ctx).
		Joins("JOIN staff_sites ON staff_sites.site_id = sites.id").
		Where("staff_sites.staff_id = ?", staffID).
		Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}
