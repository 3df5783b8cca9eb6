package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cuprewards/internal/model"
)

// SiteRepository defines site persistence operations.
type SiteRepository interface {
	Create(ctx context.Context, site *model.Site) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error)
	List(ctx context.Context) ([]model.Site, error)
}

type siteRepository struct {
	db *gorm.DB
}

// NewSiteRepository builds a GORM-backed repository.
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(ctx context.Context, site *model.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *siteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	var site model.Site
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) List(ctx context.Context) ([]model.Site, error) {
	var sites []model.Site
	if err := r.db.WithContext(ctx).Order("created_at").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}
