package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/validator"
)

// CreateTenderInput defines attributes required to publish a tender.
type CreateTenderInput struct {
	Title         string     `json:"title" validate:"required"`
	Description   string     `json:"description"`
	CategoryID    string     `json:"category_id" validate:"required"`
	SubcategoryID string     `json:"subcategory_id" validate:"required"`
	RegionID      *string    `json:"region_id"`
	ClosesAt      *time.Time `json:"closes_at"`
}

// ListTendersInput defines pagination for tender listings.
type ListTendersInput struct {
	Page    int
	PerPage int
}

// TenderService persists tender listings. Notification fan-out is triggered
// by the caller once creation has committed.
type TenderService struct {
	db *gorm.DB
}

// NewTenderService constructs a TenderService.
func NewTenderService(db *gorm.DB) (*TenderService, error) {
	if db == nil {
		return nil, errors.New("tender service: db is required")
	}
	return &TenderService{db: db}, nil
}

// Create validates catalog references and persists the tender, returning it
// with category/subcategory/region preloaded.
func (s *TenderService) Create(ctx context.Context, input CreateTenderInput) (*models.Tender, error) {
	ctx = ensureContext(ctx)

	if err := validator.Struct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	var subcategory models.Subcategory
	if err := s.db.WithContext(ctx).First(&subcategory, "id = ?", input.SubcategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest("unknown subcategory")
		}
		return nil, fmt.Errorf("tender service: load subcategory: %w", err)
	}
	if subcategory.CategoryID != input.CategoryID {
		return nil, apperrors.NewBadRequest("subcategory does not belong to category")
	}

	if input.RegionID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Region{}).
			Where("id = ?", *input.RegionID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("tender service: load region: %w", err)
		}
		if count == 0 {
			return nil, apperrors.NewBadRequest("unknown region")
		}
	}

	tender := models.Tender{
		Title:         input.Title,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		RegionID:      input.RegionID,
		ClosesAt:      input.ClosesAt,
	}
	if err := s.db.WithContext(ctx).Create(&tender).Error; err != nil {
		return nil, fmt.Errorf("tender service: create tender: %w", err)
	}

	var created models.Tender
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Region").
		First(&created, "id = ?", tender.ID).Error; err != nil {
		return nil, fmt.Errorf("tender service: reload tender: %w", err)
	}
	return &created, nil
}

// List returns tenders ordered by recency with a total count.
func (s *TenderService) List(ctx context.Context, input ListTendersInput) ([]models.Tender, int64, error) {
	ctx = ensureContext(ctx)

	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Tender{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("tender service: count tenders: %w", err)
	}

	var rows []models.Tender
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Region").
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("tender service: list tenders: %w", err)
	}

	return rows, total, nil
}
