package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type repairRepository interface {
	Create(ctx context.Context, repair *models.RepairStatus) error
	ListByAsset(ctx context.Context, assetID string) ([]models.RepairStatus, error)
	FindByID(ctx context.Context, id string) (*models.RepairStatus, error)
	Update(ctx context.Context, repair *models.RepairStatus) error
}

// CreateRepairRequest reports an issue. DateReported defaults to today.
type CreateRepairRequest struct {
	Issue        string `json:"issue" validate:"required"`
	DateReported string `json:"date_reported" validate:"omitempty,datetime=2006-01-02"`
	Remarks      string `json:"remarks"`
}

// UpdateRepairRequest moves a repair to a new status.
type UpdateRepairRequest struct {
	Issue        string  `json:"issue"`
	Status       string  `json:"status" validate:"required"`
	DateResolved string  `json:"date_resolved" validate:"omitempty,datetime=2006-01-02"`
	Remarks      *string `json:"remarks"`
}

type RepairService struct {
	repo      repairRepository
	assets    assetFinder
	validator *validator.Validate
	now       func() time.Time
}

func NewRepairService(repo repairRepository, assets assetFinder, validate *validator.Validate) *RepairService {
	if validate == nil {
		validate = validator.New()
	}
	return &RepairService{repo: repo, assets: assets, validator: validate, now: time.Now}
}

func (s *RepairService) Create(ctx context.Context, assetID string, req CreateRepairRequest) (*models.RepairStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid repair payload")
	}
	if err := s.ensureAsset(ctx, assetID); err != nil {
		return nil, err
	}
	reported := s.today()
	if req.DateReported != "" {
		reported, _ = time.Parse("2006-01-02", req.DateReported)
	}
	repair := &models.RepairStatus{
		AssetID:      assetID,
		Issue:        req.Issue,
		Status:       models.RepairReported,
		DateReported: reported,
		Remarks:      req.Remarks,
	}
	if err := s.repo.Create(ctx, repair); err != nil {
		return nil, internalError(err, "failed to create repair")
	}
	return repair, nil
}

func (s *RepairService) List(ctx context.Context, assetID string) ([]models.RepairStatus, error) {
	if err := s.ensureAsset(ctx, assetID); err != nil {
		return nil, err
	}
	repairs, err := s.repo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, internalError(err, "failed to list repairs")
	}
	return repairs, nil
}

// Update applies a status transition. Finishing states stamp date_resolved when it is unset.
func (s *RepairService) Update(ctx context.Context, id string, req UpdateRepairRequest) (*models.RepairStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid repair payload")
	}
	status := models.RepairState(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown repair status")
	}
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "repair not found")
		}
		return nil, internalError(err, "failed to load repair")
	}
	repair.Status = status
	if req.Issue != "" {
		repair.Issue = req.Issue
	}
	if req.Remarks != nil {
		repair.Remarks = *req.Remarks
	}
	if req.DateResolved != "" {
		resolved, _ := time.Parse("2006-01-02", req.DateResolved)
		repair.DateResolved = &resolved
	}
	if status.Terminal() && repair.DateResolved == nil {
		today := s.today()
		repair.DateResolved = &today
	}
	if err := s.repo.Update(ctx, repair); err != nil {
		return nil, internalError(err, "failed to update repair")
	}
	return repair, nil
}

func (s *RepairService) ensureAsset(ctx context.Context, assetID string) error {
	if _, err := s.assets.FindByID(ctx, assetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return internalError(err, "failed to load asset")
	}
	return nil
}

func (s *RepairService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
