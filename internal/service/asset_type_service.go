package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type assetTypeRepository interface {
	List(ctx context.Context) ([]models.AssetType, error)
	Create(ctx context.Context, t *models.AssetType) error
}

// AssetTypeRequest is the payload for creating an asset type.
type AssetTypeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AssetTypeService struct {
	repo      assetTypeRepository
	validator *validator.Validate
}

func NewAssetTypeService(repo assetTypeRepository, validate *validator.Validate) *AssetTypeService {
	if validate == nil {
		validate = validator.New()
	}
	return &AssetTypeService{repo: repo, validator: validate}
}

// List returns every type with the number of non-deleted assets it has.
func (s *AssetTypeService) List(ctx context.Context) ([]models.AssetType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list asset types")
	}
	return types, nil
}

func (s *AssetTypeService) Create(ctx context.Context, req AssetTypeRequest) (*models.AssetType, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid asset type payload")
	}
	assetType := &models.AssetType{Name: req.Name}
	if err := s.repo.Create(ctx, assetType); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "asset type already exists")
		}
		return nil, internalError(err, "failed to create asset type")
	}
	return assetType, nil
}
