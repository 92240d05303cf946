package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type assetRepository interface {
	List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, int, error)
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Asset, error)
	Create(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error
	Update(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error
	SoftDelete(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error
}

type assetTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.AssetType, error)
}

type employeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type historyReader interface {
	List(ctx context.Context, filter models.HistoryFilter) ([]models.AssetHistoryDetail, int, error)
}

// CreateAssetRequest is the payload for registering an asset.
type CreateAssetRequest struct {
	TypeID         string  `json:"type_id" validate:"required"`
	MakeModel      string  `json:"make_model" validate:"required,max=100"`
	SerialNumber   *string `json:"serial_number" validate:"omitempty,max=100"`
	RAM            string  `json:"ram" validate:"max=50"`
	HDD            string  `json:"hdd" validate:"max=50"`
	SSD            string  `json:"ssd" validate:"max=50"`
	OS             string  `json:"os" validate:"max=50"`
	YearOfPurchase int     `json:"year_of_purchase" validate:"gte=0"`
	Condition      string  `json:"condition"`
	Remarks        string  `json:"remarks"`
	IsActive       *bool   `json:"is_active"`
	AllotedTo      *string `json:"alloted_to"`
}

// UpdateAssetRequest replaces the mutable fields of an asset. A nil IsActive keeps the stored flag.
type UpdateAssetRequest struct {
	TypeID         string  `json:"type_id" validate:"required"`
	MakeModel      string  `json:"make_model" validate:"required,max=100"`
	SerialNumber   *string `json:"serial_number" validate:"omitempty,max=100"`
	RAM            string  `json:"ram" validate:"max=50"`
	HDD            string  `json:"hdd" validate:"max=50"`
	SSD            string  `json:"ssd" validate:"max=50"`
	OS             string  `json:"os" validate:"max=50"`
	YearOfPurchase int     `json:"year_of_purchase" validate:"gte=0"`
	Condition      string  `json:"condition" validate:"required"`
	Remarks        string  `json:"remarks"`
	IsActive       *bool   `json:"is_active"`
	AllotedTo      *string `json:"alloted_to"`
}

// AssetServiceParams groups the collaborators of AssetService.
type AssetServiceParams struct {
	DB        txProvider
	Assets    assetRepository
	Types     assetTypeReader
	Employees employeeReader
	History   historyReader
	Recorder  *AuditRecorder
	Notifier  *ChangeNotifier
	Validator *validator.Validate
	Logger    *zap.Logger
}

// AssetService handles asset use-cases. Every mutation records history in the same transaction.
type AssetService struct {
	db        txProvider
	assets    assetRepository
	types     assetTypeReader
	employees employeeReader
	history   historyReader
	recorder  *AuditRecorder
	notifier  *ChangeNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

func NewAssetService(params AssetServiceParams) *AssetService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AssetService{
		db:        params.DB,
		assets:    params.Assets,
		types:     params.Types,
		employees: params.Employees,
		history:   params.History,
		recorder:  params.Recorder,
		notifier:  params.Notifier,
		validator: params.Validator,
		logger:    params.Logger,
	}
}

// List returns assets and pagination metadata.
func (s *AssetService) List(ctx context.Context, filter models.AssetFilter) ([]models.Asset, *models.Pagination, error) {
	if filter.Status != "" {
		condition, ok := models.ParseAssetCondition(filter.Status)
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown asset status")
		}
		filter.Status = string(condition)
	}
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	assets, total, err := s.assets.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list assets")
	}
	return assets, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *AssetService) Get(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := s.assets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, internalError(err, "failed to load asset")
	}
	return asset, nil
}

// Create registers an asset and records its "created" entry.
func (s *AssetService) Create(ctx context.Context, req CreateAssetRequest) (*models.Asset, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid asset payload")
	}
	condition := models.ConditionWorking
	if strings.TrimSpace(req.Condition) != "" {
		parsed, ok := models.ParseAssetCondition(req.Condition)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown asset condition")
		}
		condition = parsed
	}
	assetType, holder, err := s.resolveRefs(ctx, req.TypeID, req.AllotedTo)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		TypeID:         assetType.ID,
		TypeName:       assetType.Name,
		MakeModel:      strings.TrimSpace(req.MakeModel),
		SerialNumber:   blankToNil(req.SerialNumber),
		RAM:            req.RAM,
		HDD:            req.HDD,
		SSD:            req.SSD,
		OS:             req.OS,
		YearOfPurchase: req.YearOfPurchase,
		Condition:      condition,
		Remarks:        req.Remarks,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	setHolder(asset, holder)

	var entry models.AssetHistory
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.assets.Create(ctx, tx, asset); err != nil {
			return internalError(err, "failed to create asset")
		}
		recorded, err := s.recorder.RecordCreate(ctx, tx, *asset)
		if err != nil {
			return internalError(err, "failed to record asset history")
		}
		entry = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Committed(ctx, []models.AssetHistory{entry}, map[string]string{asset.ID: asset.AssetTag})
	return asset, nil
}

// Update applies req and records one history entry per derived change.
func (s *AssetService) Update(ctx context.Context, id string, req UpdateAssetRequest) (*models.Asset, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid asset payload")
	}
	condition, ok := models.ParseAssetCondition(req.Condition)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown asset condition")
	}
	assetType, holder, err := s.resolveRefs(ctx, req.TypeID, req.AllotedTo)
	if err != nil {
		return nil, err
	}

	var (
		after   models.Asset
		entries []models.AssetHistory
	)
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		before, err := s.assets.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "asset not found")
			}
			return internalError(err, "failed to load asset")
		}
		after = *before
		after.TypeID = assetType.ID
		after.TypeName = assetType.Name
		after.MakeModel = strings.TrimSpace(req.MakeModel)
		after.SerialNumber = blankToNil(req.SerialNumber)
		after.RAM = req.RAM
		after.HDD = req.HDD
		after.SSD = req.SSD
		after.OS = req.OS
		after.YearOfPurchase = req.YearOfPurchase
		after.Condition = condition
		after.Remarks = req.Remarks
		if req.IsActive != nil {
			after.IsActive = *req.IsActive
		}
		setHolder(&after, holder)

		if err := s.assets.Update(ctx, tx, &after); err != nil {
			return internalError(err, "failed to update asset")
		}
		entries, err = s.recorder.RecordUpdate(ctx, tx, *before, after)
		if err != nil {
			return internalError(err, "failed to record asset history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Committed(ctx, entries, map[string]string{after.ID: after.AssetTag})
	return &after, nil
}

// Delete soft-deletes an asset. Its history is kept and gains a "deleted" entry.
func (s *AssetService) Delete(ctx context.Context, id string) error {
	var (
		entry models.AssetHistory
		tag   string
	)
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		asset, err := s.assets.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "asset not found")
			}
			return internalError(err, "failed to load asset")
		}
		tag = asset.AssetTag
		if err := s.assets.SoftDelete(ctx, tx, asset.ID, time.Now().UTC()); err != nil {
			return internalError(err, "failed to delete asset")
		}
		entry, err = s.recorder.RecordDelete(ctx, tx, *asset)
		if err != nil {
			return internalError(err, "failed to record asset history")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Committed(ctx, []models.AssetHistory{entry}, map[string]string{id: tag})
	s.logger.Info("asset deleted", zap.String("asset_id", id))
	return nil
}

// History lists the entries of one asset, newest first.
func (s *AssetService) History(ctx context.Context, id string, page, pageSize int) ([]models.AssetHistoryDetail, *models.Pagination, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	page, pageSize = models.NormalizePage(page, pageSize)
	entries, total, err := s.history.List(ctx, models.HistoryFilter{AssetID: id, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, internalError(err, "failed to list asset history")
	}
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (s *AssetService) resolveRefs(ctx context.Context, typeID string, holderID *string) (*models.AssetType, *models.Employee, error) {
	assetType, err := s.types.FindByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "asset type not found")
		}
		return nil, nil, internalError(err, "failed to load asset type")
	}
	if holderID == nil || strings.TrimSpace(*holderID) == "" {
		return assetType, nil, nil
	}
	holder, err := s.employees.FindByID(ctx, *holderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "alloted_to employee not found")
		}
		return nil, nil, internalError(err, "failed to load employee")
	}
	return assetType, holder, nil
}

func setHolder(asset *models.Asset, holder *models.Employee) {
	if holder == nil {
		asset.AllotedTo = nil
		asset.HolderFirst = nil
		asset.HolderLast = nil
		return
	}
	id, first, last := holder.ID, holder.FirstName, holder.LastName
	asset.AllotedTo = &id
	asset.HolderFirst = &first
	asset.HolderLast = &last
}

func blankToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
