package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/database"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

type disposalRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, record *models.DisposalRecord) error
	FindByAssetID(ctx context.Context, assetID string) (*models.DisposalRecord, error)
}

type disposalAssetRepository interface {
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Asset, error)
	Update(ctx context.Context, tx *sqlx.Tx, asset *models.Asset) error
}

// DisposalRequest is the payload for retiring an asset. DisposalDate uses YYYY-MM-DD.
type DisposalRequest struct {
	DisposalDate string `json:"disposal_date" form:"disposal_date" validate:"required,datetime=2006-01-02"`
	Method       string `json:"method" form:"method" validate:"required,max=100"`
	Remarks      string `json:"remarks" form:"remarks"`
}

// DisposalServiceParams groups the collaborators of DisposalService.
type DisposalServiceParams struct {
	DB        txProvider
	Disposals disposalRepository
	Assets    disposalAssetRepository
	Recorder  *AuditRecorder
	Notifier  *ChangeNotifier
	Files     fileStorage
	Signer    signedURLSigner
	Policy    UploadPolicy
	APIPrefix string
	Validator *validator.Validate
	Logger    *zap.Logger
}

// DisposalService records asset retirements. Creating a record forces the asset to "disposed".
type DisposalService struct {
	db        txProvider
	disposals disposalRepository
	assets    disposalAssetRepository
	recorder  *AuditRecorder
	notifier  *ChangeNotifier
	files     fileStorage
	signer    signedURLSigner
	policy    UploadPolicy
	apiPrefix string
	validator *validator.Validate
	logger    *zap.Logger
}

func NewDisposalService(params DisposalServiceParams) *DisposalService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.APIPrefix == "" {
		params.APIPrefix = "/api/v1"
	}
	return &DisposalService{
		db:        params.DB,
		disposals: params.Disposals,
		assets:    params.Assets,
		recorder:  params.Recorder,
		notifier:  params.Notifier,
		files:     params.Files,
		signer:    params.Signer,
		policy:    params.Policy,
		apiPrefix: params.APIPrefix,
		validator: params.Validator,
		logger:    params.Logger,
	}
}

// Create stores the disposal record and marks the asset disposed in one transaction.
// certificate may be nil.
func (s *DisposalService) Create(ctx context.Context, assetID string, req DisposalRequest, certificate *FileUpload) (*models.DisposalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid disposal payload")
	}
	disposalDate, err := time.Parse("2006-01-02", req.DisposalDate)
	if err != nil {
		return nil, validationError(err, "invalid disposal date")
	}
	asset, err := s.assets.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, internalError(err, "failed to load asset")
	}

	record := &models.DisposalRecord{
		AssetID:      asset.ID,
		DisposalDate: disposalDate,
		Method:       strings.TrimSpace(req.Method),
		Remarks:      req.Remarks,
	}
	if certificate != nil {
		if _, err := s.policy.check(*certificate); err != nil {
			return nil, err
		}
		relPath := storedName("disposal_certificates", asset.AssetTag, certificate.Filename)
		if _, err := s.files.Save(relPath, certificate.Content); err != nil {
			return nil, internalError(err, "failed to store disposal certificate")
		}
		record.Certificate = &relPath
	}

	var entries []models.AssetHistory
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		before, err := s.assets.FindByIDForUpdate(ctx, tx, asset.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "asset not found")
			}
			return internalError(err, "failed to load asset")
		}
		if err := s.disposals.Create(ctx, tx, record); err != nil {
			if database.IsUniqueViolation(err) {
				return appErrors.Clone(appErrors.ErrConflict, "asset already has a disposal record")
			}
			return internalError(err, "failed to create disposal record")
		}
		if before.Condition == models.ConditionDisposed {
			return nil
		}
		after := *before
		after.Condition = models.ConditionDisposed
		if err := s.assets.Update(ctx, tx, &after); err != nil {
			return internalError(err, "failed to mark asset disposed")
		}
		entries, err = s.recorder.RecordUpdate(ctx, tx, *before, after)
		if err != nil {
			return internalError(err, "failed to record asset history")
		}
		return nil
	})
	if err != nil {
		if record.Certificate != nil {
			_ = s.files.Delete(*record.Certificate)
		}
		return nil, err
	}
	s.notifier.Committed(ctx, entries, map[string]string{asset.ID: asset.AssetTag})
	s.sign(record)
	return record, nil
}

// Get returns the asset's disposal record with a signed certificate link when one is stored.
func (s *DisposalService) Get(ctx context.Context, assetID string) (*models.DisposalRecord, error) {
	record, err := s.disposals.FindByAssetID(ctx, assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disposal record not found")
		}
		return nil, internalError(err, "failed to load disposal record")
	}
	s.sign(record)
	return record, nil
}

// Certificate opens the stored certificate after verifying token.
func (s *DisposalService) Certificate(ctx context.Context, assetID, token string) (*FileDownload, error) {
	record, err := s.Get(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if record.Certificate == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "disposal certificate not found")
	}
	relPath, err := s.signer.Verify(token, record.ID)
	if err != nil || relPath != *record.Certificate {
		return nil, downloadTokenError(err)
	}
	return openStored(s.files, relPath, "")
}

func (s *DisposalService) sign(record *models.DisposalRecord) {
	if record.Certificate == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(record.ID, *record.Certificate)
	if err != nil {
		s.logger.Warn("certificate link not signed", zap.String("disposal_id", record.ID), zap.Error(err))
		return
	}
	record.CertificateURL = fmt.Sprintf("%s/assets/%s/disposal/certificate?token=%s", s.apiPrefix, record.AssetID, token)
}
