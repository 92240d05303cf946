package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
	"github.com/noah-isme/asset-tracker-api/pkg/storage"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.AssetDocument) error
	ListByAsset(ctx context.Context, assetID string) ([]models.AssetDocument, error)
	FindByID(ctx context.Context, id string) (*models.AssetDocument, error)
	Delete(ctx context.Context, id string) error
}

type assetFinder interface {
	FindByID(ctx context.Context, id string) (*models.Asset, error)
}

type fileStorage interface {
	Save(relPath string, r io.Reader) (int64, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

type signedURLSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Verify(token, resourceID string) (string, error)
}

// FileUpload carries an uploaded file and its declared metadata.
type FileUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// FileDownload is an opened stored file. Callers must close File.
type FileDownload struct {
	File     *os.File
	Filename string
	MimeType string
	Size     int64
}

// UploadPolicy bounds accepted uploads.
type UploadPolicy struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

func (p UploadPolicy) check(upload FileUpload) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if p.MaxFileSize > 0 && upload.Size > p.MaxFileSize {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", p.MaxFileSize))
	}
	mimeType, err := detectMime(upload)
	if err != nil {
		return "", err
	}
	if len(p.AllowedMIMEs) > 0 && !mimeAllowed(p.AllowedMIMEs, mimeType) {
		return "", appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}
	return mimeType, nil
}

func detectMime(upload FileUpload) (string, error) {
	if upload.MimeType != "" && upload.MimeType != "application/octet-stream" {
		return upload.MimeType, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", internalError(err, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", internalError(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

func downloadTokenError(err error) error {
	if errors.Is(err, storage.ErrTokenExpired) {
		return appErrors.Clone(appErrors.ErrForbidden, "download link expired")
	}
	return appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
}

func mimeAllowed(allowed []string, mimeType string) bool {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == strings.ToLower(mimeType) || strings.SplitN(candidate, ";", 2)[0] == base {
			return true
		}
	}
	return false
}

// storedName prefixes a sanitized filename so repeated uploads never overwrite each other.
func storedName(dir, tag, filename string) string {
	return path.Join(dir, tag, uuid.NewString()[:8]+"_"+storage.SanitizeFilename(filename))
}

func openStored(files fileStorage, relPath, mimeType string) (*FileDownload, error) {
	file, err := files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "stored file not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, internalError(err, "failed to read file metadata")
	}
	return &FileDownload{File: file, Filename: path.Base(relPath), MimeType: mimeType, Size: info.Size()}, nil
}

// DocumentService stores files attached to assets and serves them through signed links.
type DocumentService struct {
	repo      documentRepository
	assets    assetFinder
	files     fileStorage
	signer    signedURLSigner
	policy    UploadPolicy
	apiPrefix string
	logger    *zap.Logger
}

func NewDocumentService(repo documentRepository, assets assetFinder, files fileStorage, signer signedURLSigner, policy UploadPolicy, apiPrefix string, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiPrefix == "" {
		apiPrefix = "/api/v1"
	}
	return &DocumentService{repo: repo, assets: assets, files: files, signer: signer, policy: policy, apiPrefix: apiPrefix, logger: logger}
}

// Upload stores the file under asset_documents/<asset_tag>/ and records its metadata.
func (s *DocumentService) Upload(ctx context.Context, assetID, name string, upload FileUpload) (*models.AssetDocument, error) {
	asset, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	mimeType, err := s.policy.check(upload)
	if err != nil {
		return nil, err
	}
	relPath := storedName("asset_documents", asset.AssetTag, upload.Filename)
	size, err := s.files.Save(relPath, upload.Content)
	if err != nil {
		return nil, internalError(err, "failed to store document")
	}
	if strings.TrimSpace(name) == "" {
		name = upload.Filename
	}
	doc := &models.AssetDocument{
		AssetID:   asset.ID,
		Name:      strings.TrimSpace(name),
		FilePath:  relPath,
		MimeType:  mimeType,
		SizeBytes: size,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.files.Delete(relPath)
		return nil, internalError(err, "failed to save document metadata")
	}
	s.sign(doc)
	return doc, nil
}

// List returns the asset's documents with fresh download links.
func (s *DocumentService) List(ctx context.Context, assetID string) ([]models.AssetDocument, error) {
	if _, err := s.loadAsset(ctx, assetID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, internalError(err, "failed to list documents")
	}
	for i := range docs {
		s.sign(&docs[i])
	}
	return docs, nil
}

func (s *DocumentService) Download(ctx context.Context, id, token string) (*FileDownload, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	relPath, err := s.signer.Verify(token, doc.ID)
	if err != nil || relPath != doc.FilePath {
		return nil, downloadTokenError(err)
	}
	return openStored(s.files, relPath, doc.MimeType)
}

// Delete removes the metadata row, then the stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return internalError(err, "failed to delete document")
	}
	if err := s.files.Delete(doc.FilePath); err != nil {
		s.logger.Warn("stored document not removed", zap.String("document_id", doc.ID), zap.Error(err))
	}
	return nil
}

func (s *DocumentService) find(ctx context.Context, id string) (*models.AssetDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, internalError(err, "failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) loadAsset(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := s.assets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asset not found")
		}
		return nil, internalError(err, "failed to load asset")
	}
	return asset, nil
}

func (s *DocumentService) sign(doc *models.AssetDocument) {
	token, _, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		s.logger.Warn("document link not signed", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	doc.DownloadURL = fmt.Sprintf("%s/documents/%s/download?token=%s", s.apiPrefix, doc.ID, token)
}
