package service

import (
	"context"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	appErrors "github.com/noah-isme/asset-tracker-api/pkg/errors"
)

// HistoryService exposes the audit trail read-only.
type HistoryService struct {
	repo historyReader
}

func NewHistoryService(repo historyReader) *HistoryService {
	return &HistoryService{repo: repo}
}

func (s *HistoryService) List(ctx context.Context, filter models.HistoryFilter) ([]models.AssetHistoryDetail, *models.Pagination, error) {
	if filter.Action != "" && !models.HistoryAction(filter.Action).Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown history action")
	}
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list asset history")
	}
	return entries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}
