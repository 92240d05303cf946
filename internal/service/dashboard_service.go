package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/cache"
)

const (
	dashboardRecentLimit = 5
	dashboardSampleLimit = 3
)

type dashboardRepository interface {
	Counts(ctx context.Context) (*models.DashboardCounts, error)
	EmployeeAssets(ctx context.Context, query string) ([]models.EmployeeAssetRow, error)
}

type recentHistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.AssetHistoryDetail, error)
}

// DashboardService composes the dashboard payload and caches it per search query.
type DashboardService struct {
	repo     dashboardRepository
	history  recentHistoryReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewDashboardService(repo dashboardRepository, history recentHistoryReader, cacheSvc *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, history: history, cache: cacheSvc, cacheTTL: cacheTTL, logger: logger}
}

// Get returns the dashboard for query and whether it was served from cache.
func (s *DashboardService) Get(ctx context.Context, query string) (*models.Dashboard, bool, error) {
	query = strings.TrimSpace(query)
	key := cache.DashboardKey(query)

	var cached models.Dashboard
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to load dashboard counts")
	}
	recent, err := s.history.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, false, internalError(err, "failed to load recent history")
	}
	rows, err := s.repo.EmployeeAssets(ctx, query)
	if err != nil {
		return nil, false, internalError(err, "failed to load employee assets")
	}
	if recent == nil {
		recent = []models.AssetHistoryDetail{}
	}

	dashboard := &models.Dashboard{
		Counts:        *counts,
		RecentHistory: recent,
		Employees:     SummarizeEmployees(rows),
	}
	s.cache.Set(ctx, key, dashboard, s.cacheTTL)
	return dashboard, false, nil
}

// SummarizeEmployees folds rows ordered by employee into one summary per employee,
// keeping row order for sample assets and categories.
func SummarizeEmployees(rows []models.EmployeeAssetRow) []models.DashboardEmployee {
	summaries := []models.DashboardEmployee{}
	seenTypes := map[string]struct{}{}
	for _, row := range rows {
		n := len(summaries)
		if n == 0 || summaries[n-1].ID != row.EmployeeID {
			summaries = append(summaries, models.DashboardEmployee{
				Sl:           n + 1,
				ID:           row.EmployeeID,
				Name:         strings.TrimSpace(row.FirstName + " " + row.LastName),
				SampleAssets: []string{},
				Categories:   []models.DashboardCategory{},
			})
			seenTypes = map[string]struct{}{}
			n++
		}
		if row.AssetID == nil {
			continue
		}
		current := &summaries[n-1]
		current.AssetCount++
		if row.Condition != nil {
			switch *row.Condition {
			case models.ConditionDamaged:
				current.DamagedCount++
			case models.ConditionRepair:
				current.RepairCount++
			case models.ConditionDisposed:
				current.DisposedCount++
			}
		}
		if len(current.SampleAssets) < dashboardSampleLimit {
			name := "-"
			if row.MakeModel != nil && *row.MakeModel != "" {
				name = *row.MakeModel
			}
			current.SampleAssets = append(current.SampleAssets, name)
		}
		if row.TypeID != nil {
			if _, ok := seenTypes[*row.TypeID]; !ok {
				seenTypes[*row.TypeID] = struct{}{}
				current.Categories = append(current.Categories, models.DashboardCategory{ID: *row.TypeID, Name: deref(row.TypeName)})
			}
		}
	}
	return summaries
}
