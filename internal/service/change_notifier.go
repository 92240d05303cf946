package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/internal/models"
	"github.com/noah-isme/asset-tracker-api/pkg/cache"
	"github.com/noah-isme/asset-tracker-api/pkg/events"
)

type historyDispatcher interface {
	Dispatch(evts ...events.HistoryEvent)
}

// ChangeNotifier runs the side effects of a committed asset mutation: it drops
// cached dashboards and hands the new history entries to the event dispatcher.
// Failures are logged and never reach the caller.
type ChangeNotifier struct {
	cache      *CacheService
	dispatcher historyDispatcher
	metrics    *MetricsService
	logger     *zap.Logger
}

func NewChangeNotifier(cacheSvc *CacheService, dispatcher historyDispatcher, metrics *MetricsService, logger *zap.Logger) *ChangeNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeNotifier{cache: cacheSvc, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Committed must be called only after the surrounding transaction committed.
// tags maps asset ids to asset tags for event payloads and may be nil.
func (n *ChangeNotifier) Committed(ctx context.Context, entries []models.AssetHistory, tags map[string]string) {
	if n == nil {
		return
	}
	if err := n.cache.Invalidate(ctx, cache.DashboardPattern); err != nil {
		n.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
	if len(entries) == 0 {
		return
	}
	evts := make([]events.HistoryEvent, 0, len(entries))
	for _, entry := range entries {
		n.metrics.RecordHistoryEntry(string(entry.Action))
		evts = append(evts, events.HistoryEvent{
			ID:          entry.ID,
			AssetID:     entry.AssetID,
			AssetTag:    tags[entry.AssetID],
			EmployeeID:  entry.EmployeeID,
			PerformedBy: entry.PerformedBy,
			Action:      string(entry.Action),
			Timestamp:   entry.Timestamp,
			Remarks:     entry.Remarks,
		})
	}
	if n.dispatcher != nil {
		n.dispatcher.Dispatch(evts...)
	}
}
