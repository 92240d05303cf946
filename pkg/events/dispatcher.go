package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/asset-tracker-api/pkg/jobs"
)

// HistoryEvent is the payload published for every committed asset history entry.
type HistoryEvent struct {
	ID          string    `json:"id"`
	AssetID     string    `json:"asset_id"`
	AssetTag    string    `json:"asset_tag,omitempty"`
	EmployeeID  *string   `json:"employee_id,omitempty"`
	PerformedBy *string   `json:"performed_by,omitempty"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	Remarks     string    `json:"remarks"`
}

// DispatcherConfig tunes the background publishing pool.
type DispatcherConfig struct {
	SubjectPrefix string
	Workers       int
	Retries       int
	Logger        *zap.Logger
}

// Dispatcher hands history events to a worker pool that publishes them.
// Publishing failures are logged and never reach the caller.
type Dispatcher struct {
	publisher Publisher
	prefix    string
	queue     *jobs.Queue
	logger    *zap.Logger
	onPublish func(action string, err error)
}

// NewDispatcher builds a dispatcher. A nil publisher disables dispatching.
func NewDispatcher(publisher Publisher, cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := strings.TrimSuffix(cfg.SubjectPrefix, ".")
	if prefix == "" {
		prefix = "asset.history"
	}
	d := &Dispatcher{publisher: publisher, prefix: prefix, logger: logger}
	if publisher == nil {
		return d
	}
	d.queue = jobs.NewQueue("history-events", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return d
}

// OnPublish registers a callback invoked after each publish attempt.
func (d *Dispatcher) OnPublish(fn func(action string, err error)) {
	d.onPublish = fn
}

func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil || d.queue == nil {
		return
	}
	d.queue.Start(ctx)
}

func (d *Dispatcher) Stop() {
	if d == nil || d.queue == nil {
		return
	}
	d.queue.Stop()
}

// Subject returns the subject an action is published on.
func (d *Dispatcher) Subject(action string) string {
	return d.prefix + "." + action
}

// Dispatch enqueues events without blocking.
func (d *Dispatcher) Dispatch(evts ...HistoryEvent) {
	if d == nil || d.queue == nil {
		return
	}
	for _, evt := range evts {
		job := jobs.Job{ID: evt.ID, Type: evt.Action, Payload: evt}
		if err := d.queue.TryEnqueue(job); err != nil {
			d.logger.Warn("drop history event", zap.String("event_id", evt.ID), zap.String("action", evt.Action), zap.Error(err))
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	evt, ok := job.Payload.(HistoryEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	err := d.publisher.Publish(ctx, d.Subject(evt.Action), evt)
	if d.onPublish != nil {
		d.onPublish(evt.Action, err)
	}
	return err
}
