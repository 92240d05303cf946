package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/asset-tracker-api/internal/actor"
	"github.com/noah-isme/asset-tracker-api/internal/models"
)

const (
	remarksCreated = "Asset record created"
	remarksDeleted = "Asset record deleted"
	remarksAuto    = "System auto-logged change: "
)

type historyWriter interface {
	Create(ctx context.Context, tx *sqlx.Tx, entry *models.AssetHistory) error
}

// AssetChange is one semantic event derived from comparing two asset snapshots.
type AssetChange struct {
	Action     models.HistoryAction
	EmployeeID *string
}

// DeriveChanges compares the tracked fields (holder, condition, active flag) of
// two snapshots of the same asset and returns the resulting events in rule order.
func DeriveChanges(before, after models.Asset) []AssetChange {
	holder := after.AllotedTo
	var changes []AssetChange
	add := func(action models.HistoryAction) {
		changes = append(changes, AssetChange{Action: action, EmployeeID: holder})
	}

	holderChanged := !sameHolder(before.AllotedTo, after.AllotedTo)
	if holderChanged {
		if before.AllotedTo == nil {
			add(models.ActionAssigned)
		} else {
			add(models.ActionTransferred)
		}
	}

	conditionChanged := before.Condition != after.Condition
	if conditionChanged {
		switch after.Condition {
		case models.ConditionDisposed:
			add(models.ActionDisposed)
		case models.ConditionRepair:
			add(models.ActionRepaired)
		}
	}

	activeChanged := before.IsActive != after.IsActive
	if activeChanged && before.IsActive && !after.IsActive {
		add(models.ActionReturned)
	}

	if len(changes) == 0 && (holderChanged || conditionChanged || activeChanged) {
		add(models.ActionUpdated)
	}
	return changes
}

func sameHolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AuditRecorder appends history entries for asset mutations inside the caller's
// transaction. It never modifies the asset itself.
type AuditRecorder struct {
	history historyWriter
}

func NewAuditRecorder(history historyWriter) *AuditRecorder {
	return &AuditRecorder{history: history}
}

// RecordCreate writes the single "created" entry for a new asset.
func (r *AuditRecorder) RecordCreate(ctx context.Context, tx *sqlx.Tx, asset models.Asset) (models.AssetHistory, error) {
	entry := models.AssetHistory{
		AssetID:     asset.ID,
		EmployeeID:  asset.AllotedTo,
		PerformedBy: actor.UserID(ctx),
		Action:      models.ActionCreated,
		Remarks:     remarksCreated,
	}
	if err := r.history.Create(ctx, tx, &entry); err != nil {
		return models.AssetHistory{}, err
	}
	return entry, nil
}

// RecordUpdate writes one entry per change derived from before and after.
func (r *AuditRecorder) RecordUpdate(ctx context.Context, tx *sqlx.Tx, before, after models.Asset) ([]models.AssetHistory, error) {
	changes := DeriveChanges(before, after)
	entries := make([]models.AssetHistory, 0, len(changes))
	performer := actor.UserID(ctx)
	for _, change := range changes {
		entry := models.AssetHistory{
			AssetID:     after.ID,
			EmployeeID:  change.EmployeeID,
			PerformedBy: performer,
			Action:      change.Action,
			Remarks:     remarksAuto + string(change.Action),
		}
		if err := r.history.Create(ctx, tx, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RecordDelete writes the "deleted" entry for a soft-deleted asset.
func (r *AuditRecorder) RecordDelete(ctx context.Context, tx *sqlx.Tx, asset models.Asset) (models.AssetHistory, error) {
	entry := models.AssetHistory{
		AssetID:     asset.ID,
		EmployeeID:  asset.AllotedTo,
		PerformedBy: actor.UserID(ctx),
		Action:      models.ActionDeleted,
		Remarks:     remarksDeleted,
	}
	if err := r.history.Create(ctx, tx, &entry); err != nil {
		return models.AssetHistory{}, err
	}
	return entry, nil
}
