// Package audit appends immutable records of every mutating action. Outside
// the termination transaction audit writes are best-effort: a failed append
// is logged but never fails the triggering request.
package audit

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/novapark/officelease/internal/lease/auth"
	"github.com/novapark/officelease/internal/lease/models"
	"go.uber.org/zap"
)

// Store is the subset of the repository the recorder needs.
type Store interface {
	AppendAuditEntry(ctx context.Context, entry *models.AuditLogEntry) error
	ListAuditEntries(ctx context.Context, page, limit int) ([]models.AuditLogEntry, int64, error)
}

// Entry describes one mutating action to record. RollbackData and Impact
// are optional payloads reserved for rollback-from-log-entry support.
type Entry struct {
	EntityType   models.EntityType
	Action       models.AuditAction
	Details      string
	RollbackData models.JSONMap
	Impact       models.JSONMap
	Actor        auth.Actor
}

// Pagination describes one page of audit results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

type Recorder struct {
	store  Store
	logger *zap.Logger
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.Named("audit_recorder"),
	}
}

// NewLogEntry materializes an Entry into the persisted form, pulling the
// trace id from the request context and stamping the current time.
func NewLogEntry(ctx context.Context, e Entry) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		TraceID:      middleware.GetReqID(ctx),
		Timestamp:    time.Now().UTC(),
		EntityType:   e.EntityType,
		Action:       e.Action,
		Details:      e.Details,
		Username:     e.Actor.Username,
		Role:         e.Actor.Role,
		RollbackData: e.RollbackData,
		Impact:       e.Impact,
	}
}

// Record appends one audit entry best-effort. Append failures are reported
// in the log and swallowed so the triggering mutation still succeeds.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if err := r.store.AppendAuditEntry(ctx, NewLogEntry(ctx, e)); err != nil {
		r.logger.Error("failed to append audit entry",
			zap.Error(err),
			zap.String("entity_type", string(e.EntityType)),
			zap.String("action", string(e.Action)),
		)
	}
}

// List returns one page of audit entries, newest first.
func (r *Recorder) List(ctx context.Context, page, limit int) ([]models.AuditLogEntry, Pagination, error) {
	entries, total, err := r.store.ListAuditEntries(ctx, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return entries, Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}
