package db

import (
	"context"

	"github.com/novapark/officelease/internal/lease/models"
)

// AppendAuditEntry inserts one immutable audit record. There is no update
// or delete counterpart.
func (r *Repository) AppendAuditEntry(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAuditEntries returns one page of audit records, newest first, along
// with the total record count.
func (r *Repository) ListAuditEntries(ctx context.Context, page, limit int) ([]models.AuditLogEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AuditLogEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLogEntry
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
