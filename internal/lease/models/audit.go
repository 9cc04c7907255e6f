package models

import "time"

// AuditAction classifies the mutation recorded by an audit entry.
type AuditAction string

const (
	ActionCreate  AuditAction = "CREATE"
	ActionUpdate  AuditAction = "UPDATE"
	ActionDelete  AuditAction = "DELETE"
	ActionRestore AuditAction = "RESTORE"
)

// AuditLogEntry is one immutable record of a state-changing action. Entries
// are only ever appended; there is no update or delete path and no
// DeletedAt column. RollbackData and Impact are reserved for a future
// rollback-from-log-entry capability.
type AuditLogEntry struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"`
	TraceID      string      `gorm:"size:64;index"`
	Timestamp    time.Time   `gorm:"index"`
	EntityType   EntityType  `gorm:"size:30;index"`
	Action       AuditAction `gorm:"size:10"`
	Details      string      `gorm:"size:1000"`
	Username     string      `gorm:"size:120"`
	Role         string      `gorm:"size:40"`
	RollbackData JSONMap     `gorm:"type:text"`
	Impact       JSONMap     `gorm:"type:text"`
}
