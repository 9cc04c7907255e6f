// Package controller implements the core business logic for entity
// lifecycle management: soft delete, cascade-aware restore and atomic
// company termination, each coupled to the audit trail.
package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/db"
	"github.com/novapark/officelease/internal/lease/events"
	"github.com/novapark/officelease/internal/lease/models"
)

// EventProducer publishes lifecycle events best-effort.
type EventProducer interface {
	Produce(event events.Event)
}

// Repository defines the storage surface the lifecycle and termination
// services operate on. Multi-statement sequences run through
// WithTransaction so they are all-or-nothing.
type Repository interface {
	GetCampus(ctx context.Context, id uuid.UUID) (*models.Campus, error)
	GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetActiveLease(ctx context.Context, companyID uuid.UUID) (*models.Lease, error)
	LookupCampus(ctx context.Context, id uuid.UUID) (*models.Campus, error)
	LookupBlock(ctx context.Context, id uuid.UUID) (*models.Block, error)
	LookupUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	LookupCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	SoftDelete(ctx context.Context, t models.EntityType, id uuid.UUID) error
	ListDeleted(ctx context.Context) ([]models.DeletedItem, error)
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
	Close() error
}
