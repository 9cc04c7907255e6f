package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/audit"
	"github.com/novapark/officelease/internal/lease/auth"
	"github.com/novapark/officelease/internal/lease/db"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/events"
	"github.com/novapark/officelease/internal/lease/models"
	"go.uber.org/zap"
)

// LifecycleService implements soft delete and cascade-aware restore for
// every soft-deletable entity type. Deletion never cascades here; only the
// termination service deletes across tables.
type LifecycleService struct {
	repo     Repository
	recorder *audit.Recorder
	producer EventProducer
	logger   *zap.Logger
}

func NewLifecycleService(repo Repository, recorder *audit.Recorder, producer EventProducer, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		repo:     repo,
		recorder: recorder,
		producer: producer,
		logger:   logger.Named("lifecycle_service"),
	}
}

// SoftDelete marks one row of the given type as deleted, without cascading.
func (s *LifecycleService) SoftDelete(ctx context.Context, t models.EntityType, id uuid.UUID, actor auth.Actor) error {
	if err := s.repo.SoftDelete(ctx, t, id); err != nil {
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("failed to soft-delete %s: %w", t, err)
	}

	s.recorder.Record(ctx, audit.Entry{
		EntityType: t,
		Action:     models.ActionDelete,
		Details:    fmt.Sprintf("soft-deleted %s %s", t, id),
		RollbackData: models.JSONMap{
			"entityType": string(t),
			"id":         id.String(),
		},
		Actor: actor,
	})
	s.producer.Produce(events.Event{Type: events.EntityDeleted, EntityType: t, EntityID: id})
	return nil
}

// RestoreCampus clears the campus deletion timestamp. A campus has no
// ancestors and its blocks are not revived with it.
func (s *LifecycleService) RestoreCampus(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Campus, error) {
	campus, err := s.repo.LookupCampus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !campus.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: campus %s is already active", e.ErrInvalidState, id)
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		return restoreWithAncestors(ctx, tx, models.EntityCampus, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore campus: %w", err)
	}

	s.recordRestore(ctx, models.EntityCampus, actor, fmt.Sprintf("restored campus %q", campus.Name), id, campus.Name)
	return s.repo.GetCampus(ctx, id)
}

// RestoreBlock clears the block deletion timestamp, reviving a soft-deleted
// parent campus first.
func (s *LifecycleService) RestoreBlock(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Block, error) {
	block, err := s.repo.LookupBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	if !block.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: block %s is already active", e.ErrInvalidState, id)
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		return restoreWithAncestors(ctx, tx, models.EntityBlock, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore block: %w", err)
	}

	s.recordRestore(ctx, models.EntityBlock, actor, fmt.Sprintf("restored block %q", block.Name), id, block.Name)
	return s.repo.GetBlock(ctx, id)
}

// RestoreUnit clears the unit deletion timestamp, reviving its block and
// campus above it when needed. Occupancy fields are left exactly as stored.
func (s *LifecycleService) RestoreUnit(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Unit, error) {
	unit, err := s.repo.LookupUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !unit.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: unit %s is already active", e.ErrInvalidState, id)
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		return restoreWithAncestors(ctx, tx, models.EntityUnit, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore unit: %w", err)
	}

	s.recordRestore(ctx, models.EntityUnit, actor, fmt.Sprintf("restored unit %q", unit.Number), id, unit.Number)
	return s.repo.GetUnit(ctx, id)
}

// RestoreCompany clears the company deletion timestamp and cascades down:
// its documents, score entries and the most recently deleted lease come
// back with it. Units are never re-occupied by a restore.
func (s *LifecycleService) RestoreCompany(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Company, error) {
	company, err := s.repo.LookupCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: company %s is already active", e.ErrInvalidState, id)
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := restoreWithAncestors(ctx, tx, models.EntityCompany, id); err != nil {
			return err
		}
		return reviveLatestLease(ctx, tx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore company: %w", err)
	}

	s.recordRestore(ctx, models.EntityCompany, actor, fmt.Sprintf("restored company %q", company.Name), id, company.Name)
	return s.repo.GetCompany(ctx, id)
}

// RestoreLease revives the company's most recently deleted lease, so the
// latest termination wins when several historical leases exist. A deleted
// owning company is restored first, together with its documents and score
// entries. A company that already holds an active lease cannot take a
// second one; the restore is rejected with InvalidState.
func (s *LifecycleService) RestoreLease(ctx context.Context, companyID uuid.UUID, actor auth.Actor) (*models.Lease, error) {
	company, err := s.repo.LookupCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		lease, err := tx.LatestDeletedLease(ctx, companyID)
		if err != nil {
			return err
		}
		if _, err := tx.GetActiveLease(ctx, companyID); err == nil {
			return fmt.Errorf("%w: company %s already holds an active lease", e.ErrInvalidState, companyID)
		} else if !errors.Is(err, e.ErrNotFound) {
			return err
		}
		if company.DeletedAt.Valid {
			if err := restoreWithAncestors(ctx, tx, models.EntityCompany, companyID); err != nil {
				return err
			}
		}
		return tx.RestoreRow(ctx, models.EntityLease, lease.ID)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) || errors.Is(err, e.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to restore lease: %w", err)
	}

	s.recordRestore(ctx, models.EntityLease, actor, fmt.Sprintf("restored lease of company %q", company.Name), companyID, company.Name)
	return s.repo.GetActiveLease(ctx, companyID)
}

// ListDeleted returns the merged deleted-items projection, most recently
// deleted first.
func (s *LifecycleService) ListDeleted(ctx context.Context) ([]models.DeletedItem, error) {
	return s.repo.ListDeleted(ctx)
}

// reviveLatestLease clears the deletion timestamp on the company's most
// recently deleted lease, if it has one. Only one lease comes back so the
// single-active-lease invariant holds.
func reviveLatestLease(ctx context.Context, tx *db.Repository, companyID uuid.UUID) error {
	lease, err := tx.LatestDeletedLease(ctx, companyID)
	if errors.Is(err, e.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return tx.RestoreRow(ctx, models.EntityLease, lease.ID)
}

// recordRestore appends the RESTORE audit entry and publishes the restored
// event. Restore is the semantic inverse of a prior delete, so no rollback
// payload is attached.
func (s *LifecycleService) recordRestore(ctx context.Context, t models.EntityType, actor auth.Actor, details string, id uuid.UUID, name string) {
	s.recorder.Record(ctx, audit.Entry{
		EntityType: t,
		Action:     models.ActionRestore,
		Details:    details,
		Actor:      actor,
	})
	s.producer.Produce(events.Event{Type: events.EntityRestored, EntityType: t, EntityID: id, Name: name})
}
