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

// TerminationService ends a company's lease as one atomic unit: units are
// vacated, then the lease, company, documents and score entries are
// soft-deleted, and the audit entry is appended inside the same
// transaction. No intermediate state is ever observable.
type TerminationService struct {
	repo     Repository
	producer EventProducer
	logger   *zap.Logger
}

func NewTerminationService(repo Repository, producer EventProducer, logger *zap.Logger) *TerminationService {
	return &TerminationService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("termination_service"),
	}
}

// Terminate executes the full termination sequence for a company. The unit
// must be vacated before the company becomes inactive, otherwise a
// concurrent reader could observe an occupied unit pointing at a deleted
// company. Unlike other mutations, the audit write participates in the
// transaction: if it fails, the whole termination rolls back.
func (s *TerminationService) Terminate(ctx context.Context, companyID uuid.UUID, actor auth.Actor) error {
	var company *models.Company

	err := s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		var err error
		company, err = tx.GetCompany(ctx, companyID)
		if err != nil {
			return err
		}

		unitsVacated, err := tx.VacateCompanyUnits(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to vacate units: %w", err)
		}
		leasesEnded, err := tx.SoftDeleteActiveLeases(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to end leases: %w", err)
		}
		if err := tx.SoftDelete(ctx, models.EntityCompany, companyID); err != nil {
			return fmt.Errorf("failed to delete company: %w", err)
		}
		if err := tx.SoftDeleteCompanyDependents(ctx, companyID); err != nil {
			return fmt.Errorf("failed to delete company dependents: %w", err)
		}

		entry := audit.NewLogEntry(ctx, audit.Entry{
			EntityType: models.EntityCompany,
			Action:     models.ActionDelete,
			Details:    fmt.Sprintf("terminated company %q", company.Name),
			RollbackData: models.JSONMap{
				"entityType": string(models.EntityCompany),
				"id":         companyID.String(),
			},
			Impact: models.JSONMap{
				"unitsVacated": unitsVacated,
				"leasesEnded":  leasesEnded,
				"documents":    len(company.Documents),
				"scoreEntries": len(company.ScoreEntries),
			},
			Actor: actor,
		})
		return tx.AppendAuditEntry(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		s.logger.Error("termination failed, transaction rolled back",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return err
	}

	s.producer.Produce(events.Event{
		Type:       events.CompanyTerminated,
		EntityType: models.EntityCompany,
		EntityID:   companyID,
		Name:       company.Name,
	})
	return nil
}
