package controller

import (
	"context"
	"testing"

	"github.com/google/uuid"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/events"
	"github.com/novapark/officelease/internal/lease/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTerminate covers the full scenario: the unit is vacated, the lease,
// company and dependents become inactive, one DELETE audit entry is
// written, and a later lease restore does not re-occupy the unit.
func TestTerminate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, unit := seedHierarchy(t, f.repo)
	company, lease := seedCompany(t, f.repo, unit, 1, 1)

	require.NoError(t, f.termination.Terminate(ctx, company.ID, testActor))

	after, err := f.repo.GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, after.Status)
	assert.Nil(t, after.CompanyID)

	_, err = f.repo.GetCompany(ctx, company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "company should be inactive")
	_, err = f.repo.GetActiveLease(ctx, company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound, "lease should be inactive")

	entries := auditEntries(t, f.repo)
	require.Len(t, entries, 1, "termination writes exactly one audit entry")
	assert.Equal(t, models.ActionDelete, entries[0].Action)
	assert.Equal(t, models.EntityCompany, entries[0].EntityType)
	assert.Equal(t, testActor.Username, entries[0].Username)
	require.NotNil(t, entries[0].Impact)
	assert.EqualValues(t, 1, entries[0].Impact["unitsVacated"])
	assert.EqualValues(t, 1, entries[0].Impact["leasesEnded"])

	require.Len(t, f.producer.produced, 1)
	assert.Equal(t, events.CompanyTerminated, f.producer.produced[0].Type)

	// Restoring the lease brings the company and its dependents back but
	// never re-occupies the unit.
	restored, err := f.lifecycle.RestoreLease(ctx, company.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, lease.ID, restored.ID)

	revived, err := f.repo.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, revived.Documents, 1)
	assert.Len(t, revived.ScoreEntries, 1)

	after, err = f.repo.GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, after.Status, "restore must not re-occupy the unit")
	assert.Nil(t, after.CompanyID)
}

func TestTerminateNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.termination.Terminate(context.Background(), uuid.New(), testActor)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Empty(t, f.producer.produced)
}

func TestTerminateAlreadyTerminated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, unit := seedHierarchy(t, f.repo)
	company, _ := seedCompany(t, f.repo, unit, 0, 0)

	require.NoError(t, f.termination.Terminate(ctx, company.ID, testActor))
	err := f.termination.Terminate(ctx, company.ID, testActor)
	assert.ErrorIs(t, err, e.ErrNotFound, "a deleted company cannot be terminated again")
}

// TestTerminateRollsBackOnAuditFailure forces the transactional audit write
// to fail and verifies no partial state survives: the unit keeps its
// pre-termination occupant and the company stays active.
func TestTerminateRollsBackOnAuditFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, unit := seedHierarchy(t, f.repo)
	company, _ := seedCompany(t, f.repo, unit, 1, 1)

	require.NoError(t, f.repo.Exec(ctx, "DROP TABLE audit_log_entries"))

	err := f.termination.Terminate(ctx, company.ID, testActor)
	require.Error(t, err, "termination must fail when the audit write fails")

	after, err := f.repo.GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitOccupied, after.Status, "unit must keep its occupant after rollback")
	require.NotNil(t, after.CompanyID)
	assert.Equal(t, company.ID, *after.CompanyID)

	_, err = f.repo.GetCompany(ctx, company.ID)
	assert.NoError(t, err, "company must stay active after rollback")
	_, err = f.repo.GetActiveLease(ctx, company.ID)
	assert.NoError(t, err, "lease must stay active after rollback")

	assert.Empty(t, f.producer.produced, "no event on a failed termination")
}
