package controller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/audit"
	"github.com/novapark/officelease/internal/lease/auth"
	"github.com/novapark/officelease/internal/lease/db"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/events"
	"github.com/novapark/officelease/internal/lease/models"
	"github.com/novapark/officelease/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testActor = auth.Actor{Username: "alice", Role: auth.RoleAdmin}

// MockProducer records published events.
type MockProducer struct {
	produced []events.Event
}

func (m *MockProducer) Produce(event events.Event) {
	m.produced = append(m.produced, event)
}

type fixture struct {
	repo        *db.Repository
	producer    *MockProducer
	lifecycle   *LifecycleService
	termination *TerminationService
}

func newFixture(t *testing.T) *fixture {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	repo := db.NewWithDB(gdb)
	require.NoError(t, repo.Migrate(), "failed to migrate test database")

	logger := zaptest.NewLogger(t)
	recorder := audit.NewRecorder(repo, logger)
	producer := &MockProducer{}

	return &fixture{
		repo:        repo,
		producer:    producer,
		lifecycle:   NewLifecycleService(repo, recorder, producer, logger),
		termination: NewTerminationService(repo, producer, logger),
	}
}

// seedHierarchy creates an active campus, block and unit.
func seedHierarchy(t *testing.T, repo *db.Repository) (*models.Campus, *models.Block, *models.Unit) {
	ctx := context.Background()
	campus := &models.Campus{ID: uuid.New(), Name: fmt.Sprintf("Campus %s", uuid.NewString()[:8])}
	require.NoError(t, repo.Create(ctx, campus))

	block := &models.Block{ID: uuid.New(), CampusID: campus.ID, Name: "Block A"}
	require.NoError(t, repo.Create(ctx, block))

	unit := &models.Unit{
		ID:      uuid.New(),
		BlockID: block.ID,
		Number:  "101",
		Floor:   1,
		AreaSqm: 80,
		Status:  models.UnitVacant,
	}
	require.NoError(t, repo.Create(ctx, unit))
	return campus, block, unit
}

// seedCompany creates an active company with documents, score entries and
// one active lease on the given unit, marking the unit occupied.
func seedCompany(t *testing.T, repo *db.Repository, unit *models.Unit, docs, scores int) (*models.Company, *models.Lease) {
	ctx := context.Background()
	company := &models.Company{ID: uuid.New(), Name: fmt.Sprintf("Company %s", uuid.NewString()[:8])}
	require.NoError(t, repo.Create(ctx, company))

	for i := 0; i < docs; i++ {
		doc := &models.CompanyDocument{ID: uuid.New(), CompanyID: company.ID, Name: fmt.Sprintf("doc-%d", i)}
		require.NoError(t, repo.Create(ctx, doc))
	}
	for i := 0; i < scores; i++ {
		entry := &models.CompanyScoreEntry{ID: uuid.New(), CompanyID: company.ID, Category: fmt.Sprintf("cat-%d", i), Points: 5}
		require.NoError(t, repo.Create(ctx, entry))
	}

	lease := &models.Lease{
		ID:          uuid.New(),
		CompanyID:   company.ID,
		UnitID:      utils.Ptr(unit.ID),
		StartDate:   time.Now(),
		EndDate:     time.Now().AddDate(1, 0, 0),
		MonthlyRent: 8000,
	}
	require.NoError(t, repo.Create(ctx, lease))

	unit.Status = models.UnitOccupied
	unit.CompanyID = utils.Ptr(company.ID)
	require.NoError(t, repo.Exec(ctx, "UPDATE units SET status = ?, company_id = ? WHERE id = ?",
		models.UnitOccupied, company.ID, unit.ID))
	return company, lease
}

func auditEntries(t *testing.T, repo *db.Repository) []models.AuditLogEntry {
	entries, _, err := repo.ListAuditEntries(context.Background(), 1, 100)
	require.NoError(t, err)
	return entries
}

// TestRestoreCampusAlreadyActive ensures a restore on an active row fails
// with InvalidState and performs zero writes.
func TestRestoreCampusAlreadyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campus, _, _ := seedHierarchy(t, f.repo)

	_, err := f.lifecycle.RestoreCampus(ctx, campus.ID, testActor)
	assert.ErrorIs(t, err, e.ErrInvalidState)

	assert.Empty(t, auditEntries(t, f.repo), "a rejected restore must not be audited")
	assert.Empty(t, f.producer.produced, "a rejected restore must not publish events")
}

func TestRestoreCampusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.RestoreCampus(context.Background(), uuid.New(), testActor)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestRestoreCampus covers the plain single-row restore.
func TestRestoreCampus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campus, _, _ := seedHierarchy(t, f.repo)

	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityCampus, campus.ID))

	restored, err := f.lifecycle.RestoreCampus(ctx, campus.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, campus.ID, restored.ID)

	entries := auditEntries(t, f.repo)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionRestore, entries[0].Action)
	assert.Equal(t, models.EntityCampus, entries[0].EntityType)
	assert.Equal(t, testActor.Username, entries[0].Username)
	assert.Equal(t, testActor.Role, entries[0].Role)
	assert.Nil(t, entries[0].RollbackData, "restore carries no rollback payload")
}

// TestRestoreBlockCascadesUp verifies restoring a block revives its deleted
// campus first.
func TestRestoreBlockCascadesUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campus, block, _ := seedHierarchy(t, f.repo)

	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityBlock, block.ID))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityCampus, campus.ID))

	restored, err := f.lifecycle.RestoreBlock(ctx, block.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, block.ID, restored.ID)

	_, err = f.repo.GetCampus(ctx, campus.ID)
	assert.NoError(t, err, "parent campus should be active after block restore")

	entries := auditEntries(t, f.repo)
	require.Len(t, entries, 1, "cascade restore is one operation, one audit entry")
	assert.Equal(t, models.EntityBlock, entries[0].EntityType)
}

// TestRestoreUnitCascadesUpTwoLevels verifies the unit restore climbs
// through block and campus.
func TestRestoreUnitCascadesUpTwoLevels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campus, block, unit := seedHierarchy(t, f.repo)

	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityUnit, unit.ID))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityBlock, block.ID))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityCampus, campus.ID))

	_, err := f.lifecycle.RestoreUnit(ctx, unit.ID, testActor)
	require.NoError(t, err)

	_, err = f.repo.GetBlock(ctx, block.ID)
	assert.NoError(t, err, "block should be active")
	_, err = f.repo.GetCampus(ctx, campus.ID)
	assert.NoError(t, err, "campus should be active")
}

// TestRestoreCompanyRevivesDependents verifies cascade-down over documents,
// score entries and the latest lease.
func TestRestoreCompanyRevivesDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, unit := seedHierarchy(t, f.repo)
	company, lease := seedCompany(t, f.repo, unit, 2, 3)

	require.NoError(t, f.termination.Terminate(ctx, company.ID, testActor))

	restored, err := f.lifecycle.RestoreCompany(ctx, company.ID, testActor)
	require.NoError(t, err)
	assert.Len(t, restored.Documents, 2, "all documents should be active again")
	assert.Len(t, restored.ScoreEntries, 3, "all score entries should be active again")

	activeLease, err := f.repo.GetActiveLease(ctx, company.ID)
	require.NoError(t, err, "the lease should be active again")
	assert.Equal(t, lease.ID, activeLease.ID)

	// Restore never re-occupies a unit.
	after, err := f.repo.GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitVacant, after.Status)
	assert.Nil(t, after.CompanyID)
}

// TestRestoreLeasePicksLatestTermination verifies the most recently deleted
// lease wins when a company has several historical leases.
func TestRestoreLeasePicksLatestTermination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := &models.Company{ID: uuid.New(), Name: "Initech"}
	require.NoError(t, f.repo.Create(ctx, company))

	older := &models.Lease{ID: uuid.New(), CompanyID: company.ID, MonthlyRent: 500}
	require.NoError(t, f.repo.Create(ctx, older))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityLease, older.ID))
	time.Sleep(10 * time.Millisecond)

	newer := &models.Lease{ID: uuid.New(), CompanyID: company.ID, MonthlyRent: 900}
	require.NoError(t, f.repo.Create(ctx, newer))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityLease, newer.ID))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityCompany, company.ID))

	restored, err := f.lifecycle.RestoreLease(ctx, company.ID, testActor)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, restored.ID, "latest termination should win")

	_, err = f.repo.GetCompany(ctx, company.ID)
	assert.NoError(t, err, "owning company should be active again")

	_, err = f.repo.LatestDeletedLease(ctx, company.ID)
	assert.NoError(t, err, "the older lease should stay deleted")
}

// TestRestoreLeaseRejectsSecondActiveLease ensures a company that already
// holds an active lease cannot revive a historical one on top of it.
func TestRestoreLeaseRejectsSecondActiveLease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := &models.Company{ID: uuid.New(), Name: "Vandelay"}
	require.NoError(t, f.repo.Create(ctx, company))

	old := &models.Lease{ID: uuid.New(), CompanyID: company.ID, MonthlyRent: 500}
	require.NoError(t, f.repo.Create(ctx, old))
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityLease, old.ID))

	current := &models.Lease{ID: uuid.New(), CompanyID: company.ID, MonthlyRent: 900}
	require.NoError(t, f.repo.Create(ctx, current))

	_, err := f.lifecycle.RestoreLease(ctx, company.ID, testActor)
	assert.ErrorIs(t, err, e.ErrInvalidState)

	active, err := f.repo.GetActiveLease(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, active.ID, "the current lease stays the only active one")

	_, err = f.repo.LatestDeletedLease(ctx, company.ID)
	assert.NoError(t, err, "the historical lease stays deleted")

	assert.Empty(t, auditEntries(t, f.repo), "a rejected restore must not be audited")
	assert.Empty(t, f.producer.produced, "a rejected restore must not publish events")
}

func TestRestoreLeaseNoDeletedLease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := &models.Company{ID: uuid.New(), Name: "Hooli"}
	require.NoError(t, f.repo.Create(ctx, company))

	_, err := f.lifecycle.RestoreLease(ctx, company.ID, testActor)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestSoftDelete covers the non-cascading single-row delete and its audit
// trail.
func TestSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, unit := seedHierarchy(t, f.repo)

	require.NoError(t, f.lifecycle.SoftDelete(ctx, models.EntityUnit, unit.ID, testActor))

	_, err := f.repo.GetUnit(ctx, unit.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	entries := auditEntries(t, f.repo)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDelete, entries[0].Action)
	assert.Equal(t, models.EntityUnit, entries[0].EntityType)
	require.NotNil(t, entries[0].RollbackData)
	assert.Equal(t, unit.ID.String(), entries[0].RollbackData["id"])

	err = f.lifecycle.SoftDelete(ctx, models.EntityUnit, unit.ID, testActor)
	assert.ErrorIs(t, err, e.ErrNotFound, "second delete should fail")
}

// TestListDeletedMergedProjection covers the two-entity scenario: one
// deleted block and one deleted company, ordered by deletion time.
func TestListDeletedMergedProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, block, _ := seedHierarchy(t, f.repo)
	company := &models.Company{ID: uuid.New(), Name: "Umbrella"}
	require.NoError(t, f.repo.Create(ctx, company))

	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityBlock, block.ID))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, f.repo.SoftDelete(ctx, models.EntityCompany, company.ID))

	items, err := f.lifecycle.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.EntityCompany, items[0].Type)
	assert.Equal(t, models.EntityBlock, items[1].Type)
}
