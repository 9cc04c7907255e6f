// Package db implements the persistence layer for the leasing service on
// top of GORM. Soft deletion is modeled with gorm.DeletedAt; restore
// operations use Unscoped queries to reach deleted rows.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewRepository connects to Postgres and migrates the schema.
func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewWithDB wraps an already-open GORM handle. Used by tests to run the
// repository against in-memory SQLite.
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates all tables.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Create inserts a new row of any persisted model.
func (r *Repository) Create(ctx context.Context, value interface{}) error {
	result := r.db.WithContext(ctx).Create(value)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

// WithTransaction runs fn against a transaction-scoped repository. Any
// error returned by fn rolls back every statement issued through it.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Exec runs a raw SQL statement.
func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// modelFor maps an entity type to a fresh model value for generic
// soft-delete and restore statements.
func modelFor(t models.EntityType) (interface{}, error) {
	switch t {
	case models.EntityCampus:
		return &models.Campus{}, nil
	case models.EntityBlock:
		return &models.Block{}, nil
	case models.EntityUnit:
		return &models.Unit{}, nil
	case models.EntityCompany:
		return &models.Company{}, nil
	case models.EntityLease:
		return &models.Lease{}, nil
	case models.EntityDocument:
		return &models.CompanyDocument{}, nil
	case models.EntityScoreEntry:
		return &models.CompanyScoreEntry{}, nil
	case models.EntityBusinessArea:
		return &models.BusinessArea{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", e.ErrInvalidInput, t)
	}
}

// SoftDelete marks a single active row as deleted. It does not cascade.
// Returns ErrNotFound when the row is absent or already deleted.
func (r *Repository) SoftDelete(ctx context.Context, t models.EntityType, id uuid.UUID) error {
	model, err := modelFor(t)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// RestoreRow clears the deletion timestamp of one soft-deleted row.
// Returns ErrNotFound when no deleted row with that id exists.
func (r *Repository) RestoreRow(ctx context.Context, t models.EntityType, id uuid.UUID) error {
	model, err := modelFor(t)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Unscoped().Model(model).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
