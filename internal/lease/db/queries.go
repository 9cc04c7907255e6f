package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/models"
	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e.ErrNotFound
	}
	return err
}

// GetCampus fetches an active campus by id.
func (r *Repository) GetCampus(ctx context.Context, id uuid.UUID) (*models.Campus, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).First(&campus, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &campus, nil
}

// GetBlock fetches an active block by id.
func (r *Repository) GetBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	var block models.Block
	if err := r.db.WithContext(ctx).First(&block, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &block, nil
}

// GetUnit fetches an active unit by id.
func (r *Repository) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// GetCompany fetches an active company by id together with its active
// business areas, documents and score entries.
func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Preload("BusinessAreas").
		Preload("Documents").
		Preload("ScoreEntries").
		First(&company, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// GetActiveLease fetches the company's active lease with its documents and
// unit, if one exists.
func (r *Repository) GetActiveLease(ctx context.Context, companyID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Unit").
		First(&lease, "company_id = ?", companyID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lease, nil
}

// LookupCampus fetches a campus regardless of deletion state.
func (r *Repository) LookupCampus(ctx context.Context, id uuid.UUID) (*models.Campus, error) {
	var campus models.Campus
	if err := r.db.WithContext(ctx).Unscoped().First(&campus, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &campus, nil
}

// LookupBlock fetches a block regardless of deletion state.
func (r *Repository) LookupBlock(ctx context.Context, id uuid.UUID) (*models.Block, error) {
	var block models.Block
	if err := r.db.WithContext(ctx).Unscoped().First(&block, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &block, nil
}

// LookupUnit fetches a unit regardless of deletion state.
func (r *Repository) LookupUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).Unscoped().First(&unit, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

// LookupCompany fetches a company regardless of deletion state.
func (r *Repository) LookupCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Unscoped().First(&company, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// LatestDeletedLease returns the company's most recently deleted lease, so
// that restoring after repeated terminations revives the latest one.
func (r *Repository) LatestDeletedLease(ctx context.Context, companyID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	err := r.db.WithContext(ctx).Unscoped().
		Where("company_id = ? AND deleted_at IS NOT NULL", companyID).
		Order("deleted_at DESC").
		First(&lease).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lease, nil
}

// VacateCompanyUnits clears occupancy on every unit held by the company as
// occupant or reservation holder, returning the number of units vacated.
func (r *Repository) VacateCompanyUnits(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Unit{}).
		Where("company_id = ? OR reserved_by = ?", companyID, companyID).
		Updates(map[string]interface{}{
			"company_id":  nil,
			"reserved_by": nil,
			"status":      models.UnitVacant,
		})
	return result.RowsAffected, result.Error
}

// SoftDeleteActiveLeases marks every active lease of the company as
// deleted, returning the number of leases ended.
func (r *Repository) SoftDeleteActiveLeases(ctx context.Context, companyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Lease{}, "company_id = ?", companyID)
	return result.RowsAffected, result.Error
}

// SoftDeleteCompanyDependents marks the company's documents and score
// entries as deleted.
func (r *Repository) SoftDeleteCompanyDependents(ctx context.Context, companyID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.CompanyDocument{}, "company_id = ?", companyID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.CompanyScoreEntry{}, "company_id = ?", companyID).Error
}

// RestoreCompanyDependents clears deletion timestamps on the company's
// documents and score entries.
func (r *Repository) RestoreCompanyDependents(ctx context.Context, companyID uuid.UUID) error {
	err := r.db.WithContext(ctx).Unscoped().Model(&models.CompanyDocument{}).
		Where("company_id = ? AND deleted_at IS NOT NULL", companyID).
		Update("deleted_at", nil).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Unscoped().Model(&models.CompanyScoreEntry{}).
		Where("company_id = ? AND deleted_at IS NOT NULL", companyID).
		Update("deleted_at", nil).Error
}

// EnsureBusinessArea creates a business-area tag, reviving a soft-deleted
// row with the same name instead of inserting a duplicate. An active row
// with the same name is a duplicate.
func (r *Repository) EnsureBusinessArea(ctx context.Context, name string) (*models.BusinessArea, error) {
	var area models.BusinessArea
	err := r.db.WithContext(ctx).Unscoped().First(&area, "name = ?", name).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		area = models.BusinessArea{ID: uuid.New(), Name: name}
		if err := r.Create(ctx, &area); err != nil {
			return nil, err
		}
		return &area, nil
	case err != nil:
		return nil, err
	}

	if !area.DeletedAt.Valid {
		return nil, e.ErrDuplicateName
	}
	if err := r.RestoreRow(ctx, models.EntityBusinessArea, area.ID); err != nil {
		return nil, err
	}
	area.DeletedAt = gorm.DeletedAt{}
	return &area, nil
}

// AttachBusinessArea tags a company with a business area, creating the tag
// or reviving a soft-deleted one as needed. A company carries at most
// MaxBusinessAreas tags.
func (r *Repository) AttachBusinessArea(ctx context.Context, companyID uuid.UUID, name string) (*models.BusinessArea, error) {
	company, err := r.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(company.BusinessAreas) >= models.MaxBusinessAreas {
		return nil, fmt.Errorf("%w: company %q already carries %d business areas",
			e.ErrInvalidState, company.Name, models.MaxBusinessAreas)
	}

	area, err := r.EnsureBusinessArea(ctx, name)
	if errors.Is(err, e.ErrDuplicateName) {
		// The tag already exists and is active; share it.
		var existing models.BusinessArea
		if err := r.db.WithContext(ctx).First(&existing, "name = ?", name).Error; err != nil {
			return nil, err
		}
		area = &existing
	} else if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(company).Association("BusinessAreas").Append(area); err != nil {
		return nil, err
	}
	return area, nil
}

// deletedProjection collects one table's soft-deleted rows into the merged
// listing shape. nameColumn is the display-name column of the table.
func (r *Repository) deletedProjection(ctx context.Context, t models.EntityType, model interface{}, nameColumn string, out *[]models.DeletedItem) error {
	var rows []models.DeletedItem
	err := r.db.WithContext(ctx).Unscoped().Model(model).
		Select("id, "+nameColumn+" AS name, deleted_at").
		Where("deleted_at IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].Type = t
	}
	*out = append(*out, rows...)
	return nil
}

// ListDeleted returns a merged, type-tagged projection of every
// soft-deleted row, most recently deleted first.
func (r *Repository) ListDeleted(ctx context.Context) ([]models.DeletedItem, error) {
	var items []models.DeletedItem

	tables := []struct {
		entityType models.EntityType
		model      interface{}
		nameColumn string
	}{
		{models.EntityCampus, &models.Campus{}, "name"},
		{models.EntityBlock, &models.Block{}, "name"},
		{models.EntityUnit, &models.Unit{}, "number"},
		{models.EntityCompany, &models.Company{}, "name"},
		{models.EntityDocument, &models.CompanyDocument{}, "name"},
		{models.EntityScoreEntry, &models.CompanyScoreEntry{}, "category"},
		{models.EntityBusinessArea, &models.BusinessArea{}, "name"},
	}
	for _, table := range tables {
		if err := r.deletedProjection(ctx, table.entityType, table.model, table.nameColumn, &items); err != nil {
			return nil, err
		}
	}

	// Leases have no name column; tag them with the owning company's name.
	var leaseRows []models.DeletedItem
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Lease{}).
		Select("leases.id, companies.name AS name, leases.deleted_at").
		Joins("JOIN companies ON companies.id = leases.company_id").
		Where("leases.deleted_at IS NOT NULL").
		Scan(&leaseRows).Error
	if err != nil {
		return nil, err
	}
	for i := range leaseRows {
		leaseRows[i].Type = models.EntityLease
	}
	items = append(items, leaseRows...)

	sort.Slice(items, func(i, j int) bool {
		return items[i].DeletedAt.After(items[j].DeletedAt)
	})
	return items, nil
}
