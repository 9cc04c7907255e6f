package controller

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/db"
	"github.com/novapark/officelease/internal/lease/models"
)

// cascadeRule declares how one entity type participates in cascade restore:
// resolveParent locates its ancestor for cascade-up, reviveChildren clears
// deletion timestamps on its owned rows for cascade-down. A single walk
// over these rules replaces per-type restore handlers.
type cascadeRule struct {
	resolveParent  func(ctx context.Context, repo *db.Repository, id uuid.UUID) (models.EntityType, uuid.UUID, error)
	reviveChildren func(ctx context.Context, repo *db.Repository, id uuid.UUID) error
}

var cascadeRules = map[models.EntityType]cascadeRule{
	models.EntityCampus: {},
	models.EntityBlock: {
		resolveParent: func(ctx context.Context, repo *db.Repository, id uuid.UUID) (models.EntityType, uuid.UUID, error) {
			block, err := repo.LookupBlock(ctx, id)
			if err != nil {
				return "", uuid.Nil, err
			}
			return models.EntityCampus, block.CampusID, nil
		},
	},
	models.EntityUnit: {
		resolveParent: func(ctx context.Context, repo *db.Repository, id uuid.UUID) (models.EntityType, uuid.UUID, error) {
			unit, err := repo.LookupUnit(ctx, id)
			if err != nil {
				return "", uuid.Nil, err
			}
			return models.EntityBlock, unit.BlockID, nil
		},
	},
	models.EntityCompany: {
		reviveChildren: func(ctx context.Context, repo *db.Repository, id uuid.UUID) error {
			return repo.RestoreCompanyDependents(ctx, id)
		},
	},
}

// isDeleted reports whether the row of the given type is currently
// soft-deleted.
func isDeleted(ctx context.Context, repo *db.Repository, t models.EntityType, id uuid.UUID) (bool, error) {
	switch t {
	case models.EntityCampus:
		row, err := repo.LookupCampus(ctx, id)
		if err != nil {
			return false, err
		}
		return row.DeletedAt.Valid, nil
	case models.EntityBlock:
		row, err := repo.LookupBlock(ctx, id)
		if err != nil {
			return false, err
		}
		return row.DeletedAt.Valid, nil
	case models.EntityUnit:
		row, err := repo.LookupUnit(ctx, id)
		if err != nil {
			return false, err
		}
		return row.DeletedAt.Valid, nil
	case models.EntityCompany:
		row, err := repo.LookupCompany(ctx, id)
		if err != nil {
			return false, err
		}
		return row.DeletedAt.Valid, nil
	default:
		return false, fmt.Errorf("no cascade rule for entity type %q", t)
	}
}

// restoreWithAncestors clears the deletion timestamp on the target row and
// on every soft-deleted ancestor above it, topmost ancestor first, so that
// an active child never points at an inactive parent. Revived ancestors and
// the target have their owned rows cascaded down as well.
func restoreWithAncestors(ctx context.Context, repo *db.Repository, t models.EntityType, id uuid.UUID) error {
	rule, ok := cascadeRules[t]
	if !ok {
		return fmt.Errorf("no cascade rule for entity type %q", t)
	}

	if rule.resolveParent != nil {
		parentType, parentID, err := rule.resolveParent(ctx, repo, id)
		if err != nil {
			return err
		}
		deleted, err := isDeleted(ctx, repo, parentType, parentID)
		if err != nil {
			return err
		}
		if deleted {
			if err := restoreWithAncestors(ctx, repo, parentType, parentID); err != nil {
				return err
			}
		}
	}

	if err := repo.RestoreRow(ctx, t, id); err != nil {
		return err
	}
	if rule.reviveChildren != nil {
		return rule.reviveChildren(ctx, repo, id)
	}
	return nil
}
