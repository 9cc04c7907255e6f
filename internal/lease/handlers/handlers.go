package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/audit"
	"github.com/novapark/officelease/internal/lease/auth"
	e "github.com/novapark/officelease/internal/lease/errors"
	"github.com/novapark/officelease/internal/lease/models"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// LifecycleController defines the lifecycle operations the gateway invokes.
type LifecycleController interface {
	SoftDelete(ctx context.Context, t models.EntityType, id uuid.UUID, actor auth.Actor) error
	RestoreCampus(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Campus, error)
	RestoreBlock(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Block, error)
	RestoreUnit(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Unit, error)
	RestoreCompany(ctx context.Context, id uuid.UUID, actor auth.Actor) (*models.Company, error)
	RestoreLease(ctx context.Context, companyID uuid.UUID, actor auth.Actor) (*models.Lease, error)
	ListDeleted(ctx context.Context) ([]models.DeletedItem, error)
}

// TerminationController defines the atomic termination operation.
type TerminationController interface {
	Terminate(ctx context.Context, companyID uuid.UUID, actor auth.Actor) error
}

// AuditBrowser pages through the audit trail.
type AuditBrowser interface {
	List(ctx context.Context, page, limit int) ([]models.AuditLogEntry, audit.Pagination, error)
}

// GatewayHandler maps HTTP requests onto the lifecycle, termination and
// audit services.
type GatewayHandler struct {
	lifecycle   LifecycleController
	termination TerminationController
	auditLog    AuditBrowser
	logger      *zap.Logger
}

func NewGatewayHandler(lifecycle LifecycleController, termination TerminationController, auditLog AuditBrowser, logger *zap.Logger) *GatewayHandler {
	return &GatewayHandler{
		lifecycle:   lifecycle,
		termination: termination,
		auditLog:    auditLog,
		logger:      logger.Named("gateway_handler"),
	}
}

// RestoreCampus handles POST /v1/restore/campuses/{id}.
func (h *GatewayHandler) RestoreCampus(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	campus, err := h.lifecycle.RestoreCampus(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campusToResponse(campus))
}

// RestoreBlock handles POST /v1/restore/blocks/{id}.
func (h *GatewayHandler) RestoreBlock(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	block, err := h.lifecycle.RestoreBlock(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, blockToResponse(block))
}

// RestoreUnit handles POST /v1/restore/units/{id}.
func (h *GatewayHandler) RestoreUnit(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	unit, err := h.lifecycle.RestoreUnit(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, unitToResponse(unit))
}

// RestoreCompany handles POST /v1/restore/companies/{id}.
func (h *GatewayHandler) RestoreCompany(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	company, err := h.lifecycle.RestoreCompany(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, companyToResponse(company, nil))
}

// RestoreLease handles POST /v1/restore/companies/{id}/lease. The id is the
// company id; the most recently deleted lease is the one revived.
func (h *GatewayHandler) RestoreLease(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	lease, err := h.lifecycle.RestoreLease(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, leaseToResponse(lease))
}

// ListDeleted handles GET /v1/deleted.
func (h *GatewayHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	items, err := h.lifecycle.ListDeleted(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if items == nil {
		items = []models.DeletedItem{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// SoftDeleteEntity handles DELETE /v1/entities/{type}/{id}.
func (h *GatewayHandler) SoftDeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityType, err := parseEntityType(chi.URLParam(r, "type"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	if err := h.lifecycle.SoftDelete(r.Context(), entityType, id, actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TerminateCompany handles DELETE /v1/companies/{id}/termination.
func (h *GatewayHandler) TerminateCompany(w http.ResponseWriter, r *http.Request) {
	id, actor, ok := h.idAndActor(w, r)
	if !ok {
		return
	}
	if err := h.termination.Terminate(r.Context(), id, actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAudit handles GET /v1/audit?page=&limit=.
func (h *GatewayHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	entries, pagination, err := h.auditLog.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, auditPageToResponse(entries, pagination))
}

// idAndActor extracts the id path parameter and the authenticated actor,
// writing the error response itself when either is missing.
func (h *GatewayHandler) idAndActor(w http.ResponseWriter, r *http.Request) (uuid.UUID, auth.Actor, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid id", e.ErrInvalidInput))
		return uuid.Nil, auth.Actor{}, false
	}
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return uuid.Nil, auth.Actor{}, false
	}
	return id, actor, true
}

func parseEntityType(raw string) (models.EntityType, error) {
	t := models.EntityType(raw)
	switch t {
	case models.EntityCampus, models.EntityBlock, models.EntityUnit,
		models.EntityCompany, models.EntityLease, models.EntityDocument,
		models.EntityScoreEntry, models.EntityBusinessArea:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown entity type %q", e.ErrInvalidInput, raw)
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (h *GatewayHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to HTTP status codes.
func (h *GatewayHandler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, e.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, e.ErrInvalidState), errors.Is(err, e.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		status = http.StatusInternalServerError
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
