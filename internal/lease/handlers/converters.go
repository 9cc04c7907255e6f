package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/novapark/officelease/internal/lease/audit"
	"github.com/novapark/officelease/internal/lease/models"
	"github.com/novapark/officelease/internal/pkg/utils"
)

// PendingLeaseID is the synthetic lease identifier presented for a company
// that holds draft contract terms while its unit allocation is pending.
const PendingLeaseID = "PENDING"

// CampusResponse is the public shape of a campus.
type CampusResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	MaxBlocks        int       `json:"maxBlocks"`
	MaxUnitsPerBlock int       `json:"maxUnitsPerBlock"`
}

// BlockResponse is the public shape of a block.
type BlockResponse struct {
	ID              uuid.UUID               `json:"id"`
	CampusID        uuid.UUID               `json:"campusId"`
	Name            string                  `json:"name"`
	FloorCapacities models.FloorCapacityMap `json:"floorCapacities,omitempty"`
}

// UnitResponse is the public shape of a unit.
type UnitResponse struct {
	ID         uuid.UUID         `json:"id"`
	BlockID    uuid.UUID         `json:"blockId"`
	Number     string            `json:"number"`
	Floor      int               `json:"floor"`
	AreaSqm    float64           `json:"areaSqm"`
	Status     models.UnitStatus `json:"status"`
	CompanyID  *uuid.UUID        `json:"companyId,omitempty"`
	ReservedBy *uuid.UUID        `json:"reservedBy,omitempty"`
}

// LeaseDocumentResponse is one named attachment on a lease.
type LeaseDocumentResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LeaseResponse is the public shape of a lease. ID is "PENDING" for the
// synthetic lease built from a company's draft contract terms.
type LeaseResponse struct {
	ID              string                  `json:"id"`
	CompanyID       uuid.UUID               `json:"companyId"`
	UnitID          *uuid.UUID              `json:"unitId,omitempty"`
	StartDate       *time.Time              `json:"startDate,omitempty"`
	EndDate         *time.Time              `json:"endDate,omitempty"`
	MonthlyRent     float64                 `json:"monthlyRent"`
	OperatingFee    float64                 `json:"operatingFee"`
	UnitPricePerSqm float64                 `json:"unitPricePerSqm,omitempty"`
	Documents       []LeaseDocumentResponse `json:"documents,omitempty"`
}

// CompanyResponse is the public shape of a company.
type CompanyResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	RegistrationNumber string         `json:"registrationNumber"`
	Sector             string         `json:"sector"`
	BusinessAreas      []string       `json:"businessAreas"`
	ManagerName        string         `json:"managerName"`
	ManagerEmail       string         `json:"managerEmail"`
	ManagerPhone       string         `json:"managerPhone"`
	Employees          int            `json:"employees"`
	Score              float64        `json:"score"`
	Lease              *LeaseResponse `json:"lease,omitempty"`
}

// AuditEntryResponse is the public shape of one audit record.
type AuditEntryResponse struct {
	ID         uint               `json:"id"`
	TraceID    string             `json:"traceId"`
	Timestamp  time.Time          `json:"timestamp"`
	EntityType models.EntityType  `json:"entityType"`
	Action     models.AuditAction `json:"action"`
	Details    string             `json:"details"`
	Username   string             `json:"username"`
	Role       string             `json:"role"`
}

// AuditPageResponse is the paginated audit listing envelope.
type AuditPageResponse struct {
	Data       []AuditEntryResponse `json:"data"`
	Pagination audit.Pagination     `json:"pagination"`
}

func campusToResponse(campus *models.Campus) *CampusResponse {
	return &CampusResponse{
		ID:               campus.ID,
		Name:             campus.Name,
		Address:          campus.Address,
		MaxBlocks:        campus.MaxBlocks,
		MaxUnitsPerBlock: campus.MaxUnitsPerBlock,
	}
}

func blockToResponse(block *models.Block) *BlockResponse {
	return &BlockResponse{
		ID:              block.ID,
		CampusID:        block.CampusID,
		Name:            block.Name,
		FloorCapacities: block.FloorCapacities,
	}
}

func unitToResponse(unit *models.Unit) *UnitResponse {
	return &UnitResponse{
		ID:         unit.ID,
		BlockID:    unit.BlockID,
		Number:     unit.Number,
		Floor:      unit.Floor,
		AreaSqm:    unit.AreaSqm,
		Status:     unit.Status,
		CompanyID:  unit.CompanyID,
		ReservedBy: unit.ReservedBy,
	}
}

// leaseToResponse maps a stored lease, deriving the price per square meter
// from the linked unit when it is loaded.
func leaseToResponse(lease *models.Lease) *LeaseResponse {
	resp := &LeaseResponse{
		ID:           lease.ID.String(),
		CompanyID:    lease.CompanyID,
		UnitID:       lease.UnitID,
		StartDate:    utils.Ptr(lease.StartDate),
		EndDate:      utils.Ptr(lease.EndDate),
		MonthlyRent:  lease.MonthlyRent,
		OperatingFee: lease.OperatingFee,
	}
	if lease.Unit != nil && lease.Unit.AreaSqm > 0 {
		resp.UnitPricePerSqm = lease.MonthlyRent / lease.Unit.AreaSqm
	}
	for _, doc := range lease.Documents {
		resp.Documents = append(resp.Documents, LeaseDocumentResponse{ID: doc.ID, Name: doc.Name})
	}
	return resp
}

// companyToResponse maps a company. When the company has no active lease
// but carries draft contract terms, a synthetic lease with identifier
// PENDING is attached so callers see the pending terms.
func companyToResponse(company *models.Company, lease *models.Lease) *CompanyResponse {
	areas := make([]string, 0, len(company.BusinessAreas))
	for _, area := range company.BusinessAreas {
		areas = append(areas, area.Name)
	}

	resp := &CompanyResponse{
		ID:                 company.ID,
		Name:               company.Name,
		RegistrationNumber: company.RegistrationNumber,
		Sector:             company.Sector,
		BusinessAreas:      areas,
		ManagerName:        company.ManagerName,
		ManagerEmail:       company.ManagerEmail,
		ManagerPhone:       company.ManagerPhone,
		Employees:          company.Employees,
		Score:              company.Score,
	}

	switch {
	case lease != nil:
		resp.Lease = leaseToResponse(lease)
	case company.DraftContract != nil:
		resp.Lease = &LeaseResponse{
			ID:           PendingLeaseID,
			CompanyID:    company.ID,
			StartDate:    company.DraftContract.StartDate,
			EndDate:      company.DraftContract.EndDate,
			MonthlyRent:  company.DraftContract.MonthlyRent,
			OperatingFee: company.DraftContract.OperatingFee,
		}
	}
	return resp
}

func auditPageToResponse(entries []models.AuditLogEntry, pagination audit.Pagination) *AuditPageResponse {
	data := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, AuditEntryResponse{
			ID:         entry.ID,
			TraceID:    entry.TraceID,
			Timestamp:  entry.Timestamp,
			EntityType: entry.EntityType,
			Action:     entry.Action,
			Details:    entry.Details,
			Username:   entry.Username,
			Role:       entry.Role,
		})
	}
	return &AuditPageResponse{Data: data, Pagination: pagination}
}
