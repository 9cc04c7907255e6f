// Package models contains the persisted domain models for the leasing
// service, configured to work using GORM as the ORM. Every soft-deletable
// entity carries a gorm.DeletedAt column; rows are never physically removed.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityType identifies a soft-deletable entity kind across the lifecycle,
// audit and event layers.
type EntityType string

const (
	EntityCampus       EntityType = "campus"
	EntityBlock        EntityType = "block"
	EntityUnit         EntityType = "unit"
	EntityCompany      EntityType = "company"
	EntityLease        EntityType = "lease"
	EntityDocument     EntityType = "document"
	EntityScoreEntry   EntityType = "score_entry"
	EntityBusinessArea EntityType = "business_area"
)

// UnitStatus represents the occupancy state of a unit.
type UnitStatus string

const (
	UnitVacant   UnitStatus = "VACANT"
	UnitReserved UnitStatus = "RESERVED"
	UnitOccupied UnitStatus = "OCCUPIED"
)

// MaxBusinessAreas caps the number of business-area tags per company.
const MaxBusinessAreas = 10

// Campus represents a campus owning zero or more blocks.
type Campus struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"size:120;uniqueIndex"`
	Address          string    `gorm:"size:500"`
	MaxBlocks        int       `gorm:"check:max_blocks >= 0"`
	MaxUnitsPerBlock int       `gorm:"check:max_units_per_block >= 0"`
	Blocks           []Block   `gorm:"foreignKey:CampusID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// Block represents a building inside a campus. An active Block implies an
// active Campus.
type Block struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CampusID        uuid.UUID        `gorm:"type:uuid;index"`
	Name            string           `gorm:"size:120"`
	FloorCapacities FloorCapacityMap `gorm:"type:text"`
	Units           []Unit           `gorm:"foreignKey:BlockID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// Unit represents a floor-scoped leasable unit inside a block.
// CompanyID is set only while Status is not VACANT.
type Unit struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BlockID    uuid.UUID  `gorm:"type:uuid;index"`
	Number     string     `gorm:"size:20"`
	Floor      int
	AreaSqm    float64    `gorm:"check:area_sqm > 0"`
	Status     UnitStatus `gorm:"size:10;default:VACANT"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index"`
	ReservedBy *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// Company represents a tenant company. Documents, score entries and leases
// are owned rows that cascade with the company on termination and restore.
type Company struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name               string    `gorm:"size:200;uniqueIndex"`
	RegistrationNumber string    `gorm:"size:40"`
	Sector             string    `gorm:"size:100"`
	ManagerName        string    `gorm:"size:120"`
	ManagerEmail       string    `gorm:"size:200"`
	ManagerPhone       string    `gorm:"size:40"`
	Employees          int       `gorm:"check:employees >= 0"`
	Score              float64
	DraftContract      *ContractTerms      `gorm:"type:text"`
	BusinessAreas      []BusinessArea      `gorm:"many2many:company_business_areas"`
	Documents          []CompanyDocument   `gorm:"foreignKey:CompanyID"`
	ScoreEntries       []CompanyScoreEntry `gorm:"foreignKey:CompanyID"`
	Leases             []Lease             `gorm:"foreignKey:CompanyID"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// Lease represents contract terms binding a company to a unit. At most one
// lease per company is active at a time.
type Lease struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;index"`
	UnitID       *uuid.UUID `gorm:"type:uuid;index"`
	Unit         *Unit      `gorm:"foreignKey:UnitID"`
	StartDate    time.Time
	EndDate      time.Time
	MonthlyRent  float64         `gorm:"check:monthly_rent >= 0"`
	OperatingFee float64         `gorm:"check:operating_fee >= 0"`
	Documents    []LeaseDocument `gorm:"foreignKey:LeaseID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// LeaseDocument is an ordered attachment on a lease, unique by name within
// the lease. It has no independent lifecycle; it rides along with its lease.
type LeaseDocument struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaseID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_lease_doc_name"`
	Name     string    `gorm:"size:200;uniqueIndex:idx_lease_doc_name"`
	Position int
}

// CompanyDocument is a document owned by a company, always cascaded with it.
type CompanyDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index"`
	Name        string    `gorm:"size:200"`
	ContentType string    `gorm:"size:100"`
	StoragePath string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// CompanyScoreEntry is one scoring record owned by a company, always
// cascaded with it.
type CompanyScoreEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index"`
	Category  string    `gorm:"size:100"`
	Points    float64
	Note      string    `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BusinessArea is a unique tag attachable to companies. Re-creating a
// soft-deleted name revives the existing row instead of inserting a
// duplicate.
type BusinessArea struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:100;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// DeletedItem is the type-tagged projection returned by the merged
// deleted-items listing.
type DeletedItem struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Type      EntityType `json:"type"`
	DeletedAt time.Time  `json:"deletedAt"`
}

// All returns one zero value per persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Campus{},
		&Block{},
		&Unit{},
		&Company{},
		&Lease{},
		&LeaseDocument{},
		&CompanyDocument{},
		&CompanyScoreEntry{},
		&BusinessArea{},
		&AuditLogEntry{},
	}
}
