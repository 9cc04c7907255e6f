package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FloorCapacityMap maps a floor number to its unit capacity. Stored as a
// JSON text column.
type FloorCapacityMap map[int]int

// Value implements driver.Valuer.
func (m FloorCapacityMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *FloorCapacityMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

// ContractTerms holds draft lease terms attached to a company while it is
// pending unit allocation. Surfaced to callers as a synthetic lease with
// identifier "PENDING".
type ContractTerms struct {
	MonthlyRent  float64    `json:"monthlyRent"`
	OperatingFee float64    `json:"operatingFee"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// Value implements driver.Valuer.
func (t ContractTerms) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *ContractTerms) Scan(src interface{}) error {
	return scanJSON(src, t)
}

// JSONMap is a generic JSON object column, used for audit rollback and
// impact payloads.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	return scanJSON(src, m)
}

func scanJSON(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
