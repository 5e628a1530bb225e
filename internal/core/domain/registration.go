package domain

import (
	"strings"
	"time"
)

type RegistrationStatus string

const (
	StatusActive     RegistrationStatus = "active"
	StatusInactive   RegistrationStatus = "inactive"
	StatusTerminated RegistrationStatus = "terminated"
)

// Registration is the persisted unit of storage. The business identity is
// (AgentName, ForeignPrincipal); ID is a surrogate. Re-ingesting the same
// pair merges into the existing row.
type Registration struct {
	ID                  string             `json:"id"`
	AgentName           string             `json:"agent_name"`
	AgentAddress        string             `json:"agent_address,omitempty"`
	ForeignPrincipal    string             `json:"foreign_principal"`
	Country             string             `json:"country"`
	RegistrationDate    time.Time          `json:"registration_date"`
	TotalCompensation   float64            `json:"total_compensation"`
	LatestPeriodStart   time.Time          `json:"latest_period_start"`
	LatestPeriodEnd     time.Time          `json:"latest_period_end"`
	ServicesDescription string             `json:"services_description,omitempty"`
	Status              RegistrationStatus `json:"status"`
	DocumentURLs        []string           `json:"document_urls"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Validate enforces store-level required fields. A failing registration is
// skipped and counted, never aborting the batch.
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.AgentName) == "" {
		return WrapError(ErrInvalidRecord, "validate registration", errMissingField("agent_name"))
	}
	if strings.TrimSpace(r.ForeignPrincipal) == "" {
		return WrapError(ErrInvalidRecord, "validate registration", errMissingField("foreign_principal"))
	}
	if r.TotalCompensation < 0 {
		return WrapError(ErrInvalidRecord, "validate registration", errNegativeCompensation)
	}
	switch r.Status {
	case StatusActive, StatusInactive, StatusTerminated:
	default:
		return WrapError(ErrInvalidRecord, "validate registration", errBadStatus(string(r.Status)))
	}
	return nil
}

// CountrySummary is a derived read-model row, recomputed on every read
// from active registrations.
type CountrySummary struct {
	Country       string    `json:"country"`
	AgentCount    int       `json:"agent_count"`
	TotalSpending float64   `json:"total_spending"`
	LastUpdated   time.Time `json:"last_updated"`
}
