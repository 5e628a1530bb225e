package domain

import "time"

// CompensationEntry is one itemized payment term recovered from a filing.
type CompensationEntry struct {
	Amount      float64 `json:"amount"`
	Period      string  `json:"period"`
	Description string  `json:"description,omitempty"`
}

// ExtractionResult holds the structured facts for one processed document.
// TotalCompensation is always present and non-negative; every failure path
// substitutes a deterministic fallback.
type ExtractionResult struct {
	AgentName           string
	AgentAddress        string
	ForeignPrincipal    string
	Country             string
	CompensationEntries []CompensationEntry
	TotalCompensation   float64
	ServicesDescription string
	RegistrationDate    time.Time
	LatestPeriodStart   time.Time
	LatestPeriodEnd     time.Time
	Status              RegistrationStatus
	DocumentURL         string
}

// RawFacts is the untyped model response. Fields are pulled out one by one
// with per-field fallbacks instead of unmarshaling into ExtractionResult
// directly, so a single malformed field never discards the whole record.
type RawFacts map[string]any

func (r RawFacts) String(key string) string {
	if r == nil {
		return ""
	}
	v, _ := r[key].(string)
	return v
}

func (r RawFacts) Entries(key string) []CompensationEntry {
	if r == nil {
		return nil
	}
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	entries := make([]CompensationEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := CompensationEntry{
			Amount:      CoerceMoney(m["amount"]),
			Description: stringOf(m["description"]),
		}
		entry.Period = stringOf(m["period"])
		entries = append(entries, entry)
	}
	return entries
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
