package usecase

import (
	"strings"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/core/ports"
)

// DocumentSelector filters manifest rows down to the documents worth
// processing. Order follows the source manifest; MaxResults truncates.
type DocumentSelector struct {
	source ports.ManifestSource
	now    func() time.Time
}

func NewDocumentSelector(source ports.ManifestSource) *DocumentSelector {
	return &DocumentSelector{source: source, now: time.Now}
}

func (s *DocumentSelector) Select(opts domain.IngestOptions) ([]domain.DocumentRecord, error) {
	rows, err := s.source.Rows(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	yearsBack := opts.YearsBack
	if yearsBack <= 0 {
		yearsBack = 1
	}
	cutoff := s.now().Add(-time.Duration(yearsBack) * 365 * 24 * time.Hour)

	var selected []domain.DocumentRecord
	for _, row := range rows {
		if !matches(row, opts, cutoff) {
			continue
		}
		selected = append(selected, row)
		if opts.MaxResults > 0 && len(selected) == opts.MaxResults {
			break
		}
	}
	return selected, nil
}

func matches(row domain.DocumentRecord, opts domain.IngestOptions, cutoff time.Time) bool {
	recentEnough := !row.DateStamped.Before(cutoff)
	if opts.TargetYear != 0 {
		recentEnough = recentEnough || row.DateStamped.Year() == opts.TargetYear
	}
	if !recentEnough {
		return false
	}

	if opts.AgentFilter != "" {
		if row.RegistrantName == "" {
			return false
		}
		if !strings.Contains(strings.ToLower(row.RegistrantName), strings.ToLower(opts.AgentFilter)) {
			return false
		}
	}

	if row.URL == "" || !domain.IsSubstantiveURL(row.URL) {
		return false
	}

	// Rows without principal metadata cannot anchor the fallback chain.
	return row.ForeignPrincipal != "" && row.Country != ""
}
