package usecase

import (
	"testing"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

type manifestFake struct {
	rows []domain.DocumentRecord
	err  error
}

func (f *manifestFake) Rows(string) ([]domain.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func baseRow(now time.Time) domain.DocumentRecord {
	return domain.DocumentRecord{
		DateStamped:      now.AddDate(0, -1, 0),
		RegistrantName:   "Acme LLP",
		RegistrationNum:  "7001",
		DocumentType:     "Exhibit-AB",
		ForeignPrincipal: "Province of Ontario",
		Country:          "CANADA",
		URL:              "https://efile.fara.gov/docs/7001-Exhibit-AB-1.pdf",
	}
}

func newSelector(rows ...domain.DocumentRecord) (*DocumentSelector, time.Time) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	selector := NewDocumentSelector(&manifestFake{rows: rows})
	selector.now = func() time.Time { return now }
	return selector, now
}

func TestSelectKeepsQualifyingRow(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	selector, _ := newSelector(baseRow(now))

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected 1 row, got %d", len(selected))
	}
}

func TestSelectExcludesInformationalMaterials(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	row := baseRow(now)
	row.URL = "https://efile.fara.gov/docs/7001-Informational-Materials-1.pdf"
	selector, _ := newSelector(row)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("informational materials row must be excluded, got %d rows", len(selected))
	}
}

func TestSelectRequiresPrincipalMetadata(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	noPrincipal := baseRow(now)
	noPrincipal.ForeignPrincipal = ""
	noCountry := baseRow(now)
	noCountry.Country = ""
	selector, _ := newSelector(noPrincipal, noCountry)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("rows without principal metadata must be excluded, got %d", len(selected))
	}
}

func TestSelectAgentFilterIsCaseInsensitiveSubstring(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	match := baseRow(now)
	other := baseRow(now)
	other.RegistrantName = "Globex Partners"
	unnamed := baseRow(now)
	unnamed.RegistrantName = ""
	selector, _ := newSelector(match, other, unnamed)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1, AgentFilter: "acme"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 || selected[0].RegistrantName != "Acme LLP" {
		t.Fatalf("expected only Acme LLP, got %+v", selected)
	}
}

func TestSelectRecencyWindowAndTargetYear(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := baseRow(now)
	old.DateStamped = now.AddDate(-3, 0, 0)
	recent := baseRow(now)
	selector, _ := newSelector(old, recent)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected old row filtered by window, got %d", len(selected))
	}

	selected, err = selector.Select(domain.IngestOptions{YearsBack: 1, TargetYear: 2023})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("target year must re-admit the old row, got %d", len(selected))
	}
}

func TestSelectTruncatesToLimitInSourceOrder(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	first := baseRow(now)
	second := baseRow(now)
	second.RegistrantName = "Second Agent"
	third := baseRow(now)
	third.RegistrantName = "Third Agent"
	selector, _ := newSelector(first, second, third)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1, MaxResults: 2})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(selected))
	}
	if selected[0].RegistrantName != "Acme LLP" || selected[1].RegistrantName != "Second Agent" {
		t.Fatalf("expected source order preserved, got %+v", selected)
	}
}

func TestSelectRequiresURL(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	row := baseRow(now)
	row.URL = ""
	selector, _ := newSelector(row)

	selected, err := selector.Select(domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("row without url must be excluded")
	}
}
