package domain

import "testing"

func TestIsSubstantiveURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"exhibit", "https://efile.fara.gov/docs/1234-Exhibit-AB-20240101.pdf", true},
		{"supplemental", "https://efile.fara.gov/docs/1234-Supplemental-Statement-20240101.pdf", true},
		{"informational excluded", "https://efile.fara.gov/docs/1234-Informational-Materials-20240101.pdf", false},
		{"dissemination excluded", "https://efile.fara.gov/docs/1234-Dissemination-20240101.pdf", false},
		{"conflict excluded", "https://efile.fara.gov/docs/1234-Conflict-20240101.pdf", false},
		{"unknown token included", "https://efile.fara.gov/docs/1234-Registration-Fee-Notice.pdf", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSubstantiveURL(tc.url); got != tc.want {
				t.Fatalf("IsSubstantiveURL(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestDocumentTypeFromURL(t *testing.T) {
	url := "https://efile.fara.gov/docs/1234-Exhibit-AB-20240101.pdf"
	if got := DocumentTypeFromURL(url); got != "Exhibit-AB" {
		t.Fatalf("DocumentTypeFromURL() = %q, want Exhibit-AB", got)
	}
	if got := DocumentTypeFromURL("https://example.com/other.pdf"); got != "" {
		t.Fatalf("expected empty type for unknown url, got %q", got)
	}
}

func TestFallbackServicePhrase(t *testing.T) {
	if got := FallbackServicePhrase("Exhibit-AB"); got == "" {
		t.Fatalf("expected phrase for known type")
	}
	got := FallbackServicePhrase("Something-Else")
	if got != "Foreign agent registration filing" {
		t.Fatalf("expected default phrase, got %q", got)
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{AgentName: "Acme LLP", ForeignPrincipal: "Province of Ontario", Status: StatusActive}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid registration, got %v", err)
	}

	missingAgent := Registration{ForeignPrincipal: "X", Status: StatusActive}
	if err := missingAgent.Validate(); !IsKind(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for missing agent, got %v", err)
	}

	negative := Registration{AgentName: "A", ForeignPrincipal: "B", Status: StatusActive, TotalCompensation: -1}
	if err := negative.Validate(); !IsKind(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for negative compensation, got %v", err)
	}

	badStatus := Registration{AgentName: "A", ForeignPrincipal: "B", Status: "archived"}
	if err := badStatus.Validate(); !IsKind(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for unknown status, got %v", err)
	}
}

func TestRawFactsEntries(t *testing.T) {
	facts := RawFacts{
		"compensation_entries": []any{
			map[string]any{"amount": "$50,000", "period": "monthly", "description": "retainer"},
			map[string]any{"amount": 1000.0, "period": "annual"},
			"not an object",
		},
	}
	entries := facts.Entries("compensation_entries")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Amount != 50000 || entries[0].Period != "monthly" || entries[0].Description != "retainer" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Amount != 1000 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}
