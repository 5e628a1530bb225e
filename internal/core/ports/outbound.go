package ports

import (
	"context"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

// ManifestSource parses the filing manifest into typed rows. A missing or
// unreadable manifest is the one fatal error of a pipeline run.
type ManifestSource interface {
	Rows(manifestPath string) ([]domain.DocumentRecord, error)
}

// DocumentFetcher downloads a filing to the local cache and returns the
// local path. Fetching is rate limited across the whole run and skipped
// when the cached file already exists.
type DocumentFetcher interface {
	Fetch(ctx context.Context, doc domain.DocumentRecord) (string, error)
}

// TextExtractor produces best-effort plain text from a local PDF.
type TextExtractor interface {
	Extract(ctx context.Context, pdfPath string) (string, error)
}

// FactExtractor asks the model for structured facts about one filing.
// The response is an untyped document; field mapping and fallbacks happen
// in the usecase layer.
type FactExtractor interface {
	Extract(ctx context.Context, text string, doc domain.DocumentRecord) (domain.RawFacts, error)
}

// RegistrationRepository persists registrations keyed by
// (agent_name, foreign_principal) and serves the country read model.
type RegistrationRepository interface {
	Upsert(ctx context.Context, reg *domain.Registration) (created bool, err error)
	GetByIdentity(ctx context.Context, agentName, foreignPrincipal string) (*domain.Registration, error)
	CountrySummaries(ctx context.Context) ([]domain.CountrySummary, error)
}
