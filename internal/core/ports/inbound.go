package ports

import (
	"context"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

// PipelineRunner is the inbound contract for one ingestion batch.
type PipelineRunner interface {
	Run(ctx context.Context, opts domain.IngestOptions) (domain.IngestSummary, error)
}

// SummaryReader is the inbound read model consumed by the dashboard and
// the CLI summary/export commands.
type SummaryReader interface {
	CountrySummaries(ctx context.Context) ([]domain.CountrySummary, error)
}
