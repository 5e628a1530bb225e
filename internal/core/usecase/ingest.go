package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/core/ports"
)

const (
	outcomeExtracted = "extracted"
	outcomeFallback  = "fallback"
)

// PipelineService runs one ingestion batch: select documents, process
// them sequentially, group results by agent, and upsert registrations.
// Only a manifest failure aborts the run; everything per-document
// degrades and the batch continues.
type PipelineService struct {
	selector   *DocumentSelector
	fetcher    ports.DocumentFetcher
	texts      ports.TextExtractor
	extraction *ExtractionService
	repo       ports.RegistrationRepository
	observer   PipelineObserver
	logger     *slog.Logger
}

func NewPipelineService(
	selector *DocumentSelector,
	fetcher ports.DocumentFetcher,
	texts ports.TextExtractor,
	extraction *ExtractionService,
	repo ports.RegistrationRepository,
	observer PipelineObserver,
	logger *slog.Logger,
) *PipelineService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &PipelineService{
		selector:   selector,
		fetcher:    fetcher,
		texts:      texts,
		extraction: extraction,
		repo:       repo,
		observer:   observer,
		logger:     logger,
	}
}

func (s *PipelineService) Run(ctx context.Context, opts domain.IngestOptions) (domain.IngestSummary, error) {
	var summary domain.IngestSummary

	docs, err := s.selector.Select(opts)
	if err != nil {
		return summary, err
	}
	s.logger.Info("documents selected", "count", len(docs))

	var results []domain.ExtractionResult
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		start := time.Now()
		result, outcome := s.processDocument(ctx, doc)
		s.observer.ObserveDocument(outcome, time.Since(start))
		if outcome == outcomeFallback {
			summary.Fallbacks++
		}
		s.logger.Info("document processed",
			"url", doc.URL,
			"agent", result.AgentName,
			"outcome", outcome,
			"total_compensation", result.TotalCompensation,
		)
		results = append(results, result)
		summary.Processed++
	}

	for _, reg := range aggregateByAgent(results) {
		if err := reg.Validate(); err != nil {
			s.logger.Warn("registration skipped", "agent", reg.AgentName, "error", err)
			s.observer.ObserveSkipped("validation")
			summary.Failed++
			continue
		}
		created, err := s.repo.Upsert(ctx, reg)
		if err != nil {
			s.logger.Warn("registration upsert failed", "agent", reg.AgentName, "error", err)
			s.observer.ObserveSkipped("store_error")
			summary.Failed++
			continue
		}
		s.observer.ObserveStored(created)
		summary.Stored++
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	s.logger.Info("run complete",
		"processed", summary.Processed,
		"stored", summary.Stored,
		"failed", summary.Failed,
		"fallbacks", summary.Fallbacks,
	)
	return summary, nil
}

// processDocument never returns an error: any failure on the way to the
// model collapses into the metadata fallback result.
func (s *PipelineService) processDocument(ctx context.Context, doc domain.DocumentRecord) (domain.ExtractionResult, string) {
	text := ""
	localPath, err := s.fetcher.Fetch(ctx, doc)
	if err != nil {
		s.observer.ObserveDownload("error")
		s.logger.Warn("document fetch failed", "url", doc.URL, "error", err)
	} else {
		s.observer.ObserveDownload("ok")
		extracted, extractErr := s.texts.Extract(ctx, localPath)
		if extractErr != nil {
			s.logger.Warn("text extraction failed", "path", localPath, "error", extractErr)
		} else {
			text = extracted
		}
	}

	result, fellBack := s.extraction.ExtractFacts(ctx, text, doc)
	if fellBack {
		return result, outcomeFallback
	}
	return result, outcomeExtracted
}
