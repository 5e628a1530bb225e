package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/core/ports"
)

// minTextBytes is the threshold under which extracted text is not worth a
// model call and the result comes straight from manifest metadata.
const minTextBytes = 200

const (
	fallbackTextTooShort = "text_too_short"
	fallbackModelError   = "model_error"
	fallbackParseError   = "parse_error"
)

// ExtractionService turns document text into an ExtractionResult. It
// never fails the caller: every failure path degrades to a result built
// from manifest metadata with zero compensation.
type ExtractionService struct {
	facts    ports.FactExtractor
	observer PipelineObserver
	logger   *slog.Logger
}

func NewExtractionService(facts ports.FactExtractor, observer PipelineObserver, logger *slog.Logger) *ExtractionService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ExtractionService{facts: facts, observer: observer, logger: logger}
}

// ExtractFacts reports fellBack=true when the result came from manifest
// metadata rather than the model.
func (s *ExtractionService) ExtractFacts(ctx context.Context, text string, doc domain.DocumentRecord) (result domain.ExtractionResult, fellBack bool) {
	if len(text) < minTextBytes {
		return s.fallback(doc, fallbackTextTooShort), true
	}

	facts, err := s.facts.Extract(ctx, text, doc)
	if err != nil {
		reason := fallbackParseError
		if domain.IsKind(err, domain.ErrTemporary) {
			reason = fallbackModelError
		}
		s.logger.Warn("model extraction failed, using metadata fallback",
			"url", doc.URL, "reason", reason, "error", err)
		return s.fallback(doc, reason), true
	}

	return s.mapFacts(facts, doc), false
}

// mapFacts applies the field-level fallback chain over the untyped model
// response: model value, then manifest metadata, then a literal unknown.
func (s *ExtractionService) mapFacts(facts domain.RawFacts, doc domain.DocumentRecord) domain.ExtractionResult {
	entries := facts.Entries("compensation_entries")
	total, unrecognized := domain.NormalizeCompensation(entries, domain.CoerceMoney(facts["total_compensation"]))
	s.observer.ObserveUnrecognizedPeriods(unrecognized)
	if unrecognized > 0 {
		s.logger.Debug("unrecognized compensation periods contributed zero",
			"url", doc.URL, "count", unrecognized)
	}

	return domain.ExtractionResult{
		AgentName:           firstNonEmpty(facts.String("agent_name"), doc.RegistrantName, "Unknown Agent"),
		AgentAddress:        facts.String("agent_address"),
		ForeignPrincipal:    firstNonEmpty(facts.String("foreign_principal"), doc.ForeignPrincipal, "Unknown Principal"),
		Country:             firstNonEmpty(facts.String("country"), doc.Country, "Unknown"),
		CompensationEntries: entries,
		TotalCompensation:   total,
		ServicesDescription: facts.String("services_description"),
		RegistrationDate:    parseISODate(facts.String("registration_date"), doc.DateStamped),
		LatestPeriodStart:   parseISODate(facts.String("latest_period_start"), doc.DateStamped.AddDate(0, 0, -90)),
		LatestPeriodEnd:     parseISODate(facts.String("latest_period_end"), doc.DateStamped),
		Status:              domain.StatusActive,
		DocumentURL:         doc.URL,
	}
}

// fallback builds the terminal metadata-only result: compensation zero,
// services from the static per-document-type phrase table.
func (s *ExtractionService) fallback(doc domain.DocumentRecord, reason string) domain.ExtractionResult {
	s.observer.ObserveFallback(reason)
	return domain.ExtractionResult{
		AgentName:           firstNonEmpty(doc.RegistrantName, "Unknown Agent"),
		ForeignPrincipal:    firstNonEmpty(doc.ForeignPrincipal, "Unknown Principal"),
		Country:             firstNonEmpty(doc.Country, "Unknown"),
		TotalCompensation:   0,
		ServicesDescription: domain.FallbackServicePhrase(doc.DocumentType),
		RegistrationDate:    doc.DateStamped,
		LatestPeriodStart:   doc.DateStamped.AddDate(0, 0, -90),
		LatestPeriodEnd:     doc.DateStamped,
		Status:              domain.StatusActive,
		DocumentURL:         doc.URL,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseISODate(raw string, fallback time.Time) time.Time {
	if raw != "" {
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed
			}
		}
	}
	return fallback
}
