package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

type fetcherFake struct {
	path  string
	err   error
	calls int
}

func (f *fetcherFake) Fetch(context.Context, domain.DocumentRecord) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type textFake struct {
	text string
	err  error
}

func (f *textFake) Extract(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// seqFactsFake returns one canned response per call, in order.
type seqFactsFake struct {
	responses []domain.RawFacts
	calls     int
}

func (f *seqFactsFake) Extract(context.Context, string, domain.DocumentRecord) (domain.RawFacts, error) {
	if f.calls >= len(f.responses) {
		return nil, errors.New("unexpected extra model call")
	}
	facts := f.responses[f.calls]
	f.calls++
	return facts, nil
}

type repoFake struct {
	records   map[string]*domain.Registration
	upsertErr error
}

func newRepoFake() *repoFake {
	return &repoFake{records: make(map[string]*domain.Registration)}
}

func (r *repoFake) Upsert(_ context.Context, reg *domain.Registration) (bool, error) {
	if r.upsertErr != nil {
		return false, r.upsertErr
	}
	key := reg.AgentName + "|" + reg.ForeignPrincipal
	existing, ok := r.records[key]
	if !ok {
		stored := *reg
		r.records[key] = &stored
		return true, nil
	}
	merged := *reg
	merged.DocumentURLs = append([]string(nil), existing.DocumentURLs...)
	seen := make(map[string]struct{}, len(merged.DocumentURLs))
	for _, u := range merged.DocumentURLs {
		seen[u] = struct{}{}
	}
	for _, u := range reg.DocumentURLs {
		if _, dup := seen[u]; !dup {
			merged.DocumentURLs = append(merged.DocumentURLs, u)
		}
	}
	r.records[key] = &merged
	return false, nil
}

func (r *repoFake) GetByIdentity(_ context.Context, agent, principal string) (*domain.Registration, error) {
	reg, ok := r.records[agent+"|"+principal]
	if !ok {
		return nil, domain.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *repoFake) CountrySummaries(context.Context) ([]domain.CountrySummary, error) {
	return nil, nil
}

func TestRunStoresFallbackRegistrationWhenModelFails(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	doc := baseRow(now)
	selector, _ := newSelector(doc)
	repo := newRepoFake()
	facts := &factsFake{err: domain.WrapError(domain.ErrTemporary, "model call", errors.New("down"))}
	extraction := NewExtractionService(facts, nil, testLogger())
	pipeline := NewPipelineService(selector,
		&fetcherFake{path: "/tmp/doc.pdf"},
		&textFake{text: longText()},
		extraction, repo, nil, testLogger())

	summary, err := pipeline.Run(context.Background(), domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 || summary.Stored != 1 || summary.Created != 1 || summary.Fallbacks != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	stored, err := repo.GetByIdentity(context.Background(), "Acme LLP", "Province of Ontario")
	if err != nil {
		t.Fatalf("registration not stored: %v", err)
	}
	if stored.Country != "CANADA" {
		t.Fatalf("country = %q", stored.Country)
	}
	if stored.TotalCompensation != 0 {
		t.Fatalf("fallback compensation = %v, want 0", stored.TotalCompensation)
	}
	if stored.Status != domain.StatusActive {
		t.Fatalf("status = %q", stored.Status)
	}
	if len(stored.DocumentURLs) != 1 || stored.DocumentURLs[0] != doc.URL {
		t.Fatalf("document urls = %v", stored.DocumentURLs)
	}
}

func TestRunAccumulatesCompensationAcrossDocumentsOfOneAgent(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	first := baseRow(now)
	second := baseRow(now)
	second.URL = "https://efile.fara.gov/docs/7001-Supplemental-Statement-2.pdf"
	second.DocumentType = "Supplemental-Statement"
	second.DateStamped = now.AddDate(0, -2, 0)

	selector, _ := newSelector(first, second)
	repo := newRepoFake()
	facts := &seqFactsFake{responses: []domain.RawFacts{
		{"total_compensation": 10000.0},
		{"total_compensation": 20000.0},
	}}
	extraction := NewExtractionService(facts, nil, testLogger())
	pipeline := NewPipelineService(selector,
		&fetcherFake{path: "/tmp/doc.pdf"},
		&textFake{text: longText()},
		extraction, repo, nil, testLogger())

	summary, err := pipeline.Run(context.Background(), domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 2 || summary.Stored != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	stored, err := repo.GetByIdentity(context.Background(), "Acme LLP", "Province of Ontario")
	if err != nil {
		t.Fatalf("registration not stored: %v", err)
	}
	if stored.TotalCompensation != 30000 {
		t.Fatalf("total = %v, want 30000", stored.TotalCompensation)
	}
	if len(stored.DocumentURLs) != 2 {
		t.Fatalf("document urls = %v, want both", stored.DocumentURLs)
	}
	// Representative is the later registration date.
	if !stored.RegistrationDate.Equal(first.DateStamped) {
		t.Fatalf("registration date = %v, want %v", stored.RegistrationDate, first.DateStamped)
	}
}

func TestRunIsIdempotentForRepeatedDocument(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	doc := baseRow(now)
	selector, _ := newSelector(doc)
	repo := newRepoFake()

	run := func() domain.IngestSummary {
		facts := &seqFactsFake{responses: []domain.RawFacts{{"total_compensation": 5000.0}}}
		extraction := NewExtractionService(facts, nil, testLogger())
		pipeline := NewPipelineService(selector,
			&fetcherFake{path: "/tmp/doc.pdf"},
			&textFake{text: longText()},
			extraction, repo, nil, testLogger())
		summary, err := pipeline.Run(context.Background(), domain.IngestOptions{YearsBack: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return summary
	}

	first := run()
	if first.Created != 1 || first.Updated != 0 {
		t.Fatalf("first summary = %+v", first)
	}
	second := run()
	if second.Created != 0 || second.Updated != 1 {
		t.Fatalf("second summary = %+v", second)
	}

	if len(repo.records) != 1 {
		t.Fatalf("expected one registration, got %d", len(repo.records))
	}
	stored, _ := repo.GetByIdentity(context.Background(), "Acme LLP", "Province of Ontario")
	if len(stored.DocumentURLs) != 1 {
		t.Fatalf("repeated document must not duplicate its url: %v", stored.DocumentURLs)
	}
}

func TestRunCountsUpsertFailures(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	selector, _ := newSelector(baseRow(now))
	repo := newRepoFake()
	repo.upsertErr = errors.New("connection refused")
	facts := &seqFactsFake{responses: []domain.RawFacts{{"total_compensation": 5000.0}}}
	observer := &observerFake{}
	extraction := NewExtractionService(facts, nil, testLogger())
	pipeline := NewPipelineService(selector,
		&fetcherFake{path: "/tmp/doc.pdf"},
		&textFake{text: longText()},
		extraction, repo, observer, testLogger())

	summary, err := pipeline.Run(context.Background(), domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("run must not abort on upsert failure: %v", err)
	}
	if summary.Failed != 1 || summary.Stored != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(observer.skipReasons) != 1 || observer.skipReasons[0] != "store_error" {
		t.Fatalf("skip reasons = %v, want one store_error", observer.skipReasons)
	}
}

func TestRunManifestFailureAborts(t *testing.T) {
	selector := NewDocumentSelector(&manifestFake{err: domain.WrapError(domain.ErrManifest, "open manifest", errors.New("no such file"))})
	repo := newRepoFake()
	extraction := NewExtractionService(&factsFake{}, nil, testLogger())
	pipeline := NewPipelineService(selector,
		&fetcherFake{path: "/tmp/doc.pdf"},
		&textFake{text: longText()},
		extraction, repo, nil, testLogger())

	_, err := pipeline.Run(context.Background(), domain.IngestOptions{})
	if !domain.IsKind(err, domain.ErrManifest) {
		t.Fatalf("expected manifest error, got %v", err)
	}
}

func TestRunFetchFailureDegradesToFallback(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	selector, _ := newSelector(baseRow(now))
	repo := newRepoFake()
	extraction := NewExtractionService(&factsFake{}, nil, testLogger())
	pipeline := NewPipelineService(selector,
		&fetcherFake{err: domain.WrapError(domain.ErrTemporary, "download", errors.New("503"))},
		&textFake{text: longText()},
		extraction, repo, nil, testLogger())

	summary, err := pipeline.Run(context.Background(), domain.IngestOptions{YearsBack: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Fallbacks != 1 || summary.Stored != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	stored, err := repo.GetByIdentity(context.Background(), "Acme LLP", "Province of Ontario")
	if err != nil {
		t.Fatalf("fallback registration not stored: %v", err)
	}
	if stored.TotalCompensation != 0 {
		t.Fatalf("fallback compensation = %v", stored.TotalCompensation)
	}
}
