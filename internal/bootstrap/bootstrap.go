package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mhyrr/fara-tracker/internal/config"
	"github.com/mhyrr/fara-tracker/internal/core/ports"
	"github.com/mhyrr/fara-tracker/internal/core/usecase"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/export"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/extractor/pdftext"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/fetch"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/llm/openai"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/manifest"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/repository/postgres"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/resilience"
	"github.com/mhyrr/fara-tracker/internal/observability/logging"
	"github.com/mhyrr/fara-tracker/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.PipelineMetrics

	Repo      ports.RegistrationRepository
	Pipeline  ports.PipelineRunner
	Summaries ports.SummaryReader
	Export    *export.Service

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New("fara-tracker", cfg.LogLevel)
	pipelineMetrics := metrics.NewPipelineMetrics()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRegistrationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	downloader, err := fetch.New(cfg.CacheDir, cfg.FetchInterval, cfg.FetchTimeout, executor, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init downloader: %w", err)
	}

	llmClient := openai.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMTimeout)
	factExtractor := openai.NewExtractor(llmClient, executor)

	textExtractor := pdftext.NewExtractor(cfg.PdftotextBin, cfg.ExtractTimeout, logger)
	selector := usecase.NewDocumentSelector(manifest.NewReader())
	extraction := usecase.NewExtractionService(factExtractor, pipelineMetrics, logger)
	pipeline := usecase.NewPipelineService(selector, downloader, textExtractor, extraction, repo, pipelineMetrics, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: pipelineMetrics,

		Repo:      repo,
		Pipeline:  pipeline,
		Summaries: usecase.NewSummaryService(repo),
		Export:    export.NewService(repo, logger),

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
