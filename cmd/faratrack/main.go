package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mhyrr/fara-tracker/internal/bootstrap"
	"github.com/mhyrr/fara-tracker/internal/config"
	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "faratrack",
		Short:         "FARA filing ingestion and reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// Optional; env vars win over .env values.
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newIngestCmd(), newSummaryCmd(), newExportCmd())
	return root
}

func newIngestCmd() *cobra.Command {
	var opts domain.IngestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion batch over the FARA manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			app, err := bootstrap.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			if opts.ManifestPath == "" {
				opts.ManifestPath = cfg.ManifestPath
			}
			if cfg.MetricsPort != "" {
				go serveMetrics(app, cfg.MetricsPort)
			}

			summary, err := app.Pipeline.Run(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Printf("processed=%d stored=%d created=%d updated=%d failed=%d fallbacks=%d\n",
				summary.Processed, summary.Stored, summary.Created, summary.Updated, summary.Failed, summary.Fallbacks)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "path to the FARA document manifest CSV")
	cmd.Flags().IntVar(&opts.MaxResults, "limit", 0, "maximum documents to process (0 = unlimited)")
	cmd.Flags().StringVar(&opts.AgentFilter, "agent", "", "case-insensitive registrant name substring filter")
	cmd.Flags().IntVar(&opts.YearsBack, "years", 1, "recency window in years")
	cmd.Flags().IntVar(&opts.TargetYear, "year", 0, "include documents from this exact year regardless of the window")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the per-country summary of active registrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, config.Load())
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			summaries, err := app.Summaries.CountrySummaries(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COUNTRY\tAGENTS\tTOTAL SPENDING\tLAST UPDATED")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%d\t$%.2f\t%s\n",
					s.Country, s.AgentCount, s.TotalSpending, s.LastUpdated.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the country summary as an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, config.Load())
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			workbook, err := app.Export.CountrySummaryXLSX(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, workbook, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Printf("wrote %s (%d bytes)\n", outPath, len(workbook))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "country_summary.xlsx", "output file path")
	return cmd
}

func serveMetrics(app *bootstrap.App, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		app.Logger.Warn("metrics listener stopped", "error", err)
	}
}
