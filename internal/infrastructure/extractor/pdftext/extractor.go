package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// minUsefulBytes is the threshold below which converter output is treated
// as a failed extraction.
const minUsefulBytes = 100

// Extractor produces best-effort plain text from a filing PDF. Strategy
// order: pdftotext subprocess, then the native PDF reader, then a raw
// content-stream scrape with a compensation keyword page scan appended.
// Nothing past this boundary sees an extraction panic or partial-state
// error; total failure degrades to empty text.
type Extractor struct {
	runner  Runner
	binPath string
	timeout time.Duration
	logger  *slog.Logger
}

func NewExtractor(binPath string, timeout time.Duration, logger *slog.Logger) *Extractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		runner:  execRunner{},
		binPath: binPath,
		timeout: timeout,
		logger:  logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, pdfPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, errb, err := e.runner.Run(ctx, e.binPath, "-layout", "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")
	if err == nil && len(out) > minUsefulBytes {
		return string(out), nil
	}
	if err != nil {
		e.logger.Debug("pdftotext unavailable, using fallback",
			"path", pdfPath, "error", err, "stderr", truncate(string(errb), 512))
	}

	if text, nativeErr := nativeText(pdfPath); nativeErr == nil && len(text) > minUsefulBytes {
		return text, nil
	}

	raw, readErr := os.ReadFile(pdfPath)
	if readErr != nil {
		return "", fmt.Errorf("read pdf for raw scrape: %w", readErr)
	}

	text := scrapeStreams(raw)
	if recovered := scanCompensationPages(raw); recovered != "" {
		text = strings.TrimSpace(text + "\n" + recovered)
	}
	return text, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
