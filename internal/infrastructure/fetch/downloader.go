package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/infrastructure/resilience"
)

// Downloader fetches filing PDFs into a per-agent cache directory. The
// limiter applies to the aggregate request stream for the whole run, and
// an existing cached file short-circuits the fetch so re-runs resume
// without redundant downloads. Network attempts run under the shared
// retry/breaker executor; the limiter gates every attempt, including
// retries.
type Downloader struct {
	cacheDir   string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(cacheDir string, interval, timeout time.Duration, executor *resilience.Executor, logger *slog.Logger) (*Downloader, error) {
	if cacheDir == "" {
		cacheDir = "./data/pdfs"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultPolicy())
	}
	return &Downloader{
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		executor:   executor,
		logger:     logger,
	}, nil
}

func (d *Downloader) Fetch(ctx context.Context, doc domain.DocumentRecord) (string, error) {
	agentDir := filepath.Join(d.cacheDir, sanitizeName(doc.RegistrantName))
	localPath := filepath.Join(agentDir, fileNameFromURL(doc.URL))

	if _, err := os.Stat(localPath); err == nil {
		d.logger.Debug("pdf cache hit", "path", localPath)
		return localPath, nil
	}

	if err := os.MkdirAll(agentDir, 0o755); err != nil {
		return "", fmt.Errorf("create agent cache dir: %w", err)
	}

	err := d.executor.Execute(ctx, "download", func(callCtx context.Context) error {
		return d.download(callCtx, doc, localPath)
	}, classifyDownloadError)
	if err != nil {
		return "", err
	}
	return localPath, nil
}

func (d *Downloader) download(ctx context.Context, doc domain.DocumentRecord, localPath string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.URL, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; fara-tracker/1.0)")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "download document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WrapError(domain.ErrTemporary, "download document",
			fmt.Errorf("unexpected status %s for %s", resp.Status, doc.URL))
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		_ = os.Remove(localPath)
		return domain.WrapError(domain.ErrTemporary, "write cache file", err)
	}
	d.logger.Debug("pdf downloaded", "path", localPath, "bytes", written)
	return nil
}

func classifyDownloadError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func fileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "." || path.Base(parsed.Path) == "/" {
		return "document.pdf"
	}
	name := sanitizeName(path.Base(parsed.Path))
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}
	return name
}

func sanitizeName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "unknown"
	}
	return name
}
