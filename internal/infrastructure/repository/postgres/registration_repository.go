package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RegistrationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent ingest invocations.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS registrations (
	id TEXT PRIMARY KEY,
	agent_name TEXT NOT NULL,
	agent_address TEXT,
	foreign_principal TEXT NOT NULL,
	country TEXT NOT NULL,
	registration_date TIMESTAMPTZ NOT NULL,
	total_compensation DOUBLE PRECISION NOT NULL DEFAULT 0,
	latest_period_start TIMESTAMPTZ,
	latest_period_end TIMESTAMPTZ,
	services_description TEXT,
	status TEXT NOT NULL,
	document_urls JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_identity ON registrations(agent_name, foreign_principal);
CREATE INDEX IF NOT EXISTS idx_registrations_country_status ON registrations(country, status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Upsert looks up the (agent_name, foreign_principal) row under a row
// lock, then inserts, or replaces the mutable fields with document_urls
// unioned against the stored set. The union happens inside the
// transaction so concurrent upserts to the same key cannot lose URLs.
func (r *RegistrationRepository) Upsert(ctx context.Context, reg *domain.Registration) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	var existingID string
	var existingURLsRaw []byte
	err = tx.QueryRowContext(ctx, `
SELECT id, document_urls FROM registrations
WHERE agent_name = $1 AND foreign_principal = $2
FOR UPDATE
`, reg.AgentName, reg.ForeignPrincipal).Scan(&existingID, &existingURLsRaw)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
		reg.ID = uuid.NewString()
		reg.CreatedAt = now
		urlsJSON, marshalErr := json.Marshal(dedupeURLs(nil, reg.DocumentURLs))
		if marshalErr != nil {
			return false, fmt.Errorf("marshal document urls: %w", marshalErr)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO registrations (
	id, agent_name, agent_address, foreign_principal, country, registration_date,
	total_compensation, latest_period_start, latest_period_end, services_description,
	status, document_urls, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
			reg.ID, reg.AgentName, reg.AgentAddress, reg.ForeignPrincipal, reg.Country,
			reg.RegistrationDate, reg.TotalCompensation, reg.LatestPeriodStart, reg.LatestPeriodEnd,
			reg.ServicesDescription, string(reg.Status), urlsJSON, now, now,
		)
		if err != nil {
			return false, fmt.Errorf("insert registration: %w", err)
		}
	case err != nil:
		return false, fmt.Errorf("lookup registration: %w", err)
	default:
		reg.ID = existingID
		var existingURLs []string
		if len(existingURLsRaw) > 0 {
			if err := json.Unmarshal(existingURLsRaw, &existingURLs); err != nil {
				return false, fmt.Errorf("unmarshal stored document urls: %w", err)
			}
		}
		reg.DocumentURLs = dedupeURLs(existingURLs, reg.DocumentURLs)
		urlsJSON, marshalErr := json.Marshal(reg.DocumentURLs)
		if marshalErr != nil {
			return false, fmt.Errorf("marshal document urls: %w", marshalErr)
		}
		_, err = tx.ExecContext(ctx, `
UPDATE registrations
SET agent_address = $2, country = $3, registration_date = $4, total_compensation = $5,
	latest_period_start = $6, latest_period_end = $7, services_description = $8,
	status = $9, document_urls = $10, updated_at = $11
WHERE id = $1
`,
			reg.ID, reg.AgentAddress, reg.Country, reg.RegistrationDate, reg.TotalCompensation,
			reg.LatestPeriodStart, reg.LatestPeriodEnd, reg.ServicesDescription,
			string(reg.Status), urlsJSON, now,
		)
		if err != nil {
			return false, fmt.Errorf("update registration: %w", err)
		}
	}
	reg.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert tx: %w", err)
	}
	return created, nil
}

// dedupeURLs unions two URL lists order-preserving, existing first.
func dedupeURLs(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, url := range append(append([]string{}, existing...), incoming...) {
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, url)
	}
	return merged
}

func (r *RegistrationRepository) GetByIdentity(ctx context.Context, agentName, foreignPrincipal string) (*domain.Registration, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, agent_name, agent_address, foreign_principal, country, registration_date,
	total_compensation, latest_period_start, latest_period_end, services_description,
	status, document_urls, created_at, updated_at
FROM registrations
WHERE agent_name = $1 AND foreign_principal = $2
`, agentName, foreignPrincipal)

	var reg domain.Registration
	var address, services sql.NullString
	var urlsRaw []byte
	var status string

	err := row.Scan(
		&reg.ID, &reg.AgentName, &address, &reg.ForeignPrincipal, &reg.Country,
		&reg.RegistrationDate, &reg.TotalCompensation, &reg.LatestPeriodStart,
		&reg.LatestPeriodEnd, &services, &status, &urlsRaw, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRegistrationNotFound, "get registration", err)
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	reg.AgentAddress = address.String
	reg.ServicesDescription = services.String
	reg.Status = domain.RegistrationStatus(status)
	if err := json.Unmarshal(urlsRaw, &reg.DocumentURLs); err != nil {
		return nil, fmt.Errorf("unmarshal document urls: %w", err)
	}
	return &reg, nil
}

// CountrySummaries recomputes the per-country aggregate over active
// registrations on every call; nothing is cached or stored.
func (r *RegistrationRepository) CountrySummaries(ctx context.Context) ([]domain.CountrySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT country, COUNT(DISTINCT agent_name), COALESCE(SUM(total_compensation), 0), MAX(updated_at)
FROM registrations
WHERE status = $1
GROUP BY country
ORDER BY COALESCE(SUM(total_compensation), 0) DESC
`, string(domain.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("query country summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.CountrySummary
	for rows.Next() {
		var summary domain.CountrySummary
		if err := rows.Scan(&summary.Country, &summary.AgentCount, &summary.TotalSpending, &summary.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan country summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate country summaries: %w", err)
	}
	return summaries, nil
}
