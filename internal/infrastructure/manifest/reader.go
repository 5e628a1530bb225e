package manifest

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

// Reader parses the FARA document manifest. Field quoting in the source
// export is unreliable, so parsing is lenient: stray quotes and
// whitespace are trimmed per field and short rows are tolerated.
type Reader struct {
	now func() time.Time
}

func NewReader() *Reader {
	return &Reader{now: time.Now}
}

const (
	colDateStamped = "date stamped"
	colRegistrant  = "registrant name"
	colRegNumber   = "registration number"
	colDocType     = "document type"
	colPrincipal   = "foreign principal name"
	colCountry     = "foreign principal country"
	colURL         = "url"
)

func (r *Reader) Rows(manifestPath string) ([]domain.DocumentRecord, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrManifest, "open manifest", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.WrapError(domain.ErrManifest, "read manifest header", err)
	}
	columns := indexColumns(header)

	var records []domain.DocumentRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// One mangled row does not fail the manifest.
			continue
		}
		records = append(records, domain.DocumentRecord{
			DateStamped:      r.parseDate(field(row, columns, colDateStamped)),
			RegistrantName:   field(row, columns, colRegistrant),
			RegistrationNum:  field(row, columns, colRegNumber),
			DocumentType:     field(row, columns, colDocType),
			ForeignPrincipal: field(row, columns, colPrincipal),
			Country:          field(row, columns, colCountry),
			URL:              field(row, columns, colURL),
		})
	}
	return records, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(cleanField(name))] = i
	}
	return columns
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return cleanField(row[idx])
}

func cleanField(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"`)
}

// parseDate accepts ISO-8601 first, then the M/D/YYYY form the archive
// export mixes in. Unparseable dates stamp as "today" rather than drop
// the row; recency filtering then passes them.
func (r *Reader) parseDate(raw string) time.Time {
	if raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02", "1/2/2006"} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed
			}
		}
	}
	return r.now()
}
