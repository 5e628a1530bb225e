package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/mhyrr/fara-tracker/internal/core/ports"
)

// Service renders the country summary view as an XLSX workbook for
// analyst hand-off outside the dashboard.
type Service struct {
	reader ports.RegistrationRepository
	logger *slog.Logger
}

func NewService(reader ports.RegistrationRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reader: reader, logger: logger}
}

func (s *Service) CountrySummaryXLSX(ctx context.Context) ([]byte, error) {
	summaries, err := s.reader.CountrySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("query country summaries: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Country Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Country", "Registered Agents", "Total Spending (USD)", "Last Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, summary := range summaries {
		values := []any{
			summary.Country,
			summary.AgentCount,
			summary.TotalSpending,
			summary.LastUpdated.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("country summary exported", "countries", len(summaries), "bytes", buf.Len())
	return buf.Bytes(), nil
}
