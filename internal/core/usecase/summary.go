package usecase

import (
	"context"
	"fmt"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
	"github.com/mhyrr/fara-tracker/internal/core/ports"
)

// SummaryService serves the per-country read model.
type SummaryService struct {
	repo ports.RegistrationRepository
}

func NewSummaryService(repo ports.RegistrationRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

func (s *SummaryService) CountrySummaries(ctx context.Context) ([]domain.CountrySummary, error) {
	summaries, err := s.repo.CountrySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load country summaries: %w", err)
	}
	return summaries, nil
}
