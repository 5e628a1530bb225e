package usecase

import (
	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

// aggregateByAgent groups extraction results by agent name in first-seen
// order. The group representative is the result with the latest
// registration date; compensation sums across the whole group and
// document URLs union order-preserving. The stored identity stays
// (agent_name, foreign_principal): a representative with a different
// principal than a prior stored row creates a new row, it does not merge.
func aggregateByAgent(results []domain.ExtractionResult) []*domain.Registration {
	var order []string
	groups := make(map[string][]domain.ExtractionResult)
	for _, result := range results {
		if _, seen := groups[result.AgentName]; !seen {
			order = append(order, result.AgentName)
		}
		groups[result.AgentName] = append(groups[result.AgentName], result)
	}

	registrations := make([]*domain.Registration, 0, len(order))
	for _, agent := range order {
		group := groups[agent]

		representative := group[0]
		total := 0.0
		var urls []string
		seen := make(map[string]struct{})
		for _, result := range group {
			if result.RegistrationDate.After(representative.RegistrationDate) {
				representative = result
			}
			total += result.TotalCompensation
			if result.DocumentURL != "" {
				if _, dup := seen[result.DocumentURL]; !dup {
					seen[result.DocumentURL] = struct{}{}
					urls = append(urls, result.DocumentURL)
				}
			}
		}

		registrations = append(registrations, &domain.Registration{
			AgentName:           representative.AgentName,
			AgentAddress:        representative.AgentAddress,
			ForeignPrincipal:    representative.ForeignPrincipal,
			Country:             representative.Country,
			RegistrationDate:    representative.RegistrationDate,
			TotalCompensation:   total,
			LatestPeriodStart:   representative.LatestPeriodStart,
			LatestPeriodEnd:     representative.LatestPeriodEnd,
			ServicesDescription: representative.ServicesDescription,
			Status:              domain.StatusActive,
			DocumentURLs:        urls,
		})
	}
	return registrations
}
