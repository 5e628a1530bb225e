package openai

import (
	"fmt"
	"strings"

	"github.com/mhyrr/fara-tracker/internal/core/domain"
)

// promptTextCap bounds the filing excerpt placed in the user prompt.
const promptTextCap = 24 * 1024

const systemPrompt = `You are an analyst extracting facts from U.S. FARA (Foreign Agents Registration Act) filings.

Return exactly one JSON object with these keys and no others:
agent_name (string), agent_address (string or null), foreign_principal (string), country (string),
compensation_entries (array of {amount, period, description}), total_compensation (number),
services_description (string or null), registration_date (ISO date string),
latest_period_start (ISO date string), latest_period_end (ISO date string), status (string).

Rules:
- period must be one of: monthly, quarterly, annual, one-time.
- A named province, ministry, state agency, or other sub-national entity implies a foreign government principal; infer the country from it (e.g. "Province of Ontario" -> "CANADA").
- total_compensation is the flat total if the filing states one; otherwise omit or set 0.
- Use uppercase country names as they appear in FARA records.
- If a fact is not in the document, use null (strings) or an empty array. Never invent figures.`

func buildDocumentPrompt(text string, doc domain.DocumentRecord) string {
	if len(text) > promptTextCap {
		text = text[:promptTextCap]
	}

	var b strings.Builder
	b.WriteString("Filing metadata from the FARA index:\n")
	fmt.Fprintf(&b, "- Registrant: %s\n", doc.RegistrantName)
	fmt.Fprintf(&b, "- Registration number: %s\n", doc.RegistrationNum)
	fmt.Fprintf(&b, "- Document type: %s\n", doc.DocumentType)
	fmt.Fprintf(&b, "- Date stamped: %s\n", doc.DateStamped.Format("2006-01-02"))
	if doc.ForeignPrincipal != "" {
		fmt.Fprintf(&b, "- Listed foreign principal: %s\n", doc.ForeignPrincipal)
	}
	if doc.Country != "" {
		fmt.Fprintf(&b, "- Listed country: %s\n", doc.Country)
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(text)
	return b.String()
}
