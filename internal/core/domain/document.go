package domain

import (
	_ "embed"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DocumentRecord is one manifest row that survived filtering. It lives for
// a single pipeline run and is never persisted.
type DocumentRecord struct {
	DateStamped      time.Time
	RegistrantName   string
	RegistrationNum  string
	DocumentType     string
	ForeignPrincipal string
	Country          string
	URL              string
}

//go:embed doctype_rules.yaml
var docTypeRulesRaw []byte

type docTypeRules struct {
	Substantive    []string          `yaml:"substantive"`
	Promotional    []string          `yaml:"promotional"`
	ServicePhrases map[string]string `yaml:"service_phrases"`
	DefaultPhrase  string            `yaml:"default_phrase"`
}

var typeRules = mustLoadDocTypeRules()

func mustLoadDocTypeRules() docTypeRules {
	var rules docTypeRules
	if err := yaml.Unmarshal(docTypeRulesRaw, &rules); err != nil {
		panic("domain: parse doctype rules: " + err.Error())
	}
	return rules
}

// IsSubstantiveURL classifies a filing URL by its embedded document type
// token. Deny-listed promotional types are excluded; unknown tokens are
// treated as substantive so new filing categories are not silently lost.
func IsSubstantiveURL(url string) bool {
	for _, token := range typeRules.Promotional {
		if strings.Contains(url, token) {
			return false
		}
	}
	return true
}

// DocumentTypeFromURL returns the allow-list token found in the URL, or
// an empty string when none matches.
func DocumentTypeFromURL(url string) string {
	for _, token := range typeRules.Substantive {
		if strings.Contains(url, token) {
			return token
		}
	}
	return ""
}

// FallbackServicePhrase describes the services for a document whose text
// could not be extracted, keyed by document type.
func FallbackServicePhrase(docType string) string {
	for token, phrase := range typeRules.ServicePhrases {
		if strings.Contains(docType, token) {
			return phrase
		}
	}
	return typeRules.DefaultPhrase
}
