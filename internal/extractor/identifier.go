package extractor

import "regexp"

// Identifier patterns in priority order, most specific first. Each has
// exactly one capture group holding the identifier.
var (
	customerPhraseRE = regexp.MustCompile(`(?i)\bcustomer\s*(?:(?:number|no|id)\b\.?|#)?\s*(?:is\s+|:\s*|#\s*)?([a-z]*\d[a-z0-9-]*)`)
	barePhraseRE     = regexp.MustCompile(`(?i)\b(?:id|number|no)\b\.?\s*(?:is\s+|:\s*|#\s*)?([a-z]*\d[a-z0-9-]*)`)
	digitRunRE       = regexp.MustCompile(`\b(\d{4,})\b`)
	prefixedTokenRE  = regexp.MustCompile(`(?i)\b([a-z]{2,}\d+)\b`)
)

var defaultIdentifierPatterns = []*regexp.Regexp{
	customerPhraseRE,
	barePhraseRE,
	digitRunRE,
	prefixedTokenRE,
}

// PatternIdentifier extracts identifiers with an ordered list of patterns.
// Only the first pattern that matches is consulted.
type PatternIdentifier struct {
	patterns []*regexp.Regexp
}

// NewPatternIdentifier returns an extractor over patterns, or over the
// built-in customer-number patterns when none are given.
func NewPatternIdentifier(patterns ...*regexp.Regexp) *PatternIdentifier {
	if len(patterns) == 0 {
		patterns = defaultIdentifierPatterns
	}
	return &PatternIdentifier{patterns: patterns}
}

func (p *PatternIdentifier) ExtractIdentifier(text string) (string, bool) {
	for _, re := range p.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group != "" {
				return group, true
			}
		}
		// First matching pattern wins even when its groups are empty.
		return "", false
	}
	return "", false
}
