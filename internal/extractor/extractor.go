package extractor

import (
	"strings"
	"unicode"
)

// Extractor is the keyword-driven implementation of DetailExtractor and
// ConfirmationClassifier. It is immutable and safe for concurrent use.
type Extractor struct {
	keywords    Keywords
	affirmative map[string]bool
	negative    map[string]bool
}

// New builds an Extractor over k. Use DefaultKeywords for the built-in tables.
func New(k Keywords) *Extractor {
	k = k.normalized()
	e := &Extractor{
		keywords:    k,
		affirmative: make(map[string]bool, len(k.Confirmation.Affirmative)),
		negative:    make(map[string]bool, len(k.Confirmation.Negative)),
	}
	for _, w := range k.Confirmation.Affirmative {
		e.affirmative[w] = true
	}
	for _, w := range k.Confirmation.Negative {
		e.negative[w] = true
	}
	return e
}

// ExtractServiceDetails classifies each field independently by
// case-insensitive substring match. Description is the input verbatim.
func (e *Extractor) ExtractServiceDetails(text string) ServiceDetails {
	lowered := strings.ToLower(text)
	return ServiceDetails{
		ServiceType: e.keywords.ServiceType.classify(lowered),
		Description: text,
		Location:    e.keywords.Location.classify(lowered),
		Urgency:     e.keywords.Urgency.classify(lowered),
	}
}

// ClassifyConfirmation matches whole words. Any affirmative word makes the
// reply affirmative unless it is negated: a negative word directly before
// it ("not correct"), or a negative word directly after it that ends the
// reply ("absolutely not"). Replies without an affirmative word are negative.
func (e *Extractor) ClassifyConfirmation(text string) Confirmation {
	ws := words(text)
	last := len(ws) - 1
	for i, word := range ws {
		if !e.affirmative[word] {
			continue
		}
		if i > 0 && e.negative[ws[i-1]] {
			continue
		}
		if i+1 == last && e.negative[ws[last]] {
			continue
		}
		return Affirmative
	}
	return Negative
}

// words splits text into lowercase words. Apostrophes stay inside a word
// so "that's" is not read as "that" + "s".
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
