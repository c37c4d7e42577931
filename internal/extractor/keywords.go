package extractor

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps any of its keywords to Value.
type Rule struct {
	Value    string   `yaml:"value"`
	Keywords []string `yaml:"keywords"`
}

// Category classifies one service field. Rules are tried in order and the
// first rule with a matching keyword decides the value; Default applies
// when none match.
type Category struct {
	Default string `yaml:"default"`
	Rules   []Rule `yaml:"rules"`
}

// Keywords holds every keyword table the heuristic classifiers use.
type Keywords struct {
	ServiceType  Category `yaml:"service_type"`
	Location     Category `yaml:"location"`
	Urgency      Category `yaml:"urgency"`
	Confirmation struct {
		Affirmative []string `yaml:"affirmative"`
		Negative    []string `yaml:"negative"`
	} `yaml:"confirmation"`
}

// DefaultKeywords returns the built-in keyword tables.
func DefaultKeywords() Keywords {
	var k Keywords
	k.ServiceType = Category{
		Default: "general",
		Rules: []Rule{
			{Value: "plumbing", Keywords: []string{"plumb", "pipe", "leak", "drain", "faucet", "toilet"}},
			{Value: "electrical", Keywords: []string{"electric", "outlet", "wiring", "breaker", "socket"}},
			{Value: "hvac", Keywords: []string{"heating", "heater", "radiator", "air condition", "boiler"}},
		},
	}
	k.Location = Category{
		Default: "property",
		Rules: []Rule{
			{Value: "bathroom", Keywords: []string{"bathroom", "shower", "bath", "toilet"}},
			{Value: "kitchen", Keywords: []string{"kitchen"}},
		},
	}
	k.Urgency = Category{
		Default: "routine",
		Rules: []Rule{
			{Value: "emergency", Keywords: []string{"emergency", "urgent", "flood", "asap", "immediately"}},
		},
	}
	k.Confirmation.Affirmative = []string{"yes", "yeah", "yep", "yup", "correct", "confirm", "confirmed", "sure", "ok", "okay", "absolutely"}
	k.Confirmation.Negative = []string{"no", "not", "nope", "wrong", "incorrect"}
	return k
}

// LoadKeywords reads keyword tables from a YAML file. The file replaces the
// built-in tables section by section; sections it omits keep their defaults.
func LoadKeywords(path string) (Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("read keywords: %w", err)
	}
	return ParseKeywords(data)
}

// ParseKeywords decodes YAML keyword tables over the defaults.
func ParseKeywords(data []byte) (Keywords, error) {
	var file Keywords
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Keywords{}, fmt.Errorf("parse keywords: %w", err)
	}

	k := DefaultKeywords()
	if len(file.ServiceType.Rules) > 0 || file.ServiceType.Default != "" {
		k.ServiceType = file.ServiceType
	}
	if len(file.Location.Rules) > 0 || file.Location.Default != "" {
		k.Location = file.Location
	}
	if len(file.Urgency.Rules) > 0 || file.Urgency.Default != "" {
		k.Urgency = file.Urgency
	}
	if len(file.Confirmation.Affirmative) > 0 {
		k.Confirmation.Affirmative = file.Confirmation.Affirmative
	}
	if len(file.Confirmation.Negative) > 0 {
		k.Confirmation.Negative = file.Confirmation.Negative
	}

	if err := k.Validate(); err != nil {
		return Keywords{}, err
	}
	return k.normalized(), nil
}

// Validate checks every category has a default and every rule a value.
func (k Keywords) Validate() error {
	for name, c := range map[string]Category{
		"service_type": k.ServiceType,
		"location":     k.Location,
		"urgency":      k.Urgency,
	} {
		if c.Default == "" {
			return fmt.Errorf("keywords: %s has no default", name)
		}
		for i, r := range c.Rules {
			if r.Value == "" {
				return fmt.Errorf("keywords: %s rule %d has no value", name, i)
			}
			if len(r.Keywords) == 0 {
				return fmt.Errorf("keywords: %s rule %q has no keywords", name, r.Value)
			}
		}
	}
	if len(k.Confirmation.Affirmative) == 0 {
		return fmt.Errorf("keywords: confirmation has no affirmative keywords")
	}
	return nil
}

func (k Keywords) normalized() Keywords {
	lower := func(words []string) []string {
		out := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				out = append(out, w)
			}
		}
		return out
	}
	category := func(c Category) Category {
		rules := make([]Rule, len(c.Rules))
		for i, r := range c.Rules {
			rules[i] = Rule{Value: r.Value, Keywords: lower(r.Keywords)}
		}
		return Category{Default: c.Default, Rules: rules}
	}

	k.ServiceType = category(k.ServiceType)
	k.Location = category(k.Location)
	k.Urgency = category(k.Urgency)
	k.Confirmation.Affirmative = lower(k.Confirmation.Affirmative)
	k.Confirmation.Negative = lower(k.Confirmation.Negative)
	return k
}

func (c Category) classify(lowered string) string {
	for _, r := range c.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lowered, kw) {
				return r.Value
			}
		}
	}
	return c.Default
}
