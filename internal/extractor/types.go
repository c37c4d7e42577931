package extractor

// ServiceDetails is the structured form of a caller's service request.
type ServiceDetails struct {
	ServiceType string `json:"service_type,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
}

// Merge overlays the non-empty fields of next onto d. Fields next leaves
// empty keep their previous value.
func (d ServiceDetails) Merge(next ServiceDetails) ServiceDetails {
	if next.ServiceType != "" {
		d.ServiceType = next.ServiceType
	}
	if next.Description != "" {
		d.Description = next.Description
	}
	if next.Location != "" {
		d.Location = next.Location
	}
	if next.Urgency != "" {
		d.Urgency = next.Urgency
	}
	return d
}

// IsZero reports whether no field has been collected yet.
func (d ServiceDetails) IsZero() bool {
	return d == ServiceDetails{}
}

// Confirmation is the outcome of classifying a reply to a read-back.
type Confirmation string

const (
	Affirmative Confirmation = "affirmative"
	Negative    Confirmation = "negative"
)

// IdentifierExtractor pulls a candidate customer identifier out of free text.
type IdentifierExtractor interface {
	ExtractIdentifier(text string) (string, bool)
}

// DetailExtractor classifies free text into service request fields.
type DetailExtractor interface {
	ExtractServiceDetails(text string) ServiceDetails
}

// ConfirmationClassifier decides whether an utterance confirms or rejects.
type ConfirmationClassifier interface {
	ClassifyConfirmation(text string) Confirmation
}
