package conversation

import (
	"github.com/MikeSquared-Agency/intake/internal/customer"
	"github.com/MikeSquared-Agency/intake/internal/extractor"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

// Action tags the transition a turn took.
type Action string

const (
	ActionAskCustomerNumber Action = "ask_customer_number"
	ActionCustomerNotFound  Action = "customer_not_found"
	ActionCustomerVerified  Action = "customer_verified"
	ActionConfirmDetails    Action = "confirm_details"
	ActionTaskCreated       Action = "task_created"
	ActionRestartQuestions  Action = "restart_questions"
	ActionValidationError   Action = "validation_error"
	ActionCallCompleted     Action = "call_completed"
)

// Reply is what the caller hears back, plus whatever the turn produced.
type Reply struct {
	Message        string                    `json:"message"`
	Action         Action                    `json:"action"`
	NextStep       session.State             `json:"next_step"`
	Error          string                    `json:"error,omitempty"`
	CustomerInfo   *customer.Customer        `json:"customer_info,omitempty"`
	ServiceDetails *extractor.ServiceDetails `json:"service_details,omitempty"`
	WorkOrder      *workorder.WorkOrder      `json:"work_order,omitempty"`
}

const (
	msgAskCustomerNumber = "Welcome! To get started, could you please tell me your customer number?"
	msgCustomerNotFound  = "I couldn't find a customer with number %s. Could you please repeat your customer number?"
	msgCustomerVerified  = "Thank you, %s. How can we help you today? Please describe the service you need."
	msgConfirmDetails    = "Let me confirm: you need %s service in the %s, with %s urgency. Is that correct?"
	msgTaskCreated       = "Your work order has been created. Your reference number is %s. A technician will contact you shortly. Thank you for calling!"
	msgRestartQuestions  = "I apologize for the confusion. Could you please describe the service you need again?"
	msgValidationError   = "I'm sorry, some details of your request are missing. Please say no and describe the service you need again."
	msgCallCompleted     = "Your request has already been submitted. Thank you for calling, goodbye!"
)
