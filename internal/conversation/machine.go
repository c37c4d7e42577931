package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/intake/internal/customer"
	"github.com/MikeSquared-Agency/intake/internal/extractor"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

type stepFunc func(ctx context.Context, sess *session.Session, text string) (Reply, error)

// Machine runs one conversation turn against a session. It holds no
// per-call state and is safe for concurrent use across sessions.
type Machine struct {
	directory     customer.Directory
	committer     *workorder.Committer
	identifiers   extractor.IdentifierExtractor
	details       extractor.DetailExtractor
	confirmations extractor.ConfirmationClassifier
	resetOnReject bool
	now           func() time.Time
	logger        *slog.Logger

	steps map[session.State]stepFunc
}

type Option func(*Machine)

func WithIdentifierExtractor(x extractor.IdentifierExtractor) Option {
	return func(m *Machine) { m.identifiers = x }
}

func WithDetailExtractor(x extractor.DetailExtractor) Option {
	return func(m *Machine) { m.details = x }
}

func WithConfirmationClassifier(x extractor.ConfirmationClassifier) Option {
	return func(m *Machine) { m.confirmations = x }
}

// WithResetOnReject clears collected service details when the caller
// rejects the read-back. By default they are kept and overwritten field by
// field on the next answer.
func WithResetOnReject(reset bool) Option {
	return func(m *Machine) { m.resetOnReject = reset }
}

func NewMachine(dir customer.Directory, committer *workorder.Committer, logger *slog.Logger, opts ...Option) *Machine {
	heuristics := extractor.New(extractor.DefaultKeywords())
	m := &Machine{
		directory:     dir,
		committer:     committer,
		identifiers:   extractor.NewPatternIdentifier(),
		details:       heuristics,
		confirmations: heuristics,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.steps = map[session.State]stepFunc{
		session.StateGreeting:         m.greet,
		session.StateServiceQuestions: m.collectDetails,
		session.StateConfirmation:     m.confirm,
		session.StateCompleted:        m.completed,
	}
	return m
}

// Step advances sess by one caller utterance. On success the utterance and
// the reply are appended to the transcript, in that order. On error sess
// must be discarded by the caller.
func (m *Machine) Step(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	step, ok := m.steps[sess.State]
	if !ok {
		return Reply{}, fmt.Errorf("no transition from state %s", sess.State)
	}

	from := sess.State
	reply, err := step(ctx, sess, text)
	if err != nil {
		return Reply{}, err
	}
	reply.NextStep = sess.State

	at := m.now().UTC()
	sess.Append(session.SpeakerCaller, text, at)
	sess.Append(session.SpeakerAgent, reply.Message, at)

	m.logger.Debug("conversation step",
		"call_id", sess.CallID,
		"from", from,
		"to", sess.State,
		"action", reply.Action,
	)
	return reply, nil
}

func (m *Machine) greet(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	id, ok := m.identifiers.ExtractIdentifier(text)
	if !ok {
		return Reply{Message: msgAskCustomerNumber, Action: ActionAskCustomerNumber}, nil
	}

	c, err := m.directory.Lookup(ctx, id)
	if errors.Is(err, customer.ErrNotFound) {
		return Reply{Message: fmt.Sprintf(msgCustomerNotFound, id), Action: ActionCustomerNotFound}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("lookup customer %s: %w", id, err)
	}

	sess.CustomerID = c.ID
	sess.CustomerName = c.Name
	sess.State = session.StateServiceQuestions
	return Reply{
		Message:      fmt.Sprintf(msgCustomerVerified, c.Name),
		Action:       ActionCustomerVerified,
		CustomerInfo: c,
	}, nil
}

func (m *Machine) collectDetails(_ context.Context, sess *session.Session, text string) (Reply, error) {
	sess.Service = sess.Service.Merge(m.details.ExtractServiceDetails(text))
	sess.State = session.StateConfirmation

	svc := sess.Service
	return Reply{
		Message:        fmt.Sprintf(msgConfirmDetails, svc.ServiceType, svc.Location, svc.Urgency),
		Action:         ActionConfirmDetails,
		ServiceDetails: &svc,
	}, nil
}

func (m *Machine) confirm(ctx context.Context, sess *session.Session, text string) (Reply, error) {
	if m.confirmations.ClassifyConfirmation(text) == extractor.Negative {
		if m.resetOnReject {
			sess.Service = extractor.ServiceDetails{}
		}
		sess.State = session.StateServiceQuestions
		return Reply{Message: msgRestartQuestions, Action: ActionRestartQuestions}, nil
	}

	wo, err := m.committer.Commit(ctx, sess)
	if errors.Is(err, workorder.ErrInvalid) {
		return Reply{
			Message: msgValidationError,
			Action:  ActionValidationError,
			Error:   err.Error(),
		}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	sess.WorkOrderID = wo.ID.String()
	sess.State = session.StateCompleted
	return Reply{
		Message:   fmt.Sprintf(msgTaskCreated, wo.Reference()),
		Action:    ActionTaskCreated,
		WorkOrder: wo,
	}, nil
}

func (m *Machine) completed(_ context.Context, _ *session.Session, _ string) (Reply, error) {
	return Reply{Message: msgCallCompleted, Action: ActionCallCompleted}, nil
}
