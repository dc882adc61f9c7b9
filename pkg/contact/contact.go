// Package contact implements the contact form: four required fields, one JSON
// post to the contact endpoint and a status the page can show.
package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
)

// Messages shown to visitors.
const (
	MsgMissingFields = "Please fill in all fields"
	MsgInvalidEmail  = "Please enter a valid email address"
	MsgSent          = "Your message has been sent successfully!"
	MsgRejected      = "An error occurred. Please try again."
	MsgFailed        = "Failed to send message. Please try again."
)

var (
	// ErrInvalid wraps local validation failures.
	ErrInvalid = errors.New("contact: invalid message")
	// ErrRejected wraps refusals reported by the endpoint.
	ErrRejected = errors.New("contact: rejected by endpoint")
	// ErrInFlight is returned while a previous send is still pending.
	ErrInFlight = errors.New("contact: message already being sent")
	// ErrNoSubmitter is returned when Submit is called without a submitter.
	ErrNoSubmitter = errors.New("contact: submitter is nil")
)

// Message is the JSON body posted to the contact endpoint.
type Message struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Message   string `json:"message"   validate:"required"`
}

// Phase is the position of the form in its send lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInvalid
	PhasePending
	PhaseSent
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInvalid:
		return "invalid"
	case PhasePending:
		return "pending"
	case PhaseSent:
		return "sent"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is what the page shows after a send attempt.
type Status struct {
	Phase   Phase
	Message string
}

// Submitter delivers a message. *endpoint.Target satisfies it.
type Submitter interface {
	Send(ctx context.Context, payload any) (endpoint.Reply, error)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func messageValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Form holds one contact form.
type Form struct {
	mu      sync.Mutex
	message Message
	status  Status
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// FromMessage returns a form prefilled with msg.
func FromMessage(msg Message) *Form {
	return &Form{message: msg}
}

// Set replaces the field values and clears a failed status.
func (f *Form) Set(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	if f.status.Phase == PhaseInvalid || f.status.Phase == PhaseFailed {
		f.status = Status{}
	}
}

// Message returns the current field values.
func (f *Form) Message() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Status returns the current status.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// ValidationError reports the first problem found in a message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "contact: " + e.Message
}

// Unwrap lets errors.Is match ErrInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks that every field is present and the email is well formed.
// Missing fields are reported before a malformed email.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if verr := check(f.message); verr != nil {
		return verr
	}
	return nil
}

func check(msg Message) *ValidationError {
	err := messageValidator().Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: MsgMissingFields}
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: fe.Field(), Message: MsgMissingFields}
		}
	}
	return &ValidationError{Field: verrs[0].Field(), Message: MsgInvalidEmail}
}

// Submit validates and sends the message. On success the fields are cleared.
func (f *Form) Submit(ctx context.Context, submitter Submitter) (Status, error) {
	if submitter == nil {
		return f.Status(), ErrNoSubmitter
	}

	f.mu.Lock()
	if f.status.Phase == PhasePending {
		f.mu.Unlock()
		return f.Status(), ErrInFlight
	}
	if verr := check(f.message); verr != nil {
		f.status = Status{Phase: PhaseInvalid, Message: verr.Message}
		status := f.status
		f.mu.Unlock()
		return status, verr
	}
	payload := f.message
	f.status = Status{Phase: PhasePending}
	f.mu.Unlock()

	logger := logging.FromContext(ctx)
	reply, err := submitter.Send(ctx, payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case err != nil:
		logger.Error("contact message failed", "error", err)
		f.status = Status{Phase: PhaseFailed, Message: MsgFailed}
		return f.status, err
	case reply.Success:
		logger.Info("contact message sent")
		f.message = Message{}
		f.status = Status{Phase: PhaseSent, Message: MsgSent}
		return f.status, nil
	default:
		message := reply.Error
		if message == "" {
			message = MsgRejected
		}
		logger.Warn("contact message rejected", "message", message)
		f.status = Status{Phase: PhaseFailed, Message: message}
		return f.status, fmt.Errorf("%w: %s", ErrRejected, message)
	}
}
