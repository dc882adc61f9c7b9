package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
)

// Submitter delivers a payload to the registration endpoint.
// *endpoint.Target satisfies it.
type Submitter interface {
	Send(ctx context.Context, payload any) (endpoint.Reply, error)
}

// Submit validates the form and, when every precondition holds, sends one
// request through submitter. The returned Status is what the visitor sees.
// The error is nil only for a confirmed registration; otherwise it is a
// *ValidationError, ErrSubmissionInFlight, ErrAlreadyConfirmed, ErrRejected or
// the transport cause reported by the submitter.
func (f *Form) Submit(ctx context.Context, submitter Submitter) (Status, error) {
	if submitter == nil {
		return f.Status(), ErrNoSubmitter
	}

	payload, attempt, err := f.begin()
	if err != nil {
		return f.Status(), err
	}

	logger := logging.FromContext(ctx).With(
		"mode", string(f.Mode()),
		"members", len(payload.Members),
	)
	logger.Info("submitting registration")

	reply, sendErr := submitter.Send(ctx, payload)
	status, err := f.resolve(attempt, reply, sendErr)

	switch {
	case err == nil:
		logger.Info("registration confirmed")
	case errors.Is(err, ErrRejected):
		logger.Warn("registration rejected", "message", status.Message)
	default:
		logger.Error("registration failed", "error", err)
	}
	return status, err
}

// begin runs the preconditions and moves the form to Pending. The returned
// attempt number lets resolve detect a reset that happened meanwhile.
func (f *Form) begin() (Payload, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.status.Phase {
	case PhasePending:
		return Payload{}, 0, ErrSubmissionInFlight
	case PhaseConfirmed:
		return Payload{}, 0, ErrAlreadyConfirmed
	}

	if verr := f.validate(); verr != nil {
		f.status = Status{Phase: PhaseInvalid, Message: verr.Message}
		return Payload{}, 0, verr
	}

	f.attempt++
	f.status = Status{Phase: PhasePending}
	return f.payload(), f.attempt, nil
}

// resolve maps the submitter outcome onto the final status. When the form was
// reset by a mode switch while the request was in flight the outcome is
// returned but not stored.
func (f *Form) resolve(attempt uint64, reply endpoint.Reply, sendErr error) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		status Status
		err    error
	)
	switch {
	case errors.Is(sendErr, endpoint.ErrMalformedReply):
		status = Status{Phase: PhaseRejected, Message: MsgSubmissionFailed}
		err = sendErr
	case errors.Is(sendErr, endpoint.ErrUnexpectedResponse):
		status = Status{Phase: PhaseRejected, Message: MsgNonJSONResponse}
		err = sendErr
	case sendErr != nil:
		status = Status{Phase: PhaseRejected, Message: MsgSubmissionFailed}
		err = sendErr
	case reply.Success:
		status = Status{
			Phase:    PhaseConfirmed,
			Message:  MsgSuccess,
			Redirect: &Redirect{To: f.redirectTo, After: f.redirectAfter},
		}
	default:
		message := reply.Error
		if message == "" {
			message = MsgUnknownError
		}
		status = Status{Phase: PhaseRejected, Message: message}
		err = fmt.Errorf("%w: %s", ErrRejected, message)
	}

	if f.attempt == attempt && f.status.Phase == PhasePending {
		f.status = status
	}
	return status, err
}
