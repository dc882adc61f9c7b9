package registration

import "errors"

// User-facing messages. They are shown verbatim by the site.
const (
	MsgRoleCoverage     = "Your team must have at least one member with an IT or Medical role."
	MsgTeamSize         = "Your team must have at least 4 members."
	MsgCompetence       = "Competence is required for individual registration."
	MsgUnknownError     = "An unknown error occurred"
	MsgNonJSONResponse  = "Received non-JSON response"
	MsgSubmissionFailed = "Failed to submit the form"
	MsgSuccess          = "Registration Successful! Redirecting..."
)

var (
	// ErrSubmissionInFlight is returned when Submit is called while a previous
	// attempt is still waiting for the endpoint.
	ErrSubmissionInFlight = errors.New("registration: submission already in flight")
	// ErrAlreadyConfirmed is returned when Submit is called on a confirmed form.
	ErrAlreadyConfirmed = errors.New("registration: registration already confirmed")
	// ErrNoSubmitter is returned when Submit is called without a submitter.
	ErrNoSubmitter = errors.New("registration: submitter is nil")
	// ErrRejected wraps application-level refusals from the endpoint.
	ErrRejected = errors.New("registration: rejected by endpoint")
)

// Rule identifies the structural check that failed.
type Rule string

const (
	RuleRoleCoverage Rule = "role_coverage"
	RuleTeamSize     Rule = "team_size"
	RuleCompetence   Rule = "competence"
)

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
