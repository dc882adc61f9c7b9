package registration

import (
	"strings"
	"time"
)

// Mode selects between team and individual registration.
type Mode string

const (
	ModeTeam       Mode = "team"
	ModeIndividual Mode = "individual"
)

// ParseMode maps user input onto a Mode.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeTeam:
		return ModeTeam, true
	case ModeIndividual:
		return ModeIndividual, true
	default:
		return "", false
	}
}

const (
	// MaxMembers bounds the member list in every mode.
	MaxMembers = 4
	// MinTeamMembers is the team size required to submit.
	MinTeamMembers = 4

	initialTeamMembers = 2

	// DefaultRedirectTo and DefaultRedirectDelay describe where a confirmed
	// registration sends the visitor.
	DefaultRedirectTo    = "/"
	DefaultRedirectDelay = 2 * time.Second
)

// Roles lists the roles offered by the form. Member.Role stays a free string.
var Roles = []string{"IT", "Medical", "Design", "Marketing"}

// Member is one participant. In team mode the first member is the leader.
type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Field names a Member attribute editable through UpdateMember.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldRole  Field = "role"
)

// Payload is the JSON body posted to the registration endpoint.
type Payload struct {
	TeamName         string   `json:"teamName"`
	LeaderName       string   `json:"leaderName"`
	LeaderPhone      string   `json:"leaderPhone"`
	LeaderEmail      string   `json:"leaderEmail"`
	IdeaDescription  string   `json:"ideaDescription"`
	Competence       string   `json:"competence"`
	RequestAddMember bool     `json:"requestAddMember"`
	Members          []Member `json:"members"`
	IsTeam           bool     `json:"isTeam"`
}

// Phase is the position of a form in its submission lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInvalid
	PhasePending
	PhaseConfirmed
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInvalid:
		return "invalid"
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Status is the user-visible submission state. Message carries the error
// shown for Invalid and Rejected. Redirect is set once Confirmed.
type Status struct {
	Phase    Phase
	Message  string
	Redirect *Redirect
}

// Redirect describes the navigation scheduled after a confirmed registration.
type Redirect struct {
	To    string
	After time.Duration
}

// Failed reports whether the status carries an error message for the user.
func (s Status) Failed() bool {
	return s.Phase == PhaseInvalid || s.Phase == PhaseRejected
}

// State is a plain copy of a form's fields, used to render the form and to
// rebuild it from submitted values.
type State struct {
	Mode             Mode
	TeamName         string
	LeaderPhone      string
	IdeaDescription  string
	Competence       string
	Members          []Member
	RequestAddMember bool
	Status           Status
}
