package registration

import (
	"strings"
	"sync"
	"time"
)

// Option configures a Form.
type Option func(*Form)

// WithRedirect sets where a confirmed registration navigates and after how
// long. Empty targets and negative delays keep the defaults.
func WithRedirect(to string, after time.Duration) Option {
	return func(f *Form) {
		if trimmed := strings.TrimSpace(to); trimmed != "" {
			f.redirectTo = trimmed
		}
		if after >= 0 {
			f.redirectAfter = after
		}
	}
}

// Form owns the state of one registration form. It is safe for concurrent
// use; Submit releases the lock while the endpoint call is in flight so edits
// stay possible.
type Form struct {
	mu sync.Mutex

	mode             Mode
	teamName         string
	leaderPhone      string
	ideaDescription  string
	competence       string
	members          []Member
	requestAddMember bool
	status           Status
	attempt          uint64

	redirectTo    string
	redirectAfter time.Duration
}

// NewForm returns a team-mode form with two blank members.
func NewForm(options ...Option) *Form {
	f := &Form{
		mode:          ModeTeam,
		members:       make([]Member, initialTeamMembers),
		redirectTo:    DefaultRedirectTo,
		redirectAfter: DefaultRedirectDelay,
	}
	f.apply(options)
	return f
}

// FromState rebuilds a form from submitted values. Member lists are clamped
// to the mode's shape: at most MaxMembers in team mode, exactly one in
// individual mode. Fields belonging to the other mode are dropped and the
// status starts Idle.
func FromState(state State, options ...Option) *Form {
	mode, ok := ParseMode(string(state.Mode))
	if !ok {
		mode = ModeTeam
	}
	f := &Form{
		mode:          mode,
		redirectTo:    DefaultRedirectTo,
		redirectAfter: DefaultRedirectDelay,
	}
	f.apply(options)

	members := append([]Member(nil), state.Members...)
	switch mode {
	case ModeTeam:
		if len(members) > MaxMembers {
			members = members[:MaxMembers]
		}
		if len(members) == 0 {
			members = make([]Member, 1)
		}
		f.teamName = state.TeamName
		f.leaderPhone = state.LeaderPhone
		f.ideaDescription = state.IdeaDescription
		f.requestAddMember = state.RequestAddMember
	case ModeIndividual:
		if len(members) == 0 {
			members = make([]Member, 1)
		}
		members = members[:1]
		f.competence = state.Competence
	}
	f.members = members
	return f
}

func (f *Form) apply(options []Option) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
}

// ToggleRegistrationType switches the form to mode and resets every field:
// one blank member, no team data, no competence, no status.
func (f *Form) ToggleRegistrationType(mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if parsed, ok := ParseMode(string(mode)); ok {
		mode = parsed
	} else {
		mode = ModeTeam
	}
	f.mode = mode
	f.members = make([]Member, 1)
	f.teamName = ""
	f.leaderPhone = ""
	f.ideaDescription = ""
	f.competence = ""
	f.requestAddMember = false
	f.status = Status{}
	f.attempt++
}

// AddMember appends a blank member in team mode while fewer than MaxMembers
// are present. Otherwise it does nothing.
func (f *Form) AddMember() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeTeam || len(f.members) >= MaxMembers {
		return
	}
	f.members = append(f.members, Member{})
	f.touch()
}

// RemoveMember drops the member at index in team mode, keeping the order of
// the others. Index 0 is accepted; out-of-range indices are ignored.
func (f *Form) RemoveMember(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeTeam || index < 0 || index >= len(f.members) {
		return
	}
	members := make([]Member, 0, len(f.members)-1)
	members = append(members, f.members[:index]...)
	members = append(members, f.members[index+1:]...)
	f.members = members
	f.touch()
}

// UpdateMember sets one field of the member at index. Values are not
// validated here.
func (f *Form) UpdateMember(index int, field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index < 0 || index >= len(f.members) {
		return
	}
	member := &f.members[index]
	switch field {
	case FieldName:
		member.Name = value
	case FieldEmail:
		member.Email = value
	case FieldRole:
		member.Role = value
	default:
		return
	}
	f.touch()
}

// SetTeamName sets the team name. Ignored outside team mode.
func (f *Form) SetTeamName(value string) {
	f.setTeamField(&f.teamName, value)
}

// SetLeaderPhone sets the leader's phone number. Ignored outside team mode.
func (f *Form) SetLeaderPhone(value string) {
	f.setTeamField(&f.leaderPhone, value)
}

// SetIdeaDescription sets the idea pitch. Ignored outside team mode.
func (f *Form) SetIdeaDescription(value string) {
	f.setTeamField(&f.ideaDescription, value)
}

// SetRequestAddMember flags that the team wants organisers to assign extra
// members. Ignored outside team mode.
func (f *Form) SetRequestAddMember(value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != ModeTeam {
		return
	}
	f.requestAddMember = value
	f.touch()
}

// SetCompetence sets the individual registrant's competence. Ignored outside
// individual mode.
func (f *Form) SetCompetence(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != ModeIndividual {
		return
	}
	f.competence = value
	f.touch()
}

func (f *Form) setTeamField(target *string, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != ModeTeam {
		return
	}
	*target = value
	f.touch()
}

// touch clears a failed status after an edit.
func (f *Form) touch() {
	if f.status.Failed() {
		f.status = Status{}
	}
}

// ValidateRoles reports whether any member has the IT or Medical role,
// compared case-insensitively.
func (f *Form) ValidateRoles() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hasRequiredRole(f.members)
}

func hasRequiredRole(members []Member) bool {
	for _, m := range members {
		if strings.EqualFold(m.Role, "it") || strings.EqualFold(m.Role, "medical") {
			return true
		}
	}
	return false
}

// Validate runs the submission preconditions without changing the status.
// The first failing rule wins.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.validate(); err != nil {
		return err
	}
	return nil
}

func (f *Form) validate() *ValidationError {
	switch f.mode {
	case ModeTeam:
		if !hasRequiredRole(f.members) {
			return &ValidationError{Rule: RuleRoleCoverage, Message: MsgRoleCoverage}
		}
		if len(f.members) < MinTeamMembers {
			return &ValidationError{Rule: RuleTeamSize, Message: MsgTeamSize}
		}
	case ModeIndividual:
		if f.competence == "" {
			return &ValidationError{Rule: RuleCompetence, Message: MsgCompetence}
		}
	}
	return nil
}

// Payload builds the request body from the current state. Mode-specific
// fields of the other mode are sent empty.
func (f *Form) Payload() Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payload()
}

func (f *Form) payload() Payload {
	isTeam := f.mode == ModeTeam
	var leader Member
	if len(f.members) > 0 {
		leader = f.members[0]
	}
	p := Payload{
		LeaderName:       leader.Name,
		LeaderEmail:      leader.Email,
		RequestAddMember: f.requestAddMember,
		Members:          append([]Member(nil), f.members...),
		IsTeam:           isTeam,
	}
	if isTeam {
		p.TeamName = f.teamName
		p.LeaderPhone = f.leaderPhone
		p.IdeaDescription = f.ideaDescription
	} else {
		p.Competence = f.competence
	}
	return p
}

// Mode returns the current registration mode.
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Members returns a copy of the member list.
func (f *Form) Members() []Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Member(nil), f.members...)
}

// Status returns the current submission status.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// CanAddMember reports whether AddMember would append a member.
func (f *Form) CanAddMember() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode == ModeTeam && len(f.members) < MaxMembers
}

// Snapshot copies the full form state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Mode:             f.mode,
		TeamName:         f.teamName,
		LeaderPhone:      f.leaderPhone,
		IdeaDescription:  f.ideaDescription,
		Competence:       f.competence,
		Members:          append([]Member(nil), f.members...),
		RequestAddMember: f.requestAddMember,
		Status:           f.status,
	}
}
