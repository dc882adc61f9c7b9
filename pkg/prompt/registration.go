package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-hacksite/pkg/registration"
)

const noRole = "(none)"

var modeOptions = []string{"Team", "Individual"}

// RunRegistration walks the visitor through form and submits it. Local
// validation failures and endpoint refusals are shown through the driver and
// the visitor may pick the registration type again, edit and retry. It returns the last status and the error of
// the last attempt when the visitor gives up.
func RunRegistration(ctx context.Context, driver Driver, form *registration.Form, submitter registration.Submitter) (registration.Status, error) {
	if driver == nil {
		return registration.Status{}, ErrNoDriver
	}
	if form == nil {
		form = registration.NewForm()
	}

	for pass := 0; ; pass++ {
		switched, err := chooseMode(ctx, driver, form)
		if err != nil {
			return form.Status(), err
		}
		if err := editForm(ctx, driver, form, pass > 0 && !switched); err != nil {
			return form.Status(), err
		}

		status, err := form.Submit(ctx, submitter)
		if err == nil {
			return status, driver.Info(ctx, status.Message)
		}
		if !status.Failed() {
			return status, err
		}

		if ierr := driver.Info(ctx, status.Message); ierr != nil {
			return status, ierr
		}
		retry, cerr := driver.Confirm(ctx, ConfirmConfig{
			Message: retryMessage(err),
			Default: true,
		})
		if cerr != nil {
			return status, cerr
		}
		if !retry {
			return status, err
		}
	}
}

func retryMessage(err error) string {
	var verr *registration.ValidationError
	if errors.As(err, &verr) {
		return "Edit the form and try again?"
	}
	return "Try submitting again?"
}

// chooseMode asks for the registration type and reports whether the form was
// reset to the other mode.
func chooseMode(ctx context.Context, driver Driver, form *registration.Form) (bool, error) {
	current := 0
	if form.Mode() == registration.ModeIndividual {
		current = 1
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:      "How are you registering?",
		Options:      modeOptions,
		DefaultIndex: current,
	})
	if err != nil {
		return false, err
	}
	mode := registration.ModeTeam
	if idx == 1 {
		mode = registration.ModeIndividual
	}
	if mode == form.Mode() {
		return false, nil
	}
	form.ToggleRegistrationType(mode)
	return true, nil
}

func editForm(ctx context.Context, driver Driver, form *registration.Form, retry bool) error {
	if form.Mode() == registration.ModeIndividual {
		if err := editMember(ctx, driver, form, 0, "Your details"); err != nil {
			return err
		}
		state := form.Snapshot()
		competence, err := driver.Input(ctx, InputConfig{
			Message: "Competence",
			Default: state.Competence,
			Help:    "What you bring to a team, for example nursing or backend development.",
		})
		if err != nil {
			return err
		}
		form.SetCompetence(strings.TrimSpace(competence))
		return nil
	}
	return editTeam(ctx, driver, form, retry)
}

func editTeam(ctx context.Context, driver Driver, form *registration.Form, retry bool) error {
	state := form.Snapshot()

	teamName, err := driver.Input(ctx, InputConfig{Message: "Team name", Default: state.TeamName})
	if err != nil {
		return err
	}
	form.SetTeamName(strings.TrimSpace(teamName))

	phone, err := driver.Input(ctx, InputConfig{Message: "Leader phone", Default: state.LeaderPhone})
	if err != nil {
		return err
	}
	form.SetLeaderPhone(strings.TrimSpace(phone))

	idea, err := driver.TextArea(ctx, TextAreaConfig{Message: "Idea description", Default: state.IdeaDescription})
	if err != nil {
		return err
	}
	form.SetIdeaDescription(strings.TrimSpace(idea))

	if retry && len(form.Members()) > 1 {
		if err := removeMember(ctx, driver, form); err != nil {
			return err
		}
	}

	for i := range form.Members() {
		if err := editMember(ctx, driver, form, i, memberLabel(i)); err != nil {
			return err
		}
	}

	for form.CanAddMember() {
		more, err := driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add another member? (%d of %d)", len(form.Members()), registration.MaxMembers),
			Default: true,
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
		form.AddMember()
		last := len(form.Members()) - 1
		if err := editMember(ctx, driver, form, last, memberLabel(last)); err != nil {
			return err
		}
	}

	request, err := driver.Confirm(ctx, ConfirmConfig{
		Message: "Ask the organisers to complete your team?",
		Default: form.Snapshot().RequestAddMember,
	})
	if err != nil {
		return err
	}
	form.SetRequestAddMember(request)
	return nil
}

func removeMember(ctx context.Context, driver Driver, form *registration.Form) error {
	remove, err := driver.Confirm(ctx, ConfirmConfig{Message: "Remove a member?"})
	if err != nil || !remove {
		return err
	}
	members := form.Members()
	options := make([]string, 0, len(members)-1)
	for i, m := range members[1:] {
		options = append(options, fmt.Sprintf("%s (%s)", memberLabel(i+1), displayName(m)))
	}
	idx, err := driver.Select(ctx, SelectConfig{Message: "Which member?", Options: options})
	if err != nil {
		return err
	}
	if idx >= 0 {
		form.RemoveMember(idx + 1)
	}
	return nil
}

func editMember(ctx context.Context, driver Driver, form *registration.Form, index int, label string) error {
	members := form.Members()
	if index < 0 || index >= len(members) {
		return nil
	}
	current := members[index]

	if err := driver.Info(ctx, label); err != nil {
		return err
	}
	name, err := driver.Input(ctx, InputConfig{Message: "Name", Default: current.Name, Validator: required("name")})
	if err != nil {
		return err
	}
	form.UpdateMember(index, registration.FieldName, strings.TrimSpace(name))

	email, err := driver.Input(ctx, InputConfig{Message: "Email", Default: current.Email, Validator: required("email")})
	if err != nil {
		return err
	}
	form.UpdateMember(index, registration.FieldEmail, strings.TrimSpace(email))

	options := append([]string{noRole}, registration.Roles...)
	roleIdx, err := driver.Select(ctx, SelectConfig{
		Message:      "Role",
		Options:      options,
		DefaultIndex: roleIndex(options, current.Role),
	})
	if err != nil {
		return err
	}
	role := ""
	if roleIdx > 0 && roleIdx < len(options) {
		role = options[roleIdx]
	}
	form.UpdateMember(index, registration.FieldRole, role)
	return nil
}

func required(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func roleIndex(options []string, role string) int {
	for i, option := range options {
		if i > 0 && strings.EqualFold(option, role) {
			return i
		}
	}
	return 0
}

func memberLabel(index int) string {
	if index == 0 {
		return "Team leader"
	}
	return fmt.Sprintf("Member %d", index+1)
}

func displayName(m registration.Member) string {
	if strings.TrimSpace(m.Name) == "" {
		return "unnamed"
	}
	return m.Name
}
