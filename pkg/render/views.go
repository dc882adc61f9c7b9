package render

import (
	"fmt"
	"math"
	"time"

	"github.com/goliatone/go-hacksite/pkg/contact"
	"github.com/goliatone/go-hacksite/pkg/registration"
	"github.com/goliatone/go-hacksite/pkg/site"
)

// RegisterView is what the registration page renders. Token identifies the
// rendered form so concurrent submits of the same page can be detected.
type RegisterView struct {
	Token string
	State registration.State
}

// ContactView is what the contact form renders.
type ContactView struct {
	Message contact.Message
	Status  contact.Status
}

func registerData(view RegisterView) map[string]any {
	state := view.State
	isTeam := state.Mode != registration.ModeIndividual

	members := make([]map[string]any, 0, len(state.Members))
	for i, m := range state.Members {
		members = append(members, map[string]any{
			"index":     i,
			"label":     memberLabel(isTeam, i),
			"name":      m.Name,
			"email":     m.Email,
			"role":      m.Role,
			"removable": isTeam && i > 0,
		})
	}

	data := map[string]any{
		"token":              view.Token,
		"mode":               string(modeOrTeam(state.Mode)),
		"is_team":            isTeam,
		"team_name":          state.TeamName,
		"leader_phone":       state.LeaderPhone,
		"idea_description":   state.IdeaDescription,
		"competence":         state.Competence,
		"request_add_member": state.RequestAddMember,
		"members":            members,
		"roles":              registration.Roles,
		"can_add":            isTeam && len(state.Members) < registration.MaxMembers,
		"status":             registrationStatus(state.Status),
	}
	if r := state.Status.Redirect; r != nil {
		data["redirect_to"] = r.To
		data["redirect_seconds"] = seconds(r.After)
	}
	return data
}

func modeOrTeam(mode registration.Mode) registration.Mode {
	if mode == "" {
		return registration.ModeTeam
	}
	return mode
}

func memberLabel(isTeam bool, index int) string {
	switch {
	case !isTeam:
		return "Your details"
	case index == 0:
		return "Team leader"
	default:
		return fmt.Sprintf("Member %d", index+1)
	}
}

func registrationStatus(status registration.Status) map[string]any {
	return map[string]any{
		"phase":     status.Phase.String(),
		"message":   status.Message,
		"failed":    status.Failed(),
		"pending":   status.Phase == registration.PhasePending,
		"confirmed": status.Phase == registration.PhaseConfirmed,
	}
}

func contactData(view ContactView) map[string]any {
	return map[string]any{
		"first_name": view.Message.FirstName,
		"last_name":  view.Message.LastName,
		"email":      view.Message.Email,
		"message":    view.Message.Message,
		"status": map[string]any{
			"phase":     view.Status.Phase.String(),
			"message":   view.Status.Message,
			"failed":    view.Status.Phase == contact.PhaseInvalid || view.Status.Phase == contact.PhaseFailed,
			"pending":   view.Status.Phase == contact.PhasePending,
			"confirmed": view.Status.Phase == contact.PhaseSent,
		},
	}
}

func scheduleData(schedule site.Schedule) map[string]any {
	days := make([]map[string]any, 0, len(schedule.Days))
	for _, day := range schedule.Days {
		entries := make([]map[string]any, 0, len(day.Entries))
		for _, entry := range day.Entries {
			entries = append(entries, map[string]any{
				"time":    entry.Time,
				"title":   entry.Title,
				"details": entry.Details,
			})
		}
		days = append(days, map[string]any{
			"name":    day.Name,
			"entries": entries,
		})
	}
	return map[string]any{
		"heading": schedule.Heading,
		"days":    days,
	}
}

func footerData(footer site.Footer) map[string]any {
	links := make([]map[string]any, 0, len(footer.Links))
	for _, link := range footer.Links {
		links = append(links, map[string]any{
			"name": link.Name,
			"url":  link.URL,
			"alt":  link.Alt,
			"icon": link.Icon,
		})
	}
	return map[string]any{
		"heading": footer.Heading,
		"links":   links,
	}
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
