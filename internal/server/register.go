package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/registration"
	"github.com/goliatone/go-hacksite/pkg/render"
)

// Actions posted by the registration page.
const (
	actionSubmit       = "submit"
	actionAddMember    = "add-member"
	actionRemoveMember = "remove-member:"
	actionToggle       = "toggle:"
)

// errUnknownAction is returned for action values the page never renders.
var errUnknownAction = errors.New("server: unknown form action")

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		form := registration.NewForm(s.formOptions()...)
		s.renderRegister(w, r, http.StatusOK, s.newToken(), form.Snapshot())
	case http.MethodPost:
		s.postRegister(w, r)
	default:
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead, http.MethodPost)
	}
}

func (s *Server) formOptions() []registration.Option {
	return []registration.Option{registration.WithRedirect(s.redirectTo, s.redirectAfter)}
}

func (s *Server) postRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(r.PostForm.Get("token"))
	if token == "" {
		token = s.newToken()
	}
	form := registration.FromState(stateFromValues(r.PostForm), s.formOptions()...)

	action := strings.TrimSpace(r.PostForm.Get("action"))
	if action == "" {
		action = actionSubmit
	}
	if action != actionSubmit {
		if err := applyEdit(form, action); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.renderRegister(w, r, http.StatusOK, token, form.Snapshot())
		return
	}

	if !s.inflight.acquire(token) {
		http.Error(w, "this registration is already being submitted", http.StatusConflict)
		return
	}
	defer s.inflight.release(token)

	ctx := r.Context()
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("attempt_id", uuid.NewString()))

	status, err := form.Submit(ctx, s.register)
	code := http.StatusOK
	switch {
	case err == nil:
		if redirect := status.Redirect; redirect != nil {
			w.Header().Set("Refresh", refreshHeader(redirect))
		}
	case errors.As(err, new(*registration.ValidationError)), errors.Is(err, registration.ErrRejected):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, endpoint.ErrTransport), errors.Is(err, endpoint.ErrUnexpectedResponse):
		code = http.StatusBadGateway
	default:
		logging.FromContext(ctx).Error("registration submit", "error", err)
		code = http.StatusInternalServerError
	}
	s.renderRegister(w, r, code, token, form.Snapshot())
}

func (s *Server) renderRegister(w http.ResponseWriter, r *http.Request, code int, token string, state registration.State) {
	out, err := s.pages.Register(render.RegisterView{Token: token, State: state})
	s.writePage(w, r, code, out, err)
}

// applyEdit runs one non-submitting action against form.
func applyEdit(form *registration.Form, action string) error {
	switch {
	case action == actionAddMember:
		form.AddMember()
	case strings.HasPrefix(action, actionRemoveMember):
		index, err := strconv.Atoi(strings.TrimPrefix(action, actionRemoveMember))
		if err != nil {
			return fmt.Errorf("%w: %q", errUnknownAction, action)
		}
		form.RemoveMember(index)
	case strings.HasPrefix(action, actionToggle):
		mode, ok := registration.ParseMode(strings.TrimPrefix(action, actionToggle))
		if !ok {
			return fmt.Errorf("%w: %q", errUnknownAction, action)
		}
		form.ToggleRegistrationType(mode)
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
	return nil
}

// stateFromValues reads the posted registration fields. Members are read as
// members.<i>.name|email|role until an index with none of the keys present.
func stateFromValues(values url.Values) registration.State {
	mode, ok := registration.ParseMode(values.Get("mode"))
	if !ok {
		mode = registration.ModeTeam
	}
	state := registration.State{
		Mode:             mode,
		TeamName:         values.Get("team_name"),
		LeaderPhone:      values.Get("leader_phone"),
		IdeaDescription:  values.Get("idea_description"),
		Competence:       values.Get("competence"),
		RequestAddMember: parseBool(values.Get("request_add_member")),
	}
	for i := 0; i < registration.MaxMembers; i++ {
		prefix := "members." + strconv.Itoa(i) + "."
		_, hasName := values[prefix+string(registration.FieldName)]
		_, hasEmail := values[prefix+string(registration.FieldEmail)]
		_, hasRole := values[prefix+string(registration.FieldRole)]
		if !hasName && !hasEmail && !hasRole {
			break
		}
		state.Members = append(state.Members, registration.Member{
			Name:  values.Get(prefix + string(registration.FieldName)),
			Email: values.Get(prefix + string(registration.FieldEmail)),
			Role:  values.Get(prefix + string(registration.FieldRole)),
		})
	}
	return state
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

func refreshHeader(redirect *registration.Redirect) string {
	secs := int(redirect.After.Seconds())
	if redirect.After%time.Second != 0 {
		secs++
	}
	return strconv.Itoa(secs) + "; url=" + redirect.To
}
