// Package server serves the hackathon site: the home page, the registration
// and contact forms and the static assets.
package server

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/contact"
	"github.com/goliatone/go-hacksite/pkg/registration"
	"github.com/goliatone/go-hacksite/pkg/render"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the base logger. Requests log through a child of it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStatic serves files from static under /static/.
func WithStatic(static fs.FS) Option {
	return func(s *Server) {
		s.static = static
	}
}

// WithRedirect sets the navigation scheduled after a confirmed registration.
// It follows registration.WithRedirect: a zero delay redirects at once and a
// negative one keeps the default.
func WithRedirect(to string, after time.Duration) Option {
	return func(s *Server) {
		s.redirectTo = to
		s.redirectAfter = after
	}
}

// WithTokenSource replaces the generator of form tokens.
func WithTokenSource(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// Server holds the handlers and their collaborators.
type Server struct {
	pages    *render.Pages
	register registration.Submitter
	contact  contact.Submitter

	static   fs.FS
	logger   *slog.Logger
	newToken func() string
	inflight *inflight

	redirectTo    string
	redirectAfter time.Duration
}

// New wires a Server. Both submitters are required.
func New(pages *render.Pages, register registration.Submitter, contactSubmitter contact.Submitter, options ...Option) (*Server, error) {
	if pages == nil {
		return nil, errors.New("server: pages are required")
	}
	if register == nil || contactSubmitter == nil {
		return nil, errors.New("server: registration and contact submitters are required")
	}
	s := &Server{
		pages:         pages,
		register:      register,
		contact:       contactSubmitter,
		logger:        logging.FromContext(context.Background()),
		newToken:      uuid.NewString,
		inflight:      newInflight(),
		redirectTo:    registration.DefaultRedirectTo,
		redirectAfter: registration.DefaultRedirectDelay,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/contact", s.handleContact)
	if s.static != nil {
		mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return withRequestLogging(s.logger, mux)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	out, err := s.pages.Home(render.ContactView{})
	s.writePage(w, r, http.StatusOK, out, err)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, body []byte, err error) {
	if err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.FromContext(r.Context()).Warn("write response", "error", err)
	}
}

func methodNotAllowedWith(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
