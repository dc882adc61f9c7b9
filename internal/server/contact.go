package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-hacksite/internal/logging"
	"github.com/goliatone/go-hacksite/pkg/contact"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/render"
)

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		out, err := s.pages.Contact(render.ContactView{})
		s.writePage(w, r, http.StatusOK, out, err)
	case http.MethodPost:
		s.postContact(w, r)
	default:
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead, http.MethodPost)
	}
}

func (s *Server) postContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := contact.FromMessage(contact.Message{
		FirstName: strings.TrimSpace(r.PostForm.Get("first_name")),
		LastName:  strings.TrimSpace(r.PostForm.Get("last_name")),
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		Message:   strings.TrimSpace(r.PostForm.Get("message")),
	})

	status, err := form.Submit(r.Context(), s.contact)
	code := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, contact.ErrInvalid), errors.Is(err, contact.ErrRejected):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, endpoint.ErrTransport), errors.Is(err, endpoint.ErrUnexpectedResponse):
		code = http.StatusBadGateway
	default:
		logging.FromContext(r.Context()).Error("contact submit", "error", err)
		code = http.StatusInternalServerError
	}

	out, rerr := s.pages.Contact(render.ContactView{Message: form.Message(), Status: status})
	s.writePage(w, r, code, out, rerr)
}
