// Package hacksite bundles the building blocks of the hackathon site: the
// registration and contact forms, the upstream endpoint targets and the
// static assets.
package hacksite

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-hacksite/pkg/contact"
	"github.com/goliatone/go-hacksite/pkg/contract"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/registration"
)

// NewRegistrationForm returns a team-mode registration form with two blank
// members. A confirmed submission redirects to redirectTo after delay. An
// empty redirectTo keeps the default page, a zero delay redirects at once and
// a negative delay keeps the default delay.
func NewRegistrationForm(redirectTo string, delay time.Duration) *registration.Form {
	return registration.NewForm(registration.WithRedirect(redirectTo, delay))
}

// NewContactForm returns an empty contact form.
func NewContactForm() *contact.Form {
	return contact.NewForm()
}

// Targets holds the two upstream endpoints the site posts to.
type Targets struct {
	Register *endpoint.Target
	Contact  *endpoint.Target
}

// NewTargets builds the endpoint targets. When validate is set, payloads are
// checked against the embedded contract before they leave the process. The
// contact reply is decoded whatever its Content-Type; the registration reply
// must be labelled JSON.
func NewTargets(ctx context.Context, registerURL, contactURL string, validate bool, options ...endpoint.Option) (Targets, error) {
	if validate {
		c, err := contract.Load(ctx)
		if err != nil {
			return Targets{}, fmt.Errorf("hacksite: load contract: %w", err)
		}
		options = append(options, endpoint.WithValidator(c))
	}
	client := endpoint.New(options...)
	return Targets{
		Register: client.Target(registerURL, contract.OperationRegister),
		Contact:  client.Target(contactURL, contract.OperationContact, endpoint.WithLenientContentType()),
	}, nil
}
