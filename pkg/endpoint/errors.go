package endpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps failures to reach the endpoint or read its reply.
	ErrTransport = errors.New("endpoint: transport failure")
	// ErrUnexpectedResponse signals a reply that is not a JSON document.
	ErrUnexpectedResponse = errors.New("endpoint: unexpected response")
	// ErrMalformedReply signals a body that could not be decoded as JSON. It
	// wraps ErrUnexpectedResponse.
	ErrMalformedReply = fmt.Errorf("%w: malformed JSON", ErrUnexpectedResponse)
	// ErrMissingURL is returned when a target has no URL configured.
	ErrMissingURL = errors.New("endpoint: target url is required")
)
