// Package endpoint posts JSON payloads to the external form endpoints and
// classifies their replies. Transport failures, non-JSON bodies and explicit
// `success: false` answers are kept apart so callers can show a generic
// message to visitors while operators still see what happened.
package endpoint
