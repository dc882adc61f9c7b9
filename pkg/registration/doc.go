// Package registration holds the state machine behind the hackathon
// registration form. A Form runs in one of two mutually exclusive modes, team
// or individual, enforces the structural rules of each mode before a
// submission, and maps the endpoint reply onto an explicit status:
//
//	Idle -> Invalid              local validation failed, nothing was sent
//	Idle -> Pending              payload handed to the submitter
//	Pending -> Confirmed         endpoint answered success, redirect scheduled
//	Pending -> Rejected          endpoint refused, answered non-JSON or was unreachable
//
// Editing an Invalid or Rejected form returns it to Idle. A Pending form
// refuses further submits until the in-flight attempt resolves.
package registration
