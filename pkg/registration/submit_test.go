package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/testsupport"
)

type stubSubmitter struct {
	reply    endpoint.Reply
	err      error
	payloads []any
}

func (s *stubSubmitter) Send(_ context.Context, payload any) (endpoint.Reply, error) {
	s.payloads = append(s.payloads, payload)
	return s.reply, s.err
}

func TestSubmitValidationFailureSendsNothing(t *testing.T) {
	stub := &stubSubmitter{reply: endpoint.Reply{Success: true}}

	f := NewForm()
	f.ToggleRegistrationType(ModeIndividual)
	status, err := f.Submit(context.Background(), stub)

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != RuleCompetence {
		t.Fatalf("expected competence failure, got %v", err)
	}
	if status.Phase != PhaseInvalid || status.Message != "Competence is required for individual registration." {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(stub.payloads) != 0 {
		t.Fatalf("expected no payload sent, got %d", len(stub.payloads))
	}
}

func TestSubmitTeamUnderFourAlwaysFails(t *testing.T) {
	for n := 1; n < MinTeamMembers; n++ {
		members := make([]Member, n)
		for i := range members {
			members[i].Role = "Medical"
		}
		stub := &stubSubmitter{reply: endpoint.Reply{Success: true}}
		_, err := FromState(State{Mode: ModeTeam, Members: members}).Submit(context.Background(), stub)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Rule != RuleTeamSize {
			t.Fatalf("%d members: expected team size failure, got %v", n, err)
		}
		if len(stub.payloads) != 0 {
			t.Fatalf("%d members: payload must not be sent", n)
		}
	}
}

func TestSubmitConfirmedSchedulesRedirect(t *testing.T) {
	stub := &stubSubmitter{reply: endpoint.Reply{Success: true}}
	f := fullTeam()

	status, err := f.Submit(context.Background(), stub)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status.Phase != PhaseConfirmed || status.Message != MsgSuccess {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Redirect == nil || status.Redirect.To != "/" || status.Redirect.After != 2*time.Second {
		t.Fatalf("expected redirect to / after 2s, got %+v", status.Redirect)
	}

	payload, ok := stub.payloads[0].(Payload)
	if !ok {
		t.Fatalf("expected Payload, got %T", stub.payloads[0])
	}
	if !payload.IsTeam || len(payload.Members) != 4 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if _, err := f.Submit(context.Background(), stub); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected already confirmed, got %v", err)
	}
	if len(stub.payloads) != 1 {
		t.Fatalf("confirmed form must not resend")
	}
}

func TestSubmitRedirectOption(t *testing.T) {
	stub := &stubSubmitter{reply: endpoint.Reply{Success: true}}
	f := FromState(fullTeam().Snapshot(), WithRedirect("/thanks", 5*time.Second))
	status, err := f.Submit(context.Background(), stub)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status.Redirect.To != "/thanks" || status.Redirect.After != 5*time.Second {
		t.Fatalf("unexpected redirect %+v", status.Redirect)
	}
}

func TestSubmitReplyMapping(t *testing.T) {
	cases := []struct {
		name    string
		reply   endpoint.Reply
		err     error
		message string
		is      error
	}{
		{
			name:    "server message shown verbatim",
			reply:   endpoint.Reply{Error: "Email already registered"},
			message: "Email already registered",
			is:      ErrRejected,
		},
		{
			name:    "fallback when server gives no message",
			reply:   endpoint.Reply{},
			message: MsgUnknownError,
			is:      ErrRejected,
		},
		{
			name:    "non-JSON reply",
			err:     fmt.Errorf("%w: content type %q", endpoint.ErrUnexpectedResponse, "text/html"),
			message: MsgNonJSONResponse,
			is:      endpoint.ErrUnexpectedResponse,
		},
		{
			name:    "JSON reply that fails to decode",
			err:     fmt.Errorf("%w: decode body: unexpected end of JSON input", endpoint.ErrMalformedReply),
			message: MsgSubmissionFailed,
			is:      endpoint.ErrUnexpectedResponse,
		},
		{
			name:    "transport failure",
			err:     fmt.Errorf("%w: dial tcp: refused", endpoint.ErrTransport),
			message: MsgSubmissionFailed,
			is:      endpoint.ErrTransport,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := fullTeam()
			status, err := f.Submit(context.Background(), &stubSubmitter{reply: tc.reply, err: tc.err})
			if !errors.Is(err, tc.is) {
				t.Fatalf("expected %v, got %v", tc.is, err)
			}
			if status.Phase != PhaseRejected || status.Message != tc.message {
				t.Fatalf("unexpected status %+v", status)
			}
			if f.Status() != status {
				t.Fatalf("form status not stored")
			}

			// A rejected attempt may be retried.
			status, err = f.Submit(context.Background(), &stubSubmitter{reply: endpoint.Reply{Success: true}})
			if err != nil || status.Phase != PhaseConfirmed {
				t.Fatalf("retry: %+v %v", status, err)
			}
		})
	}
}

func TestSubmitNilSubmitter(t *testing.T) {
	if _, err := fullTeam().Submit(context.Background(), nil); !errors.Is(err, ErrNoSubmitter) {
		t.Fatalf("expected ErrNoSubmitter, got %v", err)
	}
}

type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (b *blockingSubmitter) Send(ctx context.Context, _ any) (endpoint.Reply, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.entered)
	<-b.release
	return endpoint.Reply{Success: true}, nil
}

func TestSubmitRejectsConcurrentAttempt(t *testing.T) {
	blocker := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	f := fullTeam()

	done := make(chan Status, 1)
	go func() {
		status, _ := f.Submit(context.Background(), blocker)
		done <- status
	}()
	<-blocker.entered

	if got := f.Status().Phase; got != PhasePending {
		t.Fatalf("expected pending while in flight, got %s", got)
	}
	if _, err := f.Submit(context.Background(), blocker); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}

	close(blocker.release)
	if status := <-done; status.Phase != PhaseConfirmed {
		t.Fatalf("expected confirmation, got %+v", status)
	}
	if blocker.calls != 1 {
		t.Fatalf("expected exactly one send, got %d", blocker.calls)
	}
}

func TestSubmitOutcomeDroppedAfterReset(t *testing.T) {
	blocker := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	f := fullTeam()

	done := make(chan Status, 1)
	go func() {
		status, _ := f.Submit(context.Background(), blocker)
		done <- status
	}()
	<-blocker.entered
	f.ToggleRegistrationType(ModeIndividual)
	close(blocker.release)

	if status := <-done; status.Phase != PhaseConfirmed {
		t.Fatalf("caller still receives the outcome, got %+v", status)
	}
	if got := f.Status().Phase; got != PhaseIdle {
		t.Fatalf("reset form must stay idle, got %s", got)
	}
}

func TestSubmitThroughEndpoint(t *testing.T) {
	fake := testsupport.NewFakeEndpoint(t, testsupport.JSON(`{"success": true}`))
	target := endpoint.New().Target(fake.URL(), "register")

	status, err := fullTeam().Submit(context.Background(), target)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status.Phase != PhaseConfirmed || status.Redirect == nil {
		t.Fatalf("unexpected status %+v", status)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	body := reqs[0].Body
	if body["isTeam"] != true || body["leaderName"] != "n1" || body["competence"] != "" {
		t.Fatalf("unexpected body %v", body)
	}
	if members, ok := body["members"].([]any); !ok || len(members) != 4 {
		t.Fatalf("expected four members, got %v", body["members"])
	}
}

func TestSubmitNonJSONThroughEndpoint(t *testing.T) {
	fake := testsupport.NewFakeEndpoint(t, testsupport.HTML("<html>Checking your browser</html>"))
	target := endpoint.New().Target(fake.URL(), "register")

	status, err := fullTeam().Submit(context.Background(), target)
	if !errors.Is(err, endpoint.ErrUnexpectedResponse) {
		t.Fatalf("expected unexpected response error, got %v", err)
	}
	if status.Phase != PhaseRejected || status.Message != MsgNonJSONResponse {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestSubmitMalformedJSONThroughEndpoint(t *testing.T) {
	fake := testsupport.NewFakeEndpoint(t, testsupport.JSON(`{"success":`))
	target := endpoint.New().Target(fake.URL(), "register")

	status, err := fullTeam().Submit(context.Background(), target)
	if !errors.Is(err, endpoint.ErrMalformedReply) {
		t.Fatalf("expected malformed reply error, got %v", err)
	}
	if status.Phase != PhaseRejected || status.Message != MsgSubmissionFailed {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestSubmitReachesNetworkWhenUnreachable(t *testing.T) {
	fake := testsupport.NewFakeEndpoint(t, testsupport.JSON(`{}`))
	url := fake.URL()
	fake.Server.Close()

	status, err := fullTeam().Submit(context.Background(), endpoint.New().Target(url, "register"))
	if !errors.Is(err, endpoint.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if status.Message != MsgSubmissionFailed {
		t.Fatalf("unexpected status %+v", status)
	}
}
