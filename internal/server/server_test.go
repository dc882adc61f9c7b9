package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-hacksite/pkg/contact"
	"github.com/goliatone/go-hacksite/pkg/contract"
	"github.com/goliatone/go-hacksite/pkg/endpoint"
	"github.com/goliatone/go-hacksite/pkg/registration"
	"github.com/goliatone/go-hacksite/pkg/render"
	"github.com/goliatone/go-hacksite/pkg/site"
	"github.com/goliatone/go-hacksite/pkg/testsupport"
)

type harness struct {
	server   *httptest.Server
	register *testsupport.FakeEndpoint
	contact  *testsupport.FakeEndpoint
}

func newHarness(t *testing.T, options ...Option) *harness {
	t.Helper()

	content, err := site.Default()
	if err != nil {
		t.Fatalf("site.Default: %v", err)
	}
	pages, err := render.NewPages(content)
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}

	h := &harness{
		register: testsupport.NewFakeEndpoint(t, testsupport.JSON(`{"success":true}`)),
		contact:  testsupport.NewFakeEndpoint(t, testsupport.JSON(`{"success":true}`)),
	}
	client := endpoint.New()

	options = append([]Option{
		WithStatic(fstest.MapFS{"site.css": {Data: []byte("body{}")}}),
		WithTokenSource(func() string { return "fixed-token" }),
	}, options...)
	srv, err := New(pages,
		client.Target(h.register.URL(), contract.OperationRegister),
		client.Target(h.contact.URL(), contract.OperationContact, endpoint.WithLenientContentType()),
		options...,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.server = httptest.NewServer(srv.Handler())
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(h.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (h *harness) post(t *testing.T, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := http.PostForm(h.server.URL+path, values)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(raw)
}

func teamValues(action string, roles ...string) url.Values {
	values := url.Values{
		"token":            {"tok-1"},
		"mode":             {"team"},
		"action":           {action},
		"team_name":        {"Healers"},
		"leader_phone":     {"+213000000"},
		"idea_description": {"Triage app"},
	}
	for i, role := range roles {
		prefix := "members." + string(rune('0'+i)) + "."
		values.Set(prefix+"name", "Member"+string(rune('A'+i)))
		values.Set(prefix+"email", "m"+string(rune('a'+i))+"@example.com")
		values.Set(prefix+"role", role)
	}
	return values
}

func TestHomePage(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, fragment := range []string{"Day 1", "Day 2", "Follow us on our social networks", `action="/contact"`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("home page missing %q", fragment)
		}
	}
}

func TestRoutingEdges(t *testing.T) {
	h := newHarness(t)

	if resp, _ := h.get(t, "/nope"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if resp, body := h.get(t, "/healthz"); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("unexpected healthz %d %q", resp.StatusCode, body)
	}
	if resp, body := h.get(t, "/static/site.css"); resp.StatusCode != http.StatusOK || body != "body{}" {
		t.Fatalf("unexpected static %d %q", resp.StatusCode, body)
	}

	req, _ := http.NewRequest(http.MethodPut, h.server.URL+"/register", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected Allow to list POST, got %q", allow)
	}
}

func TestRegisterGetRendersNewForm(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/register")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `name="token" value="fixed-token"`) {
		t.Fatalf("expected token in form")
	}
	if !strings.Contains(body, `name="members.1.name"`) || strings.Contains(body, `name="members.2.name"`) {
		t.Fatalf("expected exactly two member rows")
	}
}

func TestRegisterEditActions(t *testing.T) {
	h := newHarness(t)

	_, body := h.post(t, "/register", teamValues("add-member", "IT", ""))
	if !strings.Contains(body, `name="members.2.name"`) {
		t.Fatalf("add-member did not add a row")
	}
	if !strings.Contains(body, `value="MemberB"`) {
		t.Fatalf("existing member values were not kept")
	}

	_, body = h.post(t, "/register", teamValues("remove-member:0", "IT", "Design"))
	if !strings.Contains(body, `value="MemberB"`) || strings.Contains(body, `value="MemberA"`) {
		t.Fatalf("remove-member:0 did not remove the first row")
	}

	_, body = h.post(t, "/register", teamValues("toggle:individual", "IT", "Design"))
	if !strings.Contains(body, `name="competence"`) || strings.Contains(body, `value="MemberA"`) {
		t.Fatalf("toggle did not reset to an individual form")
	}

	resp, _ := h.post(t, "/register", teamValues("explode", "IT"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", resp.StatusCode)
	}

	if got := len(h.register.Requests()); got != 0 {
		t.Fatalf("edit actions must not reach the endpoint, got %d requests", got)
	}
}

func TestRegisterSubmitInvalid(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/register", teamValues("submit", "Design", "Design"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, registration.MsgRoleCoverage) {
		t.Fatalf("expected role message in page")
	}

	_, body = h.post(t, "/register", teamValues("submit", "IT", "Design"))
	if !strings.Contains(body, registration.MsgTeamSize) {
		t.Fatalf("expected team size message in page")
	}

	if got := len(h.register.Requests()); got != 0 {
		t.Fatalf("invalid submits must not reach the endpoint, got %d requests", got)
	}
}

func TestRegisterSubmitConfirmed(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/register", teamValues("submit", "IT", "Medical", "Design", "Marketing"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Refresh"); got != "2; url=/" {
		t.Fatalf("unexpected Refresh header %q", got)
	}
	if !strings.Contains(body, registration.MsgSuccess) {
		t.Fatalf("expected success message")
	}

	requests := h.register.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	sent := requests[0].Body
	if sent["isTeam"] != true || sent["teamName"] != "Healers" || sent["leaderName"] != "MemberA" {
		t.Fatalf("unexpected payload %v", sent)
	}
	if members, ok := sent["members"].([]any); !ok || len(members) != 4 {
		t.Fatalf("expected four members, got %v", sent["members"])
	}
}

func TestRegisterImplicitSubmitKeepsFields(t *testing.T) {
	h := newHarness(t)

	values := teamValues("", "Design", "Design")
	values.Del("action")
	resp, body := h.post(t, "/register", values)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected the form to be submitted and rejected, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, registration.MsgRoleCoverage) {
		t.Fatalf("expected role message in page")
	}
	for _, kept := range []string{`value="Healers"`, `value="+213000000"`, `value="MemberA"`, `value="mb@example.com"`} {
		if !strings.Contains(body, kept) {
			t.Fatalf("field %s was reset", kept)
		}
	}

	values = url.Values{
		"token":           {"tok-1"},
		"mode":            {"individual"},
		"members.0.name":  {"Ada"},
		"members.0.email": {"ada@example.com"},
		"members.0.role":  {"IT"},
		"competence":      {"Nursing"},
	}
	resp, body = h.post(t, "/register", values)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected individual submit to succeed, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, registration.MsgSuccess) {
		t.Fatalf("expected success message")
	}
	requests := h.register.Requests()
	if len(requests) != 1 || requests[0].Body["isTeam"] != false || requests[0].Body["leaderName"] != "Ada" {
		t.Fatalf("unexpected requests %v", requests)
	}
}

func TestRegisterImmediateRedirect(t *testing.T) {
	h := newHarness(t, WithRedirect("/", 0))

	resp, _ := h.post(t, "/register", teamValues("submit", "IT", "Medical", "Design", "Marketing"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Refresh"); got != "0; url=/" {
		t.Fatalf("unexpected Refresh header %q", got)
	}
}

func TestRegisterSubmitRejections(t *testing.T) {
	cases := []struct {
		name     string
		response testsupport.Response
		status   int
		message  string
	}{
		{"server message", testsupport.JSON(`{"success":false,"error":"Team name taken"}`), http.StatusUnprocessableEntity, "Team name taken"},
		{"no message", testsupport.JSON(`{"success":false}`), http.StatusUnprocessableEntity, registration.MsgUnknownError},
		{"non json", testsupport.HTML(`<html>ad</html>`), http.StatusBadGateway, registration.MsgNonJSONResponse},
		{"malformed json", testsupport.JSON(`{"success":`), http.StatusBadGateway, registration.MsgSubmissionFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.register.Respond(tc.response)

			resp, body := h.post(t, "/register", teamValues("submit", "IT", "Medical", "Design", "Marketing"))
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			if !strings.Contains(body, tc.message) {
				t.Fatalf("expected %q in page", tc.message)
			}
			if resp.Header.Get("Refresh") != "" {
				t.Fatalf("rejected submissions must not redirect")
			}
		})
	}
}

func TestRegisterSubmitInFlight(t *testing.T) {
	h := newHarness(t)
	arrived, release := h.register.Hold()
	defer release()

	values := teamValues("submit", "IT", "Medical", "Design", "Marketing")
	first := make(chan int, 1)
	go func() {
		resp, err := http.PostForm(h.server.URL+"/register", values)
		if err != nil {
			first <- 0
			return
		}
		resp.Body.Close()
		first <- resp.StatusCode
	}()
	<-arrived

	resp, _ := h.post(t, "/register", values)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 while the first submit is pending, got %d", resp.StatusCode)
	}

	release()
	if code := <-first; code != http.StatusOK {
		t.Fatalf("expected first submit to succeed, got %d", code)
	}
	if got := len(h.register.Requests()); got != 1 {
		t.Fatalf("expected exactly one upstream request, got %d", got)
	}
}

func TestContactPost(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "/contact", url.Values{"first_name": {"Ada"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, contact.MsgMissingFields) {
		t.Fatalf("expected missing fields message")
	}

	resp, body = h.post(t, "/contact", url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {"ada@example.com"},
		"message":    {"Is there parking?"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, contact.MsgSent) {
		t.Fatalf("expected sent message")
	}
	if strings.Contains(body, "Is there parking?") {
		t.Fatalf("fields should be cleared after sending")
	}

	requests := h.contact.Requests()
	if len(requests) != 1 || requests[0].Body["email"] != "ada@example.com" {
		t.Fatalf("unexpected contact requests %v", requests)
	}
}

func TestContactJSONServedAsHTML(t *testing.T) {
	h := newHarness(t)
	h.contact.Respond(testsupport.Response{ContentType: "text/html; charset=UTF-8", Body: `{"success":true}`})

	resp, body := h.post(t, "/contact", url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {"ada@example.com"},
		"message":    {"Hello"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, contact.MsgSent) {
		t.Fatalf("expected sent message")
	}
}

func TestContactTransportFailure(t *testing.T) {
	h := newHarness(t)
	h.contact.Server.Close()

	resp, body := h.post(t, "/contact", url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {"ada@example.com"},
		"message":    {"Hello"},
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, contact.MsgFailed) {
		t.Fatalf("expected failure message")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Fatalf("expected error without pages")
	}
}
