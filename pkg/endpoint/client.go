package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-hacksite/internal/logging"
)

const bodyExcerptLimit = 512

// RequestValidator checks an outgoing payload against the wire contract for
// the named operation before it is sent.
type RequestValidator interface {
	ValidateRequest(ctx context.Context, operationID string, payload any) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used to reach endpoints.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport default in place.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithValidator enables contract checks on outgoing payloads.
func WithValidator(validator RequestValidator) Option {
	return func(c *Client) {
		c.validator = validator
	}
}

// Client sends JSON payloads to form endpoints. It never retries.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	validator  RequestValidator
}

// New constructs a Client applying the provided options.
func New(options ...Option) *Client {
	c := &Client{httpClient: http.DefaultClient}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// PostJSON encodes payload, posts it to url and decodes the reply. The
// operationID selects the contract schema when a validator is configured and
// is otherwise only used for logging.
func (c *Client) PostJSON(ctx context.Context, url, operationID string, payload any) (Reply, error) {
	return c.post(ctx, url, operationID, payload, false)
}

func (c *Client) post(ctx context.Context, url, operationID string, payload any, anyContentType bool) (Reply, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Reply{}, ErrMissingURL
	}
	logger := logging.FromContext(ctx).With("operation", operationID, "url", url)

	if c.validator != nil && operationID != "" {
		if err := c.validator.ValidateRequest(ctx, operationID, payload); err != nil {
			logger.Error("payload rejected by contract", "error", err)
			return Reply{}, fmt.Errorf("endpoint: %s: %w", operationID, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, fmt.Errorf("endpoint: encode payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("endpoint unreachable", "error", err)
		return Reply{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	logger = logger.With("status", resp.StatusCode, "elapsed", time.Since(started))

	contentType := resp.Header.Get("Content-Type")
	if !anyContentType && !isJSON(contentType) {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))
		logger.Warn("non-JSON response", "content_type", contentType, "body", string(excerpt))
		return Reply{}, fmt.Errorf("%w: content type %q", ErrUnexpectedResponse, contentType)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("read response", "error", err)
		return Reply{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		logger.Warn("malformed JSON response", "error", err, "content_type", contentType, "body", excerpt(raw))
		return Reply{}, fmt.Errorf("%w: decode body: %w", ErrMalformedReply, err)
	}

	logger.Debug("endpoint replied", "success", reply.Success)
	return reply, nil
}

// TargetOption configures a Target.
type TargetOption func(*Target)

// WithLenientContentType decodes the reply body as JSON whatever
// Content-Type the endpoint labels it with. Scripts that echo JSON without
// setting a header are served as text/html.
func WithLenientContentType() TargetOption {
	return func(t *Target) {
		t.anyContentType = true
	}
}

// Target binds a URL and operation so callers only supply payloads.
func (c *Client) Target(url, operationID string, options ...TargetOption) *Target {
	t := &Target{client: c, url: strings.TrimSpace(url), operationID: operationID}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Target is a single endpoint reachable through a Client.
type Target struct {
	client         *Client
	url            string
	operationID    string
	anyContentType bool
}

// Send posts payload to the bound URL.
func (t *Target) Send(ctx context.Context, payload any) (Reply, error) {
	if t == nil || t.client == nil {
		return Reply{}, ErrMissingURL
	}
	return t.client.post(ctx, t.url, t.operationID, payload, t.anyContentType)
}

// URL returns the bound endpoint URL.
func (t *Target) URL() string {
	if t == nil {
		return ""
	}
	return t.url
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func excerpt(raw []byte) string {
	if len(raw) > bodyExcerptLimit {
		raw = raw[:bodyExcerptLimit]
	}
	return string(raw)
}
