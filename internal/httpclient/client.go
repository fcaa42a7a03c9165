// Package httpclient wraps outbound calls to the backend with a timeout and
// retry policy, classifies failed exchanges into the apperr taxonomy and
// reports them before handing the typed error back to the caller.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gosuda/agrotrack/internal/apperr"
)

// RequestIDHeader carries a fresh id on every attempt.
const RequestIDHeader = "X-Request-ID"

// Policy bounds a single call.
type Policy struct {
	Timeout    time.Duration // per attempt
	MaxRetries int           // extra attempts after a zero-status failure
	RetryDelay time.Duration
}

// DefaultPolicy is 30s per attempt and one retry after 1s.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:    30 * time.Second,
		MaxRetries: 1,
		RetryDelay: time.Second,
	}
}

// Reporter receives every classified failure before it is returned.
type Reporter interface {
	Report(ctx context.Context, err *apperr.Error)
}

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL     string
	http        *http.Client
	tokens      oauth2.TokenSource
	policy      Policy
	limiter     *rate.Limiter
	reporter    Reporter
	passthrough bool
}

// Option configures optional Client parameters.
type Option func(*Client)

// WithPolicy overrides the default timeout and retry policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit throttles attempts to rps requests per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTokenSource authenticates every attempt with a bearer token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithReporter sets the sink that is told about every classified failure.
func WithReporter(r Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithPassthrough makes the client return raw *FailedResponse values instead
// of classifying and reporting them.
func WithPassthrough() Option {
	return func(c *Client) {
		c.passthrough = true
	}
}

// New creates a Client for the given backend base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens != nil {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *c.http
		authed.Transport = &oauth2.Transport{Source: c.tokens, Base: base}
		c.http = &authed
	}

	return c
}

// Request describes one logical call; retries reuse it.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Quiet  bool // do not report a failure, only return it
}

// Response is a successful (2xx) exchange.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	URL    string
}

// CallOption adjusts a Request built by the JSON helpers.
type CallOption func(*Request)

// Quiet suppresses reporting, e.g. for existence probes where 404 is expected.
func Quiet() CallOption {
	return func(r *Request) {
		r.Quiet = true
	}
}

// WithQuery appends query parameters.
func WithQuery(q url.Values) CallOption {
	return func(r *Request) {
		r.Query = q
	}
}

// Do runs the request under the policy. On failure it returns an *apperr.Error
// (or a *FailedResponse in passthrough mode).
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("httpclient.Client.Do: encode body: %w", err)
		}
		payload = b
	}

	resp, failed := c.execute(ctx, req, payload)
	if failed == nil {
		return resp, nil
	}

	if c.passthrough {
		return nil, failed
	}

	appErr := Classify(failed)
	log.Debug().
		Str("method", req.Method).
		Str("url", failed.URL).
		Int("status", failed.Status).
		Str("kind", appErr.Kind().String()).
		Msg("request failed")

	// A caller that abandoned the request is not waiting for a notification.
	if !req.Quiet && c.reporter != nil && !errors.Is(ctx.Err(), context.Canceled) {
		c.reporter.Report(ctx, appErr)
	}
	return nil, appErr
}

func (c *Client) execute(ctx context.Context, req Request, payload []byte) (*Response, *FailedResponse) {
	for attempt := 0; ; attempt++ {
		resp, failed := c.attempt(ctx, req, payload)
		if failed == nil {
			return resp, nil
		}
		if !c.retryable(ctx, failed) || attempt >= c.policy.MaxRetries {
			return nil, failed
		}

		log.Debug().Str("url", failed.URL).Int("attempt", attempt+1).Dur("delay", c.policy.RetryDelay).Msg("retrying after connectivity failure")

		timer := time.NewTimer(c.policy.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, contextFailure(ctx, failed.URL, ctx.Err())
		case <-timer.C:
		}
	}
}

// retryable holds only for zero-status transport failures that did not time
// out, were not caused locally and whose caller is still waiting.
func (c *Client) retryable(ctx context.Context, f *FailedResponse) bool {
	if f.Status != 0 || f.TimedOut || ctx.Err() != nil {
		return false
	}
	if _, local := apperr.As(f.Cause); local {
		return false
	}
	return true
}

func (c *Client) attempt(ctx context.Context, req Request, payload []byte) (*Response, *FailedResponse) {
	target := c.url(req.Path, req.Query)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait also fails early when the deadline would pass before a token frees up.
			return nil, contextFailure(ctx, target, err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, &FailedResponse{URL: target, Message: err.Error(), Cause: err}
	}
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportFailure(ctx, attemptCtx, target, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, transportFailure(ctx, attemptCtx, target, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FailedResponse{
			Status:  res.StatusCode,
			Body:    data,
			URL:     target,
			Message: fmt.Sprintf("Http failure response for %s: %d %s", target, res.StatusCode, http.StatusText(res.StatusCode)),
		}
	}

	return &Response{Status: res.StatusCode, Header: res.Header, Body: data, URL: target}, nil
}

func (c *Client) url(path string, query url.Values) string {
	target := c.baseURL
	if p := strings.TrimLeft(path, "/"); p != "" {
		target += "/" + p
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// transportFailure builds a zero-status failure, flagging it as timed out when
// a deadline expired: the attempt's, the caller's or one set on the transport.
func transportFailure(parent, attemptCtx context.Context, target string, err error) *FailedResponse {
	f := &FailedResponse{URL: target, Message: err.Error(), Cause: err}
	if errors.Is(parent.Err(), context.Canceled) {
		return f
	}
	var ne net.Error
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		f.TimedOut = true
	}
	return f
}

func contextFailure(ctx context.Context, target string, err error) *FailedResponse {
	if err == nil {
		err = context.Canceled
	}
	return &FailedResponse{
		URL:      target,
		Message:  err.Error(),
		Cause:    err,
		TimedOut: !errors.Is(ctx.Err(), context.Canceled),
	}
}
