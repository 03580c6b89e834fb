// Package fetch executes HTTP requests against rate-limited upstreams with
// exponential backoff. A Client retries a single request; a Session adds a
// cross-request abort once an upstream keeps answering 429, so a multi-page
// operation can stop early instead of hammering a throttled endpoint.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/pkg/version"
	"go.uber.org/zap"
)

// ErrRateLimited indicates the upstream kept returning HTTP 429 until the
// retry or abort budget was exhausted.
var ErrRateLimited = errors.New("upstream rate limited")

// ErrUnavailable indicates the upstream failed with a non-429 status,
// a transport error, or a malformed response after all retries.
var ErrUnavailable = errors.New("upstream unavailable")

// Policy controls the retry schedule shared by every upstream call.
type Policy struct {
	// MaxAttempts bounds the number of tries for a single request.
	MaxAttempts int
	// InitialDelay is the base of the exponential backoff series.
	InitialDelay time.Duration
	// RateLimitAbort is the number of consecutive 429 responses a Session
	// tolerates across requests before aborting the whole operation.
	RateLimitAbort int
}

// DefaultPolicy returns the retry policy used against the public endpoints.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    4,
		InitialDelay:   3 * time.Second,
		RateLimitAbort: 5,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 4
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 3 * time.Second
	}
	if p.RateLimitAbort <= 0 {
		p.RateLimitAbort = 5
	}
	return p
}

// Request describes one HTTP request. The body is held as bytes so the
// request can be rebuilt for every retry attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Client executes requests with retries and rate-limit aware backoff.
type Client struct {
	httpClient *http.Client
	policy     Policy
	log        *zap.Logger

	// sleep is swapped out in tests to observe the backoff schedule.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a retrying client with the given policy.
func NewClient(policy Policy, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     policy.withDefaults(),
		log:        log,
		sleep:      sleepContext,
	}
}

// Policy returns the retry policy the client was built with.
func (c *Client) Policy() Policy {
	return c.policy
}

// Do executes the request, retrying up to the policy's MaxAttempts.
// On HTTP 429 the Retry-After header (seconds) overrides the next delay;
// otherwise the delay doubles from InitialDelay. The returned error wraps
// ErrRateLimited when the final failure was a 429, ErrUnavailable otherwise.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	return c.do(ctx, req, nil)
}

// Session tracks consecutive 429 responses across the requests of one
// multi-page operation. Any successful response resets the counter; once it
// reaches the policy's RateLimitAbort the session fails fast with
// ErrRateLimited so the caller can return what it has aggregated so far.
type Session struct {
	client         *Client
	consecutive429 int
}

// NewSession creates a session for one paginated operation.
func (c *Client) NewSession() *Session {
	return &Session{client: c}
}

// Do executes the request through the owning client, feeding the session's
// consecutive rate-limit counter.
func (s *Session) Do(ctx context.Context, req Request) ([]byte, error) {
	return s.client.do(ctx, req, s)
}

func (c *Client) do(ctx context.Context, req Request, sess *Session) ([]byte, error) {
	delay := c.policy.InitialDelay
	lastRateLimited := false
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		body, status, header, err := c.send(ctx, req)
		switch {
		case err != nil:
			lastRateLimited = false
			lastErr = err
			c.log.Warn("request failed",
				zap.String("url", req.URL),
				zap.Int("attempt", attempt),
				zap.Error(err))

		case status == http.StatusTooManyRequests:
			lastRateLimited = true
			lastErr = fmt.Errorf("status %d", status)
			if sess != nil {
				sess.consecutive429++
				if sess.consecutive429 >= c.policy.RateLimitAbort {
					c.log.Warn("too many consecutive 429 responses, aborting operation",
						zap.String("url", req.URL),
						zap.Int("consecutive", sess.consecutive429))
					return nil, fmt.Errorf("%d consecutive 429 responses: %w", sess.consecutive429, ErrRateLimited)
				}
			}
			if ra := retryAfter(header); ra > 0 {
				delay = ra
			}
			c.log.Warn("request throttled",
				zap.String("url", req.URL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))

		case status >= 200 && status < 300:
			if sess != nil {
				sess.consecutive429 = 0
			}
			return body, nil

		default:
			lastRateLimited = false
			lastErr = fmt.Errorf("status %d", status)
			c.log.Warn("request failed",
				zap.String("url", req.URL),
				zap.Int("attempt", attempt),
				zap.Int("status", status))
		}

		if attempt < c.policy.MaxAttempts {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}
	}

	if lastRateLimited {
		return nil, fmt.Errorf("%d attempts exhausted (%v): %w", c.policy.MaxAttempts, lastErr, ErrRateLimited)
	}
	return nil, fmt.Errorf("%d attempts exhausted (%v): %w", c.policy.MaxAttempts, lastErr, ErrUnavailable)
}

// send performs one attempt and fully drains the response body.
func (c *Client) send(ctx context.Context, req Request) ([]byte, int, http.Header, error) {
	var reader io.Reader
	if len(req.Body) > 0 {
		reader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", version.UserAgent())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, resp.Header, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
