// Package httpclient wraps fasthttp for the outbound calls made by adapters.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// maxRedirects bounds the redirect chain followed by Get.
const maxRedirects = 5

// Client performs GET requests bounded by a default timeout or the context deadline,
// whichever is earlier.
type Client struct {
	c         *fasthttp.Client
	timeout   time.Duration
	userAgent string
}

// New creates a new Client.
func New(timeout time.Duration, userAgent string) *Client {
	return &Client{
		c: &fasthttp.Client{
			Name:                     userAgent,
			MaxIdleConnDuration:      30 * time.Second,
			NoDefaultUserAgentHeader: userAgent == "",
			MaxResponseBodySize:      8 << 20,
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Get fetches url and returns the body of a 200 response. Redirects are
// followed; the whole chain shares one deadline.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for redirects := 0; ; redirects++ {
		if err := c.c.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
		code := resp.StatusCode()
		if !fasthttp.StatusCodeIsRedirect(code) {
			break
		}
		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if len(location) == 0 {
			return nil, &StatusError{URL: req.URI().String(), Code: code}
		}
		if redirects == maxRedirects {
			return nil, fmt.Errorf("GET %s: stopped after %d redirects", url, maxRedirects)
		}
		// Relative locations resolve against the current URI.
		req.URI().UpdateBytes(location)
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, &StatusError{URL: req.URI().String(), Code: code}
	}

	// The response is released on return.
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}

// StatusError reports a non-200 answer.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}
