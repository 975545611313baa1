package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the account-status host the summary endpoint lives on.
	DefaultBaseURL = "https://cursor.com"

	// UsageSummaryPath is the quota summary endpoint.
	UsageSummaryPath = "/api/usage-summary"

	// CookieName is the session cookie the upstream service authenticates with.
	CookieName = "WorkosCursorSessionToken"

	// DefaultMaxRedirects bounds manual redirect following. A rejected cookie
	// produces a login-page redirect chain, so exhausting this bound doubles
	// as the expired-auth signal.
	DefaultMaxRedirects = 5

	defaultTimeout = 30 * time.Second

	userAgent = "cursorwatch/1.0"
)

// Client performs authenticated GETs against the account-status endpoint,
// following redirects by hand so the session cookie is re-attached on every
// hop. Automatic redirect handling drops auth headers across host boundaries,
// which turns every redirect chain into a silent auth failure.
type Client struct {
	token        string
	proxyURL     string
	timeout      time.Duration
	maxRedirects int
}

// NewClient creates a transport client. token may be either the raw session
// token or a full cookie string pasted from a browser; proxyURL may be empty,
// in which case the usual proxy environment variables apply.
func NewClient(token, proxyURL string) *Client {
	return &Client{
		token:        token,
		proxyURL:     proxyURL,
		timeout:      defaultTimeout,
		maxRedirects: DefaultMaxRedirects,
	}
}

// SetTimeout overrides the per-request socket timeout (used by tests).
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Fetch executes one logical GET against rawURL and returns the response body.
// Redirects are followed up to the bound with headers rebuilt on every hop.
// All failures come back as a classified *Error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &http.Transport{
			Proxy: c.proxy,
		},
		// Redirects are handled manually below.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	target := rawURL
	for redirects := 0; ; redirects++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", &Error{Kind: KindConnection, URL: target, Err: err}
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cookie", c.cookieValue())

		resp, err := httpClient.Do(req)
		if err != nil {
			return "", classifyRequestError(target, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			// Redirect bodies are login pages or empty; discard without parsing.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			loc := resp.Header.Get("Location")
			if loc == "" {
				return "", &Error{Kind: KindRedirectWithoutLocation, URL: target}
			}
			if redirects >= c.maxRedirects {
				return "", &Error{Kind: KindTooManyRedirects, URL: target}
			}
			next, err := req.URL.Parse(loc)
			if err != nil {
				return "", &Error{Kind: KindRedirectWithoutLocation, URL: target, Err: err}
			}
			target = next.String()
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return "", &Error{Kind: KindHTTPStatus, Status: resp.StatusCode, URL: target}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", &Error{Kind: KindConnection, URL: target, Err: err}
		}
		return string(body), nil
	}
}

// cookieValue normalizes the configured token into a Cookie header value.
// Users paste either the bare token or the full cookie string copied from
// browser devtools; both must work.
func (c *Client) cookieValue() string {
	if strings.HasPrefix(c.token, CookieName) {
		return c.token
	}
	return CookieName + "=" + c.token
}

// proxy resolves the proxy for a request: explicit configuration first, then
// the conventional environment variables in both cases, then direct.
func (c *Client) proxy(req *http.Request) (*url.URL, error) {
	raw := c.proxyURL
	if raw == "" {
		for _, key := range []string{"https_proxy", "HTTPS_PROXY", "http_proxy", "HTTP_PROXY"} {
			if v := os.Getenv(key); v != "" {
				raw = v
				break
			}
		}
	}
	if raw == "" {
		return nil, nil
	}
	return url.Parse(raw)
}

func classifyRequestError(target string, err error) *Error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, URL: target, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, URL: target, Err: err}
	}
	return &Error{Kind: KindConnection, URL: target, Err: err}
}
