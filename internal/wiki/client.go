package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

// PageData is the result of fetching one wiki page.
type PageData struct {
	// Title is the canonical title as reported by the wiki, with its
	// original spacing. May differ from the requested identifier when the
	// request was redirected.
	Title string

	// HTML is the rendered article markup.
	HTML string
}

// Client fetches pages from a MediaWiki-compatible API.
// It is safe for use by a single crawl at a time; the crawl loop issues
// fetches sequentially.
type Client struct {
	// httpClient performs the actual requests.
	httpClient *http.Client

	// baseURL is the root of the wiki, e.g. https://hollowknight.fandom.com.
	baseURL string

	// limiter spaces out requests as a politeness measure.
	limiter *rate.Limiter

	// userAgent is the User-Agent header to send.
	userAgent string

	// headers are additional headers to send with every request.
	headers map[string]string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the wiki base URL. Useful for self-hosted
// MediaWiki installations and for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders sets additional HTTP headers sent with every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithDelay sets the minimum spacing between requests.
// A zero delay disables rate limiting.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// NewClient creates a Client for the named wiki.
// For Fandom-hosted wikis the name is the subdomain ("hollowknight" for
// hollowknight.fandom.com); use WithBaseURL for anything else.
func NewClient(wikiName string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     fmt.Sprintf("https://%s.fandom.com", strings.ToLower(wikiName)),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		userAgent:   "wikigraph/1.0 (+https://github.com/wikigraph/wikigraph)",
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// parseResponse mirrors the subset of the action=parse JSON response
// that we consume.
type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// FetchPage fetches a single page's rendered HTML and canonical title.
// Redirects are resolved by the wiki (redirects=1), so the returned title
// is the redirect target's title when the requested name was an alias.
//
// Returns ErrPageNotFound (wrapped) when the page does not exist, and
// other sentinel errors from this package for transport and API failures.
func (c *Client) FetchPage(ctx context.Context, name string) (*PageData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("action", "parse")
	query.Set("format", "json")
	query.Set("prop", "text")
	query.Set("redirects", "1")
	query.Set("page", name)

	endpoint := c.baseURL + "/api.php?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", name, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d fetching %q", ErrBadStatus, resp.StatusCode, name)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %q: %w", name, err)
	}

	var parsed parseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if parsed.Error != nil {
		if parsed.Error.Code == "missingtitle" {
			return nil, fmt.Errorf("%w: %q", ErrPageNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s (%s)", ErrAPIError, parsed.Error.Info, parsed.Error.Code)
	}

	if parsed.Parse == nil || parsed.Parse.Title == "" {
		return nil, fmt.Errorf("%w: missing parse result for %q", ErrMalformedResponse, name)
	}

	return &PageData{
		Title: parsed.Parse.Title,
		HTML:  parsed.Parse.Text.Content,
	}, nil
}

// BaseURL returns the wiki base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeTitle converts a wiki-reported title into the identifier form
// used throughout the crawl: whitespace trimmed, spaces replaced with
// underscores, and Unicode normalized to NFC so that percent-decoded link
// identifiers and API titles compare equal.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}
