// Package openalex fetches work and author records from the OpenAlex API.
package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/matsen/citegraph/internal/logger"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit keeps requests under the documented 10 per second.
	RateLimit = 10.0

	// DefaultPerPage is the default page size. OpenAlex allows up to 200, but
	// large pages of full work records sometimes fail server-side.
	DefaultPerPage = 50

	// DefaultBackoffFactor scales the delay between retries.
	DefaultBackoffFactor = 0.1

	// minRetryWait and maxRetryWait bound a single delay between retries.
	// resty panics on a zero wait.
	minRetryWait = time.Millisecond
	maxRetryWait = 2 * time.Minute
)

// DefaultRetryHTTPCodes are the status codes retried by default.
var DefaultRetryHTTPCodes = []int{429, 500, 503}

// Client is a rate-limited OpenAlex API client.
type Client struct {
	rc      *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger

	httpClient    *http.Client
	baseURL       string
	email         string
	apiKey        string
	perPage       int
	maxRetries    int
	backoffFactor float64
	retryCodes    map[int]bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEmail sets the contact email sent as mailto, which admits requests to the
// polite pool.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithPerPage sets the number of records requested per page.
func WithPerPage(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithRetries retries a failed request up to maxRetries times when it fails with a
// network error or one of the given status codes. The n-th retry waits
// factor * 2^(n-1) seconds.
func WithRetries(maxRetries int, factor float64, codes []int) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoffFactor = factor
		c.retryCodes = make(map[int]bool, len(codes))
		for _, code := range codes {
			c.retryCodes[code] = true
		}
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(limit rate.Limit) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, 1)
	}
}

// WithLogger sets the logger used for progress and retry messages.
func WithLogger(l *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new OpenAlex API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		limiter:       rate.NewLimiter(rate.Limit(RateLimit), 1),
		log:           logger.Nop(),
		baseURL:       BaseURL,
		perPage:       DefaultPerPage,
		backoffFactor: DefaultBackoffFactor,
	}
	WithRetries(0, DefaultBackoffFactor, DefaultRetryHTTPCodes)(c)

	for _, opt := range opts {
		opt(c)
	}

	c.rc = resty.NewWithClient(c.httpClient).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{c}).
		SetRetryCount(c.maxRetries).
		SetRetryWaitTime(minRetryWait).
		SetRetryMaxWaitTime(maxRetryWait).
		SetRetryAfter(c.retryDelay).
		AddRetryCondition(c.shouldRetry).
		AddRetryHook(c.logRetry).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if err := c.limiter.Wait(r.Context()); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			return nil
		})
	if c.email != "" {
		c.rc.SetQueryParam("mailto", c.email)
	}
	if c.apiKey != "" {
		c.rc.SetQueryParam("api_key", c.apiKey)
	}

	return c
}

// PerPage returns the configured page size.
func (c *Client) PerPage() int {
	return c.perPage
}

// shouldRetry retries transport failures and the configured status codes. A nil
// response means the request never left (e.g. the rate limiter gave up).
func (c *Client) shouldRetry(resp *resty.Response, err error) bool {
	if resp == nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return c.retryCodes[resp.StatusCode()]
}

func (c *Client) retryDelay(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}
	secs := c.backoffFactor * math.Pow(2, float64(attempt-1))
	return max(time.Duration(secs*float64(time.Second)), minRetryWait), nil
}

func (c *Client) logRetry(resp *resty.Response, err error) {
	kv := []interface{}{"max_retries", c.maxRetries}
	if resp != nil {
		kv = append(kv, "attempt", resp.Request.Attempt, "status", resp.StatusCode())
	}
	if err != nil {
		kv = append(kv, "error", c.redact(err.Error()))
	}
	c.log.Warn("request failed", kv...)
}

// redact removes the API key from s. Transport errors quote the request URL,
// which carries the key as a query parameter.
func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(c.apiKey), "[REDACTED]")
	return strings.ReplaceAll(s, c.apiKey, "[REDACTED]")
}

// restyLogger passes resty's own messages to the client logger without the
// API key. resty logs every failed attempt as an error; the client reports
// those itself, so they go out at debug level.
type restyLogger struct{ c *Client }

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.c.log.Debug(l.c.redact(strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.c.log.Warn(l.c.redact(strings.TrimSpace(fmt.Sprintf(format, v...))))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.c.log.Debug(l.c.redact(strings.TrimSpace(fmt.Sprintf(format, v...))))
}

// pageResponse is the envelope of an OpenAlex list response.
type pageResponse struct {
	Meta struct {
		Count   int `json:"count"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

// errorResponse is the body of an OpenAlex error response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) get(ctx context.Context, q Query, page, perPage int) (*pageResponse, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("filter", q.filterParam()).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		Get("/" + q.Entity)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = c.redact(urlErr.URL)
		}
		return nil, fmt.Errorf("%w: %s", ErrNetworkError, c.redact(err.Error()))
	}

	if err := checkStatus(resp, q); err != nil {
		return nil, err
	}

	var pr pageResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &pr, nil
}

// checkStatus turns an error status into an *APIError, using the message of
// the JSON error body when there is one.
func checkStatus(resp *resty.Response, q Query) error {
	status := resp.StatusCode()
	if status < 400 {
		return nil
	}

	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Query:      q.String(),
	}
	var body errorResponse
	if json.Unmarshal(resp.Body(), &body) == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else if body.Error != "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}

// Count returns the number of records matching q.
func (c *Client) Count(ctx context.Context, q Query) (int, error) {
	pr, err := c.get(ctx, q, 1, 1)
	if err != nil {
		return 0, err
	}
	return pr.Meta.Count, nil
}

// Pages returns the number of pages needed to fetch every record matching q.
func (c *Client) Pages(ctx context.Context, q Query) (int, error) {
	count, err := c.Count(ctx, q)
	if err != nil {
		return 0, err
	}
	return pageCount(count, c.perPage), nil
}

// Page returns the raw records on one page (1-based) of q's results.
func (c *Client) Page(ctx context.Context, q Query, page int) ([]json.RawMessage, error) {
	pr, err := c.get(ctx, q, page, c.perPage)
	if err != nil {
		return nil, err
	}
	return pr.Results, nil
}

// Each calls fn for every record matching q, starting at startPage (1-based).
// It stops at the first error returned by fn.
func (c *Client) Each(ctx context.Context, q Query, startPage int, fn func(json.RawMessage) error) error {
	npages, err := c.Pages(ctx, q)
	if err != nil {
		return err
	}
	if startPage < 1 {
		startPage = 1
	}

	for p := startPage; p <= npages; p++ {
		c.log.Info("fetching page", "page", p, "pages", npages)
		records, err := c.Page(ctx, q, p)
		if err != nil {
			return fmt.Errorf("page %d/%d: %w", p, npages, err)
		}
		for _, rec := range records {
			if err := fn(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Resume positions a fetch after an interruption. Both fields are 1-based; the
// page applies to the first query only.
type Resume struct {
	Query int
	Page  int
}

// EachBatch OR-combines values into filter expressions of MaxValuesPerFilter
// values, builds a query for each with build, and calls fn for every record of
// every query. Records matching several expressions are delivered more than once.
func (c *Client) EachBatch(ctx context.Context, values []string, build func(expr string) Query, from Resume, fn func(json.RawMessage) error) error {
	exprs := ChunkValues(values, MaxValuesPerFilter)

	first := from.Query
	if first < 1 {
		first = 1
	}
	if first > 1 && first > len(exprs) {
		return fmt.Errorf("%w: start query %d is past the last query (%d)", ErrInvalidResume, first, len(exprs))
	}
	startPage := from.Page

	for i := first - 1; i < len(exprs); i++ {
		c.log.Info("running query", "query", i+1, "queries", len(exprs))
		if err := c.Each(ctx, build(exprs[i]), startPage, fn); err != nil {
			return fmt.Errorf("query %d/%d: %w", i+1, len(exprs), err)
		}
		startPage = 1
	}
	return nil
}
