// Package solr talks to the BV-BRC data API: cursor-paged Solr queries and
// RQL pass-through requests.
package solr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bvbrcdata/src/internal/httpx"
	"bvbrcdata/src/internal/metrics"
	"bvbrcdata/src/internal/sanitize"
)

// DefaultBaseURL is the public BV-BRC data API.
const DefaultBaseURL = "https://www.bv-brc.org/api"

const (
	solrQueryType = "application/solrquery+x-www-form-urlencoded"
	solrJSON      = "application/solr+json"
	plainJSON     = "application/json"
	errBodyLimit  = 4096
)

// Record is one document as returned by the API.
type Record map[string]any

// Config configures a Client.
type Config struct {
	BaseURL   string
	Headers   map[string]string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int
}

// Overrides replace the base URL and/or add headers for a single call.
type Overrides struct {
	BaseURL string
	Headers map[string]string
}

// IsZero reports whether the overrides change nothing.
func (o Overrides) IsZero() bool { return o.BaseURL == "" && len(o.Headers) == 0 }

// HTTPError is returned for non-2xx API responses.
type HTTPError struct {
	Core   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("bvbrc: %s: http %d: %s", e.Core, e.Status, e.Body)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	headers map[string]string
	doer    httpx.Doer
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithDoer replaces the HTTP client, mainly for tests.
func WithDoer(d httpx.Doer) Option { return func(c *Client) { c.doer = d } }

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New builds a client. An empty BaseURL selects DefaultBaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := DefaultBaseURL
	if strings.TrimSpace(cfg.BaseURL) != "" {
		base = sanitize.CleanURL(cfg.BaseURL)
		if base == "" {
			return nil, fmt.Errorf("bvbrc: invalid base url %q", cfg.BaseURL)
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		baseURL: base,
		headers: sanitize.CleanHeaders(cfg.Headers),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: timeout}
	}
	c.doer = httpx.NewLimited(c.doer, cfg.RateLimit, cfg.Burst)
	return c, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// WithOverrides returns a client for one call with the base URL replaced
// and the headers merged over the configured ones. The receiver is unchanged.
func (c *Client) WithOverrides(o Overrides) (*Client, error) {
	if o.IsZero() {
		return c, nil
	}
	d := *c
	if strings.TrimSpace(o.BaseURL) != "" {
		d.baseURL = sanitize.CleanURL(o.BaseURL)
		if d.baseURL == "" {
			return nil, fmt.Errorf("bvbrc: invalid base url override %q", o.BaseURL)
		}
	}
	if extra := sanitize.CleanHeaders(o.Headers); len(extra) > 0 {
		d.headers = make(map[string]string, len(c.headers)+len(extra))
		maps.Copy(d.headers, c.headers)
		maps.Copy(d.headers, extra)
	}
	return &d, nil
}

func (c *Client) coreURL(core string) string {
	return c.baseURL + "/" + strings.Trim(core, "/") + "/"
}

// send executes req, records metrics and turns non-2xx responses into *HTTPError.
// The caller closes the returned body.
func (c *Client) send(req *http.Request, core, accept string) (io.ReadCloser, error) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", accept)
	httpx.SetUA(req)
	id := httpx.SetRequestID(req)
	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		metrics.SolrRequests.WithLabelValues(core, "error").Inc()
		return nil, fmt.Errorf("bvbrc: %s: %w", core, err)
	}
	metrics.SolrRequests.WithLabelValues(core, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("bvbrc request", "core", core, "method", req.Method, "status", resp.StatusCode,
		"request_id", id, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, &HTTPError{Core: core, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp.Body, nil
}

// QueryOptions shape an RQL request.
type QueryOptions struct {
	Limit  int
	Select []string
	Sort   string
}

// Query sends an RQL filter (for example "eq(genome_id,208964.12)") to a core
// and returns the decoded documents of the single response page.
func (c *Client) Query(ctx context.Context, core, rql string, opts QueryOptions) ([]Record, error) {
	if strings.TrimSpace(core) == "" {
		return nil, errors.New("bvbrc: empty core")
	}
	endpoint := c.coreURL(core) + "?" + buildRQL(rql, opts)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bvbrc: %s: %w", core, err)
	}
	body, err := c.send(req, core, plainJSON)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	var out []Record
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("bvbrc: %s: decode: %w", core, err)
	}
	return out, nil
}

func buildRQL(rql string, opts QueryOptions) string {
	var parts []string
	if s := strings.Trim(strings.TrimSpace(rql), "&"); s != "" {
		parts = append(parts, strings.ReplaceAll(s, " ", "%20"))
	}
	if opts.Limit > 0 {
		parts = append(parts, "limit("+strconv.Itoa(opts.Limit)+")")
	}
	if fields := sanitize.CleanFields(opts.Select); len(fields) > 0 {
		parts = append(parts, "select("+strings.Join(fields, ",")+")")
	}
	if s := rqlSort(opts.Sort); s != "" {
		parts = append(parts, "sort("+s+")")
	}
	return strings.Join(parts, "&")
}

// rqlSort turns "a asc, b desc" into "+a,-b". Tokens already signed pass through.
func rqlSort(sort string) string {
	var out []string
	for _, tok := range strings.Split(sort, ",") {
		f := strings.Fields(tok)
		if len(f) == 0 {
			continue
		}
		name := f[0]
		if strings.HasPrefix(name, "+") || strings.HasPrefix(name, "-") {
			out = append(out, name)
			continue
		}
		dir := "+"
		if len(f) > 1 && strings.EqualFold(f[1], "desc") {
			dir = "-"
		}
		out = append(out, dir+name)
	}
	return strings.Join(out, ",")
}
