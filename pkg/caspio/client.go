// Package caspio provides a rate-limited REST client for Caspio table
// records: token auth, paginated reads, and predicate-scoped writes.
package caspio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nwcapparel/catalog-sync/internal/cache"
	"github.com/nwcapparel/catalog-sync/internal/resilience"
)

// API is the record-store surface the engine consumes.
type API interface {
	// FetchAll reads every record of a table matching the optional where
	// clause, following pagination up to the configured page cap.
	FetchAll(ctx context.Context, table, where string) ([]map[string]any, error)
	// Update applies partial fields to all records matching where and
	// returns the affected count. Zero affected is not an error.
	Update(ctx context.Context, table, where string, fields map[string]any) (int, error)
	// Insert creates one record.
	Insert(ctx context.Context, table string, record map[string]any) error
	// DeleteWhere removes all records matching where and returns the count.
	DeleteWhere(ctx context.Context, table, where string) (int, error)
}

// Options configures the client.
type Options struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	BaseURL      string // override for tests; default derived from AccountID
	PageSize     int    // default 1000
	MaxPages     int    // hard pagination cap, default 200
	RPS          float64
	Timeout      time.Duration
	TokenTTL     time.Duration // default 23h; Caspio tokens last 24h
}

// Client implements API against the Caspio REST v2 endpoints.
type Client struct {
	opts    Options
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	token   *cache.Value[string]
	retry   resilience.RetryConfig
}

// NewClient validates credentials and builds a client. Missing connection
// parameters are a configuration error; nothing is fetched here.
func NewClient(opts Options) (*Client, error) {
	if opts.AccountID == "" && opts.BaseURL == "" {
		return nil, eris.New("caspio: account id is required")
	}
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, eris.New("caspio: client id and secret are required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 200
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 23 * time.Hour
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.caspio.com", opts.AccountID)
	}

	return &Client{
		opts:    opts,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), max(int(opts.RPS), 1)),
		token:   cache.NewValue[string](opts.TokenTTL),
		retry:   resilience.DefaultRetryConfig(),
	}, nil
}

// accessToken returns a cached bearer token, fetching a fresh one when the
// cache entry has expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if tok, ok := c.token.Get(); ok {
		return tok, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.opts.ClientID)
	form.Set("client_secret", c.opts.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "caspio: build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "caspio: token request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", eris.Errorf("caspio: token request returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", eris.Wrap(err, "caspio: decode token response")
	}
	if payload.AccessToken == "" {
		return "", eris.New("caspio: empty access token")
	}

	c.token.Set(payload.AccessToken)
	return payload.AccessToken, nil
}

// do issues one authenticated request with rate limiting and retry on
// transient failures. A 401 invalidates the cached token before retrying.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	var status int
	data, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "caspio: rate limiter wait")
		}

		tok, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if body != nil {
			buf, err := json.Marshal(body)
			if err != nil {
				return nil, eris.Wrap(err, "caspio: marshal request body")
			}
			reqBody = bytes.NewReader(buf)
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, eris.Wrap(err, "caspio: build request")
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.Transient(eris.Wrap(err, "caspio: request"))
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.Transient(eris.Wrap(err, "caspio: read response"))
		}

		status = resp.StatusCode
		switch {
		case status == http.StatusUnauthorized:
			c.token.Invalidate()
			return nil, resilience.Transient(eris.Errorf("caspio: %s %s returned 401", method, path))
		case status == http.StatusTooManyRequests || status >= 500:
			return nil, resilience.Transient(eris.Errorf("caspio: %s %s returned %d", method, path, status))
		case status >= 400:
			return nil, eris.Errorf("caspio: %s %s returned %d: %s", method, path, status, truncate(data, 256))
		}
		return data, nil
	})
	return data, status, err
}

// FetchAll implements API.
func (c *Client) FetchAll(ctx context.Context, table, where string) ([]map[string]any, error) {
	var all []map[string]any

	for page := 1; ; page++ {
		if page > c.opts.MaxPages {
			zap.L().Warn("caspio: page cap reached, truncating fetch",
				zap.String("table", table),
				zap.Int("max_pages", c.opts.MaxPages),
				zap.Int("records", len(all)),
			)
			break
		}

		q := url.Values{}
		if where != "" {
			q.Set("q.where", where)
		}
		q.Set("q.pageSize", fmt.Sprint(c.opts.PageSize))
		q.Set("q.pageNumber", fmt.Sprint(page))

		data, _, err := c.do(ctx, http.MethodGet, "/rest/v2/tables/"+table+"/records", q, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "caspio: fetch %s page %d", table, page)
		}

		var payload struct {
			Result []map[string]any `json:"Result"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, eris.Wrapf(err, "caspio: decode %s page %d", table, page)
		}

		all = append(all, payload.Result...)
		if len(payload.Result) < c.opts.PageSize {
			break
		}
	}

	zap.L().Debug("caspio: fetch complete",
		zap.String("table", table),
		zap.Int("records", len(all)),
	)
	return all, nil
}

// Update implements API.
func (c *Client) Update(ctx context.Context, table, where string, fields map[string]any) (int, error) {
	q := url.Values{}
	q.Set("q.where", where)

	data, _, err := c.do(ctx, http.MethodPut, "/rest/v2/tables/"+table+"/records", q, fields)
	if err != nil {
		return 0, eris.Wrapf(err, "caspio: update %s", table)
	}
	return affectedCount(data), nil
}

// Insert implements API.
func (c *Client) Insert(ctx context.Context, table string, record map[string]any) error {
	_, _, err := c.do(ctx, http.MethodPost, "/rest/v2/tables/"+table+"/records", nil, record)
	if err != nil {
		return eris.Wrapf(err, "caspio: insert into %s", table)
	}
	return nil
}

// DeleteWhere implements API.
func (c *Client) DeleteWhere(ctx context.Context, table, where string) (int, error) {
	q := url.Values{}
	q.Set("q.where", where)

	data, _, err := c.do(ctx, http.MethodDelete, "/rest/v2/tables/"+table+"/records", q, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "caspio: delete from %s", table)
	}
	return affectedCount(data), nil
}

func affectedCount(data []byte) int {
	var payload struct {
		RecordsAffected int `json:"RecordsAffected"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0
	}
	return payload.RecordsAffected
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
