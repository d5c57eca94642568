package rest

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

	"github.com/samirrijal/halalfinder/internal/core/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to the hosted relational backend over its PostgREST-style
// HTTP API, authenticated with an API key. Failures map onto the
// domain.QueryError taxonomy: transport problems become Network errors,
// non-2xx responses become Server errors. The client never retries;
// retries are user-initiated.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a backend client. timeout bounds every request; zero
// means the 30s default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// get reads rows from a table: GET {base}/rest/v1/{table}?{query}.
func (c *Client) get(ctx context.Context, table string, query url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, table, query.Encode())
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// rpc calls a stored function: POST {base}/rest/v1/rpc/{fn}.
func (c *Client) rpc(ctx context.Context, fn string, params, out interface{}) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode rpc params: %w", err)
	}
	endpoint := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// insert creates a row and decodes the representation the backend returns.
func (c *Client) insert(ctx context.Context, table string, row, out interface{}) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.NewServerError(resp.StatusCode,
			fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, strings.TrimSpace(string(b))))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewServerError(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
