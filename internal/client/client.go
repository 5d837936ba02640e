// Package client talks to the bakery HTTP API and keeps a local, explicitly
// passed Session that merges successful writes without refetching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bakery/internal/core"
	"bakery/internal/summary"
)

// APIError is a non-2xx response. A 404 matches core.ErrNotFound under errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == core.ErrNotFound && e.Status == http.StatusNotFound
}

const maxResponseBytes = 8 << 20

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for baseURL, e.g. http://localhost:8081/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type fieldsBody struct {
	Date        core.Date   `json:"date"`
	Description string      `json:"description"`
	Amount      core.Money  `json:"amount"`
	Type        core.TxType `json:"type"`
	Category    string      `json:"category"`
}

func bodyOf(f core.TransactionFields) fieldsBody {
	return fieldsBody{
		Date:        f.Date,
		Description: f.Description,
		Amount:      f.Amount,
		Type:        f.Type,
		Category:    f.Category,
	}
}

func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodPost, "/transactions", bodyOf(f), &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error) {
	var out core.Transaction
	err := c.do(ctx, http.MethodPut, "/transactions/"+strconv.FormatInt(id, 10), bodyOf(f), &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+strconv.FormatInt(id, 10), nil, nil)
}

// Dashboard asks the server to aggregate; Session.Dashboard does the same locally.
func (c *Client) Dashboard(ctx context.Context, v summary.View) (summary.Dashboard, error) {
	q := url.Values{}
	if v.Month != (summary.Month{}) {
		q.Set("month", v.Month.String())
	}
	if v.Type != "" {
		q.Set("type", string(v.Type))
	}
	path := "/dashboard"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out summary.Dashboard
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) (map[core.TxType][]string, error) {
	var out map[core.TxType][]string
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	if resp.StatusCode >= 300 {
		// A plain-text body, e.g. gin's unknown-route 404, becomes the message.
		msg := ""
		if json.Unmarshal(raw, &env) == nil {
			msg = env.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
