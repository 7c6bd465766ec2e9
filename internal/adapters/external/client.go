package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sony/gobreaker"
)

const (
	defaultTimeout  = 2 * time.Second
	maxResponseBody = 64 << 10
	acceptJSON      = "application/json"
)

var ErrMalformedResponse = errors.New("malformed response")

// Client fetches one piece of text from a JSON endpoint. Responses are
// checked against a JSON schema before the text is extracted, and calls go
// through a circuit breaker so a dead endpoint fails fast.
type Client struct {
	name    string
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	schema  *jsonschema.Schema
	extract func(doc any) string
}

func newClient(name, url string, timeout time.Duration, schema *jsonschema.Schema, extract func(any) string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		name:    name,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: newBreaker(name),
		schema:  schema,
		extract: extract,
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func (c *Client) Fetch(ctx context.Context) (string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	return out.(string), nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptJSON)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := c.schema.Validate(doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return c.extract(doc), nil
}
