// Package api is the single choke point for calls to the remote reviews
// service. It attaches the auth headers, decodes JSON, validates response
// shapes and turns every failure into an *Error.
//
// There are no retries, client-side timeouts or caches: each call is one
// fresh round trip and the caller decides what a failure means.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/logging"
	"github.com/Dicklesworthstone/reviews_copilot/pkg/metrics"
)

const (
	HeaderAPIKey    = "X-API-Key"
	HeaderRequestID = "X-Request-ID"
)

// MaxBodySize bounds how much of a response body is read (8MB)
const MaxBodySize = 8 * 1024 * 1024

// RequestOptions customizes one call. A nil Body sends no body.
// Headers are applied last and override the defaults.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

// Client talks to the reviews API
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	log     zerolog.Logger

	// For testing: allow overriding request id generation
	newRequestID func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the API described by cfg
func New(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:      cfg.BaseURL(),
		apiKey:       cfg.API.APIKey,
		hc:           &http.Client{},
		log:          logging.For("api"),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one request against path and decodes a successful JSON
// body into out (skipped when out is nil).
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	return c.call(ctx, path, opts, nil, out)
}

func (c *Client) call(ctx context.Context, path string, opts RequestOptions, schema *gojsonschema.Schema, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	requestID := c.newRequestID()
	start := time.Now()

	status, err := c.roundTrip(ctx, method, path, requestID, opts, schema, out)
	metrics.ObserveAPI(routeLabel(path), method, status, time.Since(start))

	if err != nil {
		c.log.Error().
			Str("path", path).
			Str("method", method).
			Str("request_id", requestID).
			Int("status", status).
			Err(err).
			Msg("api request failed")
		return err
	}

	c.log.Debug().
		Str("path", path).
		Str("method", method).
		Str("request_id", requestID).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("api request")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, requestID string, opts RequestOptions, schema *gojsonschema.Schema, out any) (int, error) {
	fail := func(status int, msg string, cause error) (int, error) {
		return status, &Error{Path: path, Status: status, Message: msg, RequestID: requestID, Err: cause}
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return fail(0, FallbackMessage, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail(0, FallbackMessage, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set(HeaderRequestID, requestID)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fail(0, FallbackMessage, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return fail(resp.StatusCode, FallbackMessage, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.StatusCode, data)
		return fail(resp.StatusCode, msg, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if schema != nil {
		if err := validateBody(schema, data); err != nil {
			return fail(resp.StatusCode, err.Error(), err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(resp.StatusCode, "invalid response: "+err.Error(), err)
	}
	return resp.StatusCode, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeLabel collapses ids and drops the query so metric labels stay bounded
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return numericSegment.ReplaceAllString(path, "/{id}$1")
}
