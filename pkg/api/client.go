// Package api is the authenticated fetcher for the Z+ backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/metrics"
)

// Session is the part of the session store the fetcher needs.
type Session interface {
	Token() string
	Clear() error
}

// RequestOptions describe one call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	Query  url.Values
	// JSON, when set, is encoded as the request body.
	JSON    any
	Headers http.Header
}

// Body is a successful response. JSON responses are decoded into Value;
// anything else is left as Text.
type Body struct {
	IsJSON bool
	Value  any
	Text   string
	raw    []byte
}

// Decode unmarshals a JSON body into v.
func (b *Body) Decode(v any) error {
	if b == nil || !b.IsJSON {
		return ErrMalformedResponse
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Raw is the undecoded body.
func (b *Body) Raw() []byte {
	if b == nil {
		return nil
	}
	return b.raw
}

// Client attaches the session token to backend calls and translates
// failures into the package's error taxonomy.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session Session

	// OnAuthExpired runs after the session is cleared on a 401 or 403.
	OnAuthExpired func()

	Log     zerolog.Logger
	Metrics *metrics.Metrics
}

// New returns a Client with the given timeout and a no-op logger.
func New(baseURL string, session Session, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Session: session,
		Log:     zerolog.Nop(),
	}
}

// Request performs one call against endpoint, relative to BaseURL.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.url(endpoint, opts.Query)

	var payload io.Reader
	if opts.JSON != nil {
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, endpoint, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, endpoint, err)
	}
	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.JSON != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.Session != nil {
		if token := c.Session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.Log.With().Str("method", method).Str("endpoint", endpoint).Str("requestId", requestID).Logger()

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.Metrics.ObserveRequest(method, 0, time.Since(start))
		log.Debug().Err(err).Msg("api: transport error")
		return nil, fmt.Errorf("api: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.Metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, endpoint, err)
	}
	log.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("api: response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.expire(log)
		return nil, ErrAuthExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &RequestFailedError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if isJSON(resp.Header.Get("Content-Type")) {
		b := &Body{IsJSON: true, raw: data}
		if len(bytes.TrimSpace(data)) == 0 {
			return b, nil
		}
		if err := json.Unmarshal(data, &b.Value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return b, nil
	}
	return &Body{Text: string(data), raw: data}, nil
}

func (c *Client) expire(log zerolog.Logger) {
	log.Warn().Msg("api: session rejected by server, logging out")
	if c.Session != nil {
		if err := c.Session.Clear(); err != nil {
			log.Error().Err(err).Msg("api: clear session")
		}
	}
	if c.OnAuthExpired != nil {
		c.OnAuthExpired()
	}
}

func (c *Client) url(endpoint string, query url.Values) string {
	target := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		target = strings.TrimRight(c.BaseURL, "/") + endpoint
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
