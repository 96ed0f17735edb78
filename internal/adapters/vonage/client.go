// internal/adapters/vonage/client.go
package vonage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"vonage_relay/internal/adapters/observability"
)

const (
	DefaultAPIHost      = "https://api.nexmo.com"
	DefaultMeetingsHost = "https://api-eu.vonage.com"

	userAgent = "vonage-relay/1.0"
	maxBody   = 4 << 20
)

type Config struct {
	APIHost      string
	MeetingsHost string
	Tokens       TokenSource
	// SignatureSecret verifies Messages API webhook tokens.
	SignatureSecret string
	HTTPClient      *http.Client
	Verifier        SignatureVerifier
}

// Client dispatches single requests against one API host. It holds no
// per-request state and is safe to share.
type Client struct {
	host   string
	hc     *http.Client
	tokens TokenSource
}

// Response is a decoded API answer.
type Response struct {
	Entity     Entity
	StatusCode int
	Header     http.Header
}

func New(cfg Config) (*Client, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("vonage: token source is required")
	}
	host := cfg.APIHost
	if host == "" {
		host = DefaultAPIHost
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("vonage: invalid host %q: %w", host, err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{host: strings.TrimRight(host, "/"), hc: hc, tokens: cfg.Tokens}, nil
}

// WithHost returns a copy of c bound to another API host.
func (c *Client) WithHost(host string) *Client {
	cp := *c
	cp.host = strings.TrimRight(host, "/")
	return &cp
}

func (c *Client) Host() string { return c.host }

// Request performs one call. GET and DELETE carry params in the query string,
// other verbs send them as a JSON body. Transport errors are wrapped, not
// retried.
func (c *Client) Request(ctx context.Context, path string, params map[string]any, method string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	target := c.host + path

	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if q := encodeQuery(params); q != "" {
			target += "?" + q
		}
	default:
		if params != nil {
			b, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("vonage: encode request body: %w", err)
			}
			body = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("vonage: build request: %w", err)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("vonage", metricPath(path), 0, time.Since(start))
		return nil, fmt.Errorf("vonage: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	observability.ObserveExternal("vonage", metricPath(path), resp.StatusCode, time.Since(start))
	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("vonage_request")
	if err != nil {
		return nil, fmt.Errorf("vonage: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	out := &Response{Entity: Entity{}, StatusCode: resp.StatusCode, Header: resp.Header.Clone()}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out.Entity); err != nil {
		return nil, fmt.Errorf("vonage: decode %s %s: %w", method, path, err)
	}
	return out, nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status, Body: raw}
	if len(raw) > 0 {
		// non-JSON bodies keep the raw text as detail
		if err := json.Unmarshal(raw, apiErr); err != nil {
			apiErr.Detail = strings.TrimSpace(string(raw))
		}
	}
	apiErr.StatusCode = status
	return apiErr
}

// metricPath collapses identifier segments so the endpoint label stays bounded.
func metricPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if len(p) >= 16 {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// encodeQuery flattens params into a stable query string. Slices repeat the key.
func encodeQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []string:
			for _, s := range v {
				q.Add(k, s)
			}
		case []any:
			for _, s := range v {
				q.Add(k, fmt.Sprint(s))
			}
		default:
			q.Set(k, fmt.Sprint(v))
		}
	}
	return q.Encode()
}
