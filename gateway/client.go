// Package gateway speaks the AU Battle REST contract. Every call returns
// either decoded response data or a *gateway.Error carrying a failure kind
// and a user-presentable message; raw transport or decoding errors never
// cross the package boundary.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the primary API host.
	DefaultBaseURL = "https://admin.aubattle.com/api"
	// DefaultWithdrawBaseURL hosts only the withdrawal submission endpoint,
	// which lives on a separate service.
	DefaultWithdrawBaseURL = "https://backend.aubattle.com/api"

	defaultTimeout = 30 * time.Second
)

// Client issues HTTP requests against the AU Battle backend.
type Client struct {
	baseURL     string
	withdrawURL string
	httpClient  *http.Client
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (primarily for
// tests and custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithWithdrawBaseURL overrides the withdrawal service host.
func WithWithdrawBaseURL(u string) Option {
	return func(c *Client) { c.withdrawURL = strings.TrimRight(u, "/") }
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a gateway client for the given base URL. An empty base URL
// selects the production host.
func New(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		withdrawURL: DefaultWithdrawBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// do performs a JSON request and decodes the response into out (which may
// be nil when the caller only cares about success).
func (c *Client) do(ctx context.Context, method, url, credential string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, credential, out)
}

// send attaches common headers, executes the request, and normalizes the
// response. All failure paths end in a *Error.
func (c *Client) send(req *http.Request, credential string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("url", req.URL.String()).
			Msg("transport failure")
		return &Error{Kind: KindNetwork, Message: "Could not reach the server. Check your connection and try again."}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "Connection interrupted while reading the response."}
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request complete")

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ge := normalizeFailure(resp.StatusCode, data)
		c.log.Debug().Str("kind", string(ge.Kind)).Str("message", ge.Message).Msg("request failed")
		return ge
	}
	if ge := decodeSuccess(resp.StatusCode, data, out); ge != nil {
		return ge
	}
	return nil
}

// doMultipart uploads a single file part plus headers, used by the avatar
// endpoint.
func (c *Client) doMultipart(ctx context.Context, url, credential, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "[Client.doMultipart] create form file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrap(err, "[Client.doMultipart] copy file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "[Client.doMultipart] close writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return errors.Wrap(err, "[Client.doMultipart] build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, credential, out)
}
