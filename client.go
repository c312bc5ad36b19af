package trellis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL       = "https://api.trellis.dev"
	defaultStreamTimeout = 60 * time.Second
	defaultUserAgent     = "trellis-go"
)

// Doer performs a single HTTP request. *http.Client implements it; tests
// and callers with custom transports may supply their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a typed client for the Trellis agent platform API.
type Client struct {
	baseURL       string
	apiKey        string
	userAgent     string
	httpClient    Doer
	streamTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client or transport.
func WithHTTPClient(d Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithDefaultStreamTimeout sets the time budget [Client.StreamRun] uses when
// a call does not specify its own.
func WithDefaultStreamTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.streamTimeout = d
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		userAgent:     defaultUserAgent,
		httpClient:    http.DefaultClient,
		streamTimeout: defaultStreamTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds a request for path (which includes the API version
// prefix) with the standard headers attached.
func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("trellis: create %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// newJSONRequest builds a request with a JSON-encoded body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("trellis: marshal %s %s request body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.newRequest(ctx, method, path, contentType, reader)
}

// do executes req, maps non-success statuses to typed errors, and decodes
// the JSON response into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trellis: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(req, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("trellis: decode %s %s response: %w", req.Method, req.URL.Path, err)
		}
	}
	return nil
}

// doJSON is the one-shot JSON request path used by all resource methods.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// errorFromResponse turns a non-success response into a typed error. Reading
// or decoding the body is best effort and never fails the translation itself.
func errorFromResponse(req *http.Request, resp *http.Response) error {
	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(resp.Body)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		ve := &ValidationError{
			Method: req.Method,
			URL:    req.URL.String(),
			Body:   string(body),
		}
		if json.Valid(body) {
			ve.Detail = body
		}
		return ve
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		URL:        req.URL.String(),
		Body:       string(body),
	}
}

// isJSONContentType reports whether ct declares a JSON body.
func isJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
