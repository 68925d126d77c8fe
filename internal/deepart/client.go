package deepart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the public Deep Art API.
	DefaultBaseURL     = "https://deep-art.k8s.akvelon.net/api"
	defaultHTTPTimeout = 100 * time.Second
	maxErrorBody       = 4 << 10
)

// Service is the subset of the API the converter depends on.
type Service interface {
	ListEffects(ctx context.Context) ([]Effect, error)
	AddMedia(ctx context.Context, data []byte, filename, mimeType string) (uuid.UUID, error)
	StartOperation(ctx context.Context, mediaID, effectID uuid.UUID) (uuid.UUID, error)
	// OperationResult returns nil while the operation is still running.
	OperationResult(ctx context.Context, operationID uuid.UUID) ([]byte, error)
}

// Config captures the runtime settings required to talk to the API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the v1 REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	return client
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

type effectsResponse struct {
	Data []Effect `json:"data"`
}

type submitOperationRequest struct {
	Data struct {
		Media struct {
			ID uuid.UUID `json:"id"`
		} `json:"media"`
		Effect struct {
			ID uuid.UUID `json:"id"`
		} `json:"effect"`
	} `json:"data"`
}

// ListEffects returns every effect the service currently offers.
func (c *Client) ListEffects(ctx context.Context) ([]Effect, error) {
	_, body, err := c.do(ctx, http.MethodGet, "v1/effects", nil, "")
	if err != nil {
		return nil, err
	}
	var parsed effectsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("deepart effects: decode response: %w", err)
	}
	return parsed.Data, nil
}

// AddMedia uploads a source file. The returned id is uuid.Nil when the
// service did not report a usable Location.
func (c *Client) AddMedia(ctx context.Context, data []byte, filename, mimeType string) (uuid.UUID, error) {
	if mimeType == "" {
		mimeType = DetectMIME(data, filename)
	}
	var payload bytes.Buffer
	writer := multipart.NewWriter(&payload)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return uuid.Nil, fmt.Errorf("deepart upload: create part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return uuid.Nil, fmt.Errorf("deepart upload: write part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("deepart upload: close form: %w", err)
	}

	resp, _, err := c.do(ctx, http.MethodPost, "v1/media", &payload, writer.FormDataContentType())
	if err != nil {
		return uuid.Nil, err
	}
	return IDFromLocation(resp.Header.Get("Location")), nil
}

// StartOperation submits a conversion of mediaID with effectID.
func (c *Client) StartOperation(ctx context.Context, mediaID, effectID uuid.UUID) (uuid.UUID, error) {
	var request submitOperationRequest
	request.Data.Media.ID = mediaID
	request.Data.Effect.ID = effectID
	encoded, err := json.Marshal(request)
	if err != nil {
		return uuid.Nil, fmt.Errorf("deepart submit: encode body: %w", err)
	}
	resp, _, err := c.do(ctx, http.MethodPost, "v1/operations", bytes.NewReader(encoded), "application/json")
	if err != nil {
		return uuid.Nil, err
	}
	return IDFromLocation(resp.Header.Get("Location")), nil
}

// OperationResult fetches the converted bytes, or nil if not ready yet.
func (c *Client) OperationResult(ctx context.Context, operationID uuid.UUID) ([]byte, error) {
	_, body, err := c.do(ctx, http.MethodGet, "v1/operations/"+operationID.String(), nil, "")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, []byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, nil, fmt.Errorf("deepart %s: build url: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("deepart %s: new request: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("deepart %s %s: http error (timeout=%s): %w", method, endpoint, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp, nil, &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(snippet),
		}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("deepart %s %s: read body: %w", method, endpoint, err)
	}
	return resp, data, nil
}

// IDFromLocation parses the last path segment of a Location header as a
// UUID. It returns uuid.Nil when the header is missing or malformed.
func IDFromLocation(location string) uuid.UUID {
	location = strings.TrimSpace(location)
	if location == "" {
		return uuid.Nil
	}
	if parsed, err := url.Parse(location); err == nil && parsed.Path != "" {
		location = parsed.Path
	}
	location = strings.TrimRight(location, "/")
	if idx := strings.LastIndex(location, "/"); idx >= 0 {
		location = location[idx+1:]
	}
	id, err := uuid.Parse(location)
	if err != nil {
		return uuid.Nil
	}
	return id
}
