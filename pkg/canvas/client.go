package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/younsl/gradesync/pkg/publishing"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout = 30 * time.Second
	userAgent      = "gradesync"

	// Canvas prefixes JSON bodies with this guard against JSON hijacking
	jsonGuard = "while(1);"

	maxResponseBytes = 1 << 20
)

// Client talks to the publish_to_sis endpoint of one course
type Client struct {
	client   *http.Client
	baseURL  *url.URL
	courseID string
	form     PublishForm
	logger   *slog.Logger
}

var _ publishing.Transport = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the authenticated HTTP client, mostly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithPublishForm(form PublishForm) Option {
	return func(c *Client) { c.form = form }
}

func NewClient(token, baseURL, courseID string, opts ...Option) (*Client, error) {
	if courseID == "" {
		return nil, fmt.Errorf("course ID is required")
	}

	// Ensure trailing slash so relative paths resolve under the API root
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	c := &Client{
		client:   tc,
		baseURL:  parsedURL,
		courseID: courseID,
		form:     PublishForm{PublishGrades: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// CourseID returns the course this client publishes
func (c *Client) CourseID() string {
	return c.courseID
}

// BaseURL returns the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) publishPath() string {
	return fmt.Sprintf("courses/%s/publish_to_sis", url.PathEscape(c.courseID))
}

// CheckStatus fetches the current SIS publish status of the course
func (c *Client) CheckStatus(ctx context.Context) (*publishing.Response, error) {
	var payload statusPayload
	if err := c.do(ctx, http.MethodGet, c.publishPath(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toResponse(), nil
}

// Publish starts the SIS grade sync and returns the resulting status
func (c *Client) Publish(ctx context.Context) (*publishing.Response, error) {
	form, err := query.Values(c.form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode publish form: %w", err)
	}

	var payload statusPayload
	if err := c.do(ctx, http.MethodPost, c.publishPath(), form, &payload); err != nil {
		return nil, err
	}
	return payload.toResponse(), nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, v interface{}) error {
	u, err := c.baseURL.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug("canvas request", "method", method, "url", u.String(), "request_id", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrUnauthorized, &APIError{StatusCode: resp.StatusCode, Body: string(data)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("canvas request error", "status", resp.StatusCode, "request_id", requestID)
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte(jsonGuard))
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
