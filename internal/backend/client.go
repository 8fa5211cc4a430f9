// Package backend talks to the NDA text-generation service over its JSON
// request/response contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/legalchain/internal/nda"
)

const (
	// DefaultEndpoint matches the reference backend's default listen address.
	DefaultEndpoint = "http://localhost:5000/generate-nda"
	// EndpointEnvVar overrides the endpoint when no explicit value is set.
	EndpointEnvVar = "LEGALCHAIN_BACKEND_URL"

	// RequestIDHeader carries the submission attempt ID.
	RequestIDHeader = "X-Request-Id"
)

const defaultBackendHTTPTimeout = 3 * time.Minute

// maxErrorBody caps how much of a failing response is kept for diagnostics.
const maxErrorBody = 512

// ErrMissingDocument is returned when a success response carries no nda field.
var ErrMissingDocument = errors.New("backend response did not include an nda field")

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error: %s", e.Status)
	}
	return fmt.Sprintf("backend error: %s (%s)", e.Status, e.Body)
}

// Config describes how to build a backend client.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client generates NDA text from form input.
type Client interface {
	Generate(ctx context.Context, input nda.FormInput) (string, error)
	Name() string
}

// NewFromEnv builds a client from explicit config, falling back to the
// LEGALCHAIN_BACKEND_URL environment variable and then DefaultEndpoint.
func NewFromEnv(cfg Config) Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		if env := strings.TrimSpace(os.Getenv(EndpointEnvVar)); env != "" {
			endpoint = env
		} else {
			endpoint = DefaultEndpoint
		}
	}
	return &httpClient{
		endpoint: endpoint,
		client:   pickHTTPClient(cfg.HTTPClient),
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Generation can take well over a minute; callers bound each attempt with their own context.
	return &http.Client{Timeout: defaultBackendHTTPTimeout}
}

type requestIDKey struct{}

// WithRequestID attaches an attempt ID that Generate forwards as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type httpClient struct {
	endpoint string
	client   *http.Client
}

func (c *httpClient) Name() string {
	return fmt.Sprintf("NDA backend (%s)", c.endpoint)
}

func (c *httpClient) Generate(ctx context.Context, input nda.FormInput) (string, error) {
	buf, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read backend response: %w", err)
	}
	var parsed struct {
		NDA *string `json:"nda"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode backend response: %w", err)
	}
	if parsed.NDA == nil {
		return "", ErrMissingDocument
	}
	return *parsed.NDA, nil
}
