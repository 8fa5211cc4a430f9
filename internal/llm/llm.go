// Package llm drafts NDA text with the Anthropic Messages API. Only the
// reference backend uses it; the form client talks to the backend instead.
package llm

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/legalchain/internal/nda"
)

const (
	defaultBaseURL     = "https://api.anthropic.com"
	defaultModel       = "claude-3-opus-20240229"
	defaultMaxTokens = 1000

	// DefaultTemperature is used when Config.Temperature is nil.
	DefaultTemperature = 0.7
	anthropicVersion   = "2023-06-01"
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Environment variables consulted by NewFromEnv.
const (
	EnvAPIKey  = "ANTHROPIC_API_KEY"
	EnvModel   = "ANTHROPIC_MODEL"
	EnvBaseURL = "ANTHROPIC_BASE_URL"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY is not set")

// Config describes how to build an LLM client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	// Temperature is a pointer so that zero can be requested explicitly.
	Temperature *float64
	// Timeout applies to the default HTTP client only.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client drafts agreements from form input.
type Client interface {
	DraftNDA(ctx context.Context, input nda.FormInput) (string, error)
	Name() string
}

// NewFromEnv fills unset fields from the environment and built-in defaults.
func NewFromEnv(cfg Config) (Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv(EnvModel); env != "" {
			model = env
		} else {
			model = defaultModel
		}
	}
	base := cfg.BaseURL
	if base == "" {
		if env := os.Getenv(EnvBaseURL); env != "" {
			base = env
		} else {
			base = defaultBaseURL
		}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &anthropicClient{
		apiKey:      apiKey,
		model:       model,
		base:        strings.TrimRight(base, "/"),
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      pickHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

func pickHTTPClient(custom *http.Client, timeout time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout <= 0 {
		// Long drafts can take minutes; rely on the caller's context for cancellation.
		timeout = defaultLLMHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
