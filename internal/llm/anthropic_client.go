package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/csheth/legalchain/internal/nda"
)

type anthropicClient struct {
	apiKey      string
	model       string
	base        string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func (c *anthropicClient) Name() string {
	return fmt.Sprintf("Anthropic (%s)", c.model)
}

func (c *anthropicClient) DraftNDA(ctx context.Context, input nda.FormInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}
	return c.messages(ctx, buildNDAPrompt(input))
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

func (c *anthropicClient) messages(ctx context.Context, prompt string) (string, error) {
	payload := messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      systemPrompt,
		Messages:    []message{{Role: "user", Content: prompt}},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/messages", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("anthropic API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic API returned no text content")
	}
	return strings.TrimSpace(text.String()), nil
}
