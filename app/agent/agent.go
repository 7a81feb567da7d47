// Package agent holds the generative model client and the grounded
// prompt it is invoked with.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

// Completer is the narrow contract of the generative model: one fully
// assembled prompt in, free-form text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = `You are a smart assistant answering questions about company documents.
Answer clearly and to the point, without adding any additional information.
Don't add introductions like 'Of course!' or 'Here's the answer:'.`

// Client calls an Ollama-compatible generate endpoint.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  slog.Default(),
	}
}

// Complete sends the prompt and returns the model's text. A failure here
// is a generation error for the caller; it is never swallowed.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		c.logger.Info("llm call finished", "took", time.Since(start))
	}()

	if count, err := CountTokens(prompt); err == nil {
		c.logger.Debug("sending prompt", "tokens", count, "bytes", len(prompt))
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response, nil
	}

	// Some backends stream JSON chunks regardless; collect them.
	var output strings.Builder
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk generateResponse
		if err := decoder.Decode(&chunk); err != nil {
			return "", fmt.Errorf("failed to decode llm response: %w", err)
		}
		output.WriteString(chunk.Response)
	}
	return output.String(), nil
}

// CountTokens estimates prompt size using a tiktoken encoding.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
