package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gemora/internal/models"
)

// Generator is the external upstream text-generation collaborator:
// prompt in, text out, fallible and quota-limited.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts models.GenerateOptions) (string, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat-completions endpoint.
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIGenerator creates the upstream generator client.
func NewOpenAIGenerator(baseURL, apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate implements Generator. Failure kinds the orchestrator must tell
// apart: bad credentials (fatal), provider quota (retry later), timeout
// (retry now), empty output (retry now).
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts models.GenerateOptions) (string, error) {
	reqBody := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"stream":      false,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	if len(opts.Stop) > 0 {
		reqBody["stop"] = opts.Stop
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", newUpstreamTimeoutError()
		}
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusUnauthorized, http.StatusForbidden:
		body, _ := io.ReadAll(resp.Body)
		log.Printf("❌ [UPSTREAM] Credential rejection (status %d): %s", resp.StatusCode, string(body))
		return "", newUpstreamConfigError()
	case http.StatusTooManyRequests:
		return "", newUpstreamQuotaError()
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upstream API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upstream response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", newUpstreamEmptyError()
	}

	return result.Choices[0].Message.Content, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
