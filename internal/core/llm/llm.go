// Package llm wraps the OpenAI-compatible chat API with the call hygiene
// shared by every generative collaborator: rate limiting, a consecutive-failure
// circuit breaker, and JSON payload extraction.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
)

const (
	circuitBreakerThreshold = 5
	circuitBreakerTimeout   = 1 * time.Minute
	rateLimiterBurst        = 5

	errRateLimiter    = "rate limiter wait: %w"
	errChatCompletion = "chat completion: %w"
	jsonFencePrefix   = "```json"
	fencePrefix       = "```"
)

// Client is a rate-limited, circuit-protected chat completion client.
type Client struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger

	mu                  sync.Mutex
	consecutiveFailures int
	circuitOpenUntil    time.Time
}

func New(apiKey, model string, rps int, logger *zerolog.Logger) *Client {
	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rps)), rateLimiterBurst),
		logger:      logger,
	}
}

func (c *Client) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.circuitOpenUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, c.circuitOpenUntil)
	}

	return nil
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures = 0
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveFailures++
	if c.consecutiveFailures >= circuitBreakerThreshold {
		c.circuitOpenUntil = time.Now().Add(circuitBreakerTimeout)
		c.logger.Warn().
			Int("consecutive_failures", c.consecutiveFailures).
			Time("open_until", c.circuitOpenUntil).
			Msg("Circuit breaker opened")
	}
}

// CompleteJSON sends one chat completion expecting a JSON object response and
// returns the raw content with any markdown fences stripped.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.recordFailure()

		return "", fmt.Errorf(errChatCompletion, err)
	}

	c.recordSuccess()

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	content := ExtractJSON(resp.Choices[0].Message.Content)
	if content == "" {
		return "", apperrors.ErrEmptyResponse
	}

	c.logger.Debug().Str("content", content).Msg("LLM response")

	return content, nil
}

// ExtractJSON strips surrounding markdown code fences from a model response.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, jsonFencePrefix)
	content = strings.TrimPrefix(content, fencePrefix)
	content = strings.TrimSuffix(content, fencePrefix)

	return strings.TrimSpace(content)
}
