package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Config holds OpenAI client configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// RequestTimeout bounds each API call
	RequestTimeout time.Duration

	// RequestsPerSecond and Burst feed the client-side rate limiter;
	// the classifier is the dominant cost per pair, so all throughput
	// control lives here and in worker count.
	RequestsPerSecond float64
	Burst             int
}

// OpenAIClient implements Classifier and Extractor against the OpenAI
// Chat Completions API
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewOpenAIClient creates a rate-limited OpenAI client
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Classify judges the relationship between two claims
func (c *OpenAIClient) Classify(ctx context.Context, a, b ClaimInput) (*Judgment, error) {
	content, err := c.complete(ctx, buildRelationshipPrompt(a, b), 1024)
	if err != nil {
		return nil, err
	}

	return parseJudgment(content)
}

// Extract pulls atomic claims out of document text
func (c *OpenAIClient) Extract(ctx context.Context, text, sourceName, sourceLLM string) ([]ExtractedClaim, error) {
	content, err := c.complete(ctx, buildExtractionPrompt(text, sourceName, sourceLLM), 8192)
	if err != nil {
		return nil, err
	}

	return parseExtraction(content)
}

// complete runs one rate-limited, timeout-bounded chat completion in
// JSON mode
func (c *OpenAIClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseJudgment decodes and sanity-checks a relationship judgment
func parseJudgment(content string) (*Judgment, error) {
	var judgment Judgment
	if err := json.Unmarshal([]byte(content), &judgment); err != nil {
		return nil, fmt.Errorf("malformed judgment JSON: %w", err)
	}

	if judgment.RelationshipType == "" {
		return nil, fmt.Errorf("judgment missing relationship_type")
	}

	switch judgment.Direction {
	case DirectionAToB, DirectionBToA, DirectionBidirectional:
	case "":
		judgment.Direction = DirectionAToB
	default:
		return nil, fmt.Errorf("judgment has unknown direction %q", judgment.Direction)
	}

	return &judgment, nil
}

// parseExtraction decodes the extraction response envelope
func parseExtraction(content string) ([]ExtractedClaim, error) {
	var envelope struct {
		Claims []ExtractedClaim `json:"claims"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("malformed extraction JSON: %w", err)
	}

	return envelope.Claims, nil
}
