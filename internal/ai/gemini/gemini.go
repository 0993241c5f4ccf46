// Package gemini implements the AI provider interface on Google's Gemini
// models through langchaingo.
package gemini

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/repodoc/internal/llm"
	"github.com/repodoc/internal/logging"
	"github.com/repodoc/internal/retry"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 8192
)

// Config contains configuration for the Gemini provider.
type Config struct {
	APIKey    string `koanf:"api_key"`
	Model     string `koanf:"model"`
	MaxTokens int    `koanf:"max_tokens"`
}

// Provider runs both pipeline stages against Gemini.
type Provider struct {
	apiKey    string
	modelName string
	maxTokens int

	llmModel    llms.Model
	retryConfig retry.Config
	// generate is swappable so tests can run without a live model.
	generate func(ctx context.Context, prompt string) (string, error)
}

// New creates a Gemini provider from config.
func New(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaultMaxTokens
	}

	return &Provider{
		apiKey:      config.APIKey,
		modelName:   config.Model,
		maxTokens:   config.MaxTokens,
		retryConfig: retry.AIConfig(),
	}, nil
}

// Configure sets up the provider from a generic config map.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKey, ok := config["api_key"].(string)
	if !ok || apiKey == "" {
		return fmt.Errorf("api_key is required")
	}
	p.apiKey = apiKey

	if model, ok := config["model"].(string); ok && model != "" {
		p.modelName = model
	}
	if p.modelName == "" {
		p.modelName = defaultModel
	}
	if maxTokens, ok := config["max_tokens"].(int); ok && maxTokens > 0 {
		p.maxTokens = maxTokens
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}

	// Force re-initialization with the new settings.
	p.llmModel = nil
	p.generate = nil
	return nil
}

// Name returns the provider's name.
func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) initLLM(ctx context.Context) error {
	if p.generate != nil {
		return nil
	}
	if p.apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	opts := []googleai.Option{
		googleai.WithAPIKey(p.apiKey),
		googleai.WithDefaultModel(p.modelName),
		googleai.WithDefaultMaxTokens(p.maxTokens),
	}

	model, err := googleai.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini model: %w", err)
	}

	p.llmModel = model
	p.generate = func(ctx context.Context, prompt string) (string, error) {
		return llms.GenerateFromSinglePrompt(ctx, p.llmModel, prompt)
	}
	return nil
}

type summaryPayload struct {
	Summary string `json:"summary"`
}

type documentationPayload struct {
	Documentation string `json:"documentation"`
}

// Summarize runs the map-stage prompt and returns the decoded summary.
func (p *Provider) Summarize(ctx context.Context, prompt string) (string, string, error) {
	raw, err := p.call(ctx, "summarize", prompt)
	if err != nil {
		return "", raw, err
	}

	var payload summaryPayload
	if err := llm.DecodeResponse(raw, &payload); err != nil {
		return "", raw, err
	}
	return payload.Summary, raw, nil
}

// Synthesize runs the reduce-stage prompt and returns the decoded Markdown.
func (p *Provider) Synthesize(ctx context.Context, prompt string) (string, string, error) {
	raw, err := p.call(ctx, "synthesize", prompt)
	if err != nil {
		return "", raw, err
	}

	var payload documentationPayload
	if err := llm.DecodeResponse(raw, &payload); err != nil {
		return "", raw, err
	}
	return payload.Documentation, raw, nil
}

// call sends one prompt with backoff on transient failures. Non-retryable
// errors stop the attempt loop immediately.
func (p *Provider) call(ctx context.Context, label, prompt string) (string, error) {
	if err := p.initLLM(ctx); err != nil {
		return "", err
	}

	logger := logging.GetCurrentLogger()
	logger.LogRequest(label, p.modelName, prompt)

	retryConfig := p.retryConfig
	if retryConfig.MaxRetries == 0 && retryConfig.BaseDelay == 0 {
		retryConfig = retry.AIConfig()
	}

	var raw string
	var permErr error
	result := retry.WithBackoffAndReason(ctx, retryConfig, func() (error, string) {
		response, err := p.generate(ctx, prompt)
		if err != nil {
			if !retry.IsRetryableError(err) {
				// Returning nil stops the retry loop; surfaced below.
				permErr = err
				return nil, "permanent_failure"
			}
			return err, err.Error()
		}
		raw = response
		return nil, "success"
	}, logger)

	if permErr != nil {
		logger.LogError(fmt.Sprintf("gemini %s", label), permErr)
		return "", fmt.Errorf("gemini %s call failed: %w", label, permErr)
	}
	if !result.Success {
		logger.LogError(fmt.Sprintf("gemini %s", label), result.LastError)
		return "", fmt.Errorf("gemini %s call failed: %w", label, result.LastError)
	}

	logger.LogResponse(label, raw)
	return raw, nil
}
