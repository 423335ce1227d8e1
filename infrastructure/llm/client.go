// Package llm provides the LLM-backed collaborators of the evaluation
// pipeline behind a provider-agnostic client. Providers (Google Gemini,
// OpenAI, Anthropic) implement a minimal CoreLLM interface and are
// composed with middleware for rate limiting, retries, and timeouts.
// Gemini is the default provider.
//
// Basic usage:
//
//	client, err := llm.NewClient("google", llm.ClientConfig{
//	    APIKey: os.Getenv("GEMINI_API_KEY"),
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(2, 4),
//	        llm.RetryMiddleware(2, 500*time.Millisecond, 8*time.Second),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/dealdesk/internal/ports"
)

// CoreLLM is the minimal surface a provider must implement. Middleware
// wraps any conforming implementation, so cross-cutting behavior stays
// independent of provider specifics.
type CoreLLM interface {
	// DoRequest sends a prompt and returns the response text plus input
	// and output token counts. The opts map carries tunables such as
	// "temperature" and "max_tokens".
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel switches the model for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreLLM to add cross-cutting behavior. Middleware
// composes: the first entry in a chain becomes the outermost wrapper.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds everything needed to build a provider client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model names the model to use. Empty selects the provider default.
	Model string

	// BaseURL overrides the provider endpoint; empty uses the default.
	BaseURL string

	// Timeout bounds individual requests. Zero means no client timeout.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// Client adapts a middleware-wrapped CoreLLM to the ports.LLMClient
// contract used by the rest of the pipeline.
type Client struct{ core CoreLLM }

var _ ports.LLMClient = (*Client)(nil)

// NewClient builds a client for the named provider with the middleware
// chain applied.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", providerType, err)
	}

	// Reverse order so the first middleware wraps outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// CompleteWithUsage sends a prompt and additionally returns input and
// output token counts for cost accounting.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (string, int, int, error) {
	return c.core.DoRequest(ctx, prompt, options)
}

// GetModel returns the active model name.
func (c *Client) GetModel() string { return c.core.GetModel() }

// ProviderFactory builds a CoreLLM from configuration.
type ProviderFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a name. Providers
// in this package self-register from init.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
