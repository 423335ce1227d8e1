package llm

// options.go holds the shared request-option plumbing providers use:
// parsing the generic options map, parameter validation, base URL and
// timeout checks, and the token-count fallback estimator.

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Valid parameter ranges shared across providers.
const (
	// DefaultMaxTokens is used when the caller does not set max_tokens.
	DefaultMaxTokens = 2048

	// MinTemperature and MaxTemperature bound the sampling temperature.
	// The ceiling is 2.0 to accommodate Gemini.
	MinTemperature = 0.0
	MaxTemperature = 2.0

	// MinTopP and MaxTopP bound nucleus sampling.
	MinTopP = 0.0
	MaxTopP = 1.0

	// MinTimeout and MaxTimeout bound per-request timeouts.
	MinTimeout = 1 * time.Second
	MaxTimeout = 10 * time.Minute
)

// IsValidTemperature reports whether the temperature is in range.
func IsValidTemperature(val float64) bool {
	return val >= MinTemperature && val <= MaxTemperature
}

// IsValidTopP reports whether the top_p value is in range.
func IsValidTopP(val float64) bool { return val >= MinTopP && val <= MaxTopP }

// IsPositiveInt reports whether the value is greater than zero.
func IsPositiveInt(val int) bool { return val > 0 }

// IsNonEmptyString reports whether the string is non-empty.
func IsNonEmptyString(val string) bool { return val != "" }

// RequestOptions is the standardized parameter set extracted from the
// generic options map each provider receives.
type RequestOptions struct {
	// MaxTokens caps generation length.
	MaxTokens int
	// Model overrides the provider's configured model for one request.
	Model string
	// Temperature controls sampling randomness; nil means provider
	// default.
	Temperature *float64
	// TopP is nucleus sampling; nil means provider default.
	TopP *float64
	// System is the system prompt, when the provider supports one.
	System string
	// Extra carries provider-specific options not in the standard set.
	Extra map[string]any
}

// ParseRequestOptions extracts standardized parameters from an options
// map, falling back to defaults for missing or invalid entries.
// Unrecognized keys are collected into Extra.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{
		MaxTokens: ExtractOptionalInt(opts, "max_tokens", DefaultMaxTokens, IsPositiveInt),
		Model:     ExtractOptionalString(opts, "model", defaultModel, IsNonEmptyString),
		System:    ExtractOptionalString(opts, "system", "", nil),
		Extra:     make(map[string]any),
	}

	if temp := ExtractOptionalFloat64(opts, "temperature", -1, IsValidTemperature); temp != -1 {
		options.Temperature = &temp
	}
	if topP := ExtractOptionalFloat64(opts, "top_p", -1, IsValidTopP); topP != -1 {
		options.TopP = &topP
	}

	for k, v := range opts {
		switch k {
		case "max_tokens", "model", "system", "temperature", "top_p":
			// Standard keys handled above.
		default:
			options.Extra[k] = v
		}
	}

	return options
}

// ExtractOptionalInt reads an int from the options map, returning
// defaultVal when the key is absent, mistyped, or fails validation.
func ExtractOptionalInt(opts map[string]any, key string, defaultVal int, validator func(int) bool) int {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	intVal, ok := val.(int)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(intVal) {
		return defaultVal
	}
	return intVal
}

// ExtractOptionalString reads a string from the options map, returning
// defaultVal when the key is absent, mistyped, or fails validation.
func ExtractOptionalString(opts map[string]any, key string, defaultVal string, validator func(string) bool) string {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	strVal, ok := val.(string)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(strVal) {
		return defaultVal
	}
	return strVal
}

// ExtractOptionalFloat64 reads a float64 from the options map,
// returning defaultVal when the key is absent, mistyped, or fails
// validation.
func ExtractOptionalFloat64(opts map[string]any, key string, defaultVal float64, validator func(float64) bool) float64 {
	if opts == nil {
		return defaultVal
	}
	val, ok := opts[key]
	if !ok {
		return defaultVal
	}
	floatVal, ok := val.(float64)
	if !ok {
		return defaultVal
	}
	if validator != nil && !validator(floatVal) {
		return defaultVal
	}
	return floatVal
}

// ValidateBaseURL validates and normalizes a base URL override. Empty
// is valid and selects the provider default.
func ValidateBaseURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must include a host")
	}
	return parsed.String(), nil
}

// ValidateTimeout clamps a timeout into the supported range. Zero or
// negative means the system default and passes through as zero.
func ValidateTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout < MinTimeout {
		return MinTimeout
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// ClampFloat64 restricts a float64 to [min, max].
func ClampFloat64(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampInt restricts an int to [min, max].
func ClampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// BaseProvider holds the model name with thread-safe access, shared by
// provider implementations.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the configured model name.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel updates the model name.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

// TokenCounter estimates token counts when the provider response does
// not report usage.
type TokenCounter struct {
	// CharactersPerToken approximates the average token width.
	CharactersPerToken float64
}

// NewTokenCounter returns a counter with the common English-text ratio.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{CharactersPerToken: 4.0}
}

// EstimateTokens approximates the token count of a string.
func (tc *TokenCounter) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(len(text)) / tc.CharactersPerToken)
}

// GetTokenCount prefers the provider-reported count, estimating from
// text only when the report is missing or zero.
func (tc *TokenCounter) GetTokenCount(actualCount int, text string) int {
	if actualCount > 0 {
		return actualCount
	}
	return tc.EstimateTokens(text)
}
