// Package ai defines the model-provider abstraction the generation pipeline
// talks to, plus a factory for looking providers up by name.
package ai

import "context"

// Provider is an AI service that can run both pipeline stages. Each call
// returns the decoded value and the raw model reply so the caller can record
// the exchange.
type Provider interface {
	// Summarize runs the map stage for one file and returns its summary.
	Summarize(ctx context.Context, prompt string) (summary string, raw string, err error)

	// Synthesize runs the reduce stage and returns the final Markdown.
	Synthesize(ctx context.Context, prompt string) (markdown string, raw string, err error)

	// Configure sets up the provider with needed configuration.
	Configure(config map[string]interface{}) error

	// Name returns the provider's name.
	Name() string
}

// Factory creates providers by name.
type Factory interface {
	Create(name string, config map[string]interface{}) (Provider, error)
}

// DefaultFactory is a registry-backed Factory.
type DefaultFactory struct {
	providers map[string]Provider
}

// NewDefaultFactory creates an empty factory.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under the given name.
func (f *DefaultFactory) Register(name string, provider Provider) {
	f.providers[name] = provider
}

// Create configures and returns the named provider.
func (f *DefaultFactory) Create(name string, config map[string]interface{}) (Provider, error) {
	provider, ok := f.providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}

	if err := provider.Configure(config); err != nil {
		return nil, err
	}

	return provider, nil
}

// ErrProviderNotFound is returned when no provider is registered under the
// requested name.
var ErrProviderNotFound = error(errProviderNotFound("ai provider not found"))

type errProviderNotFound string

func (e errProviderNotFound) Error() string {
	return string(e)
}
