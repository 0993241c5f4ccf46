package ai

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct {
	name       string
	configured map[string]interface{}
	failConfig error
}

func (s *stubProvider) Summarize(ctx context.Context, prompt string) (string, string, error) {
	return "summary", "{}", nil
}

func (s *stubProvider) Synthesize(ctx context.Context, prompt string) (string, string, error) {
	return "# doc", "{}", nil
}

func (s *stubProvider) Configure(config map[string]interface{}) error {
	s.configured = config
	return s.failConfig
}

func (s *stubProvider) Name() string {
	return s.name
}

func TestFactoryCreateConfiguresProvider(t *testing.T) {
	factory := NewDefaultFactory()
	stub := &stubProvider{name: "stub"}
	factory.Register("stub", stub)

	config := map[string]interface{}{"api_key": "k"}
	provider, err := factory.Create("stub", config)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if provider.Name() != "stub" {
		t.Errorf("Name() = %q", provider.Name())
	}
	if stub.configured["api_key"] != "k" {
		t.Error("Configure did not receive the config map")
	}
}

func TestFactoryCreateUnknownProvider(t *testing.T) {
	factory := NewDefaultFactory()

	if _, err := factory.Create("nope", nil); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("Create() error = %v, want ErrProviderNotFound", err)
	}
}

func TestFactoryCreatePropagatesConfigureError(t *testing.T) {
	factory := NewDefaultFactory()
	wantErr := errors.New("missing key")
	factory.Register("stub", &stubProvider{name: "stub", failConfig: wantErr})

	if _, err := factory.Create("stub", nil); !errors.Is(err, wantErr) {
		t.Errorf("Create() error = %v, want %v", err, wantErr)
	}
}
