package prompts

import (
	"strings"
	"testing"

	"github.com/repodoc/pkg/models"
)

func TestBuildSummaryPromptVariants(t *testing.T) {
	builder := NewBuilder()

	source := builder.BuildSummaryPrompt(models.FileContent{Path: "src/main.go", Content: "package main"})
	if !strings.Contains(source, "key exports") {
		t.Error("source file must get the full prompt variant")
	}
	if !strings.Contains(source, "src/main.go") {
		t.Error("prompt missing file path")
	}
	if !strings.Contains(source, "package main") {
		t.Error("prompt missing file content")
	}
	if !strings.Contains(source, `"summary"`) {
		t.Error("prompt missing response format instruction")
	}

	config := builder.BuildSummaryPrompt(models.FileContent{Path: "package.json", Content: "{}"})
	if !strings.Contains(config, "one sentence") {
		t.Error("config file must get the one-sentence variant")
	}
	if strings.Contains(config, "key exports") {
		t.Error("config file must not get the full variant")
	}
}

func TestBuildSynthesisPromptIncludesSummariesInOrder(t *testing.T) {
	builder := NewBuilder()
	summaries := []models.FileSummary{
		{Path: "src/main.go", Summary: "entry point"},
		{Path: "README.md", Summary: "project readme"},
	}

	prompt := builder.BuildSynthesisPrompt(summaries, "Explain the build system")

	if !strings.Contains(prompt, "Explain the build system") {
		t.Error("prompt missing user goal")
	}
	first := strings.Index(prompt, "src/main.go")
	second := strings.Index(prompt, "README.md")
	if first < 0 || second < 0 || first > second {
		t.Errorf("summaries out of order: main.go at %d, README.md at %d", first, second)
	}
	if !strings.Contains(prompt, `"documentation"`) {
		t.Error("prompt missing response format instruction")
	}
}

func TestBuildSynthesisPromptDefaultGoal(t *testing.T) {
	builder := NewBuilder()

	prompt := builder.BuildSynthesisPrompt(nil, "   ")
	if !strings.Contains(prompt, DefaultGoal) {
		t.Error("empty goal must fall back to the default goal")
	}
}
