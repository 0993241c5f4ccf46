// Package prompts builds the AI prompts for both pipeline stages.
package prompts

import (
	"fmt"
	"strings"

	"github.com/repodoc/internal/classify"
	"github.com/repodoc/pkg/models"
)

// DefaultGoal is used when the user has not edited the generation goal.
const DefaultGoal = "Produce a clear technical overview of this codebase: " +
	"what it does, how it is structured, and how its main parts work together. " +
	"Write for a developer seeing the project for the first time."

const summaryResponseFormat = `Respond with a single JSON object of the form:
{"summary": "<your summary>"}
Do not include any text outside the JSON object.`

const synthesisResponseFormat = `Respond with a single JSON object of the form:
{"documentation": "<the full Markdown document>"}
Do not include any text outside the JSON object.`

// Builder assembles prompts. It carries no state; it exists so prompt
// construction has one home and one test surface.
type Builder struct{}

// NewBuilder creates a prompt builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildSummaryPrompt returns the map-stage prompt for one file. The variant
// is chosen by the file's category: config-like files get a one-sentence
// purpose instruction, source files the fuller treatment.
func (b *Builder) BuildSummaryPrompt(file models.FileContent) string {
	var sb strings.Builder

	switch classify.FileCategory(file.Path) {
	case classify.CategoryConfig:
		sb.WriteString("Summarize the purpose of the following file in one sentence.\n")
	default:
		sb.WriteString("Summarize the following source file: its purpose, key exports, ")
		sb.WriteString("and its role in the wider project.\n")
	}

	fmt.Fprintf(&sb, "\nFile: %s\n\n", file.Path)
	sb.WriteString("```\n")
	sb.WriteString(file.Content)
	sb.WriteString("\n```\n\n")
	sb.WriteString(summaryResponseFormat)
	return sb.String()
}

// BuildSynthesisPrompt returns the reduce-stage prompt combining the ordered
// per-file summaries with the user's goal. An empty goal falls back to
// DefaultGoal.
func (b *Builder) BuildSynthesisPrompt(summaries []models.FileSummary, goal string) string {
	if strings.TrimSpace(goal) == "" {
		goal = DefaultGoal
	}

	var sb strings.Builder
	sb.WriteString("You are writing technical documentation from per-file summaries ")
	sb.WriteString("of a selected subset of a codebase.\n\n")
	fmt.Fprintf(&sb, "Goal: %s\n\n", goal)
	sb.WriteString("File summaries, in repository order:\n\n")
	for _, summary := range summaries {
		fmt.Fprintf(&sb, "- %s: %s\n", summary.Path, summary.Summary)
	}
	sb.WriteString("\nSynthesize these into one coherent Markdown document. ")
	sb.WriteString("Organize by topic, not file by file. ")
	sb.WriteString(synthesisResponseFormat)
	return sb.String()
}
