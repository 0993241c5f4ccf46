package llm

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"pure object", `{"summary": "ok"}`, `{"summary": "ok"}`},
		{"leading whitespace", "  \n{\"a\": 1}", `{"a": 1}`},
		{"fenced json block", "Here you go:\n```json\n{\"summary\": \"ok\"}\n```\nDone.", `{"summary": "ok"}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"embedded in prose", `The answer is {"summary": "ok"} as requested.`, `{"summary": "ok"}`},
		{"nested braces", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`},
		{"truncated object", `reply: {"summary": "unfini`, `{"summary": "unfini`},
		{"no json at all", "I cannot help with that.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	type summaryPayload struct {
		Summary string `json:"summary"`
	}

	t.Run("valid json", func(t *testing.T) {
		var out summaryPayload
		if err := DecodeResponse(`{"summary": "parses files"}`, &out); err != nil {
			t.Fatalf("DecodeResponse() error = %v", err)
		}
		if out.Summary != "parses files" {
			t.Errorf("Summary = %q", out.Summary)
		}
	})

	t.Run("fenced with trailing comma", func(t *testing.T) {
		var out summaryPayload
		raw := "```json\n{\"summary\": \"entry point\",}\n```"
		if err := DecodeResponse(raw, &out); err != nil {
			t.Fatalf("DecodeResponse() error = %v", err)
		}
		if out.Summary != "entry point" {
			t.Errorf("Summary = %q", out.Summary)
		}
	})

	t.Run("no json yields parse error", func(t *testing.T) {
		var out summaryPayload
		err := DecodeResponse("sorry, no.", &out)
		var parseErr *ResponseParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("want *ResponseParseError, got %T", err)
		}
		if parseErr.Raw != "sorry, no." {
			t.Errorf("Raw = %q", parseErr.Raw)
		}
	})

	t.Run("wrong shape yields parse error", func(t *testing.T) {
		var out summaryPayload
		err := DecodeResponse(`{"summary": 42}`, &out)
		var parseErr *ResponseParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("want *ResponseParseError, got %T", err)
		}
	})
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantRepair bool
	}{
		{"already valid", `{"a": 1}`, false},
		{"trailing comma", `{"a": 1,}`, true},
		{"unterminated object", `{"a": {"b": 1}`, true},
		{"line comment", "{\"a\": 1 // note\n}", true},
		{"bare keys", `{summary: "ok"}`, true},
		{"single quotes", `{'summary': 'ok'}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired, stats, err := RepairJSON(tt.raw)
			if err != nil {
				t.Fatalf("RepairJSON() error = %v (repaired: %s)", err, repaired)
			}
			if stats.WasRepaired != tt.wantRepair {
				t.Errorf("WasRepaired = %v, want %v", stats.WasRepaired, tt.wantRepair)
			}
		})
	}

	t.Run("url inside string survives comment stripping", func(t *testing.T) {
		raw := `{"a": "https://example.com/x",}`
		repaired, _, err := RepairJSON(raw)
		if err != nil {
			t.Fatalf("RepairJSON() error = %v", err)
		}
		if want := `{"a": "https://example.com/x"}`; repaired != want {
			t.Errorf("repaired = %q, want %q", repaired, want)
		}
	})
}
