package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/repodoc/internal/logging"
)

// ResponseParseError means the model's reply could not be decoded into the
// expected structure even after repair. Raw carries the original response
// so the caller can record it.
type ResponseParseError struct {
	Raw string
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("unparseable model response: %v", e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// DecodeResponse extracts the JSON payload from a raw model reply, repairs
// it if needed, and unmarshals it into target. Failures are returned as
// *ResponseParseError.
func DecodeResponse(raw string, target interface{}) error {
	logger := logging.GetCurrentLogger()
	logger.Log("Decoding model response (%d bytes)", len(raw))

	payload := ExtractJSON(raw)
	if payload == "" {
		logger.Log("No JSON found in model response: %s", truncateForLog(raw, 200))
		return &ResponseParseError{Raw: raw, Err: fmt.Errorf("no JSON object in response")}
	}

	repaired, stats, err := RepairJSON(payload)
	if stats.WasRepaired {
		logger.Log("JSON repair applied: %s (%d -> %d bytes in %v)",
			strings.Join(stats.Strategies, ", "), stats.OriginalBytes, stats.RepairedBytes, stats.RepairTime)
	}
	if err != nil {
		logger.Log("JSON repair failed: %v", err)
		logger.Log("Original payload: %s", truncateForLog(payload, 500))
		return &ResponseParseError{Raw: raw, Err: err}
	}

	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		logger.Log("JSON decoding failed after repair: %v", err)
		return &ResponseParseError{Raw: raw, Err: err}
	}
	return nil
}

// ExtractJSON pulls the JSON payload out of a reply that may wrap it in
// prose or markdown code fences.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}

	if strings.Contains(raw, "```") {
		var fenced []string
		inFence := false
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = !inFence
				continue
			}
			if inFence {
				fenced = append(fenced, line)
			}
		}
		if len(fenced) > 0 {
			return strings.TrimSpace(strings.Join(fenced, "\n"))
		}
	}

	start := strings.IndexAny(raw, "{[")
	if start == -1 {
		return ""
	}

	open := raw[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}

	// Truncated payload: return what we have and let repair close it.
	return raw[start:]
}

func truncateForLog(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
