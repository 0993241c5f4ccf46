// Package llm turns raw model output into typed values: it extracts the JSON
// payload from mixed prose/fenced responses, repairs common malformations,
// and decodes into the caller's struct.
package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
)

// RepairStats records what a repair pass did to the payload.
type RepairStats struct {
	OriginalBytes int           `json:"original_bytes"`
	RepairedBytes int           `json:"repaired_bytes"`
	Strategies    []string      `json:"strategies"`
	RepairTime    time.Duration `json:"repair_time"`
	WasRepaired   bool          `json:"was_repaired"`
}

// RepairJSON attempts to fix malformed JSON, cheapest strategy first:
// trailing commas, unterminated objects/arrays, line comments, unquoted
// keys, single-quoted strings, then the jsonrepair library as the fallback.
func RepairJSON(raw string) (string, RepairStats, error) {
	start := time.Now()
	stats := RepairStats{OriginalBytes: len(raw)}

	var probe interface{}
	if json.Unmarshal([]byte(raw), &probe) == nil {
		stats.RepairedBytes = len(raw)
		stats.RepairTime = time.Since(start)
		return raw, stats, nil
	}

	stats.WasRepaired = true
	repaired := raw

	apply := func(name string, fn func(string) string) {
		if fixed := fn(repaired); fixed != repaired {
			repaired = fixed
			stats.Strategies = append(stats.Strategies, name)
		}
	}

	apply("trailing_commas", stripTrailingCommas)
	apply("completion", closeOpenStructures)
	apply("comments", stripComments)
	apply("key_quotes", quoteBareKeys)
	apply("single_quotes", replaceSingleQuotes)

	if json.Unmarshal([]byte(repaired), &probe) != nil {
		if fixed, err := jsonrepair.JSONRepair(repaired); err == nil && fixed != repaired {
			repaired = fixed
			stats.Strategies = append(stats.Strategies, "jsonrepair_library")
		}
	}

	stats.RepairedBytes = len(repaired)
	stats.RepairTime = time.Since(start)

	if json.Unmarshal([]byte(repaired), &probe) != nil {
		return repaired, stats, fmt.Errorf("json repair failed after %d strategies", len(stats.Strategies))
	}
	return repaired, stats, nil
}

var (
	trailingCommaBrace   = regexp.MustCompile(`,\s*}`)
	trailingCommaBracket = regexp.MustCompile(`,\s*]`)
	blockComment         = regexp.MustCompile(`/\*.*?\*/`)
	bareKey              = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)(\s*:)`)
	singleQuoted         = regexp.MustCompile(`'([^']*)'`)
)

func stripTrailingCommas(s string) string {
	s = trailingCommaBrace.ReplaceAllString(s, "}")
	return trailingCommaBracket.ReplaceAllString(s, "]")
}

// closeOpenStructures appends the closers for any braces/brackets the model
// left open, innermost first.
func closeOpenStructures(s string) string {
	s = strings.TrimSpace(s)

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				stack = append(stack, '}')
			}
		case '[':
			if !inString {
				stack = append(stack, ']')
			}
		case '}', ']':
			if !inString && len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

func stripComments(s string) string {
	if !strings.Contains(s, "//") && !strings.Contains(s, "/*") {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if idx := indexOfLineComment(line); idx != -1 {
			lines[i] = line[:idx]
		}
	}
	s = strings.Join(lines, "\n")
	return blockComment.ReplaceAllString(s, "")
}

// indexOfLineComment finds a // that is not inside a JSON string literal.
func indexOfLineComment(line string) int {
	inString := false
	escaped := false
	for i := 0; i < len(line)-1; i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '/':
			if !inString && line[i+1] == '/' {
				return i
			}
		}
	}
	return -1
}

func quoteBareKeys(s string) string {
	return bareKey.ReplaceAllString(s, `$1"$2"$3`)
}

func replaceSingleQuotes(s string) string {
	return singleQuoted.ReplaceAllString(s, `"$1"`)
}
