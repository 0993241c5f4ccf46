// Package classify assigns files to prompt categories. The rules live here,
// separate from the pipeline, so they are unit-testable on their own.
package classify

import (
	"path"
	"strings"
)

// Category selects which summary prompt variant a file receives.
type Category string

const (
	// CategorySource gets the full purpose / key exports / role prompt.
	CategorySource Category = "source"
	// CategoryConfig gets the short one-sentence-purpose prompt: structured
	// data, lockfiles, configuration, markdown, and license-like files.
	CategoryConfig Category = "config"
)

var configExtensions = map[string]struct{}{
	".json": {},
	".lock": {},
	".toml": {},
	".yaml": {},
	".yml":  {},
	".ini":  {},
	".cfg":  {},
	".conf": {},
	".md":   {},
	".txt":  {},
}

var configBasenames = map[string]struct{}{
	"license":           {},
	"license.md":        {},
	"license.txt":       {},
	"copying":           {},
	"notice":            {},
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"go.sum":            {},
	".gitignore":        {},
	".gitattributes":    {},
	".editorconfig":     {},
	".npmrc":            {},
	"dockerfile":        {},
	"makefile":          {},
}

var configPrefixes = []string{".env", "license", "licence"}

// FileCategory classifies a repository path.
func FileCategory(filePath string) Category {
	base := strings.ToLower(path.Base(filePath))

	if _, ok := configBasenames[base]; ok {
		return CategoryConfig
	}
	for _, prefix := range configPrefixes {
		if strings.HasPrefix(base, prefix) {
			return CategoryConfig
		}
	}
	if _, ok := configExtensions[strings.ToLower(path.Ext(base))]; ok {
		return CategoryConfig
	}
	return CategorySource
}
