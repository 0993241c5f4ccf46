package models

import (
	"fmt"
	"regexp"
	"time"
)

// NodeKind distinguishes files from directories in a repository tree.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "dir"
)

// Node represents one file or directory entry in a repository's
// lazily-fetched tree. Path is the stable identity key within a repository.
type Node struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Kind     NodeKind `json:"kind"`
	Revision string   `json:"revision,omitempty"` // provider content hash, cache-key stability only
	Children []*Node  `json:"children,omitempty"` // directories only; empty until fetched
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory
}

// FetchState tracks whether a remote listing or file body has been
// requested, is pending, succeeded, or failed for a given path.
type FetchState int

const (
	FetchNotRequested FetchState = iota
	FetchInFlight
	FetchLoaded
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchInFlight:
		return "in-flight"
	case FetchLoaded:
		return "loaded"
	case FetchFailed:
		return "failed"
	default:
		return "not-requested"
	}
}

// SelectionValue is the derived tri-state of a directory: fully selected,
// fully unselected, or mixed.
type SelectionValue string

const (
	SelectionSelected      SelectionValue = "selected"
	SelectionUnselected    SelectionValue = "unselected"
	SelectionIndeterminate SelectionValue = "indeterminate"
)

// FileContent is the decoded body of one selected file, produced once per
// generation run and cacheable by repository + path + revision.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// FileSummary is the map-stage output for one file, in selection order.
type FileSummary struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

// Document is the final synthesized Markdown plus the repositories it was
// generated from. It is superseded wholesale by the next run.
type Document struct {
	Markdown    string    `json:"markdown"`
	SourceRepos []string  `json:"source_repos"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Interaction is one AI request/response pair recorded for observability.
// The record is append-only within a run and cleared at the start of the next.
type Interaction struct {
	Request  string `json:"request"`
	Response string `json:"response"`
}

// Credentials are the user-supplied API keys, persisted under the
// settings:api-keys cache key.
type Credentials struct {
	GitHubToken  string `json:"github_token,omitempty"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
}

// RepositoryID identifies a repository as "owner/name".
type RepositoryID string

var repositoryIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

// InvalidRepositoryPathError is returned when a user-supplied repository
// path does not match the owner/name format.
type InvalidRepositoryPathError struct {
	Input string
}

func (e *InvalidRepositoryPathError) Error() string {
	return fmt.Sprintf("invalid repository path %q: expected owner/name", e.Input)
}

// ParseRepositoryID validates a user-supplied "owner/name" string.
func ParseRepositoryID(s string) (RepositoryID, error) {
	if !repositoryIDPattern.MatchString(s) {
		return "", &InvalidRepositoryPathError{Input: s}
	}
	return RepositoryID(s), nil
}

// URL returns the canonical web URL for the repository.
func (id RepositoryID) URL() string {
	return "https://github.com/" + string(id)
}

func (id RepositoryID) String() string {
	return string(id)
}
