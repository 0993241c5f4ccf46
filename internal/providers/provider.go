// Package providers defines the remote repository content contract and the
// typed errors its adapters surface.
package providers

import (
	"context"
	"fmt"

	"github.com/repodoc/pkg/models"
)

// ContentProvider is a stateless adapter over a remote repository content
// service. Each call is a single remote round-trip.
type ContentProvider interface {
	// ListDirectory returns one directory level. An empty path lists the
	// repository root.
	ListDirectory(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error)

	// ReadFile returns the decoded text of one file. Content that cannot be
	// decoded yields a sentinel placeholder rather than an error, because a
	// single undecodable file must not abort a batch operation.
	ReadFile(ctx context.Context, repo models.RepositoryID, path string) (*models.FileContent, error)

	// Authenticated reports whether calls carry a credential. Unauthenticated
	// callers get a lower rate allowance.
	Authenticated() bool
}

// RequestError is returned on a non-success provider response. It carries
// the provider's status and message.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider request failed with status %d: %s", e.Status, e.Message)
}

// ShapeError is returned when a provider response does not have the expected
// structure, e.g. a directory listing that is not an array.
type ShapeError struct {
	Expected string
	Got      string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape: expected %s, got %s", e.Expected, e.Got)
}
