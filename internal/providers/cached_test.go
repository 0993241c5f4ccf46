package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodoc/internal/cache"
	"github.com/repodoc/pkg/models"
)

// countingProvider records how many remote round-trips were made.
type countingProvider struct {
	listCalls int
	readCalls int
	nodes     []*models.Node
	content   *models.FileContent
	err       error
}

func (p *countingProvider) ListDirectory(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error) {
	p.listCalls++
	return p.nodes, p.err
}

func (p *countingProvider) ReadFile(ctx context.Context, repo models.RepositoryID, path string) (*models.FileContent, error) {
	p.readCalls++
	return p.content, p.err
}

func (p *countingProvider) Authenticated() bool { return true }

func TestCachedClientReadFileHitsCacheOnSecondCall(t *testing.T) {
	remote := &countingProvider{
		content: &models.FileContent{Path: "README.md", Content: "# Widgets", Size: 9},
	}
	client := NewCachedClient(remote, cache.NewMemoryStore(time.Minute))

	first, err := client.ReadFileRevision(context.Background(), "acme/widgets", "README.md", "rev1")
	require.NoError(t, err)
	second, err := client.ReadFileRevision(context.Background(), "acme/widgets", "README.md", "rev1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, remote.readCalls, "second read must not reach the provider")
}

func TestCachedClientListDirectoryCaches(t *testing.T) {
	remote := &countingProvider{
		nodes: []*models.Node{{Name: "src", Path: "src", Kind: models.KindDirectory}},
	}
	client := NewCachedClient(remote, cache.NewMemoryStore(time.Minute))

	for i := 0; i < 3; i++ {
		nodes, err := client.ListDirectory(context.Background(), "acme/widgets", "")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
	}
	assert.Equal(t, 1, remote.listCalls)
}

func TestCachedClientDoesNotCacheFailures(t *testing.T) {
	remote := &countingProvider{err: &RequestError{Status: 404, Message: "Not Found"}}
	client := NewCachedClient(remote, cache.NewMemoryStore(time.Minute))

	_, err := client.ListDirectory(context.Background(), "acme/private", "")
	require.Error(t, err)
	_, err = client.ListDirectory(context.Background(), "acme/private", "")
	require.Error(t, err)

	assert.Equal(t, 2, remote.listCalls, "failures must not be cached; retry must reach the provider")
}

func TestCachedClientDifferentRevisionsMiss(t *testing.T) {
	remote := &countingProvider{
		content: &models.FileContent{Path: "a.go", Content: "package a"},
	}
	client := NewCachedClient(remote, cache.NewMemoryStore(time.Minute))

	_, err := client.ReadFileRevision(context.Background(), "acme/widgets", "a.go", "rev1")
	require.NoError(t, err)
	_, err = client.ReadFileRevision(context.Background(), "acme/widgets", "a.go", "rev2")
	require.NoError(t, err)

	assert.Equal(t, 2, remote.readCalls)
}
