// Package tree maintains one lazily-expanded node forest and one selection
// state per repository. It is the sole owner of both; all mutation goes
// through the Manager so the fetch-state check-then-set stays atomic.
package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/repodoc/pkg/models"
)

// DirectoryLister is the fetch dependency, normally the cached provider
// client, so every lazy expansion goes through the cache.
type DirectoryLister interface {
	ListDirectory(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error)
}

// repoState holds everything the model tracks for one repository. The
// selection map carries explicit flags for files only; directories derive
// their tri-state value by aggregation on read.
type repoState struct {
	roots     []*models.Node
	selection map[string]bool
	fetch     map[string]models.FetchState // keyed by directory path, "" for root
	expanded  map[string]bool
}

func newRepoState() *repoState {
	return &repoState{
		selection: make(map[string]bool),
		fetch:     make(map[string]models.FetchState),
		expanded:  make(map[string]bool),
	}
}

// Manager owns the node forests and selection state for all repositories
// in the session.
type Manager struct {
	mu     sync.Mutex
	lister DirectoryLister
	repos  map[models.RepositoryID]*repoState
	order  []models.RepositoryID
}

// NewManager creates an empty tree model backed by the given lister.
func NewManager(lister DirectoryLister) *Manager {
	return &Manager{
		lister: lister,
		repos:  make(map[models.RepositoryID]*repoState),
	}
}

// AddRepository registers a repository and fetches its root listing.
func (m *Manager) AddRepository(ctx context.Context, repo models.RepositoryID) error {
	m.mu.Lock()
	if _, exists := m.repos[repo]; !exists {
		m.repos[repo] = newRepoState()
		m.order = append(m.order, repo)
	}
	m.mu.Unlock()

	_, err := m.ensureLoaded(ctx, repo, "")
	return err
}

// Repositories returns the registered repositories in insertion order.
func (m *Manager) Repositories() []models.RepositoryID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RepositoryID, len(m.order))
	copy(out, m.order)
	return out
}

// Roots returns the current root forest of a repository.
func (m *Manager) Roots(repo models.RepositoryID) []*models.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.repos[repo]
	if !ok {
		return nil
	}
	out := make([]*models.Node, len(state.roots))
	copy(out, state.roots)
	return out
}

// FetchStateOf reports the fetch state for a directory path ("" = root).
func (m *Manager) FetchStateOf(repo models.RepositoryID, path string) models.FetchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.repos[repo]
	if !ok {
		return models.FetchNotRequested
	}
	return state.fetch[path]
}

// MergeListing absorbs a directory-listing result. An empty parentPath
// replaces the repository's root forest; otherwise the children of the node
// at parentPath are replaced wholesale. Newly introduced file paths are
// seeded unselected only when absent, so re-fetching a directory never
// resets a user's prior selections.
func (m *Manager) MergeListing(repo models.RepositoryID, nodes []*models.Node, parentPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mergeListingLocked(repo, nodes, parentPath)
}

func (m *Manager) mergeListingLocked(repo models.RepositoryID, nodes []*models.Node, parentPath string) error {
	state, ok := m.repos[repo]
	if !ok {
		state = newRepoState()
		m.repos[repo] = state
		m.order = append(m.order, repo)
	}

	deduped := dedupeByPath(nodes)

	if parentPath == "" {
		graftLoadedSubtrees(state, deduped, state.roots)
		state.roots = deduped
	} else {
		parent := findNode(state.roots, parentPath)
		if parent == nil {
			return fmt.Errorf("parent path %q not found in %s", parentPath, repo)
		}
		if !parent.IsDir() {
			return fmt.Errorf("parent path %q in %s is not a directory", parentPath, repo)
		}
		graftLoadedSubtrees(state, deduped, parent.Children)
		parent.Children = deduped
	}

	state.fetch[parentPath] = models.FetchLoaded
	for _, node := range deduped {
		if node.IsDir() {
			continue
		}
		if _, seen := state.selection[node.Path]; !seen {
			state.selection[node.Path] = false
		}
	}
	return nil
}

// ToggleExpansion flips a directory's presentation expanded flag. The first
// expansion of an unfetched directory triggers exactly one fetch, guarded by
// FetchState so concurrent expansions cannot duplicate the call. A failed
// fetch leaves the state failed, which re-enables retry by re-expansion.
func (m *Manager) ToggleExpansion(ctx context.Context, repo models.RepositoryID, path string) error {
	m.mu.Lock()
	state, ok := m.repos[repo]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown repository %s", repo)
	}
	state.expanded[path] = !state.expanded[path]
	nowExpanded := state.expanded[path]
	fetchState := state.fetch[path]
	m.mu.Unlock()

	if !nowExpanded || fetchState == models.FetchLoaded || fetchState == models.FetchInFlight {
		return nil
	}
	_, err := m.ensureLoaded(ctx, repo, path)
	return err
}

// Expanded reports a directory's presentation expanded flag.
func (m *Manager) Expanded(repo models.RepositoryID, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.repos[repo]
	return ok && state.expanded[path]
}

// EnsureLoaded fetches a directory level ("" = root) unless it is already
// loaded.
func (m *Manager) EnsureLoaded(ctx context.Context, repo models.RepositoryID, path string) error {
	_, err := m.ensureLoaded(ctx, repo, path)
	return err
}

// ensureLoaded fetches a directory level unless it is already loaded. The
// check-then-set on FetchState happens under the lock; the remote call does
// not hold it.
func (m *Manager) ensureLoaded(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error) {
	m.mu.Lock()
	state, ok := m.repos[repo]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("unknown repository %s", repo)
	}
	switch state.fetch[path] {
	case models.FetchLoaded:
		nodes := m.childrenSnapshotLocked(state, path)
		m.mu.Unlock()
		return nodes, nil
	case models.FetchInFlight:
		m.mu.Unlock()
		return nil, fmt.Errorf("fetch already in flight for %s:%s", repo, path)
	}
	state.fetch[path] = models.FetchInFlight
	m.mu.Unlock()

	nodes, err := m.lister.ListDirectory(ctx, repo, path)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		state.fetch[path] = models.FetchFailed
		log.Warn().Str("repo", string(repo)).Str("path", path).Err(err).Msg("directory fetch failed")
		return nil, err
	}
	if mergeErr := m.mergeListingLocked(repo, nodes, path); mergeErr != nil {
		state.fetch[path] = models.FetchFailed
		return nil, mergeErr
	}
	return m.childrenSnapshotLocked(state, path), nil
}

func (m *Manager) childrenSnapshotLocked(state *repoState, path string) []*models.Node {
	if path == "" {
		out := make([]*models.Node, len(state.roots))
		copy(out, state.roots)
		return out
	}
	node := findNode(state.roots, path)
	if node == nil {
		return nil
	}
	out := make([]*models.Node, len(node.Children))
	copy(out, node.Children)
	return out
}

// findNode locates a node by its stable path, descending only into subtrees
// whose path prefixes match.
func findNode(nodes []*models.Node, path string) *models.Node {
	for _, node := range nodes {
		if node.Path == path {
			return node
		}
		if node.IsDir() && strings.HasPrefix(path, node.Path+"/") {
			if found := findNode(node.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// graftLoadedSubtrees carries the children of already-fetched directories
// over to the matching incoming nodes, so re-merging a listing does not
// orphan subtrees whose FetchState still says loaded. An incoming directory
// with no prior counterpart sheds any fetch and expansion entries left from
// an earlier incarnation of the same path, so its first expansion fetches.
func graftLoadedSubtrees(state *repoState, incoming, prior []*models.Node) {
	existing := make(map[string]*models.Node, len(prior))
	for _, node := range prior {
		if node.IsDir() {
			existing[node.Path] = node
		}
	}
	for _, node := range incoming {
		if !node.IsDir() {
			continue
		}
		if old, ok := existing[node.Path]; ok {
			node.Children = old.Children
			continue
		}
		clearSubtreeStateLocked(state, node.Path)
	}
}

// clearSubtreeStateLocked drops the fetch and expansion entries for a
// directory path and everything beneath it.
func clearSubtreeStateLocked(state *repoState, path string) {
	delete(state.fetch, path)
	delete(state.expanded, path)
	prefix := path + "/"
	for p := range state.fetch {
		if strings.HasPrefix(p, prefix) {
			delete(state.fetch, p)
		}
	}
	for p := range state.expanded {
		if strings.HasPrefix(p, prefix) {
			delete(state.expanded, p)
		}
	}
}

// dedupeByPath drops duplicate paths, keeping the first occurrence. A path
// is unique per repository by invariant; a provider that violates it must
// not corrupt the forest.
func dedupeByPath(nodes []*models.Node) []*models.Node {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]*models.Node, 0, len(nodes))
	for _, node := range nodes {
		if _, dup := seen[node.Path]; dup {
			continue
		}
		seen[node.Path] = struct{}{}
		out = append(out, node)
	}
	return out
}
