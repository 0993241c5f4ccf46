package tree

import (
	"context"
	"fmt"

	"github.com/repodoc/pkg/models"
)

// SelectedFile is one file the user has flagged for generation, with the
// revision marker carried along for cache-key stability.
type SelectedFile struct {
	Repo     models.RepositoryID
	Path     string
	Revision string
}

// ToggleFile sets exactly one file's selection flag.
func (m *Manager) ToggleFile(repo models.RepositoryID, path string, selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.repos[repo]
	if !ok {
		return fmt.Errorf("unknown repository %s", repo)
	}
	state.selection[path] = selected
	return nil
}

// Selected reports a single file's selection flag. Absent paths are
// unselected.
func (m *Manager) Selected(repo models.RepositoryID, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.repos[repo]
	return ok && state.selection[path]
}

// ToggleSubtree sets every file flag under the directory at parentPath
// ("" = whole repository) to selected. When selecting, directories that have
// not been fetched yet are fetched first so the toggle reaches the true
// content, not merely the nodes visible so far. All flags are committed in
// one mutation after the traversal completes; a branch whose fetch fails is
// excluded, leaves its FetchState failed, and surfaces as the returned
// error. The count of files whose flags were committed is returned either way.
func (m *Manager) ToggleSubtree(ctx context.Context, repo models.RepositoryID, parentPath string, selected bool) (int, error) {
	roots, err := m.subtreeRoots(ctx, repo, parentPath, selected)
	if err != nil {
		return 0, err
	}

	var staged []string
	var firstErr error
	m.collectFiles(ctx, repo, roots, selected, &staged, &firstErr)

	m.mu.Lock()
	state, ok := m.repos[repo]
	if !ok {
		m.mu.Unlock()
		return 0, fmt.Errorf("unknown repository %s", repo)
	}
	for _, path := range staged {
		state.selection[path] = selected
	}
	m.mu.Unlock()

	return len(staged), firstErr
}

func (m *Manager) subtreeRoots(ctx context.Context, repo models.RepositoryID, parentPath string, selecting bool) ([]*models.Node, error) {
	if parentPath == "" {
		m.mu.Lock()
		state, ok := m.repos[repo]
		if !ok {
			m.mu.Unlock()
			return nil, fmt.Errorf("unknown repository %s", repo)
		}
		loaded := state.fetch[""] == models.FetchLoaded
		roots := make([]*models.Node, len(state.roots))
		copy(roots, state.roots)
		m.mu.Unlock()

		if !loaded && selecting {
			return m.ensureLoaded(ctx, repo, "")
		}
		return roots, nil
	}

	m.mu.Lock()
	state, ok := m.repos[repo]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("unknown repository %s", repo)
	}
	node := findNode(state.roots, parentPath)
	m.mu.Unlock()
	if node == nil {
		return nil, fmt.Errorf("path %q not found in %s", parentPath, repo)
	}
	return []*models.Node{node}, nil
}

// collectFiles walks the subtree in order, fetching unloaded directories
// when selecting. Fetch failures prune the branch and record the first error.
func (m *Manager) collectFiles(ctx context.Context, repo models.RepositoryID, nodes []*models.Node, selecting bool, staged *[]string, firstErr *error) {
	for _, node := range nodes {
		if !node.IsDir() {
			*staged = append(*staged, node.Path)
			continue
		}

		children := node.Children
		if selecting && m.FetchStateOf(repo, node.Path) != models.FetchLoaded {
			fetched, err := m.ensureLoaded(ctx, repo, node.Path)
			if err != nil {
				if *firstErr == nil {
					*firstErr = fmt.Errorf("fetching %s:%s: %w", repo, node.Path, err)
				}
				continue
			}
			children = fetched
		}
		m.collectFiles(ctx, repo, children, selecting, staged, firstErr)
	}
}

// FolderSelectionState derives the tri-state value of the directory at path
// ("" = repository root) by aggregating descendant file flags: selected when
// every file is selected, unselected when every one is false or absent,
// indeterminate otherwise. A directory with zero descendant files is
// unselected. The walk short-circuits once both a selected and an unselected
// file have been seen.
func (m *Manager) FolderSelectionState(repo models.RepositoryID, path string) models.SelectionValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.repos[repo]
	if !ok {
		return models.SelectionUnselected
	}

	nodes := state.roots
	if path != "" {
		node := findNode(state.roots, path)
		if node == nil {
			return models.SelectionUnselected
		}
		nodes = node.Children
	}

	var sawSelected, sawUnselected bool
	aggregate(nodes, state.selection, &sawSelected, &sawUnselected)

	switch {
	case sawSelected && sawUnselected:
		return models.SelectionIndeterminate
	case sawSelected:
		return models.SelectionSelected
	default:
		return models.SelectionUnselected
	}
}

func aggregate(nodes []*models.Node, selection map[string]bool, sawSelected, sawUnselected *bool) {
	for _, node := range nodes {
		if *sawSelected && *sawUnselected {
			return
		}
		if node.IsDir() {
			aggregate(node.Children, selection, sawSelected, sawUnselected)
			continue
		}
		if selection[node.Path] {
			*sawSelected = true
		} else {
			*sawUnselected = true
		}
	}
}

// SelectedFiles flattens the current selection across all repositories in
// tree order. This is the input the generation pipeline reads.
func (m *Manager) SelectedFiles() []SelectedFile {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []SelectedFile
	for _, repo := range m.order {
		state := m.repos[repo]
		collectSelected(repo, state.roots, state.selection, &out)
	}
	return out
}

func collectSelected(repo models.RepositoryID, nodes []*models.Node, selection map[string]bool, out *[]SelectedFile) {
	for _, node := range nodes {
		if node.IsDir() {
			collectSelected(repo, node.Children, selection, out)
			continue
		}
		if selection[node.Path] {
			*out = append(*out, SelectedFile{Repo: repo, Path: node.Path, Revision: node.Revision})
		}
	}
}
