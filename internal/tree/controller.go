package tree

import (
	"context"

	"github.com/repodoc/pkg/models"
)

// Controller exposes the user-facing selection verbs as a thin facade over
// the Manager. It holds no state of its own; it exists to enforce argument
// shape and to re-derive the root tri-state value driving a "select all"
// checkbox.
type Controller struct {
	manager *Manager
}

// NewController wraps a tree manager.
func NewController(manager *Manager) *Controller {
	return &Controller{manager: manager}
}

// SelectFile toggles one file.
func (c *Controller) SelectFile(repo models.RepositoryID, path string, selected bool) error {
	return c.manager.ToggleFile(repo, path, selected)
}

// SelectFolder toggles every file under a folder, fetching unexpanded
// descendants first when selecting.
func (c *Controller) SelectFolder(ctx context.Context, repo models.RepositoryID, path string, selected bool) (int, error) {
	return c.manager.ToggleSubtree(ctx, repo, path, selected)
}

// SelectAllInRepo toggles the entire repository.
func (c *Controller) SelectAllInRepo(ctx context.Context, repo models.RepositoryID, selected bool) (int, error) {
	return c.manager.ToggleSubtree(ctx, repo, "", selected)
}

// RootState returns the repository-level tri-state value.
func (c *Controller) RootState(repo models.RepositoryID) models.SelectionValue {
	return c.manager.FolderSelectionState(repo, "")
}
