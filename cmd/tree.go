package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/repodoc/internal/tree"
	"github.com/repodoc/pkg/models"
)

// TreeCommand returns the tree command.
func TreeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "List one directory level of a repository",
		ArgsUsage: "owner/name [path]",
		Action:    runTree,
	}
}

func runTree(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: owner/name")
	}

	repo, err := models.ParseRepositoryID(c.Args().Get(0))
	if err != nil {
		return err
	}
	path := c.Args().Get(1)

	cfg, store, err := loadRuntime(c)
	if err != nil {
		return err
	}
	client := buildContentClient(cfg, store)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	manager := tree.NewManager(client)
	if err := manager.AddRepository(ctx, repo); err != nil {
		return fmt.Errorf("failed to load %s: %w", repo, err)
	}

	nodes := manager.Roots(repo)
	if path != "" {
		if err := manager.EnsureLoaded(ctx, repo, path); err != nil {
			return fmt.Errorf("failed to list %s:%s: %w", repo, path, err)
		}
		nodes = childrenAt(manager.Roots(repo), path)
		if nodes == nil {
			return fmt.Errorf("path %q not found in %s", path, repo)
		}
	}

	for _, node := range nodes {
		if node.IsDir() {
			fmt.Printf("%s/\n", node.Name)
		} else {
			fmt.Println(node.Name)
		}
	}
	return nil
}

func childrenAt(nodes []*models.Node, path string) []*models.Node {
	for _, node := range nodes {
		if node.Path == path {
			return node.Children
		}
		if node.IsDir() {
			if found := childrenAt(node.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}
