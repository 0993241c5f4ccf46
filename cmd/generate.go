package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/repodoc/internal/logging"
	"github.com/repodoc/internal/pipeline"
	"github.com/repodoc/internal/tree"
	"github.com/repodoc/pkg/models"
)

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate one Markdown document from selected repository files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "repo",
				Aliases:  []string{"r"},
				Usage:    "Repository as owner/name (repeatable)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "select",
				Aliases: []string{"s"},
				Usage:   "File or directory path to select; owner/name:path with multiple repos",
			},
			&cli.BoolFlag{
				Name:  "select-all",
				Usage: "Select every file in every repository",
			},
			&cli.StringFlag{
				Name:    "goal",
				Aliases: []string{"g"},
				Usage:   "Generation goal prompt",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the document to `FILE` instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print the run transcript",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	cfg, store, err := loadRuntime(c)
	if err != nil {
		return err
	}

	repos, err := parseRepos(c.StringSlice("repo"))
	if err != nil {
		return err
	}

	client := buildContentClient(cfg, store)
	aiProvider, err := createAIProvider(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	manager := tree.NewManager(client)
	controller := tree.NewController(manager)
	for _, repo := range repos {
		if err := manager.AddRepository(ctx, repo); err != nil {
			return fmt.Errorf("failed to load %s: %w", repo, err)
		}
	}

	if err := applySelection(ctx, c, manager, controller, repos); err != nil {
		return err
	}

	files := manager.SelectedFiles()
	if len(files) == 0 {
		return fmt.Errorf("no files selected; use --select or --select-all")
	}
	fmt.Printf("Generating from %d selected files...\n", len(files))

	goal := c.String("goal")
	if goal == "" {
		goal = cfg.Generation.Goal
	}

	generator := pipeline.NewGenerator(client, aiProvider, pipeline.Options{
		LogDir: cfg.General.LogDir,
	})
	document, err := generator.Generate(ctx, files, goal)

	if c.Bool("verbose") {
		for _, line := range logging.GetCurrentLogger().Entries() {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	return writeDocument(c.String("output"), document)
}

func parseRepos(raw []string) ([]models.RepositoryID, error) {
	repos := make([]models.RepositoryID, 0, len(raw))
	for _, s := range raw {
		repo, err := models.ParseRepositoryID(s)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// applySelection runs the selection verbs. A --select value addresses a repo
// explicitly as owner/name:path; a bare path is allowed with a single repo.
func applySelection(ctx context.Context, c *cli.Context, manager *tree.Manager, controller *tree.Controller, repos []models.RepositoryID) error {
	if c.Bool("select-all") {
		for _, repo := range repos {
			if _, err := controller.SelectAllInRepo(ctx, repo, true); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: partial selection in %s: %v\n", repo, err)
			}
		}
		return nil
	}

	for _, sel := range c.StringSlice("select") {
		repo, path, err := resolveSelection(sel, repos)
		if err != nil {
			return err
		}
		if err := loadAncestors(ctx, manager, repo, path); err != nil {
			return fmt.Errorf("cannot reach %s:%s: %w", repo, path, err)
		}
		if _, err := controller.SelectFolder(ctx, repo, path, true); err != nil {
			return fmt.Errorf("cannot select %s:%s: %w", repo, path, err)
		}
	}
	return nil
}

// loadAncestors fetches every directory level above path so the selection
// target is present in the tree.
func loadAncestors(ctx context.Context, manager *tree.Manager, repo models.RepositoryID, path string) error {
	segments := strings.Split(path, "/")
	prefix := ""
	for _, segment := range segments[:len(segments)-1] {
		if prefix == "" {
			prefix = segment
		} else {
			prefix += "/" + segment
		}
		if err := manager.EnsureLoaded(ctx, repo, prefix); err != nil {
			return err
		}
	}
	return nil
}

func resolveSelection(sel string, repos []models.RepositoryID) (models.RepositoryID, string, error) {
	for _, repo := range repos {
		if rest, found := strings.CutPrefix(sel, string(repo)+":"); found {
			return repo, rest, nil
		}
	}
	if len(repos) == 1 {
		return repos[0], sel, nil
	}
	return "", "", fmt.Errorf("ambiguous selection %q: use owner/name:path with multiple repos", sel)
}

func writeDocument(outputPath string, document *models.Document) error {
	var sb strings.Builder
	sb.WriteString(document.Markdown)
	sb.WriteString("\n\n---\n\nGenerated from:\n")
	for _, url := range document.SourceRepos {
		fmt.Fprintf(&sb, "- %s\n", url)
	}

	if outputPath == "" {
		fmt.Print(sb.String())
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Printf("Document written to %s\n", outputPath)
	return nil
}
