package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repodoc/internal/cache"
	"github.com/repodoc/internal/config"
	"github.com/repodoc/pkg/models"
)

// ConfigCommand returns the config command.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "repodoc.toml",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidate,
			},
			{
				Name:  "set-keys",
				Usage: "Persist API keys in the local cache store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "github-token",
						Usage: "GitHub bearer token",
					},
					&cli.StringFlag{
						Name:  "gemini-api-key",
						Usage: "Gemini API key",
					},
				},
				Action: runConfigSetKeys,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.InitConfig(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	cfg, _, err := loadRuntime(c)
	if err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println("Configuration is valid")
	return nil
}

func runConfigSetKeys(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store := cache.NewLayeredStore(cfg.General.CacheDir, 0)

	creds := config.LoadCredentials(store)
	if token := c.String("github-token"); token != "" {
		creds.GitHubToken = token
	}
	if key := c.String("gemini-api-key"); key != "" {
		creds.GeminiAPIKey = key
	}
	if creds == (models.Credentials{}) {
		return fmt.Errorf("nothing to save: pass --github-token and/or --gemini-api-key")
	}

	config.SaveCredentials(store, creds)
	fmt.Println("Credentials saved")
	return nil
}
