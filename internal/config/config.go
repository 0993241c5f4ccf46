// Package config loads application configuration: confmap defaults, then a
// TOML file, then REPODOC_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration.
type Config struct {
	General struct {
		DefaultAI string `koanf:"default_ai"`
		CacheDir  string `koanf:"cache_dir"`
		LogDir    string `koanf:"log_dir"`
	} `koanf:"general"`

	GitHub struct {
		Token string `koanf:"token"`
	} `koanf:"github"`

	AI map[string]map[string]interface{} `koanf:"ai"`

	Generation struct {
		Goal string `koanf:"goal"`
	} `koanf:"generation"`
}

// LoadConfig loads the configuration from configPath, or from the default
// locations when it is empty.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"general.default_ai": "gemini",
		"general.cache_dir":  defaultCacheDir(),
		"general.log_dir":    defaultLogDir(),
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./repodoc.toml", "$HOME/.repodoc.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	k.Load(env.Provider("REPODOC_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "REPODOC_")), "_", ".", -1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig writes a sample configuration file.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# repodoc Configuration

[general]
default_ai = "gemini"
# cache_dir = "~/.repodoc/cache"
# log_dir = "~/.repodoc/logs"

[github]
# Optional; raises the provider rate allowance.
token = ""

[ai.gemini]
api_key = "your-gemini-api-key"
model = "gemini-2.0-flash"

[generation]
# Default goal prompt; leave empty to use the built-in one.
goal = ""
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate checks that the configuration names a usable AI provider.
func Validate(config *Config) error {
	if config.General.DefaultAI == "" {
		return fmt.Errorf("default AI provider is required")
	}

	aiConfig, ok := config.AI[config.General.DefaultAI]
	if !ok {
		return fmt.Errorf("configuration for AI provider %s not found", config.General.DefaultAI)
	}

	switch config.General.DefaultAI {
	case "gemini":
		if key, _ := aiConfig["api_key"].(string); key == "" {
			return fmt.Errorf("gemini api_key is required")
		}
	}

	return nil
}

// AIConfig returns the config map for the default AI provider.
func (c *Config) AIConfig() map[string]interface{} {
	if c.AI == nil {
		return map[string]interface{}{}
	}
	if m, ok := c.AI[c.General.DefaultAI]; ok {
		return m
	}
	return map[string]interface{}{}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repodoc/cache"
	}
	return home + "/.repodoc/cache"
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repodoc/logs"
	}
	return home + "/.repodoc/logs"
}
