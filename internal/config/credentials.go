package config

import (
	"github.com/repodoc/internal/cache"
	"github.com/repodoc/pkg/models"
)

// SaveCredentials persists API keys under the settings key. Failures are
// non-fatal by cache policy; the keys simply will not survive the session.
func SaveCredentials(store cache.Store, creds models.Credentials) {
	cache.SetJSON(store, cache.SettingsAPIKeys, creds)
}

// LoadCredentials returns the persisted API keys, or zero credentials when
// none are stored.
func LoadCredentials(store cache.Store) models.Credentials {
	creds, ok := cache.GetJSON[models.Credentials](store, cache.SettingsAPIKeys)
	if !ok {
		return models.Credentials{}
	}
	return creds
}

// ApplyCredentials fills config gaps from persisted credentials: values from
// the config file or environment win over stored keys.
func ApplyCredentials(config *Config, creds models.Credentials) {
	if config.GitHub.Token == "" {
		config.GitHub.Token = creds.GitHubToken
	}
	aiConfig, ok := config.AI[config.General.DefaultAI]
	if !ok {
		if config.AI == nil {
			config.AI = map[string]map[string]interface{}{}
		}
		aiConfig = map[string]interface{}{}
		config.AI[config.General.DefaultAI] = aiConfig
	}
	if key, _ := aiConfig["api_key"].(string); key == "" && creds.GeminiAPIKey != "" {
		aiConfig["api_key"] = creds.GeminiAPIKey
	}
}
