package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dylanw/budget-tracker/internal/categories"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	BigQuery BigQueryConfig
	Auth     AuthConfig
	Rulebook []RulebookEntry
	Budgets  []BudgetLimit
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port string
}

// StorageConfig holds the GCS bucket for raw uploaded statements.
type StorageConfig struct {
	Bucket string
}

// BigQueryConfig identifies the dataset backing persistence.
type BigQueryConfig struct {
	Project string
	Dataset string
}

// AuthConfig maps API tokens to user IDs. Good enough for a personal
// deployment with a handful of users.
type AuthConfig struct {
	Tokens map[string]string
}

// RulebookEntry is one configured category with its matching keywords.
// The file order of entries is the matching precedence.
type RulebookEntry struct {
	Name     string
	Keywords []string
}

// BudgetLimit is a default monthly target seeded for new users.
type BudgetLimit struct {
	Category string
	Monthly  float64
}

// Load reads configuration from file and env. Env overrides use the
// BUDGETTRACKER_ prefix with dots replaced by underscores.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("bigquery.project", "")
	v.SetDefault("bigquery.dataset", "finance")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("BUDGETTRACKER_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "budget-tracker"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BUDGETTRACKER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional; defaults plus env are a valid setup
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// KeywordRules converts the configured rulebook for the category
// resolver, preserving file order. Falls back to the built-in rulebook
// when the config file defines none.
func (c Config) KeywordRules() []categories.KeywordRule {
	if len(c.Rulebook) == 0 {
		return categories.DefaultRulebook()
	}
	rules := make([]categories.KeywordRule, 0, len(c.Rulebook))
	for _, entry := range c.Rulebook {
		rules = append(rules, categories.KeywordRule{
			Category: entry.Name,
			Keywords: entry.Keywords,
		})
	}
	return rules
}
