// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// validate checks struct tags on loaded configuration.
var validate = validator.New(validator.WithRequiredStructEnabled())

// StageConfig selects, per pipeline stage, whether a stored artifact may be
// reused instead of running the stage live. Flags only take effect when a
// database is configured.
type StageConfig struct {
	UseCachedScrape           bool `json:"use_cached_scrape,omitempty"`
	UseCachedProfile          bool `json:"use_cached_profile,omitempty"`
	UseCachedResearch         bool `json:"use_cached_research,omitempty"`
	UseCachedCandidateContext bool `json:"use_cached_candidate_context,omitempty"`
	UseCachedGuide            bool `json:"use_cached_guide,omitempty"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Listing input, mutually exclusive
	Job    string `json:"job,omitempty"`                           // Path to a job listing text file
	JobURL string `json:"job_url,omitempty" validate:"omitempty,url"` // URL to scrape the listing from

	// Candidate background documents
	Files []string `json:"files,omitempty"` // Paths to candidate documents (resume, cover letter)

	// Credentials and endpoints
	APIKey          string `json:"api_key,omitempty"`           // Gemini API key
	GoogleSearchKey string `json:"google_search_key,omitempty"` // Optional Custom Search API key
	GoogleSearchCX  string `json:"google_search_cx,omitempty"`  // Optional Custom Search engine id
	DatabaseURL     string `json:"database_url,omitempty"`      // PostgreSQL connection URL

	// Behavior
	UseBrowser       bool        `json:"use_browser,omitempty"`       // Use headless browser for SPA sites
	Verbose          bool        `json:"verbose,omitempty"`           // Print detailed debug information
	OffTopicOverride bool        `json:"off_topic_override,omitempty"` // Proceed past a soft off-topic warning
	Stages           StageConfig `json:"stages,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}
	for _, f := range c.Files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return fmt.Errorf("config error: candidate file not found: %s", f)
		}
	}

	if c.GoogleSearchKey != "" && c.GoogleSearchCX == "" {
		return fmt.Errorf("config error: 'google_search_key' requires 'google_search_cx'")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if len(result.Files) == 0 {
		result.Files = defaults.Files
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.GoogleSearchKey == "" {
		result.GoogleSearchKey = defaults.GoogleSearchKey
	}
	if result.GoogleSearchCX == "" {
		result.GoogleSearchCX = defaults.GoogleSearchCX
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
