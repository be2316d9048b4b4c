package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeConfig(t, `{
			"job_url": "https://example.com/jobs/42",
			"files": ["resume.txt"],
			"use_browser": true,
			"stages": {"use_cached_scrape": true, "use_cached_research": true}
		}`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/jobs/42", cfg.JobURL)
		assert.Equal(t, []string{"resume.txt"}, cfg.Files)
		assert.True(t, cfg.UseBrowser)
		assert.True(t, cfg.Stages.UseCachedScrape)
		assert.False(t, cfg.Stages.UseCachedGuide)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.json")
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeConfig(t, `{not json`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	jobFile := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(jobFile, []byte("listing"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid with job file",
			cfg:  Config{Job: jobFile},
		},
		{
			name: "valid with url",
			cfg:  Config{JobURL: "https://example.com/jobs/42"},
		},
		{
			name:    "job and job_url together",
			cfg:     Config{Job: jobFile, JobURL: "https://example.com/jobs/42"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "malformed url",
			cfg:     Config{JobURL: "::not-a-url"},
			wantErr: "config error",
		},
		{
			name:    "missing job file",
			cfg:     Config{Job: "/nonexistent/job.txt"},
			wantErr: "job file not found",
		},
		{
			name:    "missing candidate file",
			cfg:     Config{Files: []string{"/nonexistent/resume.txt"}},
			wantErr: "candidate file not found",
		},
		{
			name:    "search key without engine id",
			cfg:     Config{GoogleSearchKey: "key"},
			wantErr: "google_search_cx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{JobURL: "https://cli.example/job"}
	defaults := Config{
		JobURL:      "https://file.example/job",
		APIKey:      "file-key",
		DatabaseURL: "postgres://file",
		Files:       []string{"resume.txt"},
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "https://cli.example/job", merged.JobURL, "explicit value wins")
	assert.Equal(t, "file-key", merged.APIKey, "empty value filled from defaults")
	assert.Equal(t, "postgres://file", merged.DatabaseURL)
	assert.Equal(t, []string{"resume.txt"}, merged.Files)
}
