// Package config loads migration settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything a migration run needs, sourced from the environment.
type Config struct {
	// PivotalToken authenticates against the Pivotal Tracker v5 API.
	PivotalToken string
	// PivotalProject is the numeric id of the source project.
	PivotalProject int
	// LinearToken authenticates against the Linear GraphQL API.
	LinearToken string
	// LinearTeam is the destination team, resolved by name at run time.
	LinearTeam string
	// Timezone is used when rendering API comment timestamps.
	Timezone *time.Location
	// CSVPath points at an offline export; empty means fetch from the live API.
	CSVPath string
	// GitHubToken is optional and enables pull request decoration.
	GitHubToken string
}

// Load reads configuration from the environment, honoring a local .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CSVPath:     os.Getenv("PIVOTAL_CSV_PATH"),
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		Timezone:    loadTimezone(),
	}

	var err error
	if cfg.PivotalToken, err = requireEnv("PIVOTAL_API_TOKEN"); err != nil {
		return nil, err
	}

	project, err := requireEnv("PIVOTAL_PROJECT_ID")
	if err != nil {
		return nil, err
	}
	if cfg.PivotalProject, err = strconv.Atoi(project); err != nil {
		return nil, fmt.Errorf("PIVOTAL_PROJECT_ID must be a numeric project id: %w", err)
	}

	if cfg.LinearToken, err = requireEnv("LINEAR_API_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.LinearTeam, err = requireEnv("LINEAR_TEAM_NAME"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return value, nil
}

// loadTimezone resolves LINEAR_TIMEZONE, falling back to UTC when the zone is
// unset or unrecognized.
func loadTimezone() *time.Location {
	name := os.Getenv("LINEAR_TIMEZONE")
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Unrecognized timezone, falling back to UTC", "timezone", name)
		return time.UTC
	}
	return loc
}
