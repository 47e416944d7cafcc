package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Authentication modes for the Spotify Web API
const (
	AuthModeClient = "client"
	AuthModeUser   = "user"
)

// Defaults
const (
	DefaultRedirectURI = "http://localhost:8888/callback"
	DefaultThreshold   = 0.75
	DefaultReportFile  = "missing_songs.txt"
)

// Config holds all configuration values
type Config struct {
	Spotify     SpotifyConfig
	Library     LibraryConfig
	Match       MatchConfig
	Report      ReportConfig
	MusicBrainz MusicBrainzConfig
}

// SpotifyConfig holds Spotify API configuration
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthMode     string   // "client" (client credentials) or "user" (authorization code)
	Scopes       []string // Scopes requested in user mode
	PlaylistID   string   // Playlist ID or URL, prompted for when empty
}

// LibraryConfig holds the local music directory
type LibraryConfig struct {
	Directory string
}

// MatchConfig holds matching parameters
type MatchConfig struct {
	Threshold float64
	Workers   int
}

// ReportConfig holds report output settings
type ReportConfig struct {
	Path string
}

// MusicBrainzConfig controls MusicBrainz lookups for missing tracks
type MusicBrainzConfig struct {
	Enabled bool
}

// Load loads configuration following the specified order:
// 1. Start with default values
// 2. Load from OS environment variables (only if they exist)
// 3. Load from .env file (only if it exists and values exist)
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides
func LoadWithOverrides(overrides map[string]string) (*Config, error) {
	config := &Config{}

	// Step 1: Initialize with default values
	config.initializeDefaults()

	// Step 2: Load from OS environment variables (only if they exist)
	config.loadFromEnv()

	// Step 3: Load from .env file (only if it exists and values exist)
	if err := godotenv.Load(); err == nil {
		config.loadFromEnv()
	}

	// Step 4: Apply CLI flag overrides (only if they exist)
	config.applyOverrides(overrides)

	// Validate required configuration after all sources have been loaded
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// initializeDefaults sets up the initial configuration with default values
func (c *Config) initializeDefaults() {
	c.Spotify = SpotifyConfig{
		RedirectURI: DefaultRedirectURI,
		AuthMode:    AuthModeClient,
		Scopes:      []string{"playlist-read-private"},
	}
	c.Library = LibraryConfig{}
	c.Match = MatchConfig{
		Threshold: DefaultThreshold,
		Workers:   runtime.NumCPU(),
	}
	c.Report = ReportConfig{
		Path: DefaultReportFile,
	}
	c.MusicBrainz = MusicBrainzConfig{
		Enabled: false,
	}
}

// envKeys lists every variable read from the environment
var envKeys = []string{
	"SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET",
	"SPOTIFY_REDIRECT_URI",
	"SPOTIFY_AUTH_MODE",
	"SPOTIFY_PLAYLIST_ID",
	"MUSIC_DIR",
	"MATCH_THRESHOLD",
	"MATCH_WORKERS",
	"REPORT_FILE",
	"MUSICBRAINZ_LOOKUP",
}

// loadFromEnv copies environment variables into the configuration (only if they exist).
// godotenv.Load never overrides variables already present in the OS environment.
func (c *Config) loadFromEnv() {
	values := make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		values[key] = os.Getenv(key)
	}
	c.applyOverrides(values)
}

// applyOverrides applies key/value overrides to the configuration (only if they exist).
// Values that fail to parse are kept as-is so validate can report them.
func (c *Config) applyOverrides(overrides map[string]string) {
	for key, value := range overrides {
		value = strings.TrimSpace(value)
		// Only apply if the value is not empty
		if value == "" {
			continue
		}

		switch key {
		case "SPOTIFY_CLIENT_ID":
			c.Spotify.ClientID = value
		case "SPOTIFY_CLIENT_SECRET":
			c.Spotify.ClientSecret = value
		case "SPOTIFY_REDIRECT_URI":
			c.Spotify.RedirectURI = value
		case "SPOTIFY_AUTH_MODE":
			c.Spotify.AuthMode = strings.ToLower(value)
		case "SPOTIFY_PLAYLIST_ID":
			c.Spotify.PlaylistID = value
		case "MUSIC_DIR":
			c.Library.Directory = value
		case "MATCH_THRESHOLD":
			if threshold, err := strconv.ParseFloat(value, 64); err == nil {
				c.Match.Threshold = threshold
			} else {
				c.Match.Threshold = -1
			}
		case "MATCH_WORKERS":
			if workers, err := strconv.Atoi(value); err == nil {
				c.Match.Workers = workers
			} else {
				c.Match.Workers = 0
			}
		case "REPORT_FILE":
			c.Report.Path = value
		case "MUSICBRAINZ_LOOKUP":
			if enabled, err := strconv.ParseBool(value); err == nil {
				c.MusicBrainz.Enabled = enabled
			}
		}
	}
}

// validate checks that all required configuration values are present
func (c *Config) validate() error {
	var problems []string

	// Check Spotify configuration
	if c.Spotify.ClientID == "" {
		problems = append(problems, "SPOTIFY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		problems = append(problems, "SPOTIFY_CLIENT_SECRET")
	}
	if c.Spotify.AuthMode != AuthModeClient && c.Spotify.AuthMode != AuthModeUser {
		problems = append(problems, fmt.Sprintf("SPOTIFY_AUTH_MODE (must be %q or %q, got %q)", AuthModeClient, AuthModeUser, c.Spotify.AuthMode))
	}
	if c.Spotify.AuthMode == AuthModeUser && c.Spotify.RedirectURI == "" {
		problems = append(problems, "SPOTIFY_REDIRECT_URI")
	}

	// Check matching configuration
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		problems = append(problems, "MATCH_THRESHOLD (must be a number between 0 and 1)")
	}
	if c.Match.Workers < 1 {
		problems = append(problems, "MATCH_WORKERS (must be a positive integer)")
	}

	// Check report configuration
	if c.Report.Path == "" {
		problems = append(problems, "REPORT_FILE")
	}

	if len(problems) > 0 {
		return fmt.Errorf("missing or invalid configuration values:\n%s\n\nSet these values via environment variables, .env file, or CLI flags", strings.Join(problems, "\n"))
	}

	return nil
}
