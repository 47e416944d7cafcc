package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/garry/playlistcheck/config"
	"github.com/garry/playlistcheck/library"
	"github.com/garry/playlistcheck/match"
	"github.com/garry/playlistcheck/musicbrainz"
	"github.com/garry/playlistcheck/report"
	"github.com/garry/playlistcheck/spotify"
)

// Version information - set during build
var version = "dev"

// Constants for display formatting
const (
	separatorLine   = "="
	separatorLength = 80
)

// Exit codes
const (
	exitCodeSuccess      = 0
	exitCodeUsageError   = 1
	exitCodeConfigError  = 2
	exitCodeClientError  = 3
	exitCodeLibraryError = 4
	exitCodeReportError  = 5
)

// exitError carries the process exit code for a failed run
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// trackSource fetches the remote side of the comparison
type trackSource interface {
	GetPlaylistInfo(ctx context.Context, playlistID string) (*spotify.PlaylistInfo, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]match.RemoteTrack, error)
}

// trackAnnotator adds external identifiers to missing tracks
type trackAnnotator interface {
	Annotate(ctx context.Context, tracks []match.RemoteTrack) ([]match.RemoteTrack, error)
}

// Application represents the main application state
type Application struct {
	config      *config.Config
	tracks      trackSource
	matcher     *match.Matcher
	musicBrainz trackAnnotator
	out         io.Writer
}

// NewApplication creates a new application instance
func NewApplication(ctx context.Context, cfg *config.Config, out io.Writer) (*Application, error) {
	matcher, err := match.NewMatcher(cfg.Match.Threshold, cfg.Match.Workers)
	if err != nil {
		return nil, &exitError{code: exitCodeConfigError, err: err}
	}
	matcher.SetDebug(debugMode)

	fmt.Fprintln(out, "🔌 Setting up Spotify connection...")
	spotifyClient, err := spotify.NewClient(ctx, cfg.Spotify)
	if err != nil {
		fmt.Fprintf(out, "❌ Error connecting to Spotify: %v\n", err)
		fmt.Fprintln(out, "Check your credentials and try again.")
		return nil, &exitError{code: exitCodeClientError, err: fmt.Errorf("failed to create Spotify client: %w", err)}
	}

	app := &Application{
		config:  cfg,
		tracks:  spotifyClient,
		matcher: matcher,
		out:     out,
	}
	if cfg.MusicBrainz.Enabled {
		app.musicBrainz = musicbrainz.NewClient()
	}

	return app, nil
}

// Run executes the main application logic
func (app *Application) Run(ctx context.Context) error {
	playlistID, err := spotify.ParsePlaylistID(app.config.Spotify.PlaylistID)
	if err != nil {
		return &exitError{code: exitCodeUsageError, err: err}
	}

	// Get playlist tracks
	fmt.Fprintln(app.out, "🎵 Getting playlist tracks...")
	info, err := app.tracks.GetPlaylistInfo(ctx, playlistID)
	if err != nil {
		fmt.Fprintf(app.out, "❌ Error getting playlist: %v\n", err)
		return &exitError{code: exitCodeClientError, err: err}
	}
	remoteTracks, err := app.tracks.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		fmt.Fprintf(app.out, "❌ Error getting playlist: %v\n", err)
		return &exitError{code: exitCodeClientError, err: err}
	}
	fmt.Fprintf(app.out, "📋 %s (by %s)\n", info.Name, info.Owner)
	fmt.Fprintf(app.out, "Found %d songs in the playlist.\n", len(remoteTracks))

	// Read local files
	fmt.Fprintln(app.out, "📂 Reading local files...")
	localFiles, err := library.ScanDirectory(app.config.Library.Directory)
	if err != nil {
		fmt.Fprintf(app.out, "❌ Error reading local files: %v\n", err)
		return &exitError{code: exitCodeLibraryError, err: err}
	}
	fmt.Fprintf(app.out, "Found %d music files locally.\n", len(localFiles))

	// Find missing songs
	fmt.Fprintln(app.out, "🔍 Comparing lists...")
	decisions, err := app.matcher.Decide(ctx, remoteTracks, localFiles)
	if err != nil {
		return &exitError{code: exitCodeClientError, err: err}
	}
	missing := match.Missing(decisions)

	app.displaySummary(len(remoteTracks), len(missing))

	if len(missing) == 0 {
		fmt.Fprintln(app.out, "\n🎉 Congratulations! You've already downloaded all songs from the playlist.")
		return nil
	}

	missing = app.annotateMissing(ctx, missing)

	// Display and save results
	report.Render(app.out, missing)
	if err := report.Write(app.config.Report.Path, missing); err != nil {
		fmt.Fprintf(app.out, "❌ Error saving report: %v\n", err)
		return &exitError{code: exitCodeReportError, err: err}
	}
	fmt.Fprintf(app.out, "\n💾 List saved to '%s'\n", app.config.Report.Path)

	return nil
}

// displaySummary displays a summary of the matching results
func (app *Application) displaySummary(total, missing int) {
	matched := total - missing
	percent := 0.0
	if total > 0 {
		percent = float64(matched) / float64(total) * 100
	}

	fmt.Fprintln(app.out, "\n"+strings.Repeat(separatorLine, separatorLength))
	fmt.Fprintln(app.out, "SUMMARY")
	fmt.Fprintln(app.out, strings.Repeat(separatorLine, separatorLength))
	fmt.Fprintf(app.out, "Matched %d of %d tracks (%.1f%%)\n", matched, total, percent)
	fmt.Fprintf(app.out, "Missing: %d\n", missing)
}

// annotateMissing looks up MusicBrainz IDs for missing tracks when enabled.
// Failures leave the tracks unannotated.
func (app *Application) annotateMissing(ctx context.Context, missing []match.RemoteTrack) []match.RemoteTrack {
	if app.musicBrainz == nil {
		return missing
	}

	fmt.Fprintln(app.out, "\n🔍 Looking up MusicBrainz IDs for missing tracks...")
	annotated, err := app.musicBrainz.Annotate(ctx, missing)
	if err != nil {
		log.Printf("⚠️  Warning: MusicBrainz lookup stopped: %v", err)
		return missing
	}
	return annotated
}

// Global debug flag
var debugMode bool

// cliOptions holds flags that do not map onto configuration keys
type cliOptions struct {
	debug       bool
	showVersion bool
}

// parseFlags parses command line flags into configuration overrides
func parseFlags(args []string) (map[string]string, cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("playlistcheck", flag.ContinueOnError)

	playlist := fs.String("playlist", "", "Spotify playlist ID or URL (overrides SPOTIFY_PLAYLIST_ID env var)")
	dir := fs.String("dir", "", "Path to the downloaded music folder (overrides MUSIC_DIR env var)")
	threshold := fs.String("threshold", "", "Similarity a filename must exceed to count as a match, 0-1 (overrides MATCH_THRESHOLD env var)")
	workers := fs.String("workers", "", "Number of parallel matching workers (overrides MATCH_WORKERS env var)")
	reportPath := fs.String("report", "", "Report file path (overrides REPORT_FILE env var)")
	authMode := fs.String("auth", "", "Spotify auth mode: client or user (overrides SPOTIFY_AUTH_MODE env var)")
	lookup := fs.Bool("musicbrainz", false, "Look up MusicBrainz IDs for missing tracks")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug output (per-track match method and similarity)")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	overrides := map[string]string{
		"SPOTIFY_PLAYLIST_ID": *playlist,
		"MUSIC_DIR":           *dir,
		"MATCH_THRESHOLD":     *threshold,
		"MATCH_WORKERS":       *workers,
		"REPORT_FILE":         *reportPath,
		"SPOTIFY_AUTH_MODE":   *authMode,
	}
	if *lookup {
		overrides["MUSICBRAINZ_LOOKUP"] = strconv.FormatBool(true)
	}

	return overrides, opts, nil
}

// promptMissingInputs asks interactively for the playlist and directory when not configured
func promptMissingInputs(cfg *config.Config) error {
	if cfg.Spotify.PlaylistID == "" {
		prompt := &survey.Input{
			Message: "Enter the Spotify playlist ID or URL (e.g., 37i9dQZF1DZ06evO45P0Eo):",
		}
		validate := func(ans interface{}) error {
			_, err := spotify.ParsePlaylistID(fmt.Sprint(ans))
			return err
		}
		if err := survey.AskOne(prompt, &cfg.Spotify.PlaylistID, survey.WithValidator(validate)); err != nil {
			return fmt.Errorf("failed to read playlist ID: %w", err)
		}
	}

	if cfg.Library.Directory == "" {
		prompt := &survey.Input{
			Message: "Enter the path to your downloaded music folder:",
		}
		if err := survey.AskOne(prompt, &cfg.Library.Directory, survey.WithValidator(survey.Required)); err != nil {
			return fmt.Errorf("failed to read music folder: %w", err)
		}
	}

	return nil
}

func main() {
	// Parse command line flags
	overrides, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(exitCodeUsageError)
	}

	// Handle version flag
	if opts.showVersion {
		fmt.Printf("playlistcheck version %s\n", version)
		os.Exit(exitCodeSuccess)
	}
	debugMode = opts.debug

	// Load configuration
	cfg, err := config.LoadWithOverrides(overrides)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(exitCodeConfigError)
	}

	if err := promptMissingInputs(cfg); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(exitCodeUsageError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Create and run application
	app, err := NewApplication(ctx, cfg, os.Stdout)
	if err == nil {
		err = app.Run(ctx)
	}
	if err != nil {
		stop()
		log.Printf("Application failed: %v", err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(exitCodeClientError)
	}
}
