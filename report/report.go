// Package report writes the list of missing tracks to a file and to the console.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/garry/playlistcheck/match"
	"github.com/garry/playlistcheck/musicbrainz"
)

// Format writes the numbered report: a total count, a blank line, then one
// "{i}. {artist} - {title}" line per track
func Format(w io.Writer, missing []match.RemoteTrack) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Total missing songs: %d\n\n", len(missing))
	for i, track := range missing {
		fmt.Fprintf(bw, "%d. %s\n", i+1, track.DisplayName())
		if track.MusicBrainzID != "" {
			fmt.Fprintf(bw, "   MusicBrainz: %s%s\n", musicbrainz.RecordingURL, track.MusicBrainzID)
		}
	}
	return bw.Flush()
}

// Write saves the report to path, creating parent directories as needed
func Write(path string, missing []match.RemoteTrack) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := Format(f, missing); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// Render prints the missing list to an interactive console
func Render(w io.Writer, missing []match.RemoteTrack) {
	header := color.New(color.FgYellow, color.Bold)
	index := color.New(color.FgCyan)
	link := color.New(color.Faint)

	header.Fprintf(w, "\n%d songs need to be downloaded:\n", len(missing))
	for i, track := range missing {
		index.Fprintf(w, "%d.", i+1)
		fmt.Fprintf(w, " %s\n", track.DisplayName())
		if track.MusicBrainzID != "" {
			link.Fprintf(w, "   %s%s\n", musicbrainz.RecordingURL, track.MusicBrainzID)
		}
	}
}
