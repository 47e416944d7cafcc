// Package library reads the local music directory.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/garry/playlistcheck/match"
)

// ErrNotDirectory is returned when the scanned path is not a directory
var ErrNotDirectory = errors.New("not a directory")

// AudioExtensions lists the file extensions treated as audio, lower-case
var AudioExtensions = []string{".mp3", ".flac", ".wav", ".m4a", ".ogg"}

// ScanDirectory lists the audio files directly inside dir.
//
// Subdirectories are skipped, not descended into. Symlinks to regular files
// count as files. Filenames are converted to NFC before normalization since
// some filesystems (macOS) hand back decomposed names while the Spotify API
// returns composed ones. Entries come back sorted by filename.
func ScanDirectory(dir string) ([]match.LocalFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to read music directory %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	files := make([]match.LocalFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !IsAudioFile(name) {
			continue
		}

		path := filepath.Join(dir, name)
		// os.Stat follows symlinks; broken links and directories are skipped.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		files = append(files, match.NewLocalFile(norm.NFC.String(name), path))
	}

	return files, nil
}

// IsAudioFile reports whether name carries one of the audio extensions, ignoring case
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, audioExt := range AudioExtensions {
		if ext == audioExt {
			return true
		}
	}
	return false
}
