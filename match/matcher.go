package match

import (
	"errors"
	"fmt"
	"strings"
)

// Match constants
const (
	// DefaultThreshold is the exclusive similarity ratio a variant must exceed
	DefaultThreshold = 0.75

	// Match methods
	MethodRatio     = "ratio"
	MethodSubstring = "substring"
	MethodNone      = "none"
)

// ErrInvalidThreshold is returned when a threshold lies outside [0, 1]
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// Decision records how a remote track was judged against the local files
type Decision struct {
	Track   RemoteTrack
	Present bool
	Local   *LocalFile
	Method  string
	Variant string
	Score   float64
}

// ValidateThreshold checks that a similarity threshold is usable
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Variants returns the textual forms of a track probed against each local file,
// in the order they are tried
func Variants(track RemoteTrack) []string {
	return []string{
		track.DisplayName(),
		track.Title,
		fmt.Sprintf("%s - %s", track.Title, track.Artist),
	}
}

// Decide scans the local files in order and stops at the first one that matches.
//
// A file matches when a variant scores strictly above the threshold, or when
// the normalized title is contained in the file's canonical name. The first
// matching file wins even if a later one would score higher.
func Decide(track RemoteTrack, locals []LocalFile, threshold float64) Decision {
	variants := Variants(track)
	title := Normalize(track.Title)

	for i := range locals {
		local := &locals[i]
		for _, variant := range variants {
			score := Similarity(variant, local.CanonicalName)
			if score > threshold {
				return Decision{Track: track, Present: true, Local: local, Method: MethodRatio, Variant: variant, Score: score}
			}
			if strings.Contains(local.CanonicalName, title) {
				return Decision{Track: track, Present: true, Local: local, Method: MethodSubstring, Variant: variant, Score: score}
			}
		}
	}

	return Decision{Track: track, Present: false, Method: MethodNone}
}

// IsPresent reports whether the track has a matching local file
func IsPresent(track RemoteTrack, locals []LocalFile, threshold float64) bool {
	return Decide(track, locals, threshold).Present
}

// FindMissing returns the remote tracks without a matching local file, in playlist order
func FindMissing(remoteTracks []RemoteTrack, localFiles []LocalFile, threshold float64) []RemoteTrack {
	var missing []RemoteTrack
	for _, track := range remoteTracks {
		if !IsPresent(track, localFiles, threshold) {
			missing = append(missing, track)
		}
	}
	return missing
}
