package match

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Matcher runs the reconciliation across a pool of workers
type Matcher struct {
	threshold float64
	workers   int
	debug     bool
}

// NewMatcher creates a matcher with the given threshold and worker count.
// A worker count below one uses the number of CPUs.
func NewMatcher(threshold float64, workers int) (*Matcher, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Matcher{threshold: threshold, workers: workers}, nil
}

// SetDebug enables or disables debug mode
func (m *Matcher) SetDebug(debug bool) {
	m.debug = debug
}

// Threshold returns the exclusive similarity threshold
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Decide judges every remote track against the local files.
// Decisions are returned in the order of remoteTracks regardless of which
// worker finished first.
func (m *Matcher) Decide(ctx context.Context, remoteTracks []RemoteTrack, localFiles []LocalFile) ([]Decision, error) {
	decisions := make([]Decision, len(remoteTracks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := range remoteTracks {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decisions[i] = Decide(remoteTracks[i], localFiles, m.threshold)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to reconcile tracks: %w", err)
	}

	for i, d := range decisions {
		if d.Present {
			m.debugLog("✅ %d. %s matched %q via %s (variant %q, score %.3f)", i+1, d.Track.DisplayName(), d.Local.RawFilename, d.Method, d.Variant, d.Score)
		} else {
			m.debugLog("❌ %d. %s has no local match", i+1, d.Track.DisplayName())
		}
	}

	return decisions, nil
}

// FindMissing returns the remote tracks without a matching local file, in playlist order
func (m *Matcher) FindMissing(ctx context.Context, remoteTracks []RemoteTrack, localFiles []LocalFile) ([]RemoteTrack, error) {
	decisions, err := m.Decide(ctx, remoteTracks, localFiles)
	if err != nil {
		return nil, err
	}
	return Missing(decisions), nil
}

// Missing collects the tracks of absent decisions, keeping their order
func Missing(decisions []Decision) []RemoteTrack {
	var missing []RemoteTrack
	for _, d := range decisions {
		if !d.Present {
			missing = append(missing, d.Track)
		}
	}
	return missing
}

// debugLog logs a message only if debug mode is enabled
func (m *Matcher) debugLog(format string, args ...interface{}) {
	if m.debug {
		log.Printf(format, args...)
	}
}
