package match

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func localFiles(names ...string) []LocalFile {
	files := make([]LocalFile, 0, len(names))
	for _, name := range names {
		files = append(files, NewLocalFile(name, "/music/"+name))
	}
	return files
}

func TestVariants(t *testing.T) {
	track := RemoteTrack{Artist: "Queen", Title: "Bohemian Rhapsody"}
	expected := []string{
		"Queen - Bohemian Rhapsody",
		"Bohemian Rhapsody",
		"Bohemian Rhapsody - Queen",
	}

	if got := Variants(track); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected variants %v, got %v", expected, got)
	}
}

func TestDecideThresholdIsExclusive(t *testing.T) {
	// "abcd" vs "bcde" scores exactly 0.75; the other variants score 0.5.
	track := RemoteTrack{Artist: "q", Title: "abcd"}
	locals := []LocalFile{{RawFilename: "bcde.mp3", CanonicalName: "bcde"}}

	if IsPresent(track, locals, 0.75) {
		t.Error("Expected a score equal to the threshold to be classified as missing")
	}

	decision := Decide(track, locals, 0.7)
	if !decision.Present {
		t.Fatal("Expected track to be present with a threshold below the score")
	}
	if decision.Method != MethodRatio {
		t.Errorf("Expected method %s, got %s", MethodRatio, decision.Method)
	}
	if decision.Variant != "abcd" {
		t.Errorf("Expected the title variant to match, got '%s'", decision.Variant)
	}
	if decision.Score != 0.75 {
		t.Errorf("Expected score 0.75, got %f", decision.Score)
	}
}

func TestDecideSubstringFallback(t *testing.T) {
	track := RemoteTrack{Artist: "A", Title: "VeryLongDistinctiveTitle"}
	locals := localFiles("VeryLongDistinctiveTitle live at wembley stadium 1986 remastered bonus edition.mp3")

	decision := Decide(track, locals, DefaultThreshold)
	if !decision.Present {
		t.Fatal("Expected title containment to mark the track as present")
	}
	if decision.Method != MethodSubstring {
		t.Errorf("Expected method %s, got %s (score %f)", MethodSubstring, decision.Method, decision.Score)
	}
	if decision.Score > DefaultThreshold {
		t.Errorf("Expected a low ratio score, got %f", decision.Score)
	}
}

func TestDecideArtistOmittedFromFilename(t *testing.T) {
	track := RemoteTrack{Artist: "A", Title: "VeryLongDistinctiveTitle"}
	locals := localFiles("verylongdistinctivetitle.mp3")

	if !IsPresent(track, locals, DefaultThreshold) {
		t.Error("Expected track to be present when the filename only carries the title")
	}
}

func TestDecideSubstringIsCaseSensitive(t *testing.T) {
	track := RemoteTrack{Artist: "Somebody Else Entirely", Title: "Intro"}
	locals := []LocalFile{{CanonicalName: "the long intro to a completely different record"}}

	decision := Decide(track, locals, DefaultThreshold)
	if decision.Present {
		t.Errorf("Expected no match, got %s via %q (score %f)", decision.Method, decision.Variant, decision.Score)
	}
}

func TestDecideStopsAtFirstMatchingFile(t *testing.T) {
	track := RemoteTrack{Artist: "Daft Punk", Title: "One More Time"}
	locals := localFiles(
		"One More Time (Live in Tokyo) - bootleg recording by a fan.mp3",
		"01 - Daft Punk - One More Time.mp3",
	)

	decision := Decide(track, locals, DefaultThreshold)
	if !decision.Present {
		t.Fatal("Expected track to be present")
	}
	if decision.Local == nil || decision.Local.RawFilename != locals[0].RawFilename {
		t.Errorf("Expected the first matching file to win, got %+v", decision.Local)
	}
}

func TestDecideNoLocalFiles(t *testing.T) {
	decision := Decide(RemoteTrack{Artist: "Queen", Title: "Bohemian Rhapsody"}, nil, DefaultThreshold)
	if decision.Present {
		t.Error("Expected track to be missing with no local files")
	}
	if decision.Method != MethodNone {
		t.Errorf("Expected method %s, got %s", MethodNone, decision.Method)
	}
	if decision.Local != nil {
		t.Errorf("Expected no local file, got %+v", decision.Local)
	}
}

func TestDecideTitleWithoutWordCharacters(t *testing.T) {
	// An empty normalized title is contained in every canonical name.
	track := RemoteTrack{Artist: "Nobody", Title: "???"}
	locals := localFiles("Completely Unrelated.mp3")

	if !IsPresent(track, locals, DefaultThreshold) {
		t.Error("Expected a title with no word characters to match any file")
	}
}

func TestFindMissingScenario(t *testing.T) {
	remote := []RemoteTrack{
		{Artist: "Daft Punk", Title: "One More Time"},
		{Artist: "Queen", Title: "Bohemian Rhapsody"},
	}
	locals := localFiles("01 - Daft Punk - One More Time.mp3")

	missing := FindMissing(remote, locals, DefaultThreshold)
	expected := []RemoteTrack{{Artist: "Queen", Title: "Bohemian Rhapsody"}}
	if !reflect.DeepEqual(missing, expected) {
		t.Errorf("Expected missing %v, got %v", expected, missing)
	}
}

func TestFindMissingSharedLocalFile(t *testing.T) {
	remote := []RemoteTrack{
		{Artist: "Daft Punk", Title: "One More Time"},
		{Artist: "Daft Punk", Title: "One More Time (Radio Edit)"},
	}
	locals := localFiles("Daft Punk - One More Time.flac")

	if missing := FindMissing(remote, locals, DefaultThreshold); len(missing) != 0 {
		t.Errorf("Expected both tracks to match the same file, got missing %v", missing)
	}
}

var orderRemote = []RemoteTrack{
	{Artist: "Queen", Title: "Bohemian Rhapsody"},
	{Artist: "Daft Punk", Title: "One More Time"},
	{Artist: "Radiohead", Title: "Paranoid Android"},
	{Artist: "Massive Attack", Title: "Teardrop"},
	{Artist: "Björk", Title: "Jóga"},
	{Artist: "Portishead", Title: "Glory Box"},
	{Artist: "Air", Title: "La Femme d'Argent"},
	{Artist: "Aphex Twin", Title: "Windowlicker"},
}

func TestFindMissingPreservesOrder(t *testing.T) {
	locals := localFiles(
		"05 - Portishead - Glory Box.flac",
		"Daft Punk - One More Time.mp3",
		"Björk - Jóga [2002 Remaster].m4a",
	)
	reversed := []LocalFile{locals[2], locals[1], locals[0]}

	expected := []RemoteTrack{orderRemote[0], orderRemote[2], orderRemote[3], orderRemote[6], orderRemote[7]}

	for name, files := range map[string][]LocalFile{"forward": locals, "reversed": reversed} {
		t.Run(name, func(t *testing.T) {
			missing := FindMissing(orderRemote, files, DefaultThreshold)
			if !reflect.DeepEqual(missing, expected) {
				t.Errorf("Expected missing %v, got %v", expected, missing)
			}
		})
	}
}

func TestMatcherFindMissingMatchesSequential(t *testing.T) {
	locals := localFiles(
		"05 - Portishead - Glory Box.flac",
		"Daft Punk - One More Time.mp3",
		"Björk - Jóga [2002 Remaster].m4a",
	)
	expected := FindMissing(orderRemote, locals, DefaultThreshold)

	for _, workers := range []int{1, 3, 16} {
		matcher, err := NewMatcher(DefaultThreshold, workers)
		if err != nil {
			t.Fatalf("Failed to create matcher: %v", err)
		}

		missing, err := matcher.FindMissing(context.Background(), orderRemote, locals)
		if err != nil {
			t.Fatalf("Unexpected error with %d workers: %v", workers, err)
		}
		if !reflect.DeepEqual(missing, expected) {
			t.Errorf("Expected missing %v with %d workers, got %v", expected, workers, missing)
		}
	}
}

func TestMatcherDecideReportsMatches(t *testing.T) {
	matcher, err := NewMatcher(DefaultThreshold, 2)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}
	matcher.SetDebug(true)

	decisions, err := matcher.Decide(context.Background(), orderRemote[:2], localFiles("Daft Punk - One More Time.mp3"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(decisions))
	}
	if decisions[0].Present {
		t.Error("Expected Bohemian Rhapsody to be missing")
	}
	if !decisions[1].Present || decisions[1].Method != MethodRatio {
		t.Errorf("Expected One More Time to match by ratio, got %+v", decisions[1])
	}
}

func TestMatcherCancelledContext(t *testing.T) {
	matcher, err := NewMatcher(DefaultThreshold, 2)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = matcher.FindMissing(ctx, orderRemote, localFiles("Daft Punk - One More Time.mp3"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewMatcherValidation(t *testing.T) {
	tests := []struct {
		threshold float64
		wantErr   bool
	}{
		{0, false},
		{0.75, false},
		{1, false},
		{-0.1, true},
		{1.5, true},
	}

	for _, tc := range tests {
		_, err := NewMatcher(tc.threshold, 1)
		if tc.wantErr && !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("Expected ErrInvalidThreshold for %v, got %v", tc.threshold, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("Expected no error for %v, got %v", tc.threshold, err)
		}
	}

	matcher, err := NewMatcher(DefaultThreshold, 0)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}
	if matcher.workers < 1 {
		t.Errorf("Expected at least one worker, got %d", matcher.workers)
	}
	if matcher.Threshold() != DefaultThreshold {
		t.Errorf("Expected threshold %v, got %v", DefaultThreshold, matcher.Threshold())
	}
}

func TestDisplayName(t *testing.T) {
	track := RemoteTrack{Artist: "Queen", Title: "Bohemian Rhapsody"}
	if track.DisplayName() != "Queen - Bohemian Rhapsody" {
		t.Errorf("Expected 'Queen - Bohemian Rhapsody', got '%s'", track.DisplayName())
	}
}
