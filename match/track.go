package match

import "fmt"

// RemoteTrack represents a track listed in a remote playlist
type RemoteTrack struct {
	Title         string
	Artist        string
	Album         string
	ExternalID    string
	ISRC          string
	MusicBrainzID string
}

// DisplayName returns the "{artist} - {title}" form of the track
func (t RemoteTrack) DisplayName() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// LocalFile represents an audio file found in the local music directory
type LocalFile struct {
	RawFilename   string
	CanonicalName string
	Path          string
}

// NewLocalFile builds a LocalFile, deriving the canonical name from the filename
func NewLocalFile(rawFilename, path string) LocalFile {
	return LocalFile{
		RawFilename:   rawFilename,
		CanonicalName: Normalize(rawFilename),
		Path:          path,
	}
}
