package domain

import "io/fs"

// FileSnapshot is the in-memory copy of a file taken before the pipeline runs.
// Content is nil when the file did not exist. Once captured a snapshot is
// never modified.
type FileSnapshot struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	// Digest is the xxhash of Content, used to tell whether the file changed.
	Digest uint64
	// Link is the raw symlink destination when Path was a symlink.
	Link string
	// Target is the file Path resolved to when it was a symlink.
	Target string
}

// Existed reports whether the file was present when the snapshot was taken.
func (s *FileSnapshot) Existed() bool {
	return s.Content != nil
}

// DataPath is the file that holds the content: the symlink target, or Path itself.
func (s *FileSnapshot) DataPath() string {
	if s.Target != "" {
		return s.Target
	}
	return s.Path
}
