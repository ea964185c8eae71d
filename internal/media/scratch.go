package media

import (
	"os"

	logx "autopost/pkg/logx"
)

// Scratch collects the temporary files of a single delivery attempt.
// Not safe for concurrent use; each attempt owns its own Scratch.
type Scratch struct {
	paths []string
}

// Track registers a file for removal at Cleanup.
func (s *Scratch) Track(path string) {
	if path == "" {
		return
	}
	s.paths = append(s.paths, path)
}

// Cleanup removes every tracked file. Missing files are ignored; callers
// defer this so it runs on every exit path.
func (s *Scratch) Cleanup(log logx.Logger) {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if !log.IsZero() {
				log.Debug("scratch remove failed", logx.String("path", p), logx.Err(err))
			}
		}
	}
	s.paths = nil
}
