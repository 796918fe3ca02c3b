package transcript

import (
	"os"

	"github.com/MimeLyc/caption-transcript/pkg/log"
)

// withTempDir creates a private directory under base, runs fn in it and
// removes the directory afterwards, also when fn panics.
func withTempDir(base, pattern string, fn func(dir string) error) error {
	dir, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return WrapError(err, ErrUnknown, "failed to create temp dir")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("Failed to remove temp dir %s: %v", dir, err)
		}
	}()

	return fn(dir)
}
