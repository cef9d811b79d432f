package audio

import (
	"errors"
	"os/exec"
)

// FFmpegBinary decodes input files and, for the ffmpeg backend, captures audio.
const FFmpegBinary = "ffmpeg"

// ErrMissingDependency is returned when a required external binary is not on $PATH.
var ErrMissingDependency = errors.New("missing external dependency")

// MissingDependencyError names the binary that could not be found.
type MissingDependencyError struct {
	Binary string
}

func (e *MissingDependencyError) Error() string {
	return e.Binary + " not found on $PATH"
}

// Is makes errors.Is(err, ErrMissingDependency) match.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// RequireBinary checks that name can be found on $PATH.
func RequireBinary(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return &MissingDependencyError{Binary: name}
	}
	return nil
}
