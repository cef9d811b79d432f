package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// BackendType represents the type of audio backend
type BackendType string

const (
	BackendTypePipeWire BackendType = "pipewire"
	BackendTypeFFmpeg   BackendType = "ffmpeg"
	BackendTypeAuto     BackendType = "auto"
)

// Stream is an open capture device producing interleaved 16-bit PCM.
type Stream interface {
	// ReadChunk fills buf completely or returns an error.
	ReadChunk(buf []byte) error
	Close() error
}

// AudioBackend defines the interface for audio backend implementations
type AudioBackend interface {
	// Open starts capturing with the given parameters. Diagnostic output of
	// the underlying tool is written to logWriter.
	Open(ctx context.Context, p Params, logWriter io.Writer) (Stream, error)

	// List available audio sources
	ListSources() ([]string, error)

	// Validate if a source is available
	ValidateSource(source string) error

	// Binary returns the executable the backend depends on.
	Binary() string

	// Get the backend type
	GetType() BackendType
}

// NewBackend returns the backend for name ("pipewire", "ffmpeg" or "auto").
func NewBackend(name string) (AudioBackend, error) {
	switch determineBackend(name) {
	case BackendTypePipeWire:
		return &PipeWireBackend{}, nil
	case BackendTypeFFmpeg:
		return NewFFmpegBackend(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %s", name)
	}
}

// determineBackend resolves "auto" to PipeWire when pw-record is installed,
// falling back to ffmpeg otherwise.
func determineBackend(name string) BackendType {
	switch strings.ToLower(name) {
	case "pipewire":
		return BackendTypePipeWire
	case "ffmpeg":
		return BackendTypeFFmpeg
	case "", "auto":
		if _, err := exec.LookPath(pwRecordBinary); err == nil {
			return BackendTypePipeWire
		}
		return BackendTypeFFmpeg
	}
	return BackendType(name)
}

// GetAvailableBackends returns list of available backends on current system
func GetAvailableBackends() []BackendType {
	var backends []BackendType
	if _, err := exec.LookPath(pwRecordBinary); err == nil {
		backends = append(backends, BackendTypePipeWire)
	}
	if _, err := exec.LookPath(FFmpegBinary); err == nil {
		backends = append(backends, BackendTypeFFmpeg)
	}
	return backends
}
