package audio

import (
	"context"
	"fmt"
	"io"
)

const pwRecordBinary = "pw-record"

// PipeWireBackend implements the AudioBackend interface for PipeWire
type PipeWireBackend struct{}

// Open starts pw-record writing raw s16 PCM to stdout.
func (p *PipeWireBackend) Open(ctx context.Context, params Params, logWriter io.Writer) (Stream, error) {
	args := []string{
		"--format", "s16",
		"--rate", fmt.Sprintf("%d", params.SampleRate),
		"--channels", fmt.Sprintf("%d", params.Channels),
	}
	if params.Device != "" {
		args = append(args, "--target", params.Device)
	}
	args = append(args, "-")

	return startProcess(ctx, logWriter, pwRecordBinary, args...)
}

// ListSources returns the PipeWire nodes that expose output ports
func (p *PipeWireBackend) ListSources() ([]string, error) {
	return NewPipeWire().ListNodes()
}

// ValidateSource validates a PipeWire node or port name
func (p *PipeWireBackend) ValidateSource(source string) error {
	if source == "" {
		return nil
	}
	return NewPipeWire().ValidatePort(source)
}

func (p *PipeWireBackend) Binary() string {
	return pwRecordBinary
}

// GetType returns the backend type
func (p *PipeWireBackend) GetType() BackendType {
	return BackendTypePipeWire
}
