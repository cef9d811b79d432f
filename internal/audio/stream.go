package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// processStream reads PCM from the stdout of a capture process.
type processStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	closed bool
}

// startProcess launches name with args and returns its stdout as a Stream.
// The process is killed when ctx is cancelled.
func startProcess(ctx context.Context, logWriter io.Writer, name string, args ...string) (*processStream, error) {
	if logWriter == nil {
		logWriter = io.Discard
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = logWriter

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	slog.Debug("Starting capture process", "command", name+" "+strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	return &processStream{cmd: cmd, stdout: stdout}, nil
}

func (s *processStream) ReadChunk(buf []byte) error {
	if _, err := io.ReadFull(s.stdout, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("capture process ended early: %w", err)
		}
		return err
	}
	return nil
}

// Close stops the capture process. The exit status is ignored since the
// process is always killed mid-stream.
func (s *processStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}
