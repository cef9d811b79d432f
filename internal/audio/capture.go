package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ProgressFunc is called after every chunk read during a live capture.
type ProgressFunc func(done, total int)

// ErrNoAudio is returned when acquisition produced no samples.
var ErrNoAudio = errors.New("no audio captured")

// Listen records p.ChunkCount() chunks from backend and returns them as a WAV buffer.
func Listen(ctx context.Context, backend AudioBackend, p Params, logWriter io.Writer, progress ProgressFunc) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	stream, err := backend.Open(ctx, p, logWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s capture: %w", backend.GetType(), err)
	}
	defer stream.Close()

	total := p.ChunkCount()
	wav := NewWAVWriter(p.Channels, p.SampleRate)
	buf := make([]byte, p.ChunkBytes())

	slog.Debug("Listening", "backend", backend.GetType(), "chunks", total, "chunk_size", p.ChunkSize,
		"channels", p.Channels, "sample_rate", p.SampleRate)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.ReadChunk(buf); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read chunk %d/%d: %w", i+1, total, err)
		}
		wav.Write(buf)
		if progress != nil {
			progress(i+1, total)
		}
	}

	if wav.Frames() == 0 {
		return nil, ErrNoAudio
	}
	return wav.Bytes(), nil
}

// FromFile decodes the first duration seconds of path with ffmpeg, down-mixed
// to mono at DefaultSampleRate, and returns a WAV buffer.
func FromFile(ctx context.Context, path string, duration int, logWriter io.Writer) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be > 0, got: %d", duration)
	}
	if logWriter == nil {
		logWriter = io.Discard
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-t", fmt.Sprintf("%d", duration),
		"-i", path,
		"-vn",
		"-ac", fmt.Sprintf("%d", DefaultChannels),
		"-ar", fmt.Sprintf("%d", DefaultSampleRate),
		"-f", "s16le",
		"-",
	}

	wav := NewWAVWriter(DefaultChannels, DefaultSampleRate)
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, FFmpegBinary, args...)
	cmd.Stdout = wav
	cmd.Stderr = io.MultiWriter(logWriter, &stderr)

	slog.Debug("Running FFmpeg for extraction", "command", FFmpegBinary+" "+strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("FFmpeg extraction failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	if wav.Frames() == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoAudio, path)
	}
	return wav.Bytes(), nil
}
