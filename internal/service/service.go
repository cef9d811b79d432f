// Package service runs one recognition: dependency check, audio acquisition,
// recognition and the optional tag and filename edits.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/audiolibrelab/shaq/internal/audio"
	"github.com/audiolibrelab/shaq/internal/config"
	"github.com/audiolibrelab/shaq/internal/console"
	"github.com/audiolibrelab/shaq/internal/recognize"
	"github.com/audiolibrelab/shaq/internal/tagging"
)

// LiveEditWarning is printed when edits are requested for a microphone capture.
const LiveEditWarning = "Metadata/Filename editing is not supported for live recordings."

// Service represents the core shaq service interface
type Service interface {
	// CheckDependencies verifies every external binary the request needs.
	CheckDependencies(req Request) error

	// Run acquires audio, recognizes it and applies requested edits.
	Run(ctx context.Context, req Request) (*Outcome, error)

	// GetConfig returns the resolved configuration
	GetConfig() *config.Config
}

// Request describes one invocation.
type Request struct {
	Listen       bool
	InputPath    string
	Params       audio.Params
	JSON         bool
	EditMetadata bool
	EditTitle    bool
}

// Source returns a human readable description of where audio comes from.
func (r Request) Source() string {
	if r.Listen {
		return "microphone"
	}
	return r.InputPath
}

// wantsEdit reports whether any file edit was requested.
func (r Request) wantsEdit() bool {
	return r.EditMetadata || r.EditTitle
}

// EditReport records what the edit step did. Failures are reported, never returned.
type EditReport struct {
	Skipped         string
	MetadataUpdated bool
	MetadataError   error
	Renamed         string
	RenameError     error
}

// Outcome is the result of a run.
type Outcome struct {
	Result *recognize.Result
	Source string
	Edits  EditReport

	// Withheld is set when the run ends on a warning and prints no result.
	Withheld bool
}

type (
	decodeFunc func(ctx context.Context, path string, duration int, logWriter io.Writer) ([]byte, error)
	listenFunc func(ctx context.Context, backend audio.AudioBackend, p audio.Params, logWriter io.Writer, progress audio.ProgressFunc) ([]byte, error)
	updateFunc func(ctx context.Context, path, title, artist string, logWriter io.Writer) error
	renameFunc func(path, title, artist, tmpl string) (string, error)
)

// ShaqService is the main service implementation
type ShaqService struct {
	cfg        *config.Config
	console    *console.Console
	logWriter  io.Writer
	backend    audio.AudioBackend
	recognizer recognize.Recognizer

	requireBinary func(name string) error
	decode        decodeFunc
	listen        listenFunc
	updateTags    updateFunc
	rename        renameFunc
}

// New creates a service for cfg. Console output goes to con; output of
// external tools goes to logWriter.
func New(cfg *config.Config, con *console.Console, logWriter io.Writer) (*ShaqService, error) {
	if logWriter == nil {
		logWriter = io.Discard
	}
	if con == nil {
		con = console.New(nil)
	}

	backend, err := audio.NewBackend(cfg.Capture.Backend)
	if err != nil {
		return nil, err
	}

	recognizer, err := recognize.New(cfg.Recognizer, logWriter)
	if err != nil {
		return nil, err
	}

	return &ShaqService{
		cfg:           cfg,
		console:       con,
		logWriter:     logWriter,
		backend:       backend,
		recognizer:    recognizer,
		requireBinary: audio.RequireBinary,
		decode:        audio.FromFile,
		listen:        audio.Listen,
		updateTags:    tagging.Update,
		rename:        tagging.Rename,
	}, nil
}

// GetConfig returns the current configuration
func (s *ShaqService) GetConfig() *config.Config {
	return s.cfg
}

// CheckDependencies returns an error wrapping audio.ErrMissingDependency for
// the first required binary missing from $PATH.
func (s *ShaqService) CheckDependencies(req Request) error {
	var required []string
	if req.Listen {
		required = append(required, s.backend.Binary())
	} else {
		required = append(required, audio.FFmpegBinary)
	}
	required = append(required, s.recognizer.Requires()...)

	for _, bin := range required {
		if err := s.requireBinary(bin); err != nil {
			return err
		}
	}
	return nil
}

// Run performs the recognition described by req.
func (s *ShaqService) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Listen == (req.InputPath != "") {
		return nil, errors.New("exactly one of listen or input path is required")
	}

	slog.Debug("Service.Run called", "source", req.Source(), "recognizer", s.recognizer.Name(),
		"length", req.Params.Length())

	if err := s.CheckDependencies(req); err != nil {
		return nil, err
	}

	wav, err := s.acquire(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Debug("Audio acquired", "bytes", len(wav))

	result, err := s.recognizer.Recognize(ctx, wav)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	slog.Debug("Recognition completed", "matched", result.Matched, "title", result.Title, "artist", result.Subtitle)

	outcome := &Outcome{Result: result, Source: req.Source()}
	if !req.JSON && result.Matched && req.wantsEdit() {
		outcome.Edits = s.applyEdits(ctx, req, result)
		outcome.Withheld = req.Listen
	}
	return outcome, nil
}

func (s *ShaqService) acquire(ctx context.Context, req Request) ([]byte, error) {
	if req.Listen {
		if err := s.backend.ValidateSource(req.Params.Device); err != nil {
			return nil, fmt.Errorf("invalid capture device: %w", err)
		}

		bar := s.console.NewBar("shaq is listening...", req.Params.ChunkCount())
		wav, err := s.listen(ctx, s.backend, req.Params, s.logWriter, bar.Update)
		bar.Finish(err == nil)
		return wav, err
	}

	spinner := s.console.NewSpinner(fmt.Sprintf("Extracting from %s", req.InputPath))
	wav, err := s.decode(ctx, req.InputPath, req.Params.Duration, s.logWriter)
	spinner.Finish(err == nil)
	return wav, err
}

// applyEdits rewrites tags before renaming so both act on the original path.
func (s *ShaqService) applyEdits(ctx context.Context, req Request, result *recognize.Result) EditReport {
	var report EditReport

	if req.Listen {
		s.console.Warnf(LiveEditWarning)
		report.Skipped = LiveEditWarning
		return report
	}

	path := req.InputPath
	if !s.cfg.CanEdit(path) {
		report.Skipped = fmt.Sprintf("editing disabled for %s", path)
		s.console.Warnf("File type of %s is not enabled for editing.", path)
		return report
	}

	if req.EditMetadata {
		err := s.updateTags(ctx, path, result.Title, result.Subtitle, s.logWriter)
		switch {
		case errors.Is(err, tagging.ErrUnsupportedFormat):
			report.MetadataError = err
			s.console.Warnf("File type %s not supported for metadata writing.", extOf(path))
		case err != nil:
			report.MetadataError = err
			slog.Error("Metadata update failed", "path", path, "error", err)
			s.console.Errorf("Failed to update metadata for %s: %v", path, err)
		default:
			report.MetadataUpdated = true
			slog.Debug("Metadata updated", "path", path)
		}
	}

	if req.EditTitle {
		newPath, err := s.rename(path, result.Title, result.Subtitle, s.cfg.Output.RenameTemplate)
		if err != nil {
			report.RenameError = err
			slog.Error("Rename failed", "path", path, "error", err)
			s.console.Errorf("Failed to rename file: %v", err)
		} else {
			report.Renamed = newPath
			slog.Debug("File renamed", "from", path, "to", newPath)
		}
	}

	return report
}
