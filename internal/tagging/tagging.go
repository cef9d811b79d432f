// Package tagging rewrites the title and artist tags of FLAC, Ogg Vorbis and
// MP3 files, and renames files after the recognized track.
package tagging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// File extensions the package can write tags for.
const (
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtMP3  = ".mp3"
)

// ErrUnsupportedFormat is returned for extensions with no tag writer.
var ErrUnsupportedFormat = errors.New("file type not supported for metadata writing")

// Update sets title, artist and album artist on the file at path. The format
// is chosen by extension. logWriter receives output of any helper process.
func Update(ctx context.Context, path, title, artist string, logWriter io.Writer) error {
	if logWriter == nil {
		logWriter = io.Discard
	}

	ext := strings.ToLower(filepath.Ext(path))
	slog.Debug("Updating tags", "path", path, "format", ext, "title", title, "artist", artist)

	var err error
	switch ext {
	case ExtFLAC:
		err = updateFLAC(path, title, artist)
	case ExtOGG:
		err = updateOgg(ctx, path, title, artist, logWriter)
	case ExtMP3:
		err = updateMP3(path, title, artist)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("failed to update metadata for %s: %w", path, err)
	}
	return nil
}

// Supported reports whether Update can write tags for path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtFLAC, ExtOGG, ExtMP3:
		return true
	}
	return false
}
