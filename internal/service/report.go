package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/audiolibrelab/shaq/internal/recognize"
)

// ErrNoMatch is returned by Report when the service found no track.
var ErrNoMatch = errors.New("no matches")

// ReportOptions selects the output mode.
type ReportOptions struct {
	JSON       bool
	AlbumCover bool
}

// Report writes the result to w: the raw response indented by two spaces in
// JSON mode, otherwise the Track and Artist lines and optionally the cover.
// Withheld outcomes print nothing.
func Report(w io.Writer, outcome *Outcome, opts ReportOptions) error {
	if outcome == nil || outcome.Result == nil {
		return errors.New("no recognition result")
	}
	if outcome.Withheld {
		return nil
	}
	result := outcome.Result

	if opts.JSON && len(result.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, result.Raw, "", "  "); err != nil {
			return fmt.Errorf("invalid response JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	if !result.Matched {
		fmt.Fprintln(w, "No matches.")
		return ErrNoMatch
	}

	fmt.Fprintf(w, "Track: %s\n", result.Title)
	fmt.Fprintf(w, "Artist: %s\n", result.Subtitle)

	if opts.AlbumCover && result.CoverArt != "" {
		fmt.Fprintf(w, "Album Cover: %s\n", recognize.HighResCover(result.CoverArt))
	}
	return nil
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
