package tagging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// DefaultNameTemplate yields "Title - Artist".
const DefaultNameTemplate = "{{.Title}} - {{.Artist}}"

// ErrTargetExists is returned when the renamed path is taken by another file.
var ErrTargetExists = errors.New("target file already exists")

type nameFields struct {
	Title  string
	Artist string
}

var unsafeNameChars = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// RenderName renders tmpl for the track. Path separators are replaced so the
// result always names a file in the same directory.
func RenderName(tmpl, title, artist string) (string, error) {
	if tmpl == "" {
		tmpl = DefaultNameTemplate
	}

	t, err := template.New("name").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("invalid rename template: %w", err)
	}

	var b strings.Builder
	if err := t.Execute(&b, nameFields{Title: title, Artist: artist}); err != nil {
		return "", fmt.Errorf("invalid rename template: %w", err)
	}

	name := strings.TrimSpace(unsafeNameChars.Replace(b.String()))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("rename template produced an empty file name")
	}
	return name, nil
}

// Rename moves path to "<rendered name><lower-cased extension>" in the same
// directory and returns the new path.
func Rename(path, title, artist, tmpl string) (string, error) {
	name, err := RenderName(tmpl, title, artist)
	if err != nil {
		return "", err
	}

	newPath := filepath.Join(filepath.Dir(path), name+strings.ToLower(filepath.Ext(path)))
	if newPath == path {
		return path, nil
	}

	if existing, err := os.Stat(newPath); err == nil {
		// Same file under a case-only change on case-insensitive filesystems.
		current, statErr := os.Stat(path)
		if statErr != nil || !os.SameFile(existing, current) {
			return "", fmt.Errorf("%w: %s", ErrTargetExists, newPath)
		}
	}

	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("failed to rename file: %w", err)
	}
	return newPath, nil
}
