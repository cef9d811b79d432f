package tagging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/audiolibrelab/shaq/internal/audio"
)

// updateOgg remuxes the file with ffmpeg, copying the streams and setting the
// comment fields, then replaces the original.
func updateOgg(ctx context.Context, path, title, artist string, logWriter io.Writer) error {
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+".shaq-tmp"+ExtOGG)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", path,
		"-map", "0",
		"-c", "copy",
		"-map_metadata", "0",
	}
	for _, kv := range [][2]string{{"title", title}, {"artist", artist}, {"album_artist", artist}} {
		// Ogg keeps comments per stream, so set both levels.
		args = append(args,
			"-metadata", kv[0]+"="+kv[1],
			"-metadata:s:a:0", kv[0]+"="+kv[1],
		)
	}
	args = append(args, tmp)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, audio.FFmpegBinary, args...)
	cmd.Stdout = logWriter
	cmd.Stderr = io.MultiWriter(logWriter, &stderr)

	slog.Debug("Running FFmpeg for tag rewrite", "command", strings.Join(cmd.Args, " "))

	if err := cmd.Run(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("FFmpeg tag rewrite failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	if _, err := os.Stat(tmp); err != nil {
		return fmt.Errorf("output file not created: %s", tmp)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
