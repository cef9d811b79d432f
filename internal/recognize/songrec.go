package recognize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Songrec runs the songrec CLI, which computes the Shazam signature locally
// and prints the Shazam response as JSON.
type Songrec struct {
	binary    string
	proxy     string
	logWriter io.Writer
}

func NewSongrec(binary, proxy string, logWriter io.Writer) *Songrec {
	if binary == "" {
		binary = "songrec"
	}
	return &Songrec{binary: binary, proxy: proxy, logWriter: logWriter}
}

func (s *Songrec) Name() string { return "songrec" }

func (s *Songrec) Requires() []string { return []string{s.binary} }

func (s *Songrec) Recognize(ctx context.Context, wav []byte) (*Result, error) {
	tmp, err := os.CreateTemp("", "shaq-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, "audio-file-to-recognized-song", tmp.Name())
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(s.logWriter, &stderr)
	cmd.Env = s.environ()

	slog.Debug("Running songrec", "command", strings.Join(cmd.Args, " "), "proxy", s.proxy != "")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("songrec failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	return ParseShazam(bytes.TrimSpace(stdout.Bytes()))
}

// environ passes the proxy through the variables songrec's HTTP client honors.
func (s *Songrec) environ() []string {
	env := os.Environ()
	if s.proxy != "" {
		env = append(env,
			"HTTPS_PROXY="+s.proxy,
			"HTTP_PROXY="+s.proxy,
			"https_proxy="+s.proxy,
			"http_proxy="+s.proxy,
		)
	}
	return env
}
