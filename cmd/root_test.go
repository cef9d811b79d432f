package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/audiolibrelab/shaq/internal/audio"
	"github.com/audiolibrelab/shaq/internal/config"
	"github.com/audiolibrelab/shaq/internal/console"
	"github.com/audiolibrelab/shaq/internal/service"
	"github.com/fatih/color"
)

func TestReportError(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name        string
		err         error
		interrupted bool
		wantCode    int
		wantOutput  string
	}{
		{"success", nil, false, ExitOK, ""},
		{"no match", fmt.Errorf("report: %w", service.ErrNoMatch), false, ExitFailure, ""},
		{"missing ffmpeg", &audio.MissingDependencyError{Binary: "ffmpeg"}, false, ExitFailure, "Fatal: ffmpeg not found on $PATH\n"},
		{"interrupt signal", errors.New("signal: killed"), true, ExitInterrupted, "Interrupted.\n"},
		{"cancelled", fmt.Errorf("capture: %w", context.Canceled), false, ExitInterrupted, "Interrupted.\n"},
		{"other", errors.New("recognition failed: boom"), false, ExitFailure, "Error: recognition failed: boom\n"},
		{"usage", &usageError{err: errors.New("unknown flag: --bogus")}, false, ExitUsage, "Error: unknown flag: --bogus\nRun 'shaq --help' for usage.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			code := reportError(console.New(&buf), tt.err, tt.interrupted)
			if code != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, code)
			}
			if buf.String() != tt.wantOutput {
				t.Errorf("Expected output %q, got %q", tt.wantOutput, buf.String())
			}
		})
	}
}

func TestApplyFlagOverrides_OnlyChangedFlags(t *testing.T) {
	c := config.Default()
	c.Capture.Duration = 20
	c.Output.AlbumCover = true

	if err := rootCmd.ParseFlags([]string{"--sample-rate", "44100", "--json", "--recognizer", "audd"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	t.Cleanup(func() {
		for _, name := range []string{"sample-rate", "json", "recognizer"} {
			f := rootCmd.Flags().Lookup(name)
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})

	applyFlagOverrides(rootCmd, c)

	if c.Capture.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", c.Capture.SampleRate)
	}
	if !c.Output.JSON {
		t.Error("Expected JSON output")
	}
	if c.Recognizer.Name != "audd" {
		t.Errorf("Expected audd recognizer, got %s", c.Recognizer.Name)
	}
	if c.Capture.Duration != 20 {
		t.Errorf("Unset --duration must keep the profile value, got %d", c.Capture.Duration)
	}
	if !c.Output.AlbumCover {
		t.Error("Unset --albumcover must keep the profile value")
	}
}

func TestBuildRequest_MetadataShorthand(t *testing.T) {
	inputPath, metadataFlag = "song.flac", true
	t.Cleanup(func() { inputPath, metadataFlag = "", false })

	req := buildRequest(config.Default())
	if !req.EditMetadata || !req.EditTitle {
		t.Errorf("--metadata should enable both edits: %+v", req)
	}
	if req.InputPath != "song.flac" || req.Listen {
		t.Errorf("Unexpected source: %+v", req)
	}
	if req.Params.SampleRate != config.DefaultSampleRate || req.Params.Duration != config.DefaultDuration {
		t.Errorf("Unexpected params: %+v", req.Params)
	}
}

func TestGetInheritanceIndicator(t *testing.T) {
	tests := map[string]string{
		"inherited":        "[inherited]",
		"profile-specific": "[profile-specific]",
		"":                 "[default]",
	}
	for in, want := range tests {
		if got := getInheritanceIndicator(in); got != want {
			t.Errorf("getInheritanceIndicator(%q) = %q, want %q", in, got, want)
		}
	}
}
