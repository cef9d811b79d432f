package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMergeConfigs_ProfileOverridesAndInherits(t *testing.T) {
	base := Default()

	profile := &Config{
		Capture: CaptureConfig{
			Duration: 15,
			Channels: 2,
		},
		Recognizer: RecognizerConfig{
			Name:  "audd",
			Proxy: "http://proxy:3128",
		},
		Output: OutputConfig{
			JSON: true,
		},
	}

	result := mergeConfigs(base, profile)

	if result.Capture.Duration != 15 {
		t.Errorf("Expected duration 15, got %d", result.Capture.Duration)
	}
	if result.Capture.Channels != 2 {
		t.Errorf("Expected 2 channels, got %d", result.Capture.Channels)
	}
	if result.Capture.SampleRate != DefaultSampleRate {
		t.Errorf("Expected inherited sample rate %d, got %d", DefaultSampleRate, result.Capture.SampleRate)
	}
	if result.Capture.ChunkSize != DefaultChunkSize {
		t.Errorf("Expected inherited chunk size %d, got %d", DefaultChunkSize, result.Capture.ChunkSize)
	}
	if result.Recognizer.Name != "audd" || result.Recognizer.Proxy != "http://proxy:3128" {
		t.Errorf("Recognizer overrides not applied: %+v", result.Recognizer)
	}
	if result.Recognizer.AudD.Endpoint != "https://api.audd.io/" {
		t.Errorf("Expected inherited AudD endpoint, got %q", result.Recognizer.AudD.Endpoint)
	}
	if !result.Output.JSON {
		t.Error("Expected json output to be enabled by profile")
	}
	if result.Output.RenameTemplate != DefaultRenameTemplate {
		t.Errorf("Expected inherited rename template, got %q", result.Output.RenameTemplate)
	}

	// Inheritance tracking
	if result.Inheritance["capture.duration"] != profileSpecific {
		t.Errorf("Expected duration to be profile-specific, got %s", result.Inheritance["capture.duration"])
	}
	if result.Inheritance["capture.sample_rate"] != inherited {
		t.Errorf("Expected sample rate to be inherited, got %s", result.Inheritance["capture.sample_rate"])
	}
	if result.Inheritance["recognizer.audd.endpoint"] != inherited {
		t.Errorf("Expected audd endpoint to be inherited, got %s", result.Inheritance["recognizer.audd.endpoint"])
	}

	// Base must not be modified
	if base.Capture.Duration != DefaultDuration {
		t.Errorf("Base config was modified: duration %d", base.Capture.Duration)
	}
}

func TestLoadWithProfile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithProfile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}

	if cfg.Capture.Duration != DefaultDuration || cfg.Capture.SampleRate != DefaultSampleRate {
		t.Errorf("Unexpected capture defaults: %+v", cfg.Capture)
	}
	if cfg.Recognizer.Name != "songrec" {
		t.Errorf("Expected songrec recognizer, got %s", cfg.Recognizer.Name)
	}
}

func TestLoadWithProfile_MissingFileUnknownProfile(t *testing.T) {
	_, err := LoadWithProfile(filepath.Join(t.TempDir(), "missing.yaml"), "studio")
	if err == nil {
		t.Fatal("Expected error for unknown profile without config file")
	}
	if !strings.Contains(err.Error(), "'studio' not found") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadWithProfile_ActiveConfig(t *testing.T) {
	content := `
active_config: party

configs:
  default:
    capture:
      duration: 12
    recognizer:
      name: http
      http:
        url: http://localhost:9000/recognize
  party:
    capture:
      channels: 2
      sample_rate: 44100
    output:
      albumcover: true
      rename_template: "{{.Artist}} - {{.Title}}"

supported_audio_extensions:
  - .MP3
  - flac
`
	configFile := createTempConfig(t, content)

	cfg, err := LoadWithProfile(configFile, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Capture.Duration != 12 {
		t.Errorf("Expected duration inherited from file default (12), got %d", cfg.Capture.Duration)
	}
	if cfg.Capture.Channels != 2 || cfg.Capture.SampleRate != 44100 {
		t.Errorf("Expected party capture overrides, got %+v", cfg.Capture)
	}
	if cfg.Recognizer.Name != "http" || cfg.Recognizer.HTTP.URL != "http://localhost:9000/recognize" {
		t.Errorf("Expected recognizer inherited from default profile, got %+v", cfg.Recognizer)
	}
	if !cfg.Output.AlbumCover {
		t.Error("Expected albumcover enabled")
	}
	if cfg.Output.RenameTemplate != "{{.Artist}} - {{.Title}}" {
		t.Errorf("Unexpected rename template %q", cfg.Output.RenameTemplate)
	}

	if !cfg.CanEdit("/music/song.mp3") || !cfg.CanEdit("/music/song.FLAC") {
		t.Error("Expected mp3 and flac to be editable")
	}
	if cfg.CanEdit("/music/song.ogg") {
		t.Error("Expected ogg to be excluded by supported_audio_extensions")
	}
}

func TestLoadWithProfile_ExplicitProfileOverridesActive(t *testing.T) {
	content := `
active_config: party
configs:
  party:
    capture:
      duration: 5
  quiet:
    capture:
      duration: 20
`
	configFile := createTempConfig(t, content)

	cfg, err := LoadWithProfile(configFile, "quiet")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Capture.Duration != 20 {
		t.Errorf("Expected duration 20 from quiet profile, got %d", cfg.Capture.Duration)
	}
}

func TestLoadWithProfile_UnknownProfile(t *testing.T) {
	configFile := createTempConfig(t, "configs:\n  default:\n    capture:\n      duration: 5\n")

	_, err := LoadWithProfile(configFile, "nope")
	if err == nil {
		t.Fatal("Expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "'nope' not found") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadWithProfile_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "three channels",
			content: "configs:\n  default:\n    capture:\n      channels: 3\n",
			errText: "capture.channels must be 1 or 2",
		},
		{
			name:    "unknown recognizer",
			content: "configs:\n  default:\n    recognizer:\n      name: magic\n",
			errText: "recognizer.name must be one of",
		},
		{
			name:    "unknown backend",
			content: "configs:\n  default:\n    capture:\n      backend: coreaudio\n",
			errText: "capture.backend must be",
		},
		{
			name:    "broken template",
			content: "configs:\n  default:\n    output:\n      rename_template: \"{{.Title\"\n",
			errText: "output.rename_template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := createTempConfig(t, tt.content)
			_, err := LoadWithProfile(configFile, "")
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got: %v", tt.errText, err)
			}
		})
	}
}

func TestLoadWithProfile_EnvOverrides(t *testing.T) {
	t.Setenv("SHAQ_RECOGNIZER", "audd")
	t.Setenv("SHAQ_AUDD_API_TOKEN", "secret")
	t.Setenv("SHAQ_PROXY", "socks5://127.0.0.1:1080")

	cfg, err := LoadWithProfile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Recognizer.Name != "audd" {
		t.Errorf("Expected recognizer from env, got %s", cfg.Recognizer.Name)
	}
	if cfg.Recognizer.AudD.APIToken != "secret" {
		t.Errorf("Expected api token from env, got %q", cfg.Recognizer.AudD.APIToken)
	}
	if cfg.Recognizer.Proxy != "socks5://127.0.0.1:1080" {
		t.Errorf("Expected proxy from env, got %q", cfg.Recognizer.Proxy)
	}
}

func TestUpdateActiveConfig(t *testing.T) {
	content := `
active_config: default
configs:
  default:
    capture:
      duration: 10
  party:
    capture:
      duration: 5
`
	configFile := createTempConfig(t, content)

	if err := UpdateActiveConfig(configFile, "party"); err != nil {
		t.Fatalf("UpdateActiveConfig failed: %v", err)
	}

	root, err := ReadRoot(configFile)
	if err != nil {
		t.Fatalf("ReadRoot failed: %v", err)
	}
	if root.ActiveConfig != "party" {
		t.Errorf("Expected active_config 'party', got %q", root.ActiveConfig)
	}

	if err := UpdateActiveConfig(configFile, "missing"); err == nil {
		t.Error("Expected error when activating an unknown profile")
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/.config/shaq.yaml", filepath.Join(homeDir, ".config", "shaq.yaml")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~", "~"}, // Should not expand bare tilde
	}

	for _, test := range tests {
		result := ExpandPath(test.input)
		if result != test.expected {
			t.Errorf("ExpandPath(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

// Helper function to create temporary config file for testing
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shaq-test.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
