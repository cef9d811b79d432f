package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultDuration       = 10
	DefaultChunkSize      = 1024
	DefaultChannels       = 1
	DefaultSampleRate     = 16000
	DefaultTimeoutSeconds = 30
	DefaultRenameTemplate = "{{.Title}} - {{.Artist}}"

	// EnvPrefix is the prefix for environment overrides, e.g. SHAQ_RECOGNIZER.
	EnvPrefix = "SHAQ"

	inherited       = "inherited"
	profileSpecific = "profile-specific"
)

// KnownRecognizers lists the recognizer backends that can be selected by name.
var KnownRecognizers = []string{"songrec", "http", "audd"}

type RootConfig struct {
	ActiveConfig             string             `mapstructure:"active_config" yaml:"active_config"`
	Configs                  map[string]*Config `mapstructure:"configs" yaml:"configs"`
	SupportedAudioExtensions []string           `mapstructure:"supported_audio_extensions" yaml:"supported_audio_extensions"`
}

type Config struct {
	Capture    CaptureConfig    `mapstructure:"capture" yaml:"capture"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`

	// Resolved from the root supported_audio_extensions list; not part of a profile.
	EditableExtensions []string `mapstructure:"-" yaml:"editable_extensions"`

	// Internal field to track inheritance information for config show
	Inheritance map[string]string `mapstructure:"-" yaml:"-"`
}

type CaptureConfig struct {
	Duration   int    `mapstructure:"duration" yaml:"duration"`
	ChunkSize  int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	Channels   int    `mapstructure:"channels" yaml:"channels"`
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Backend    string `mapstructure:"backend" yaml:"backend"` // "pipewire", "ffmpeg", "auto"
	Device     string `mapstructure:"device" yaml:"device"`
}

type RecognizerConfig struct {
	Name           string        `mapstructure:"name" yaml:"name"`
	Proxy          string        `mapstructure:"proxy" yaml:"proxy"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Language       string        `mapstructure:"language" yaml:"language"`
	Country        string        `mapstructure:"country" yaml:"country"`
	AudD           AudDConfig    `mapstructure:"audd" yaml:"audd"`
	HTTP           HTTPConfig    `mapstructure:"http" yaml:"http"`
	Songrec        SongrecConfig `mapstructure:"songrec" yaml:"songrec"`
}

type AudDConfig struct {
	APIToken string `mapstructure:"api_token" yaml:"api_token"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

type HTTPConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type SongrecConfig struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
}

type OutputConfig struct {
	JSON           bool   `mapstructure:"json" yaml:"json"`
	AlbumCover     bool   `mapstructure:"albumcover" yaml:"albumcover"`
	RenameTemplate string `mapstructure:"rename_template" yaml:"rename_template"`
}

// Timeout returns the recognition timeout as a duration.
func (r RecognizerConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

var defaultExtensions = []string{"flac", "ogg", "mp3"}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Duration:   DefaultDuration,
			ChunkSize:  DefaultChunkSize,
			Channels:   DefaultChannels,
			SampleRate: DefaultSampleRate,
			Backend:    "auto",
		},
		Recognizer: RecognizerConfig{
			Name:           "songrec",
			TimeoutSeconds: DefaultTimeoutSeconds,
			Language:       "en-US",
			Country:        "US",
			AudD:           AudDConfig{Endpoint: "https://api.audd.io/"},
			HTTP:           HTTPConfig{URL: "http://127.0.0.1:3737/recognize"},
			Songrec:        SongrecConfig{Binary: "songrec"},
		},
		Output: OutputConfig{
			RenameTemplate: DefaultRenameTemplate,
		},
		EditableExtensions: append([]string(nil), defaultExtensions...),
		Inheritance:        map[string]string{},
	}
}

// DefaultPath returns $HOME/.config/shaq.yaml.
func DefaultPath() string {
	return os.ExpandEnv("$HOME/.config/shaq.yaml")
}

// LoadWithProfile resolves the named profile from configFile. A missing file
// yields the built-in defaults, unless a non-default profile was requested.
func LoadWithProfile(configFile, profile string) (*Config, error) {
	var root *RootConfig
	if configFile != "" {
		var err error
		root, err = ReadRoot(configFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	configName := profile
	if configName == "" && root != nil {
		configName = root.ActiveConfig
	}
	if configName == "" {
		configName = "default"
	}

	base := Default()

	if root == nil {
		if configName != "default" {
			return nil, fmt.Errorf("configuration profile '%s' not found", configName)
		}
		applyEnv(base)
		return base, Validate(base)
	}

	if len(root.SupportedAudioExtensions) > 0 {
		base.EditableExtensions = normalizeExtensions(root.SupportedAudioExtensions)
	}

	// The file's default profile refines the built-ins, then the selected
	// profile refines that.
	if def, ok := root.Configs["default"]; ok && def != nil {
		base = mergeConfigs(base, def)
	}

	selected := base
	if configName != "default" {
		p, ok := root.Configs[configName]
		if !ok || p == nil {
			return nil, fmt.Errorf("configuration profile '%s' not found", configName)
		}
		selected = mergeConfigs(base, p)
	}

	applyEnv(selected)

	if err := Validate(selected); err != nil {
		return nil, fmt.Errorf("configuration profile '%s': %w", configName, err)
	}
	return selected, nil
}

// ReadRoot reads and unmarshals the whole configuration file.
func ReadRoot(configFile string) (*RootConfig, error) {
	if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var root RootConfig
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &root, nil
}

// UpdateActiveConfig updates the active_config field in the config file
func UpdateActiveConfig(configFile, newActiveConfig string) error {
	if configFile == "" {
		return fmt.Errorf("no config file specified")
	}

	root, err := ReadRoot(configFile)
	if err != nil {
		return err
	}
	if newActiveConfig != "default" {
		if _, ok := root.Configs[newActiveConfig]; !ok {
			return fmt.Errorf("configuration profile '%s' not found", newActiveConfig)
		}
	}

	// Create a new viper instance to avoid interfering with other readers
	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	v.Set("active_config", newActiveConfig)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configFile, err)
	}
	return nil
}

// mergeConfigs overlays every non-zero field of profile onto a copy of base
// and records which fields came from where.
func mergeConfigs(base, profile *Config) *Config {
	result := *base
	result.EditableExtensions = append([]string(nil), base.EditableExtensions...)
	result.Inheritance = make(map[string]string)

	track := func(field string, set bool) {
		if set {
			result.Inheritance[field] = profileSpecific
		} else {
			result.Inheritance[field] = inherited
		}
	}

	c := profile.Capture
	if c.Duration != 0 {
		result.Capture.Duration = c.Duration
	}
	track("capture.duration", c.Duration != 0)
	if c.ChunkSize != 0 {
		result.Capture.ChunkSize = c.ChunkSize
	}
	track("capture.chunk_size", c.ChunkSize != 0)
	if c.Channels != 0 {
		result.Capture.Channels = c.Channels
	}
	track("capture.channels", c.Channels != 0)
	if c.SampleRate != 0 {
		result.Capture.SampleRate = c.SampleRate
	}
	track("capture.sample_rate", c.SampleRate != 0)
	if c.Backend != "" {
		result.Capture.Backend = c.Backend
	}
	track("capture.backend", c.Backend != "")
	if c.Device != "" {
		result.Capture.Device = c.Device
	}
	track("capture.device", c.Device != "")

	r := profile.Recognizer
	if r.Name != "" {
		result.Recognizer.Name = r.Name
	}
	track("recognizer.name", r.Name != "")
	if r.Proxy != "" {
		result.Recognizer.Proxy = r.Proxy
	}
	track("recognizer.proxy", r.Proxy != "")
	if r.TimeoutSeconds != 0 {
		result.Recognizer.TimeoutSeconds = r.TimeoutSeconds
	}
	track("recognizer.timeout_seconds", r.TimeoutSeconds != 0)
	if r.Language != "" {
		result.Recognizer.Language = r.Language
	}
	track("recognizer.language", r.Language != "")
	if r.Country != "" {
		result.Recognizer.Country = r.Country
	}
	track("recognizer.country", r.Country != "")
	if r.AudD.APIToken != "" {
		result.Recognizer.AudD.APIToken = r.AudD.APIToken
	}
	track("recognizer.audd.api_token", r.AudD.APIToken != "")
	if r.AudD.Endpoint != "" {
		result.Recognizer.AudD.Endpoint = r.AudD.Endpoint
	}
	track("recognizer.audd.endpoint", r.AudD.Endpoint != "")
	if r.HTTP.URL != "" {
		result.Recognizer.HTTP.URL = r.HTTP.URL
	}
	track("recognizer.http.url", r.HTTP.URL != "")
	if r.Songrec.Binary != "" {
		result.Recognizer.Songrec.Binary = r.Songrec.Binary
	}
	track("recognizer.songrec.binary", r.Songrec.Binary != "")

	// Booleans: profile value always takes precedence if the profile is loaded
	result.Output.JSON = profile.Output.JSON
	track("output.json", true)
	result.Output.AlbumCover = profile.Output.AlbumCover
	track("output.albumcover", true)
	if profile.Output.RenameTemplate != "" {
		result.Output.RenameTemplate = profile.Output.RenameTemplate
	}
	track("output.rename_template", profile.Output.RenameTemplate != "")

	return &result
}

// applyEnv applies SHAQ_* environment overrides for the settings that are
// commonly supplied by the environment rather than the file.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if s := v.GetString("recognizer"); s != "" {
		cfg.Recognizer.Name = s
	}
	if s := v.GetString("proxy"); s != "" {
		cfg.Recognizer.Proxy = s
	}
	if s := v.GetString("audd_api_token"); s != "" {
		cfg.Recognizer.AudD.APIToken = s
	}
	if s := v.GetString("bridge_url"); s != "" {
		cfg.Recognizer.HTTP.URL = s
	}
	if s := v.GetString("device"); s != "" {
		cfg.Capture.Device = s
	}
}

// Validate checks value ranges and names.
func Validate(cfg *Config) error {
	c := cfg.Capture
	if c.Duration <= 0 {
		return fmt.Errorf("capture.duration must be > 0, got: %d", c.Duration)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("capture.chunk_size must be > 0, got: %d", c.ChunkSize)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("capture.channels must be 1 or 2, got: %d", c.Channels)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("capture.sample_rate must be > 0, got: %d", c.SampleRate)
	}
	switch strings.ToLower(c.Backend) {
	case "", "auto", "pipewire", "ffmpeg":
	default:
		return fmt.Errorf("capture.backend must be 'auto', 'pipewire' or 'ffmpeg', got: %s", c.Backend)
	}

	if !isKnownRecognizer(cfg.Recognizer.Name) {
		return fmt.Errorf("recognizer.name must be one of %s, got: %s",
			strings.Join(KnownRecognizers, ", "), cfg.Recognizer.Name)
	}
	if cfg.Recognizer.TimeoutSeconds < 0 {
		return fmt.Errorf("recognizer.timeout_seconds must be >= 0, got: %d", cfg.Recognizer.TimeoutSeconds)
	}

	if _, err := template.New("rename").Parse(cfg.Output.RenameTemplate); err != nil {
		return fmt.Errorf("output.rename_template: %w", err)
	}
	return nil
}

// CanEdit reports whether tag editing is enabled for the file's extension.
func (c *Config) CanEdit(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range c.EditableExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func isKnownRecognizer(name string) bool {
	for _, n := range KnownRecognizers {
		if n == name {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
