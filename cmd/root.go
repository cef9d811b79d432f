package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/audiolibrelab/shaq/internal/audio"
	"github.com/audiolibrelab/shaq/internal/config"
	"github.com/audiolibrelab/shaq/internal/console"
	"github.com/audiolibrelab/shaq/internal/service"

	"github.com/spf13/cobra"
)

// Process exit codes. Usage errors share code 2 with interrupts.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 2
	ExitUsage       = 2
)

// usageError marks bad flags or arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

var (
	// commandStarted is set once cobra has parsed and validated flags and
	// arguments; errors before that point are usage errors.
	commandStarted bool

	cfg          *config.Config
	cfgFile      string
	profile      string
	verboseLevel int
)

// Recognition flags. Each one overrides the resolved profile only when set.
var (
	listen         bool
	inputPath      string
	duration       int
	jsonOutput     bool
	albumCover     bool
	chunkSize      int
	channels       int
	sampleRate     int
	proxy          string
	metadataFlag   bool
	editMetadata   bool
	editTitle      bool
	recognizerName string
	backendName    string
	device         string
)

var rootCmd = &cobra.Command{
	Use:   "shaq",
	Short: "Identify the song that is playing",
	Long: `shaq listens to about ten seconds of audio from the microphone, or reads
the first seconds of an audio file, and asks a song-recognition service what
is playing.

It prints the track and artist, or the raw service response with --json. With
--input it can also write the recognized title and artist into the file's tags
(FLAC, Ogg Vorbis, MP3) and rename the file after them.`,
	Example: `  shaq --listen
  shaq --input song.flac --duration 15 --albumcover
  shaq --input unknown.mp3 --edit-metadata --edit-title`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		commandStarted = true

		// Configure slog based on verbose level
		setupLogging(verboseLevel)

		// Tag inspection does not depend on the configuration
		if cmd.Name() == "tags" {
			return nil
		}

		// Use default config path if not specified
		if cfgFile == "" {
			cfgFile = config.DefaultPath()
		}
		cfgFile = config.ExpandPath(cfgFile)

		var err error
		cfg, err = config.LoadWithProfile(cfgFile, profile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: runRecognition,
}

// Execute runs the root command and exits with the matching status code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run executes the command line args and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	commandStarted = false
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !commandStarted {
		err = &usageError{err: err}
	}
	return reportError(console.New(stderr), err, ctx.Err() != nil)
}

// reportError prints err for the user and returns the exit code for it.
func reportError(con *console.Console, err error, interrupted bool) int {
	var missing *audio.MissingDependencyError
	var usage *usageError
	switch {
	case err == nil:
		return ExitOK
	case interrupted || errors.Is(err, context.Canceled):
		con.Errorf("Interrupted.")
		return ExitInterrupted
	case errors.Is(err, service.ErrNoMatch):
		// "No matches." is already on stdout
		return ExitFailure
	case errors.As(err, &usage):
		con.Errorf("Error: %v", usage.err)
		con.Errorf("Run 'shaq --help' for usage.")
		return ExitUsage
	case errors.As(err, &missing):
		con.Errorf("Fatal: %s", missing.Error())
		return ExitFailure
	default:
		con.Errorf("Error: %v", err)
		return ExitFailure
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shaq.yaml)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "configuration profile to use (overrides active_config from file)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=info, 1=debug, 2=tool output, 3=max tracing")

	flags := rootCmd.Flags()
	flags.BoolVar(&listen, "listen", false, "detect from the system's microphone")
	flags.StringVar(&inputPath, "input", "", "detect from the given audio input file")
	flags.IntVarP(&duration, "duration", "d", config.DefaultDuration, "only analyze the first SECS of the input (microphone or file)")
	flags.BoolVarP(&jsonOutput, "json", "j", false, "emit the service response as JSON on stdout")
	flags.BoolVar(&albumCover, "albumcover", false, "return the high-resolution album cover URL")
	flags.IntVar(&chunkSize, "chunk-size", config.DefaultChunkSize, "read from the input device in chunks of this size (only affects --listen)")
	flags.IntVar(&channels, "channels", config.DefaultChannels, "the number of channels to use, 1 or 2 (only affects --listen)")
	flags.IntVar(&sampleRate, "sample-rate", config.DefaultSampleRate, "the sample rate to use (only affects --listen)")
	flags.StringVar(&proxy, "proxy", "", "send the request to the recognition service through this proxy")
	flags.BoolVar(&metadataFlag, "metadata", false, "shorthand for --edit-metadata --edit-title")
	flags.BoolVar(&editMetadata, "edit-metadata", false, "write the recognized title and artist into the input file's tags")
	flags.BoolVar(&editTitle, "edit-title", false, "rename the input file after the recognized title and artist")
	flags.StringVar(&recognizerName, "recognizer", "", "recognition backend: "+strings.Join(config.KnownRecognizers, ", "))
	flags.StringVar(&backendName, "backend", "", "capture backend: pipewire, ffmpeg or auto")
	flags.StringVar(&device, "device", "", "capture source for --listen")

	rootCmd.MarkFlagsMutuallyExclusive("listen", "input")
	rootCmd.MarkFlagsOneRequired("listen", "input")

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(infoCmd)
}

func runRecognition(cmd *cobra.Command, args []string) error {
	applyFlagOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return &usageError{err: err}
	}

	req := buildRequest(cfg)
	if err := req.Params.Validate(); err != nil {
		return &usageError{err: err}
	}

	// Create log writer based on verbose level
	var logWriter io.Writer = io.Discard
	if verboseLevel >= 2 {
		logWriter = cmd.ErrOrStderr()
	}

	con := console.New(cmd.ErrOrStderr())
	svc, err := service.New(cfg, con, logWriter)
	if err != nil {
		return err
	}

	outcome, err := svc.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	return service.Report(cmd.OutOrStdout(), outcome, service.ReportOptions{
		JSON:       cfg.Output.JSON,
		AlbumCover: cfg.Output.AlbumCover,
	})
}

// applyFlagOverrides copies explicitly set flags over the loaded profile.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("duration") {
		c.Capture.Duration = duration
	}
	if flags.Changed("chunk-size") {
		c.Capture.ChunkSize = chunkSize
	}
	if flags.Changed("channels") {
		c.Capture.Channels = channels
	}
	if flags.Changed("sample-rate") {
		c.Capture.SampleRate = sampleRate
	}
	if flags.Changed("backend") {
		c.Capture.Backend = backendName
	}
	if flags.Changed("device") {
		c.Capture.Device = device
	}
	if flags.Changed("proxy") {
		c.Recognizer.Proxy = proxy
	}
	if flags.Changed("recognizer") {
		c.Recognizer.Name = recognizerName
	}
	if flags.Changed("json") {
		c.Output.JSON = jsonOutput
	}
	if flags.Changed("albumcover") {
		c.Output.AlbumCover = albumCover
	}

	slog.Debug("Resolved configuration", "capture", c.Capture, "recognizer", c.Recognizer.Name,
		"json", c.Output.JSON, "albumcover", c.Output.AlbumCover)
}

func buildRequest(c *config.Config) service.Request {
	params := audio.Params{
		Duration:   c.Capture.Duration,
		ChunkSize:  c.Capture.ChunkSize,
		Channels:   c.Capture.Channels,
		SampleRate: c.Capture.SampleRate,
		Device:     c.Capture.Device,
	}

	return service.Request{
		Listen:       listen,
		InputPath:    config.ExpandPath(inputPath),
		Params:       params,
		JSON:         c.Output.JSON,
		EditMetadata: editMetadata || metadataFlag,
		EditTitle:    editTitle || metadataFlag,
	}
}

// setupLogging configures slog based on the verbose level. SHAQ_LOGLEVEL
// (debug, info, warn, error) applies when no -v flag is given.
func setupLogging(level int) {
	var slogLevel slog.Level
	switch level {
	case 0:
		slogLevel = slog.LevelInfo
		if env := os.Getenv(config.EnvPrefix + "_LOGLEVEL"); env != "" {
			if err := slogLevel.UnmarshalText([]byte(env)); err != nil {
				slogLevel = slog.LevelInfo
			}
		}
	case 1:
		slogLevel = slog.LevelDebug
	case 2, 3:
		// Level 2 and 3 both use Debug level for slog
		// Level 3 will additionally set environment variables
		slogLevel = slog.LevelDebug
	default:
		slogLevel = slog.LevelInfo
	}

	// Configure text handler for clean terminal output
	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Set environment variables for maximum tracing (level 3)
	if level >= 3 {
		os.Setenv("PIPEWIRE_DEBUG", "3")
		os.Setenv("FFMPEG_LOGLEVEL", "debug")
	}
}
