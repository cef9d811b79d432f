package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// captureFormat describes how ffmpeg opens the default input device on a platform.
type captureFormat struct {
	inputFormat   string
	devicePrefix  string
	defaultDevice string
}

func platformCaptureFormat(goos string) captureFormat {
	switch goos {
	case "darwin":
		return captureFormat{inputFormat: "avfoundation", defaultDevice: ":0"}
	case "windows":
		return captureFormat{inputFormat: "dshow", devicePrefix: "audio="}
	default:
		return captureFormat{inputFormat: "pulse", defaultDevice: "default"}
	}
}

// FFmpegBackend captures through ffmpeg's platform input device.
type FFmpegBackend struct {
	format captureFormat
}

// NewFFmpegBackend creates a backend for the running platform.
func NewFFmpegBackend() *FFmpegBackend {
	return &FFmpegBackend{format: platformCaptureFormat(runtime.GOOS)}
}

// buildArgs returns the ffmpeg arguments writing raw s16le PCM to stdout.
func (f *FFmpegBackend) buildArgs(params Params) ([]string, error) {
	device := params.Device
	if device == "" {
		device = f.format.defaultDevice
	}
	if device == "" {
		return nil, fmt.Errorf("no capture device configured for %s input, use --device", f.format.inputFormat)
	}

	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", f.format.inputFormat,
		"-i", f.format.devicePrefix + device,
		"-ac", fmt.Sprintf("%d", params.Channels),
		"-ar", fmt.Sprintf("%d", params.SampleRate),
		"-f", "s16le",
		"-",
	}, nil
}

// Open starts ffmpeg capturing from the configured device.
func (f *FFmpegBackend) Open(ctx context.Context, params Params, logWriter io.Writer) (Stream, error) {
	args, err := f.buildArgs(params)
	if err != nil {
		return nil, err
	}
	return startProcess(ctx, logWriter, FFmpegBinary, args...)
}

// ListSources lists PulseAudio sources through pactl. Other platforms have no
// portable listing.
func (f *FFmpegBackend) ListSources() ([]string, error) {
	if f.format.inputFormat != "pulse" {
		return nil, fmt.Errorf("listing sources is not supported for %s input", f.format.inputFormat)
	}

	output, err := exec.Command("pactl", "list", "short", "sources").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list PulseAudio sources: %w", err)
	}
	return parsePactlSources(string(output)), nil
}

// ValidateSource checks the device against the listed sources when listing is possible.
func (f *FFmpegBackend) ValidateSource(source string) error {
	if source == "" || source == f.format.defaultDevice {
		return nil
	}

	sources, err := f.ListSources()
	if err != nil {
		// Listing unavailable; let ffmpeg report a bad device.
		return nil
	}
	for _, s := range sources {
		if s == source {
			return nil
		}
	}
	return fmt.Errorf("capture source not found: %s", source)
}

func (f *FFmpegBackend) Binary() string {
	return FFmpegBinary
}

func (f *FFmpegBackend) GetType() BackendType {
	return BackendTypeFFmpeg
}

// parsePactlSources returns the name column of `pactl list short sources`.
func parsePactlSources(output string) []string {
	var sources []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			sources = append(sources, fields[1])
		}
	}
	return sources
}
