package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeStream serves an endless sequence of a fixed byte.
type fakeStream struct {
	reads  int
	failAt int
	closed bool
}

func (s *fakeStream) ReadChunk(buf []byte) error {
	s.reads++
	if s.failAt > 0 && s.reads == s.failAt {
		return io.ErrUnexpectedEOF
	}
	for i := range buf {
		buf[i] = byte(s.reads)
	}
	return nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeBackend struct {
	stream *fakeStream
	opened Params
}

func (b *fakeBackend) Open(ctx context.Context, p Params, logWriter io.Writer) (Stream, error) {
	b.opened = p
	return b.stream, nil
}
func (b *fakeBackend) ListSources() ([]string, error)    { return nil, nil }
func (b *fakeBackend) ValidateSource(source string) error { return nil }
func (b *fakeBackend) Binary() string                     { return "fake" }
func (b *fakeBackend) GetType() BackendType               { return "fake" }

func TestParams_ChunkCount(t *testing.T) {
	tests := []struct {
		params   Params
		expected int
	}{
		{Params{Duration: 10, ChunkSize: 1024, SampleRate: 16000}, 150}, // 16000/1024 = 15
		{Params{Duration: 3, ChunkSize: 1000, SampleRate: 44100}, 132},
		{Params{Duration: 1, ChunkSize: 32000, SampleRate: 16000}, 0},
		{Params{Duration: 1, ChunkSize: 0, SampleRate: 16000}, 0},
	}

	for _, tt := range tests {
		if got := tt.params.ChunkCount(); got != tt.expected {
			t.Errorf("ChunkCount(%+v) = %d, expected %d", tt.params, got, tt.expected)
		}
	}
}

func TestListen_ReadsAllChunks(t *testing.T) {
	backend := &fakeBackend{stream: &fakeStream{}}
	p := Params{Duration: 2, ChunkSize: 1000, Channels: 2, SampleRate: 8000}

	var calls, lastTotal int
	wav, err := Listen(context.Background(), backend, p, io.Discard, func(done, total int) {
		calls++
		lastTotal = total
	})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	if calls != 16 || lastTotal != 16 {
		t.Errorf("Expected 16 progress calls with total 16, got %d calls, total %d", calls, lastTotal)
	}
	if !backend.stream.closed {
		t.Error("Expected stream to be closed")
	}

	info, err := ParseWAVHeader(wav)
	if err != nil {
		t.Fatalf("ParseWAVHeader failed: %v", err)
	}
	if info.Channels != 2 || info.SampleRate != 8000 || info.BitsPerSample != 16 {
		t.Errorf("Unexpected WAV format: %+v", info)
	}
	if info.DataLen != 16*1000*2*2 {
		t.Errorf("Expected %d data bytes, got %d", 16*1000*2*2, info.DataLen)
	}
	if info.Duration() != 2 {
		t.Errorf("Expected 2s of audio, got %.2f", info.Duration())
	}
	if len(wav) != 44+info.DataLen {
		t.Errorf("Buffer length %d does not match header", len(wav))
	}
}

func TestListen_ReadError(t *testing.T) {
	backend := &fakeBackend{stream: &fakeStream{failAt: 3}}

	_, err := Listen(context.Background(), backend, DefaultParams(), io.Discard, nil)
	if err == nil {
		t.Fatal("Expected error from failing stream")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected wrapped ErrUnexpectedEOF, got: %v", err)
	}
	if !backend.stream.closed {
		t.Error("Expected stream to be closed after error")
	}
}

func TestListen_Cancelled(t *testing.T) {
	backend := &fakeBackend{stream: &fakeStream{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Listen(ctx, backend, DefaultParams(), io.Discard, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestListen_InvalidParams(t *testing.T) {
	backend := &fakeBackend{stream: &fakeStream{}}
	p := DefaultParams()
	p.Channels = 3

	if _, err := Listen(context.Background(), backend, p, io.Discard, nil); err == nil {
		t.Error("Expected error for 3 channels")
	}
}

func TestListen_TooShortForOneChunk(t *testing.T) {
	backend := &fakeBackend{stream: &fakeStream{}}
	p := Params{Duration: 1, ChunkSize: 32000, Channels: 1, SampleRate: 16000}

	if _, err := Listen(context.Background(), backend, p, io.Discard, nil); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Expected ErrNoAudio, got: %v", err)
	}
}

// installFakeBinary puts an executable shell script named name first on $PATH.
func installFakeBinary(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("Failed to write fake %s: %v", name, err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestFromFile_WrapsDecodedPCM(t *testing.T) {
	// Four mono frames of s16le.
	installFakeBinary(t, "ffmpeg", `printf '\001\000\002\000\003\000\004\000'`+"\n")

	input := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(input, []byte("not really mp3"), 0644); err != nil {
		t.Fatal(err)
	}

	wav, err := FromFile(context.Background(), input, 10, io.Discard)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}

	info, err := ParseWAVHeader(wav)
	if err != nil {
		t.Fatalf("ParseWAVHeader failed: %v", err)
	}
	if info.Channels != DefaultChannels || info.SampleRate != DefaultSampleRate || info.DataLen != 8 {
		t.Errorf("Unexpected WAV info: %+v", info)
	}
}

func TestFromFile_FFmpegFailure(t *testing.T) {
	installFakeBinary(t, "ffmpeg", "echo 'Invalid data found when processing input' >&2\nexit 1\n")

	input := filepath.Join(t.TempDir(), "broken.flac")
	if err := os.WriteFile(input, []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := FromFile(context.Background(), input, 10, io.Discard)
	if err == nil {
		t.Fatal("Expected error from failing ffmpeg")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("Expected ffmpeg output in error, got: %v", err)
	}
}

func TestFromFile_MissingInput(t *testing.T) {
	_, err := FromFile(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), 10, io.Discard)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got: %v", err)
	}
}

func TestRequireBinary(t *testing.T) {
	installFakeBinary(t, "shaq-fake-tool", "exit 0\n")

	if err := RequireBinary("shaq-fake-tool"); err != nil {
		t.Errorf("Expected fake tool to be found, got: %v", err)
	}
	err := RequireBinary("shaq-definitely-missing-tool")
	if !errors.Is(err, ErrMissingDependency) {
		t.Errorf("Expected ErrMissingDependency, got: %v", err)
	}
	if err.Error() != "shaq-definitely-missing-tool not found on $PATH" {
		t.Errorf("Unexpected message: %v", err)
	}
}
