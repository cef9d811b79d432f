package audio

import (
	"fmt"
	"time"
)

// Capture defaults. They match the normalization the recognition services
// apply internally, which avoids a pointless transcode on their side.
const (
	DefaultChunkSize  = 1024
	DefaultChannels   = 1
	DefaultSampleRate = 16000
	DefaultDuration   = 10

	// SampleWidth is the size in bytes of one 16-bit sample.
	SampleWidth = 2
)

// Params describes how much audio to acquire and in which PCM layout.
type Params struct {
	Duration   int // seconds
	ChunkSize  int // frames per read
	Channels   int
	SampleRate int
	Device     string
}

// DefaultParams returns the capture parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Duration:   DefaultDuration,
		ChunkSize:  DefaultChunkSize,
		Channels:   DefaultChannels,
		SampleRate: DefaultSampleRate,
	}
}

// ChunkCount is the number of ChunkSize reads for a live capture.
// Integer division truncates, so the capture can be slightly shorter than Duration.
func (p Params) ChunkCount() int {
	if p.ChunkSize <= 0 {
		return 0
	}
	return p.SampleRate / p.ChunkSize * p.Duration
}

// ChunkBytes is the byte length of one chunk.
func (p Params) ChunkBytes() int {
	return p.ChunkSize * p.Channels * SampleWidth
}

// Length returns Duration as a time.Duration.
func (p Params) Length() time.Duration {
	return time.Duration(p.Duration) * time.Second
}

// Validate checks that the parameters describe a readable stream.
func (p Params) Validate() error {
	if p.Duration <= 0 {
		return fmt.Errorf("duration must be > 0, got: %d", p.Duration)
	}
	if p.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be > 0, got: %d", p.ChunkSize)
	}
	if p.Channels != 1 && p.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got: %d", p.Channels)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0, got: %d", p.SampleRate)
	}
	return nil
}
