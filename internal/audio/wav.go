package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const wavHeaderSize = 44

// WAVWriter accumulates 16-bit PCM frames and renders them as a canonical
// RIFF/WAVE file.
type WAVWriter struct {
	channels   int
	sampleRate int
	data       bytes.Buffer
}

// NewWAVWriter creates a writer for interleaved 16-bit little-endian PCM.
func NewWAVWriter(channels, sampleRate int) *WAVWriter {
	return &WAVWriter{channels: channels, sampleRate: sampleRate}
}

// Write appends raw PCM bytes.
func (w *WAVWriter) Write(p []byte) (int, error) {
	return w.data.Write(p)
}

// Frames returns the number of complete frames written so far.
func (w *WAVWriter) Frames() int {
	return w.data.Len() / (w.channels * SampleWidth)
}

// Bytes returns the header followed by the PCM payload.
func (w *WAVWriter) Bytes() []byte {
	dataLen := uint32(w.data.Len())
	blockAlign := uint16(w.channels * SampleWidth)

	out := make([]byte, wavHeaderSize, wavHeaderSize+w.data.Len())
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataLen)
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(w.sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], 8*SampleWidth)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataLen)

	return append(out, w.data.Bytes()...)
}

// WAVInfo is the format described by a canonical WAV header.
type WAVInfo struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataLen       int
}

// Duration returns the playback length of the data chunk in seconds.
func (i WAVInfo) Duration() float64 {
	bytesPerSec := i.SampleRate * i.Channels * i.BitsPerSample / 8
	if bytesPerSec == 0 {
		return 0
	}
	return float64(i.DataLen) / float64(bytesPerSec)
}

var errNotWAV = errors.New("not a canonical PCM WAV buffer")

// ParseWAVHeader reads the header written by WAVWriter.
func ParseWAVHeader(b []byte) (WAVInfo, error) {
	if len(b) < wavHeaderSize || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" ||
		string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return WAVInfo{}, errNotWAV
	}
	if format := binary.LittleEndian.Uint16(b[20:22]); format != 1 {
		return WAVInfo{}, fmt.Errorf("unsupported WAV format tag %d", format)
	}
	return WAVInfo{
		Channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		DataLen:       int(binary.LittleEndian.Uint32(b[40:44])),
	}, nil
}
