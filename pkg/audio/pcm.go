// Package audio converts between floating-point sample buffers and the
// 16-bit little-endian PCM wire format the hosted live session speaks.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	// InputSampleRate is the capture rate for outbound microphone audio.
	InputSampleRate = 16000

	// OutputSampleRate is the playback rate for inbound model audio.
	OutputSampleRate = 24000

	// FrameSamples is the fixed outbound frame size (~256ms at 16kHz).
	FrameSamples = 4096

	// PCMMIMEType tags outbound audio frames.
	PCMMIMEType = "audio/pcm;rate=16000"

	// JPEGMIMEType tags outbound video snapshots.
	JPEGMIMEType = "image/jpeg"

	bytesPerSample = 2
)

// Blob is a base64-encoded media payload ready for a realtime send.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Buffer is a single-channel buffer of float samples at a fixed rate.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// EncodeFrame converts one captured frame to the PCM16 wire format.
// Samples are clamped to [-1, 1] and scaled asymmetrically (negative side
// by 32768, positive side by 32767) so the full int16 range is usable.
func EncodeFrame(samples []float32) Blob {
	pcm := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		if s < -1 {
			s = -1
		}
		if s > 1 {
			s = 1
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(pcm[i*bytesPerSample:], uint16(v))
	}
	return Blob{
		MIMEType: PCMMIMEType,
		Data:     base64.StdEncoding.EncodeToString(pcm),
	}
}

// DecodeChunk reinterprets raw PCM16 bytes as a playable float buffer at the
// given sample rate. The byte length must be even.
func DecodeChunk(pcm []byte, sampleRate int) (*Buffer, error) {
	if len(pcm)%bytesPerSample != 0 {
		return nil, fmt.Errorf("pcm chunk length %d is not sample-aligned", len(pcm))
	}
	samples := make([]float32, len(pcm)/bytesPerSample)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:]))
		samples[i] = float32(v) / 32768.0
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Int16Bytes converts a float buffer back to raw PCM16 bytes for a speaker
// device that consumes s16le directly.
func (b *Buffer) Int16Bytes() []byte {
	pcm := make([]byte, len(b.Samples)*bytesPerSample)
	for i, s := range b.Samples {
		if s < -1 {
			s = -1
		}
		if s > 1 {
			s = 1
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(pcm[i*bytesPerSample:], uint16(v))
	}
	return pcm
}

// RMS computes the root-mean-square energy of a frame.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// VolumeLevel derives the UI meter level for a frame: RMS scaled by 5,
// clamped to [0, 1].
func VolumeLevel(samples []float32) float64 {
	v := RMS(samples) * 5
	if v > 1 {
		return 1
	}
	return v
}

// BytesDuration returns how long a raw PCM16 byte span plays at the given rate.
func BytesDuration(n int, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(n/bytesPerSample) * time.Second / time.Duration(sampleRate)
}

// DurationBytes returns the PCM16 byte count covering d at the given rate,
// rounded down to a whole sample.
func DurationBytes(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	samples := int(d * time.Duration(sampleRate) / time.Second)
	return samples * bytesPerSample
}
