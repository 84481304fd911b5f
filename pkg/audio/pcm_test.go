package audio

import (
	"encoding/base64"
	"math"
	"testing"
	"time"
)

func TestEncodeFrame_MIMEType(t *testing.T) {
	blob := EncodeFrame([]float32{0, 0.5, -0.5})
	if blob.MIMEType != "audio/pcm;rate=16000" {
		t.Errorf("MIMEType = %q, want audio/pcm;rate=16000", blob.MIMEType)
	}
}

func TestEncodeFrame_Clamping(t *testing.T) {
	blob := EncodeFrame([]float32{2.0, -2.0})
	pcm, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if len(pcm) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(pcm))
	}

	// 2.0 clamps to 1.0 -> 32767, -2.0 clamps to -1.0 -> -32768
	hi := int16(uint16(pcm[0]) | uint16(pcm[1])<<8)
	lo := int16(uint16(pcm[2]) | uint16(pcm[3])<<8)
	if hi != 32767 {
		t.Errorf("clamped positive = %d, want 32767", hi)
	}
	if lo != -32768 {
		t.Errorf("clamped negative = %d, want -32768", lo)
	}
}

func TestRoundTrip_WithinQuantizationStep(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
	}{
		{name: "silence", samples: []float32{0, 0, 0, 0}},
		{name: "extremes", samples: []float32{-1, 1, -1, 1}},
		{name: "mixed", samples: []float32{0.25, -0.75, 0.999, -0.001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := EncodeFrame(tt.samples)
			pcm, err := base64.StdEncoding.DecodeString(blob.Data)
			if err != nil {
				t.Fatalf("decode base64: %v", err)
			}
			buf, err := DecodeChunk(pcm, InputSampleRate)
			if err != nil {
				t.Fatalf("DecodeChunk: %v", err)
			}
			if len(buf.Samples) != len(tt.samples) {
				t.Fatalf("expected %d samples, got %d", len(tt.samples), len(buf.Samples))
			}
			for i, want := range tt.samples {
				got := buf.Samples[i]
				// Positive samples scale by 32767 out but 32768 back, so the
				// worst case is just under two 16-bit steps.
				if math.Abs(float64(got-want)) > 2.0/32768.0 {
					t.Errorf("sample %d: got %f, want %f (outside quantization error)", i, got, want)
				}
			}
		})
	}
}

func TestRoundTrip_Sweep(t *testing.T) {
	samples := make([]float32, 201)
	for i := range samples {
		samples[i] = float32(i-100) / 100.0
	}
	blob := EncodeFrame(samples)
	pcm, _ := base64.StdEncoding.DecodeString(blob.Data)
	buf, err := DecodeChunk(pcm, InputSampleRate)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	for i, want := range samples {
		if math.Abs(float64(buf.Samples[i]-want)) > 2.0/32768.0 {
			t.Fatalf("sample %d (%f) out of tolerance: got %f", i, want, buf.Samples[i])
		}
	}
}

func TestDecodeChunk_OddLength(t *testing.T) {
	if _, err := DecodeChunk([]byte{1, 2, 3}, OutputSampleRate); err == nil {
		t.Error("expected error for odd-length input")
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float32, OutputSampleRate/2), SampleRate: OutputSampleRate}
	if buf.Duration() != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", buf.Duration())
	}
}

func TestRMS(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float32
		expected float64
	}{
		{
			name:     "silence",
			samples:  []float32{0, 0, 0, 0},
			expected: 0.0,
		},
		{
			name:     "full amplitude",
			samples:  []float32{1, 1, 1, 1},
			expected: 1.0,
		},
		{
			name:     "half amplitude",
			samples:  []float32{0.5, 0.5, 0.5, 0.5},
			expected: 0.5,
		},
		{
			name:     "mixed signal",
			samples:  []float32{0.5, -0.5, 0.5, -0.5},
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RMS(tt.samples)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("expected RMS %.3f, got %.3f", tt.expected, result)
			}
		})
	}
}

func TestVolumeLevel_Clamped(t *testing.T) {
	// RMS 1.0 * 5 clamps to 1.0
	if v := VolumeLevel([]float32{1, 1, 1, 1}); v != 1.0 {
		t.Errorf("expected clamp to 1.0, got %f", v)
	}
	// RMS 0.1 * 5 = 0.5
	if v := VolumeLevel([]float32{0.1, 0.1, 0.1, 0.1}); math.Abs(v-0.5) > 0.01 {
		t.Errorf("expected 0.5, got %f", v)
	}
}

func TestBytesDuration(t *testing.T) {
	// 48000 bytes at 24kHz mono 16-bit = 1 second
	if d := BytesDuration(48000, OutputSampleRate); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
}

func TestDurationBytes(t *testing.T) {
	if n := DurationBytes(time.Second, OutputSampleRate); n != 48000 {
		t.Errorf("expected 48000 bytes, got %d", n)
	}
	if n := DurationBytes(0, OutputSampleRate); n != 0 {
		t.Errorf("expected 0 bytes, got %d", n)
	}
}
