// Package capture acquires microphone audio and camera snapshots for
// streaming to a live session.
package capture

import (
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/niramoy/niramoy-go/pkg/audio"
)

// FrameSource delivers fixed-size microphone frames. Tests substitute a
// scripted fake for the real device.
type FrameSource interface {
	// Frames yields frames of audio.FrameSamples float32 samples in [-1, 1].
	// The channel closes after Close.
	Frames() <-chan []float32
	Close() error
}

// Mic captures 16kHz mono audio from the default input device and batches it
// into frames sized for the live session's media chunks.
type Mic struct {
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	frames  chan []float32
	pending []float32
	closed  bool
}

// OpenMic initializes the capture device and starts recording.
func OpenMic() (*Mic, error) {
	cfg := malgo.ContextConfig{}
	cfg.ThreadPriority = malgo.ThreadPriorityRealtime

	mctx, err := malgo.InitContext(nil, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	m := &Mic{
		ctx:     mctx,
		frames:  make(chan []float32, 8),
		pending: make([]float32, 0, audio.FrameSamples),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(audio.InputSampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			m.push(pInputSamples)
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		mctx.Uninit()
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		mctx.Uninit()
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	return m, nil
}

// push runs on malgo's capture thread. It converts s16le bytes to float32
// and emits a frame whenever enough samples accumulate. A stalled consumer
// drops frames rather than blocking the device.
func (m *Mic) push(in []byte) {
	for i := 0; i+1 < len(in); i += 2 {
		s := int16(uint16(in[i]) | uint16(in[i+1])<<8)
		m.pending = append(m.pending, float32(s)/32768.0)
		if len(m.pending) == audio.FrameSamples {
			frame := make([]float32, audio.FrameSamples)
			copy(frame, m.pending)
			m.pending = m.pending[:0]
			select {
			case m.frames <- frame:
			default:
			}
		}
	}
}

// Frames returns the frame channel.
func (m *Mic) Frames() <-chan []float32 {
	return m.frames
}

// Close stops the device before closing the frame channel, so no callback
// can race the close.
func (m *Mic) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
	}
	if m.ctx != nil {
		m.ctx.Uninit()
	}
	close(m.frames)
	return nil
}
