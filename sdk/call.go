package niramoy

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niramoy/niramoy-go/pkg/audio"
	"github.com/niramoy/niramoy-go/pkg/capture"
	"github.com/niramoy/niramoy-go/pkg/playback"
)

// CallStatus is the lifecycle state of a live call.
type CallStatus int32

const (
	StatusDisconnected CallStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s CallStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// DefaultVideoInterval is two snapshots per second, matched to what the
// service accepts without timing out on payload size.
const DefaultVideoInterval = 500 * time.Millisecond

// CallConfig configures a single call. Mic is required. Camera is optional;
// nil disables video. Sink and Clock default to the speaker and the
// monotonic clock when nil.
type CallConfig struct {
	Model        string
	SystemPrompt string
	Voice        string

	Mic    capture.FrameSource
	Camera capture.SnapshotSource
	Sink   playback.Sink
	Clock  playback.Clock

	VideoInterval time.Duration

	// OnText receives model text parts for captions. Called from the event
	// goroutine; keep it fast.
	OnText func(string)
}

// liveStream is the slice of LiveSession the call manager drives.
type liveStream interface {
	Events() <-chan LiveEvent
	SendMedia(blobs ...audio.Blob) error
	Err() error
	Close() error
}

// CallManager runs full-duplex calls: it streams microphone frames and
// camera snapshots up, and plays received speech gapless on the output
// timeline, flushing on interruption. One call is active at a time; dialing
// again hangs up the previous call first.
type CallManager struct {
	client *Client
	logger *slog.Logger

	status     atomic.Int32
	generation atomic.Uint64
	volume     atomic.Uint64

	mu   sync.Mutex
	call *activeCall
}

type activeCall struct {
	session   liveStream
	mic       capture.FrameSource
	camera    capture.SnapshotSource
	sink      playback.Sink
	ownsSink  bool
	scheduler *playback.Scheduler
	outbound  chan audio.Blob
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewCallManager creates a call manager on top of the client's live service.
func NewCallManager(client *Client) *CallManager {
	return &CallManager{
		client: client,
		logger: client.logger,
	}
}

// Status returns the current call status.
func (m *CallManager) Status() CallStatus {
	return CallStatus(m.status.Load())
}

// Volume returns the most recent microphone level in [0, 1].
func (m *CallManager) Volume() float64 {
	return math.Float64frombits(m.volume.Load())
}

// Dial connects a new call. Any active call is hung up first.
func (m *CallManager) Dial(ctx context.Context, cfg CallConfig) error {
	m.HangUp()
	m.status.Store(int32(StatusConnecting))
	gen := m.generation.Load()

	if cfg.Mic == nil {
		m.status.Store(int32(StatusError))
		return NewInvalidRequestError("call config needs a microphone source")
	}

	session, err := m.client.Live.Connect(ctx, &LiveConnectRequest{
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Voice:        cfg.Voice,
	})
	if err != nil {
		m.status.Store(int32(StatusError))
		return err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = playback.NewClock()
	}

	sink := cfg.Sink
	ownsSink := false
	if sink == nil {
		speaker, err := playback.NewSpeaker(audio.OutputSampleRate)
		if err != nil {
			_ = session.Close()
			m.status.Store(int32(StatusError))
			return err
		}
		sink = speaker
		ownsSink = true
	}

	call := &activeCall{
		session:   session,
		mic:       cfg.Mic,
		camera:    cfg.Camera,
		sink:      sink,
		ownsSink:  ownsSink,
		scheduler: playback.NewScheduler(clock),
		outbound:  make(chan audio.Blob, 32),
		stop:      make(chan struct{}),
	}

	m.mu.Lock()
	m.call = call
	m.mu.Unlock()

	interval := cfg.VideoInterval
	if interval <= 0 {
		interval = DefaultVideoInterval
	}

	// Connected is stored before the loops start so that once they run, the
	// only writers left are the teardown paths.
	m.status.Store(int32(StatusConnected))

	call.wg.Add(3)
	go m.sendLoop(call)
	go m.eventLoop(call, gen, cfg.OnText)
	go m.micLoop(call)
	if call.camera != nil {
		call.wg.Add(1)
		go m.cameraLoop(call, interval)
	}
	return nil
}

// HangUp tears down the active call. Safe to call repeatedly and from any
// state.
func (m *CallManager) HangUp() {
	m.mu.Lock()
	call := m.call
	m.call = nil
	// Invalidate in-flight failure reports from the old call's goroutines.
	m.generation.Add(1)
	m.mu.Unlock()

	m.teardown(call, StatusDisconnected)
}

// endCall is the goroutine-side HangUp: it tears the call down only if gen
// still owns it, so a concurrent HangUp or redial wins.
func (m *CallManager) endCall(gen uint64, final CallStatus) {
	m.mu.Lock()
	if m.generation.Load() != gen {
		m.mu.Unlock()
		return
	}
	call := m.call
	m.call = nil
	m.generation.Add(1)
	m.mu.Unlock()

	m.teardown(call, final)
}

// teardown stops the senders, then the capture devices, then the session,
// then the output, and finally publishes the call's terminal status.
func (m *CallManager) teardown(call *activeCall, final CallStatus) {
	if call == nil {
		m.status.Store(int32(final))
		return
	}

	call.stopOnce.Do(func() { close(call.stop) })
	_ = call.mic.Close()
	_ = call.session.Close()
	call.wg.Wait()
	if call.ownsSink {
		_ = call.sink.Close()
	} else {
		call.sink.Flush()
	}

	m.volume.Store(0)
	m.status.Store(int32(final))
}

// enqueue drops the chunk when the sender is backed up; realtime input must
// never block the capture path.
func (c *activeCall) enqueue(blob audio.Blob) {
	select {
	case c.outbound <- blob:
	default:
	}
}

func (m *CallManager) sendLoop(call *activeCall) {
	defer call.wg.Done()
	for {
		select {
		case <-call.stop:
			return
		case blob := <-call.outbound:
			if err := call.session.SendMedia(blob); err != nil {
				// Outbound media is fire and forget; the read side decides
				// when the session is actually dead.
				m.logger.Warn("dropping outbound media", "error", err)
			}
		}
	}
}

func (m *CallManager) micLoop(call *activeCall) {
	defer call.wg.Done()
	for {
		select {
		case <-call.stop:
			return
		case frame, ok := <-call.mic.Frames():
			if !ok {
				return
			}
			m.volume.Store(math.Float64bits(audio.VolumeLevel(frame)))
			call.enqueue(audio.EncodeFrame(frame))
		}
	}
}

func (m *CallManager) cameraLoop(call *activeCall, interval time.Duration) {
	defer call.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-call.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			frame, err := call.camera.Snapshot(ctx)
			cancel()
			if err != nil {
				// A dropped video frame is not worth ending the call over.
				m.logger.Debug("snapshot failed", "error", err)
				continue
			}
			call.enqueue(capture.SnapshotBlob(frame))
		}
	}
}

func (m *CallManager) eventLoop(call *activeCall, gen uint64, onText func(string)) {
	defer call.wg.Done()
	for event := range call.session.Events() {
		switch e := event.(type) {
		case AudioChunkEvent:
			buf, err := audio.DecodeChunk(e.Data, audio.OutputSampleRate)
			if err != nil {
				m.logger.Warn("bad audio chunk", "error", err)
				continue
			}
			// The sink pulls continuously and idles on silence, so playing
			// immediately lands the chunk at max(now, cursor). The scheduler
			// tracks the cursor for underrun visibility.
			start, gap := call.scheduler.Schedule(buf.Duration())
			if gap > 0 {
				m.logger.Debug("playback resumed after idle", "gap", gap, "start", start)
			}
			call.sink.Play(buf)
		case TextEvent:
			if onText != nil {
				onText(e.Text)
			}
		case InterruptedEvent:
			call.scheduler.Reset()
			call.sink.Flush()
		case TurnCompleteEvent, SetupCompleteEvent:
		case UnknownEvent:
			m.logger.Debug("unhandled live frame", "payload", string(e.Raw))
		}
	}
	// The session is dead either way; release the devices instead of leaving
	// them running until the user notices.
	if err := call.session.Err(); err != nil {
		m.logger.Error("call failed", "error", err)
		go m.endCall(gen, StatusError)
	} else {
		go m.endCall(gen, StatusDisconnected)
	}
}
