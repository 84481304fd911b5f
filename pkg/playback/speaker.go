package playback

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/niramoy/niramoy-go/pkg/audio"
)

// Sink consumes decoded audio. The speaker implementation plays it; tests
// substitute a recording fake.
type Sink interface {
	// Play appends a decoded chunk to the output queue.
	Play(buf *audio.Buffer)
	// Flush discards everything queued but not yet played.
	Flush()
	Close() error
}

// otoBufferSize keeps ~100ms buffered in the device, small enough for
// conversational latency.
const otoBufferSize = 100 * time.Millisecond

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// outputContext returns the process-wide audio context. oto allows exactly
// one context per process, so it is created once and reused across speakers;
// the first sample rate requested wins.
func outputContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBufferSize,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Speaker plays 16-bit mono PCM through the default output device. The
// player pulls continuously from the moment the speaker opens and reads
// silence whenever the queue is empty, so the device clock keeps advancing
// between chunks: a chunk arriving after idle time starts right away instead
// of behind stale padding, and chunks queued back to back play gapless.
type Speaker struct {
	sampleRate int

	mu     sync.Mutex
	buf    []byte
	player *oto.Player
	closed bool
}

// NewSpeaker opens the output device at the given sample rate and starts
// pulling immediately.
func NewSpeaker(sampleRate int) (*Speaker, error) {
	ctx, err := outputContext(sampleRate)
	if err != nil {
		return nil, err
	}
	s := &Speaker{
		sampleRate: sampleRate,
		buf:        make([]byte, 0, sampleRate*4),
	}
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Play queues a decoded chunk behind whatever is already queued.
func (s *Speaker) Play(buf *audio.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.buf = append(s.buf, buf.Int16Bytes()...)
}

// Read implements io.Reader for oto.Player: queued audio first, silence when
// idle. It never blocks, keeping the output clock monotonic.
func (s *Speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards queued audio and the device's buffered tail so stale chunks
// cannot play after an interruption.
func (s *Speaker) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]
	player := s.player
	s.mu.Unlock()

	if player != nil {
		// Pause before Reset so oto's internal buffer drops without an
		// audible tail, then resume pulling silence.
		player.Pause()
		player.Reset()
		player.Play()
	}
}

// Close stops playback and releases the player. The process-wide audio
// context stays open for the next speaker.
func (s *Speaker) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.buf = nil
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		player.Close()
	}
	return nil
}
