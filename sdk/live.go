package niramoy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/niramoy/niramoy-go/pkg/audio"
	"github.com/niramoy/niramoy-go/pkg/core"
	"github.com/niramoy/niramoy-go/pkg/gemini"
)

const (
	// DefaultLiveURL is the Gemini Live bidirectional websocket endpoint.
	DefaultLiveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultLiveModel is the native-audio model used for calls.
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"

	// DefaultVoice is the prebuilt voice used for spoken replies.
	DefaultVoice = "Kore"

	defaultLiveConnectTimeout = 15 * time.Second
)

// DefaultCompanionPrompt steers the model as a warm video call companion.
const DefaultCompanionPrompt = `You are an intelligent, accurate, and warm AI video call companion.

Key Behaviors:
1. **Personality**: Speak with a genuine smile. Be friendly and human-like.
2. **Accuracy**: Provide precise information about what you see.
3. **Interaction**: React naturally. Keep the conversation flowing smoothly.`

// LiveService opens low-level Gemini Live websocket sessions.
type LiveService struct {
	client *Client
}

// LiveConnectRequest configures a live session. Zero values fall back to the
// companion defaults.
type LiveConnectRequest struct {
	Model        string
	SystemPrompt string
	Voice        string
}

// LiveEvent is a low-level event emitted by LiveSession.Events().
type LiveEvent interface {
	liveEventType() string
}

// SetupCompleteEvent confirms the server accepted the session setup.
type SetupCompleteEvent struct{}

func (SetupCompleteEvent) liveEventType() string { return "setup_complete" }

// AudioChunkEvent carries decoded PCM bytes of model speech (s16le, 24kHz).
type AudioChunkEvent struct {
	MIMEType string
	Data     []byte
}

func (AudioChunkEvent) liveEventType() string { return "audio_chunk" }

// TextEvent carries a text part of the model turn, used for captions.
type TextEvent struct {
	Text string
}

func (TextEvent) liveEventType() string { return "text" }

// InterruptedEvent signals the user spoke over the model; queued playback
// should be discarded.
type InterruptedEvent struct{}

func (InterruptedEvent) liveEventType() string { return "interrupted" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) liveEventType() string { return "turn_complete" }

// UnknownEvent wraps frames the session does not recognize.
type UnknownEvent struct {
	Raw json.RawMessage
}

func (UnknownEvent) liveEventType() string { return "unknown" }

// Wire frames. The Gemini Live API uses camelCase JSON over the websocket.

type liveSetup struct {
	Setup liveSetupBody `json:"setup"`
}

type liveSetupBody struct {
	Model             string               `json:"model"`
	GenerationConfig  liveGenerationConfig `json:"generationConfig"`
	SystemInstruction *gemini.Content      `json:"systemInstruction,omitempty"`
}

type liveGenerationConfig struct {
	ResponseModalities []string          `json:"responseModalities"`
	SpeechConfig       *liveSpeechConfig `json:"speechConfig,omitempty"`
}

type liveSpeechConfig struct {
	VoiceConfig liveVoiceConfig `json:"voiceConfig"`
}

type liveVoiceConfig struct {
	PrebuiltVoiceConfig livePrebuiltVoice `json:"prebuiltVoiceConfig"`
}

type livePrebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type liveRealtimeInput struct {
	RealtimeInput liveMediaChunks `json:"realtimeInput"`
}

type liveMediaChunks struct {
	MediaChunks []audio.Blob `json:"mediaChunks"`
}

type liveServerMessage struct {
	SetupComplete *struct{}          `json:"setupComplete,omitempty"`
	ServerContent *liveServerContent `json:"serverContent,omitempty"`
}

type liveServerContent struct {
	ModelTurn    *gemini.Content `json:"modelTurn,omitempty"`
	Interrupted  bool            `json:"interrupted,omitempty"`
	TurnComplete bool            `json:"turnComplete,omitempty"`
}

// LiveSession is a low-level live websocket session.
type LiveSession struct {
	conn   *websocket.Conn
	logger *slog.Logger

	events chan LiveEvent
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

// Events yields low-level live websocket events.
func (s *LiveSession) Events() <-chan LiveEvent {
	if s == nil {
		return nil
	}
	return s.events
}

// SendMedia sends one or more media chunks (microphone audio, camera
// snapshots) as realtime input.
func (s *LiveSession) SendMedia(blobs ...audio.Blob) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	if len(blobs) == 0 {
		return nil
	}
	return s.sendJSON(liveRealtimeInput{RealtimeInput: liveMediaChunks{MediaChunks: blobs}})
}

func (s *LiveSession) sendJSON(v any) error {
	if s == nil {
		return fmt.Errorf("session must not be nil")
	}
	if s.closed.Load() {
		return fmt.Errorf("live session is closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Close closes the websocket session and waits for the read loop to drain.
func (s *LiveSession) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal session error (if any).
func (s *LiveSession) Err() error {
	if s == nil {
		return nil
	}
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *LiveSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *LiveSession) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if s.closed.Load() {
				return
			}
			s.setErr(err)
			return
		}
		// The live endpoint delivers JSON in both text and binary frames.
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		events, err := decodeLiveFrame(data)
		if err != nil {
			s.setErr(err)
			return
		}
		for _, event := range events {
			s.emitEvent(event)
		}
	}
}

func (s *LiveSession) emitEvent(event LiveEvent) {
	if event == nil {
		return
	}
	select {
	case s.events <- event:
	default:
		// Never deadlock the read loop on a stalled consumer; drop loudly
		// instead, since a dropped audio chunk is an audible glitch.
		s.logger.Warn("live event buffer full, dropping event",
			"event", event.liveEventType())
	}
}

// decodeLiveFrame turns one server frame into ordered events: interruption
// first so playback can flush before the replacement audio arrives.
func decodeLiveFrame(data []byte) ([]LiveEvent, error) {
	var msg liveServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode live frame: %w", err)
	}

	var events []LiveEvent
	if msg.SetupComplete != nil {
		events = append(events, SetupCompleteEvent{})
	}
	if sc := msg.ServerContent; sc != nil {
		if sc.Interrupted {
			events = append(events, InterruptedEvent{})
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil {
					pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
					if err != nil {
						return nil, fmt.Errorf("decode audio chunk: %w", err)
					}
					events = append(events, AudioChunkEvent{
						MIMEType: part.InlineData.MIMEType,
						Data:     pcm,
					})
				}
				if part.Text != "" {
					events = append(events, TextEvent{Text: part.Text})
				}
			}
		}
		if sc.TurnComplete {
			events = append(events, TurnCompleteEvent{})
		}
	}
	if len(events) == 0 {
		events = append(events, UnknownEvent{Raw: append(json.RawMessage(nil), data...)})
	}
	return events, nil
}

// Connect opens a live websocket session and completes the setup handshake.
func (s *LiveService) Connect(ctx context.Context, req *LiveConnectRequest) (*LiveSession, error) {
	if s == nil || s.client == nil {
		return nil, core.NewInvalidRequestError("live service is not initialized")
	}
	if req == nil {
		req = &LiveConnectRequest{}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultLiveModel
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = DefaultVoice
	}
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultCompanionPrompt
	}

	wsURL := s.client.liveURL + "?key=" + url.QueryEscape(s.client.apiKey)

	dialer := websocket.DefaultDialer
	if dialer == nil {
		dialer = &websocket.Dialer{}
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, s.client.dialTimeout)
		defer cancel()
	}

	conn, resp, err := dialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &TransportError{Op: "GET", URL: wsURL, Err: fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)}
		}
		return nil, &TransportError{Op: "GET", URL: wsURL, Err: err}
	}

	setup := liveSetup{
		Setup: liveSetupBody{
			Model: model,
			GenerationConfig: liveGenerationConfig{
				ResponseModalities: []string{"AUDIO"},
				SpeechConfig: &liveSpeechConfig{
					VoiceConfig: liveVoiceConfig{
						PrebuiltVoiceConfig: livePrebuiltVoice{VoiceName: voice},
					},
				},
			},
			SystemInstruction: gemini.SystemInstruction(systemPrompt),
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send live setup: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(s.client.dialTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read setup ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	firstEvents, err := decodeLiveFrame(payload)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if len(firstEvents) == 0 {
		_ = conn.Close()
		return nil, fmt.Errorf("empty first live frame")
	}
	if _, ok := firstEvents[0].(SetupCompleteEvent); !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected first live frame type %q", firstEvents[0].liveEventType())
	}

	session := &LiveSession{
		conn:   conn,
		logger: s.client.logger,
		events: make(chan LiveEvent, 256),
		done:   make(chan struct{}),
	}
	// Surface setup completion to consumers too.
	session.emitEvent(SetupCompleteEvent{})
	go session.readLoop()
	return session, nil
}
