package niramoy

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/niramoy/niramoy-go/pkg/audio"
	"github.com/niramoy/niramoy-go/pkg/gemini"
)

var testUpgrader = websocket.Upgrader{}

// modelTurn builds a model turn with optional audio and text parts.
func modelTurn(b64, text string) *gemini.Content {
	var parts []gemini.Part
	if b64 != "" {
		parts = append(parts, gemini.Part{InlineData: &gemini.Blob{MIMEType: "audio/pcm;rate=24000", Data: b64}})
	}
	if text != "" {
		parts = append(parts, gemini.Part{Text: text})
	}
	return &gemini.Content{Role: "model", Parts: parts}
}

func testMicBlob() audio.Blob {
	return audio.EncodeFrame([]float32{0, 0.5, -0.5, 0.25})
}

// liveHandler drives the server side of a fake live endpoint after the
// setup handshake completes.
type liveHandler func(t *testing.T, conn *websocket.Conn)

func newLiveTestClient(t *testing.T, handler liveHandler) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key query param = %q, want test-key", got)
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var setup liveSetup
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("read setup: %v", err)
			return
		}
		if !strings.HasPrefix(setup.Setup.Model, "models/") {
			t.Errorf("model = %q, want models/ prefix", setup.Setup.Model)
		}
		if got := setup.Setup.GenerationConfig.ResponseModalities; len(got) != 1 || got[0] != "AUDIO" {
			t.Errorf("response modalities = %v", got)
		}
		if setup.Setup.SystemInstruction == nil {
			t.Error("missing system instruction")
		}
		if err := conn.WriteJSON(liveServerMessage{SetupComplete: &struct{}{}}); err != nil {
			t.Errorf("write setup ack: %v", err)
			return
		}
		handler(t, conn)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	return NewClient(
		WithAPIKey("test-key"),
		WithLiveURL(wsURL),
		WithDialTimeout(2*time.Second),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// drain keeps the server side open until the client closes the socket.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func nextEvent(t *testing.T, session *LiveSession) LiveEvent {
	t.Helper()
	select {
	case event, ok := <-session.Events():
		if !ok {
			t.Fatal("event channel closed")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestLiveConnect_EmitsServerEvents(t *testing.T) {
	pcm := []byte{0x00, 0x10, 0x00, 0x20}
	client := newLiveTestClient(t, func(t *testing.T, conn *websocket.Conn) {
		frames := []liveServerMessage{
			{ServerContent: &liveServerContent{
				ModelTurn: modelTurn(base64.StdEncoding.EncodeToString(pcm), "hello"),
			}},
			{ServerContent: &liveServerContent{Interrupted: true}},
			{ServerContent: &liveServerContent{TurnComplete: true}},
		}
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				t.Errorf("write frame: %v", err)
				return
			}
		}
		drain(conn)
	})

	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	if _, ok := nextEvent(t, session).(SetupCompleteEvent); !ok {
		t.Fatal("expected SetupCompleteEvent first")
	}
	chunk, ok := nextEvent(t, session).(AudioChunkEvent)
	if !ok {
		t.Fatal("expected AudioChunkEvent")
	}
	if string(chunk.Data) != string(pcm) {
		t.Errorf("chunk data = %v, want %v", chunk.Data, pcm)
	}
	text, ok := nextEvent(t, session).(TextEvent)
	if !ok || text.Text != "hello" {
		t.Errorf("expected TextEvent hello, got %#v", text)
	}
	if _, ok := nextEvent(t, session).(InterruptedEvent); !ok {
		t.Error("expected InterruptedEvent")
	}
	if _, ok := nextEvent(t, session).(TurnCompleteEvent); !ok {
		t.Error("expected TurnCompleteEvent")
	}
}

func TestLiveSession_SendMedia(t *testing.T) {
	received := make(chan liveRealtimeInput, 1)
	client := newLiveTestClient(t, func(t *testing.T, conn *websocket.Conn) {
		var input liveRealtimeInput
		if err := conn.ReadJSON(&input); err != nil {
			t.Errorf("read realtime input: %v", err)
			return
		}
		received <- input
		drain(conn)
	})

	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	blob := testMicBlob()
	if err := session.SendMedia(blob); err != nil {
		t.Fatalf("SendMedia: %v", err)
	}

	select {
	case input := <-received:
		chunks := input.RealtimeInput.MediaChunks
		if len(chunks) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(chunks))
		}
		if chunks[0].MIMEType != "audio/pcm;rate=16000" {
			t.Errorf("mime type = %q", chunks[0].MIMEType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received media")
	}
}

func TestLiveSession_CloseIsIdempotent(t *testing.T) {
	client := newLiveTestClient(t, func(t *testing.T, conn *websocket.Conn) {
		drain(conn)
	})

	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := session.Err(); err != nil {
		t.Errorf("Err after clean close: %v", err)
	}
	if err := session.SendMedia(testMicBlob()); err == nil {
		t.Error("expected error sending on closed session")
	}
}

func TestLiveSession_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	const frames = 400
	sent := make(chan struct{})
	client := newLiveTestClient(t, func(t *testing.T, conn *websocket.Conn) {
		payload := base64.StdEncoding.EncodeToString([]byte{0x00, 0x01})
		for i := 0; i < frames; i++ {
			if err := conn.WriteJSON(liveServerMessage{ServerContent: &liveServerContent{
				ModelTurn: modelTurn(payload, ""),
			}}); err != nil {
				t.Errorf("write frame %d: %v", i, err)
				return
			}
		}
		close(sent)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		drain(conn)
	})

	session, err := client.Live.Connect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	// Consume nothing until the server has written everything and closed.
	<-sent
	errCh := make(chan error, 1)
	go func() { errCh <- session.Err() }()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Err: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read loop blocked on a stalled consumer")
	}

	count := 0
	for range session.Events() {
		count++
	}
	if count == 0 {
		t.Fatal("no events delivered")
	}
	if count >= frames {
		t.Fatalf("delivered %d of %d events; overflow should have been dropped", count, frames)
	}
}

func TestLiveConnect_RejectsBadHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var setup liveSetup
		if err := conn.ReadJSON(&setup); err != nil {
			return
		}
		// Reply with something other than setupComplete.
		conn.WriteJSON(map[string]any{"bogus": true})
		drain(conn)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewClient(
		WithAPIKey("test-key"),
		WithLiveURL(wsURL),
		WithDialTimeout(2*time.Second),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if _, err := client.Live.Connect(context.Background(), nil); err == nil {
		t.Fatal("expected handshake error")
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("wss://example.com/live?key=secret123")
	if strings.Contains(got, "secret123") {
		t.Errorf("key leaked: %q", got)
	}
	if !strings.Contains(got, "REDACTED") {
		t.Errorf("expected redaction marker, got %q", got)
	}
}
