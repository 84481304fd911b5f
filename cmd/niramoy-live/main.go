// Command niramoy-live starts a live voice and video call with the AI
// companion. Microphone audio and periodic camera snapshots stream up over
// the Gemini Live websocket; the companion's speech plays back through the
// default output device.
//
// Usage:
//
//	go run ./cmd/niramoy-live [-model name] [-voice name] [-no-video] [-record out.wav]
//
// Environment variables:
//
//	GEMINI_API_KEY - Required (GOOGLE_API_KEY also accepted)
//
// Press Ctrl+C to hang up.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	niramoy "github.com/niramoy/niramoy-go/sdk"

	"github.com/niramoy/niramoy-go/internal/dotenv"
	"github.com/niramoy/niramoy-go/pkg/audio"
	"github.com/niramoy/niramoy-go/pkg/capture"
	"github.com/niramoy/niramoy-go/pkg/playback"
)

// recordingSink mirrors the companion's speech into a PCM buffer as it is
// handed to the speaker, concatenating chunks without the idle time between
// turns.
type recordingSink struct {
	playback.Sink
	mu  sync.Mutex
	pcm []byte
}

func (r *recordingSink) Play(buf *audio.Buffer) {
	r.mu.Lock()
	r.pcm = append(r.pcm, buf.Int16Bytes()...)
	r.mu.Unlock()
	r.Sink.Play(buf)
}

func (r *recordingSink) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pcm) == 0
}

func (r *recordingSink) save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pcm) == 0 {
		return nil
	}
	wav := audio.PCMToWAV(r.pcm, audio.OutputSampleRate, 16, 1)
	return os.WriteFile(path, wav, 0o644)
}

func main() {
	model := flag.String("model", "", "live model name (default: the native audio model)")
	voice := flag.String("voice", "", "prebuilt voice name (default: "+niramoy.DefaultVoice+")")
	noVideo := flag.Bool("no-video", false, "disable camera snapshots")
	record := flag.String("record", "", "save the companion's audio to a WAV file")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	_ = dotenv.Load()

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	client := niramoy.NewClient(niramoy.WithLogger(logger))

	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║                  Niramoy Live Companion                    ║")
	fmt.Println("╠════════════════════════════════════════════════════════════╣")
	fmt.Println("║  Speak naturally; the companion sees your camera twice a   ║")
	fmt.Println("║  second and replies with voice.                            ║")
	fmt.Println("║                                                            ║")
	fmt.Println("║  Press Ctrl+C to hang up.                                  ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()

	mic, err := capture.OpenMic()
	if err != nil {
		log.Fatalf("open microphone: %v", err)
	}

	var camera capture.SnapshotSource
	if !*noVideo {
		camera = capture.NewCamera()
	}

	var recorder *recordingSink
	var sink playback.Sink
	if *record != "" {
		speaker, err := playback.NewSpeaker(audio.OutputSampleRate)
		if err != nil {
			log.Fatalf("open speaker: %v", err)
		}
		recorder = &recordingSink{Sink: speaker}
		sink = recorder
		defer func() {
			_ = speaker.Close()
			if recorder.empty() {
				return
			}
			if err := recorder.save(*record); err != nil {
				log.Printf("save recording: %v", err)
			} else {
				fmt.Printf("Recording saved to %s\n", *record)
			}
		}()
	}

	manager := niramoy.NewCallManager(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = manager.Dial(ctx, niramoy.CallConfig{
		Model:  *model,
		Voice:  *voice,
		Mic:    mic,
		Camera: camera,
		Sink:   sink,
		OnText: func(text string) { fmt.Printf("\rcompanion> %s\n", text) },
	})
	cancel()
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	fmt.Println("Connected. Say hello!")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sigChan:
			fmt.Println("\nHanging up...")
			manager.HangUp()
			return
		case <-ticker.C:
			switch manager.Status() {
			case niramoy.StatusConnected:
				bar := strings.Repeat("#", int(manager.Volume()*20))
				fmt.Printf("\rmic [%-20s]", bar)
			case niramoy.StatusError:
				fmt.Println("\nCall failed; see the logs above.")
				manager.HangUp()
				return
			default:
				fmt.Println("Call ended.")
				manager.HangUp()
				return
			}
		}
	}
}
