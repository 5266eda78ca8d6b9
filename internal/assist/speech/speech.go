// Package speech drives question capture from the microphone. Two modes
// exist: live captioning through a continuous recognition engine, and a
// recorded mode that ships the full clip to the backend for a higher
// accuracy transcript.
package speech

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/client"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/notify"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

type Mode string

const (
	// ModeLive streams interim captions from the platform recognizer.
	ModeLive Mode = "live"
	// ModeRecorded captures raw audio and transcribes it server-side.
	ModeRecorded Mode = "recorded"
)

// Recognizer error codes as reported by the platform engine.
const (
	ErrCodePermissionDenied = "not-allowed"
	ErrCodeNoSpeech         = "no-speech"
)

// Engine is a continuous recognition session. Start may be called again
// after the engine reports a stop.
type Engine interface {
	Start() error
	Stop()
}

// Recorder captures raw audio between Start and Stop.
type Recorder interface {
	Start() error
	Stop() ([]byte, error)
}

// Transcriber converts a recorded clip to text. *client.Client satisfies
// this.
type Transcriber interface {
	Transcribe(ctx context.Context, req client.TranscribeRequest) (*client.TranscribeResponse, error)
}

// Update is pushed to the observer after every state change.
type Update struct {
	Listening bool   `json:"listening"`
	Recording bool   `json:"recording"`
	Buffer    string `json:"buffer"`
	Caption   string `json:"caption"`
}

type Config struct {
	Engine      Engine
	Recorder    Recorder
	Transcriber Transcriber
	Notifier    notify.Notifier
	Language    string
	OnUpdate    func(Update)
}

// Adapter owns the accumulating question buffer. Finalized segments are
// appended; interim captions replace each other and never enter the
// buffer.
type Adapter struct {
	mu sync.Mutex

	engine      Engine
	recorder    Recorder
	transcriber Transcriber
	notifier    notify.Notifier
	language    string
	onUpdate    func(Update)

	listening bool
	recording bool
	buffer    string
	caption   string
}

func New(cfg Config) *Adapter {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop()
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	return &Adapter{
		engine:      cfg.Engine,
		recorder:    cfg.Recorder,
		transcriber: cfg.Transcriber,
		notifier:    cfg.Notifier,
		language:    cfg.Language,
		onUpdate:    cfg.OnUpdate,
	}
}

func (a *Adapter) Snapshot() Update {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Adapter) snapshotLocked() Update {
	return Update{Listening: a.listening, Recording: a.recording, Buffer: a.buffer, Caption: a.caption}
}

func (a *Adapter) Buffer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buffer
}

// SetBuffer replaces the question buffer, used when the user edits the
// captured text by hand.
func (a *Adapter) SetBuffer(text string) {
	a.mu.Lock()
	a.buffer = text
	u := a.snapshotLocked()
	a.mu.Unlock()
	a.push(u)
}

func (a *Adapter) Clear() {
	a.mu.Lock()
	a.buffer = ""
	a.caption = ""
	u := a.snapshotLocked()
	a.mu.Unlock()
	a.push(u)
}

// Start begins live captioning. Starting while already listening is a
// no-op so double taps on the mic button do not restart the engine.
func (a *Adapter) Start() error {
	const op = "speech.Adapter.Start"

	a.mu.Lock()
	if a.listening {
		a.mu.Unlock()
		return nil
	}
	if a.engine == nil {
		a.mu.Unlock()
		return utils.E(utils.CodeUnavailable, op, "no recognition engine available", nil)
	}
	a.listening = true
	a.caption = ""
	u := a.snapshotLocked()
	a.mu.Unlock()

	if err := a.engine.Start(); err != nil {
		a.mu.Lock()
		a.listening = false
		u = a.snapshotLocked()
		a.mu.Unlock()
		a.push(u)
		notify.Error(a.notifier, "Could not start speech recognition")
		return utils.E(utils.CodeUnavailable, op, "engine start failed", err)
	}
	a.push(u)
	return nil
}

// Stop ends live captioning. Any pending interim caption is discarded.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if !a.listening {
		a.mu.Unlock()
		return
	}
	a.listening = false
	a.caption = ""
	u := a.snapshotLocked()
	a.mu.Unlock()

	a.engine.Stop()
	a.push(u)
}

func (a *Adapter) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// HandleResult receives a recognition segment. Finalized text is appended
// to the buffer with a trailing space; interim text becomes the caption.
func (a *Adapter) HandleResult(final bool, text string) {
	a.mu.Lock()
	if final {
		a.buffer += text + " "
		a.caption = ""
	} else {
		a.caption = text
	}
	u := a.snapshotLocked()
	a.mu.Unlock()
	a.push(u)
}

// HandleStopped is called when the engine session ends on its own.
// Continuous engines time out on silence, so while the user still wants
// to listen the session is restarted immediately.
func (a *Adapter) HandleStopped() {
	a.mu.Lock()
	restart := a.listening
	a.mu.Unlock()

	if !restart {
		return
	}
	if err := a.engine.Start(); err != nil {
		a.mu.Lock()
		a.listening = false
		u := a.snapshotLocked()
		a.mu.Unlock()
		a.push(u)
		notify.Error(a.notifier, "Speech recognition stopped unexpectedly")
	}
}

// HandleError maps engine error codes. Permission denial turns listening
// off so the restart loop cannot spin against a denied microphone.
func (a *Adapter) HandleError(code string) {
	switch code {
	case ErrCodePermissionDenied:
		a.mu.Lock()
		a.listening = false
		a.caption = ""
		u := a.snapshotLocked()
		a.mu.Unlock()
		a.push(u)
		notify.Error(a.notifier, "Microphone access denied. Check browser permissions.")
	case ErrCodeNoSpeech:
		// silence timeouts are routine, the stop handler restarts
	default:
		notify.Error(a.notifier, "Speech recognition error: "+code)
	}
}

// StartRecording begins a high-accuracy capture.
func (a *Adapter) StartRecording() error {
	const op = "speech.Adapter.StartRecording"

	a.mu.Lock()
	if a.recording {
		a.mu.Unlock()
		return nil
	}
	if a.recorder == nil || a.transcriber == nil {
		a.mu.Unlock()
		return utils.E(utils.CodeUnavailable, op, "recorded mode not available", nil)
	}
	a.recording = true
	u := a.snapshotLocked()
	a.mu.Unlock()

	if err := a.recorder.Start(); err != nil {
		a.mu.Lock()
		a.recording = false
		u = a.snapshotLocked()
		a.mu.Unlock()
		a.push(u)
		notify.Error(a.notifier, "Could not start audio recording")
		return utils.E(utils.CodeUnavailable, op, "recorder start failed", err)
	}
	a.push(u)
	return nil
}

// AbortRecording discards an in-flight capture without transcribing it,
// used on teardown. The recorder is stopped off the calling goroutine so
// teardown never waits on the clip.
func (a *Adapter) AbortRecording() {
	a.mu.Lock()
	if !a.recording {
		a.mu.Unlock()
		return
	}
	a.recording = false
	u := a.snapshotLocked()
	a.mu.Unlock()
	a.push(u)

	go func() { _, _ = a.recorder.Stop() }()
}

// StopRecording finishes the capture, sends the clip for transcription
// and appends the transcript to the question buffer.
func (a *Adapter) StopRecording(ctx context.Context) error {
	const op = "speech.Adapter.StopRecording"

	a.mu.Lock()
	if !a.recording {
		a.mu.Unlock()
		return nil
	}
	a.recording = false
	u := a.snapshotLocked()
	a.mu.Unlock()
	a.push(u)

	data, err := a.recorder.Stop()
	if err != nil {
		notify.Error(a.notifier, "Audio recording failed")
		return utils.E(utils.CodeUnavailable, op, "recorder stop failed", err)
	}
	if len(data) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, "no audio captured", nil)
	}

	resp, err := a.transcriber.Transcribe(ctx, client.TranscribeRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(data),
		Language:    a.language,
	})
	if err != nil {
		notify.Error(a.notifier, "Transcription failed. Please try again.")
		return err
	}

	if text := strings.TrimSpace(resp.Text); text != "" {
		a.HandleResult(true, text)
	}
	return nil
}

func (a *Adapter) push(u Update) {
	if a.onUpdate != nil {
		a.onUpdate(u)
	}
}
