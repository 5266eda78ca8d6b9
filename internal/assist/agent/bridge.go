package agent

import (
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/voice"
)

// The recognizer, recorder and synthesizer run on the UI side of the
// socket. These bridges turn the state machines' engine calls into
// commands sent to the client, and the client's events come back as
// regular messages.

type commandSender interface {
	send(msg serverMsg) error
}

type wsEngine struct {
	out commandSender
}

func (e *wsEngine) Start() error {
	return e.out.send(serverMsg{Type: msgSTTCommand, Action: "start"})
}

func (e *wsEngine) Stop() {
	_ = e.out.send(serverMsg{Type: msgSTTCommand, Action: "stop"})
}

// recordWait bounds how long Stop waits for the client to deliver the
// recorded clip.
const recordWait = 15 * time.Second

type wsRecorder struct {
	out commandSender

	mu      sync.Mutex
	pending chan []byte
}

func (r *wsRecorder) Start() error {
	r.mu.Lock()
	r.pending = make(chan []byte, 1)
	r.mu.Unlock()
	return r.out.send(serverMsg{Type: msgRecordCommand, Action: "start"})
}

func (r *wsRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	pending := r.pending
	r.mu.Unlock()
	if pending == nil {
		return nil, errors.New("recorder not started")
	}

	if err := r.out.send(serverMsg{Type: msgRecordCommand, Action: "stop"}); err != nil {
		return nil, err
	}
	select {
	case data := <-pending:
		return data, nil
	case <-time.After(recordWait):
		return nil, errors.New("timed out waiting for recorded audio")
	}
}

// deliver hands a clip from the client to a waiting Stop call.
func (r *wsRecorder) deliver(audioBase64 string) error {
	data, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return err
	}
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()
	if pending != nil {
		pending <- data
	}
	return nil
}

type wsSynth struct {
	out commandSender

	mu     sync.Mutex
	voices []voice.Voice
}

func (s *wsSynth) setVoices(v []voice.Voice) {
	s.mu.Lock()
	s.voices = v
	s.mu.Unlock()
}

func (s *wsSynth) Voices() []voice.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices
}

func (s *wsSynth) Speak(u voice.Utterance) error {
	return s.out.send(serverMsg{
		Type:      msgSpeakCommand,
		ID:        u.ID,
		Text:      u.Text,
		VoiceName: u.Voice.Name,
		Rate:      u.Rate,
		Pitch:     u.Pitch,
	})
}

func (s *wsSynth) Cancel() {
	_ = s.out.send(serverMsg{Type: msgCancelSpeech})
}
