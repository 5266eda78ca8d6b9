package agent

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/client"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/history"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/orchestrate"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/overlay"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/sessiontimer"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/speech"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/voice"
)

type fakeBackend struct {
	answer     string
	endedIDs   []string
	transcript string
}

func (b *fakeBackend) GenerateAnswer(_ context.Context, req client.GenerateAnswerRequest) (*client.GenerateAnswerResponse, error) {
	return &client.GenerateAnswerResponse{Answer: b.answer, AIModel: req.AIModel, QAID: "qa-1"}, nil
}

func (b *fakeBackend) CodeAssist(_ context.Context, req client.CodeAssistRequest) (*client.CodeAssistResponse, error) {
	return &client.CodeAssistResponse{Explanation: "explained", AIModel: req.AIModel}, nil
}

func (b *fakeBackend) ListQAPairs(context.Context, string) ([]client.QAPair, error) {
	return nil, nil
}

func (b *fakeBackend) GetSession(_ context.Context, id string) (*client.Session, error) {
	return &client.Session{ID: id, Name: "practice", DurationLimitMinutes: 30, IsActive: true}, nil
}

func (b *fakeBackend) GetSettings(context.Context) (*client.Settings, error) {
	return &client.Settings{
		DefaultAIModel: "gemini-3-flash",
		DefaultTone:    "professional",
		DefaultDomain:  "backend",
		StealthOpacity: 0.1,
	}, nil
}

func (b *fakeBackend) Transcribe(context.Context, client.TranscribeRequest) (*client.TranscribeResponse, error) {
	return &client.TranscribeResponse{Success: true, Text: b.transcript}, nil
}

func (b *fakeBackend) EndSession(_ context.Context, id string) error {
	b.endedIDs = append(b.endedIDs, id)
	return nil
}

func dialTestAgent(t *testing.T, backend Backend) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	a := New(backend, hist, "test", log)

	r := gin.New()
	r.GET("/ws", a.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips unrelated pushes (timer ticks and the like) until a
// message of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) serverMsg {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg serverMsg
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q", msgType)
		if msg.Type == msgType {
			return msg
		}
	}
}

func initSession(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	hello := readUntil(t, conn, msgHello)
	require.Equal(t, "test", hello.Version)

	require.NoError(t, conn.WriteJSON(clientMsg{
		Type:      msgInit,
		SessionID: "s1",
		ViewportW: 1280,
		ViewportH: 800,
	}))
	first := readUntil(t, conn, msgOverlayState)
	require.Equal(t, overlay.StateHidden, first.Overlay.State)
}

func TestStealthToggleOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgKey, Key: "S", Ctrl: true, Shift: true}))
	state := readUntil(t, conn, msgOverlayState)
	assert.Equal(t, overlay.StateVisible, state.Overlay.State)
	assert.Equal(t, 20.0, state.Overlay.X)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgKey, Key: "s", Ctrl: true, Shift: true}))
	state = readUntil(t, conn, msgOverlayState)
	assert.Equal(t, overlay.StateHidden, state.Overlay.State)
}

func TestDragOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgToggleOverlay}))
	readUntil(t, conn, msgOverlayState)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgPointer, Phase: "down", X: 30, Y: 30}))
	state := readUntil(t, conn, msgOverlayState)
	assert.True(t, state.Overlay.Dragging)
	assert.Equal(t, 1.0, state.Overlay.Opacity)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgPointer, Phase: "move", X: 9999, Y: 9999}))
	state = readUntil(t, conn, msgOverlayState)
	assert.Equal(t, 1280.0-420, state.Overlay.X, "clamped to viewport")
	assert.Equal(t, 800.0-200, state.Overlay.Y)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgPointer, Phase: "up"}))
	state = readUntil(t, conn, msgOverlayState)
	assert.False(t, state.Overlay.Dragging)
}

func TestGenerateFlowOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{answer: "Use a worker pool."})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgQuestion, Text: "How do I limit concurrency?"}))
	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgGenerate}))

	for {
		msg := readUntil(t, conn, msgAssistant)
		if msg.Assistant.Answer != "" {
			assert.Equal(t, "Use a worker pool.", msg.Assistant.Answer)
			assert.Empty(t, msg.Assistant.Question)
			assert.Len(t, msg.Assistant.Turns, 2)
			break
		}
	}
}

func TestSpeechEventsOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgMic, On: true}))
	cmd := readUntil(t, conn, msgSTTCommand)
	assert.Equal(t, "start", cmd.Action)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgEngineResult, Final: false, Text: "how do"}))
	state := readUntil(t, conn, msgSpeechState)
	assert.Equal(t, "how do", state.Speech.Caption)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgEngineResult, Final: true, Text: "how do channels work"}))
	for {
		state = readUntil(t, conn, msgSpeechState)
		if state.Speech.Buffer != "" {
			assert.Equal(t, "how do channels work ", state.Speech.Buffer)
			break
		}
	}

	// engine silence timeout triggers a restart command
	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgEngineStopped}))
	cmd = readUntil(t, conn, msgSTTCommand)
	assert.Equal(t, "start", cmd.Action)
}

func TestSpeakCommandOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{
		Type:   msgVoices,
		Voices: []voice.Voice{{Name: "Ava (Premium)", Lang: "en-US"}},
	}))
	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgSpeak, ID: "a1", Text: "**Hello** interviewer"}))
	cmd := readUntil(t, conn, msgSpeakCommand)
	assert.Equal(t, "a1", cmd.ID)
	assert.Equal(t, "Hello interviewer", cmd.Text)
	assert.Equal(t, "Ava (Premium)", cmd.VoiceName)
}

func TestEndSessionOverSocket(t *testing.T) {
	backend := &fakeBackend{}
	conn := dialTestAgent(t, backend)
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgEndSession}))
	notice := readUntil(t, conn, msgNotice)
	assert.Equal(t, "Session ended", notice.Message)
	assert.Equal(t, []string{"s1"}, backend.endedIDs)
}

func TestSnapshotRoundTripOverSocket(t *testing.T) {
	conn := dialTestAgent(t, &fakeBackend{})
	initSession(t, conn)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgCode, Text: "x := 1", Language: "go"}))
	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgSaveSnapshot}))
	saved := readUntil(t, conn, msgSnapshot)
	require.NotNil(t, saved.Snapshot)
	assert.Equal(t, "x := 1", saved.Snapshot.Code)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgListSnapshots}))
	list := readUntil(t, conn, msgSnapshots)
	require.Len(t, list.Snapshots, 1)

	require.NoError(t, conn.WriteJSON(clientMsg{Type: msgLoadSnapshot, ID: saved.Snapshot.ID}))
	loaded := readUntil(t, conn, msgSnapshot)
	assert.Equal(t, "go", loaded.Snapshot.Language)
}

type stubEngine struct{ stops int }

func (e *stubEngine) Start() error { return nil }
func (e *stubEngine) Stop()        { e.stops++ }

type stubRecorder struct{ stopped chan struct{} }

func (r *stubRecorder) Start() error { return nil }
func (r *stubRecorder) Stop() ([]byte, error) {
	close(r.stopped)
	return nil, nil
}

func TestShutdownStopsSpeech(t *testing.T) {
	eng := &stubEngine{}
	rec := &stubRecorder{stopped: make(chan struct{})}
	sp := speech.New(speech.Config{Engine: eng, Recorder: rec, Transcriber: &fakeBackend{}})
	require.NoError(t, sp.Start())
	require.NoError(t, sp.StartRecording())

	s := &session{
		timer:  sessiontimer.New(sessiontimer.Config{}),
		speech: sp,
		voice:  voice.New(voice.Config{}),
		orch:   orchestrate.New(orchestrate.Config{}),
	}
	s.shutdown()

	assert.False(t, sp.Listening())
	assert.Equal(t, 1, eng.stops, "recognition stopped on teardown")
	assert.False(t, sp.Snapshot().Recording)
	select {
	case <-rec.stopped:
	case <-time.After(time.Second):
		t.Fatal("recorder was not stopped on teardown")
	}
}
