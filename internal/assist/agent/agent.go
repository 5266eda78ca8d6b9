// Package agent hosts the client-side state machines behind a localhost
// WebSocket. The UI stays a thin shell: it forwards raw pointer, key and
// recognizer events here, and renders whatever state comes back.
package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/client"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/history"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/notify"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/orchestrate"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/overlay"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/sessiontimer"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/speech"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/voice"
)

// Backend is the slice of the HTTP API the agent needs. *client.Client
// satisfies this.
type Backend interface {
	orchestrate.Gateway
	GetSession(ctx context.Context, id string) (*client.Session, error)
	GetSettings(ctx context.Context) (*client.Settings, error)
	Transcribe(ctx context.Context, req client.TranscribeRequest) (*client.TranscribeResponse, error)
	EndSession(ctx context.Context, id string) error
}

type Agent struct {
	backend  Backend
	hist     *history.Store
	version  string
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func New(backend Backend, hist *history.Store, version string, log *logrus.Logger) *Agent {
	return &Agent{
		backend: backend,
		hist:    hist,
		version: version,
		log:     log,
		upgrader: websocket.Upgrader{
			// the agent binds to loopback only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Client message types.
const (
	msgInit           = "init"
	msgViewport       = "viewport"
	msgPointer        = "pointer"
	msgKey            = "key"
	msgToggleOverlay  = "toggle_overlay"
	msgToggleMinimize = "toggle_minimize"
	msgQuestion       = "question"
	msgCode           = "code"
	msgGenerate       = "generate"
	msgExplainCode    = "explain_code"
	msgMic            = "mic"
	msgEngineResult   = "engine_result"
	msgEngineStopped  = "engine_stopped"
	msgEngineError    = "engine_error"
	msgRecord         = "record"
	msgRecordData     = "record_data"
	msgVoices         = "voices"
	msgSpeak          = "speak"
	msgStopSpeaking   = "stop_speaking"
	msgTTSFinished    = "tts_finished"
	msgSaveSnapshot   = "save_snapshot"
	msgListSnapshots  = "list_snapshots"
	msgLoadSnapshot   = "load_snapshot"
	msgEndSession     = "end_session"
)

// Server message types.
const (
	msgHello         = "hello"
	msgOverlayState  = "overlay"
	msgTimerState    = "timer"
	msgSpeechState   = "speech"
	msgAssistant     = "assistant"
	msgNotice        = "notice"
	msgSTTCommand    = "stt_cmd"
	msgRecordCommand = "record_cmd"
	msgSpeakCommand  = "speak_cmd"
	msgCancelSpeech  = "cancel_speech"
	msgSnapshots     = "snapshots"
	msgSnapshot      = "snapshot"
	msgError         = "error"
)

type clientMsg struct {
	Type string `json:"type"`

	SessionID string  `json:"session_id,omitempty"`
	ViewportW float64 `json:"viewport_w,omitempty"`
	ViewportH float64 `json:"viewport_h,omitempty"`
	AIModel   string  `json:"ai_model,omitempty"`
	Tone      string  `json:"tone,omitempty"`
	Domain    string  `json:"domain,omitempty"`

	Phase string  `json:"phase,omitempty"` // down|move|up
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`

	Key              string `json:"key,omitempty"`
	Ctrl             bool   `json:"ctrl,omitempty"`
	Shift            bool   `json:"shift,omitempty"`
	TextFieldFocused bool   `json:"text_field_focused,omitempty"`

	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`

	On          bool          `json:"on,omitempty"`
	Final       bool          `json:"final,omitempty"`
	ErrorCode   string        `json:"error_code,omitempty"`
	AudioBase64 string        `json:"audio_base64,omitempty"`
	Voices      []voice.Voice `json:"voices,omitempty"`
	ID          string        `json:"id,omitempty"`
}

type overlayView struct {
	State    overlay.State `json:"state"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Dragging bool          `json:"dragging"`
	Opacity  float64       `json:"opacity"`
}

type timerView struct {
	ElapsedSeconds   int64 `json:"elapsed_seconds"`
	RemainingSeconds int64 `json:"remaining_seconds"`
	LimitSeconds     int64 `json:"limit_seconds"`
	Warned           bool  `json:"warned"`
	Expired          bool  `json:"expired"`
}

type serverMsg struct {
	Type string `json:"type"`

	Version   string                `json:"version,omitempty"`
	Overlay   *overlayView          `json:"overlay,omitempty"`
	Timer     *timerView            `json:"timer,omitempty"`
	Speech    *speech.Update        `json:"speech,omitempty"`
	Assistant *orchestrate.Snapshot `json:"assistant,omitempty"`

	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`

	Action    string  `json:"action,omitempty"`
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text,omitempty"`
	VoiceName string  `json:"voice_name,omitempty"`
	Rate      float64 `json:"rate,omitempty"`
	Pitch     float64 `json:"pitch,omitempty"`

	Snapshots []history.Snapshot `json:"snapshots,omitempty"`
	Snapshot  *history.Snapshot  `json:"snapshot,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) send(msg serverMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// session is the per-connection wiring of every state machine.
type session struct {
	agent *Agent
	conn  *wsConn
	log   *logrus.Entry

	sessionID string

	overlay  *overlay.Machine
	timer    *sessiontimer.Tracker
	speech   *speech.Adapter
	voice    *voice.Controller
	orch     *orchestrate.Orchestrator
	recorder *wsRecorder
	synth    *wsSynth
}

func (a *Agent) ServeWS(c *gin.Context) {
	conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	_ = wc.send(serverMsg{Type: msgHello, Version: a.version})

	// first message must be init
	var init clientMsg
	if err := conn.ReadJSON(&init); err != nil || init.Type != msgInit {
		_ = wc.send(serverMsg{Type: msgError, Message: "expected init message"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := a.newSession(ctx, wc, init)
	defer s.shutdown()

	for {
		var msg clientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.dispatch(ctx, msg)
	}
}

func (a *Agent) newSession(ctx context.Context, wc *wsConn, init clientMsg) *session {
	s := &session{
		agent:     a,
		conn:      wc,
		log:       a.log.WithField("session_id", init.SessionID),
		sessionID: init.SessionID,
	}

	notifier := notify.Func(func(n notify.Notice) {
		_ = wc.send(serverMsg{Type: msgNotice, Level: string(n.Level), Message: n.Message})
	})

	opacity := 0.1
	aiModel, tone, domain := init.AIModel, init.Tone, init.Domain
	if settings, err := a.backend.GetSettings(ctx); err == nil {
		opacity = settings.StealthOpacity
		if aiModel == "" {
			aiModel = settings.DefaultAIModel
		}
		if tone == "" {
			tone = settings.DefaultTone
		}
		if domain == "" {
			domain = settings.DefaultDomain
		}
	} else {
		s.log.WithError(err).Warn("settings unavailable, using defaults")
	}

	s.overlay = overlay.New(overlay.Config{
		ViewportWidth:  init.ViewportW,
		ViewportHeight: init.ViewportH,
		StealthOpacity: opacity,
		Initial:        overlay.Point{X: 20, Y: 20},
	})

	s.synth = &wsSynth{out: wc}
	s.voice = voice.New(voice.Config{Synth: s.synth})

	s.recorder = &wsRecorder{out: wc}
	s.speech = speech.New(speech.Config{
		Engine:      &wsEngine{out: wc},
		Recorder:    s.recorder,
		Transcriber: a.backend,
		Notifier:    notifier,
		OnUpdate: func(u speech.Update) {
			_ = wc.send(serverMsg{Type: msgSpeechState, Speech: &u})
		},
	})

	s.orch = orchestrate.New(orchestrate.Config{
		Gateway:   a.backend,
		Notifier:  notifier,
		SessionID: init.SessionID,
		AIModel:   aiModel,
		Tone:      tone,
		Domain:    domain,
		OnUpdate: func(snap orchestrate.Snapshot) {
			_ = wc.send(serverMsg{Type: msgAssistant, Assistant: &snap})
		},
	})

	var limit time.Duration
	if init.SessionID != "" {
		if sess, err := a.backend.GetSession(ctx, init.SessionID); err == nil {
			limit = time.Duration(sess.DurationLimitMinutes) * time.Minute
		} else {
			s.log.WithError(err).Warn("session lookup failed, timer runs unbounded")
		}
	}
	s.timer = sessiontimer.New(sessiontimer.Config{
		Limit: limit,
		OnTick: func(snap sessiontimer.Snapshot) {
			_ = wc.send(serverMsg{Type: msgTimerState, Timer: timerViewOf(snap)})
		},
		OnWarning: func(sessiontimer.Snapshot) {
			notify.Info(notifier, "2 minutes remaining in this session")
		},
		OnExpired: func(sessiontimer.Snapshot) {
			notify.Error(notifier, "Session time limit reached")
		},
	})
	go s.timer.Run(ctx, time.Second)

	s.pushOverlay()
	return s
}

func (s *session) dispatch(ctx context.Context, msg clientMsg) {
	switch msg.Type {
	case msgViewport:
		s.overlay.Resize(msg.ViewportW, msg.ViewportH)
		s.pushOverlay()
	case msgPointer:
		switch msg.Phase {
		case "down":
			s.overlay.PointerDown(overlay.Point{X: msg.X, Y: msg.Y})
		case "move":
			s.overlay.PointerMove(overlay.Point{X: msg.X, Y: msg.Y})
		case "up":
			s.overlay.PointerUp()
		}
		s.pushOverlay()
	case msgKey:
		if s.overlay.HandleKey(overlay.Key{
			Key:              msg.Key,
			Ctrl:             msg.Ctrl,
			Shift:            msg.Shift,
			TextFieldFocused: msg.TextFieldFocused,
		}) {
			s.pushOverlay()
		}
	case msgToggleOverlay:
		s.overlay.ToggleVisible()
		s.pushOverlay()
	case msgToggleMinimize:
		s.overlay.ToggleMinimized()
		s.pushOverlay()

	case msgQuestion:
		s.speech.SetBuffer(msg.Text)
		s.orch.SetQuestion(msg.Text)
	case msgCode:
		s.orch.SetCode(msg.Text, msg.Language)
	case msgGenerate:
		s.orch.SetQuestion(s.speech.Buffer())
		go func() {
			if _, err := s.orch.Generate(ctx); err == nil {
				s.speech.Clear()
			}
		}()
	case msgExplainCode:
		go func() { _, _ = s.orch.ExplainCode(ctx) }()

	case msgMic:
		if msg.On {
			_ = s.speech.Start()
		} else {
			s.speech.Stop()
		}
	case msgEngineResult:
		s.speech.HandleResult(msg.Final, msg.Text)
	case msgEngineStopped:
		s.speech.HandleStopped()
	case msgEngineError:
		s.speech.HandleError(msg.ErrorCode)
	case msgRecord:
		if msg.On {
			_ = s.speech.StartRecording()
		} else {
			go func() { _ = s.speech.StopRecording(ctx) }()
		}
	case msgRecordData:
		if err := s.recorder.deliver(msg.AudioBase64); err != nil {
			s.log.WithError(err).Warn("dropping undecodable recording")
		}

	case msgVoices:
		s.synth.setVoices(msg.Voices)
	case msgSpeak:
		s.voice.Speak(msg.ID, msg.Text)
	case msgStopSpeaking:
		s.voice.Stop()
	case msgTTSFinished:
		s.voice.Finished(msg.ID)

	case msgSaveSnapshot:
		s.saveSnapshot(ctx)
	case msgListSnapshots:
		s.listSnapshots(ctx)
	case msgLoadSnapshot:
		s.loadSnapshot(ctx, msg.ID)

	case msgEndSession:
		s.endSession(ctx)

	default:
		_ = s.conn.send(serverMsg{Type: msgError, Message: "unknown message type"})
	}
}

func (s *session) saveSnapshot(ctx context.Context) {
	snap := s.orch.Snapshot()
	saved, err := s.agent.hist.Save(ctx, s.sessionID, history.Snapshot{
		Code:     snap.Code,
		Language: snap.Language,
		Turns:    snap.Turns,
	})
	if err != nil {
		s.log.WithError(err).Error("snapshot save failed")
		_ = s.conn.send(serverMsg{Type: msgNotice, Level: string(notify.LevelError), Message: "Failed to save snapshot"})
		return
	}
	_ = s.conn.send(serverMsg{Type: msgSnapshot, Snapshot: &saved})
}

func (s *session) listSnapshots(ctx context.Context) {
	snaps, err := s.agent.hist.List(ctx, s.sessionID)
	if err != nil {
		s.log.WithError(err).Error("snapshot list failed")
		return
	}
	_ = s.conn.send(serverMsg{Type: msgSnapshots, Snapshots: snaps})
}

func (s *session) loadSnapshot(ctx context.Context, id string) {
	snap, err := s.agent.hist.Get(ctx, s.sessionID, id)
	if err != nil {
		_ = s.conn.send(serverMsg{Type: msgNotice, Level: string(notify.LevelError), Message: "Snapshot not found"})
		return
	}
	s.orch.SetCode(snap.Code, snap.Language)
	_ = s.conn.send(serverMsg{Type: msgSnapshot, Snapshot: &snap})
}

func (s *session) endSession(ctx context.Context) {
	s.timer.Stop()
	s.speech.Stop()
	s.voice.Stop()
	if s.sessionID != "" {
		if err := s.agent.backend.EndSession(ctx, s.sessionID); err != nil {
			s.log.WithError(err).Error("failed to end session")
		}
	}
	_ = s.conn.send(serverMsg{Type: msgNotice, Level: string(notify.LevelSuccess), Message: "Session ended"})
}

func (s *session) shutdown() {
	s.timer.Stop()
	s.speech.Stop()
	s.speech.AbortRecording()
	s.voice.Close()
	s.orch.Close()
}

func (s *session) pushOverlay() {
	pos := s.overlay.Position()
	_ = s.conn.send(serverMsg{Type: msgOverlayState, Overlay: &overlayView{
		State:    s.overlay.State(),
		X:        pos.X,
		Y:        pos.Y,
		Dragging: s.overlay.Dragging(),
		Opacity:  s.overlay.Opacity(),
	}})
}

func timerViewOf(s sessiontimer.Snapshot) *timerView {
	return &timerView{
		ElapsedSeconds:   int64(s.Elapsed / time.Second),
		RemainingSeconds: int64(s.Remaining / time.Second),
		LimitSeconds:     int64(s.Limit / time.Second),
		Warned:           s.Warned,
		Expired:          s.Expired,
	}
}
