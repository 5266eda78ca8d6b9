// Package orchestrate coordinates the ask-answer loop: it owns the draft
// question, the running conversation, and the single in-flight generation
// request against the backend.
package orchestrate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Geeklady55/Interview-assistant1/internal/assist/client"
	"github.com/Geeklady55/Interview-assistant1/internal/assist/notify"
)

var (
	ErrBusy          = errors.New("answer generation already in progress")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrClosed        = errors.New("orchestrator closed")
)

// contextTurns is how many recent turns are sent as conversation context.
const contextTurns = 4

const defaultCodeQuestion = "Explain this code and suggest improvements"

type Turn struct {
	Role    string `json:"role"` // user|assistant
	Content string `json:"content"`
}

// Gateway is the backend surface the orchestrator needs. *client.Client
// satisfies this.
type Gateway interface {
	GenerateAnswer(ctx context.Context, req client.GenerateAnswerRequest) (*client.GenerateAnswerResponse, error)
	CodeAssist(ctx context.Context, req client.CodeAssistRequest) (*client.CodeAssistResponse, error)
	ListQAPairs(ctx context.Context, sessionID string) ([]client.QAPair, error)
}

type Snapshot struct {
	Busy     bool            `json:"busy"`
	Question string          `json:"question"`
	Code     string          `json:"code"`
	Language string          `json:"language"`
	Answer   string          `json:"answer"`
	QAID     string          `json:"qa_id"`
	Turns    []Turn          `json:"turns"`
	History  []client.QAPair `json:"history,omitempty"`
}

type Config struct {
	Gateway   Gateway
	Notifier  notify.Notifier
	SessionID string
	AIModel   string
	Tone      string
	Domain    string
	OnUpdate  func(Snapshot)
}

type Orchestrator struct {
	mu sync.Mutex

	gw       Gateway
	notifier notify.Notifier
	onUpdate func(Snapshot)

	sessionID string
	aiModel   string
	tone      string
	domain    string

	busy     bool
	closed   bool
	question string
	code     string
	language string
	answer   string
	qaID     string
	turns    []Turn
	history  []client.QAPair
}

func New(cfg Config) *Orchestrator {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop()
	}
	return &Orchestrator{
		gw:        cfg.Gateway,
		notifier:  cfg.Notifier,
		onUpdate:  cfg.OnUpdate,
		sessionID: cfg.SessionID,
		aiModel:   cfg.AIModel,
		tone:      cfg.Tone,
		domain:    cfg.Domain,
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	turns := make([]Turn, len(o.turns))
	copy(turns, o.turns)
	hist := make([]client.QAPair, len(o.history))
	copy(hist, o.history)
	return Snapshot{
		Busy:     o.busy,
		Question: o.question,
		Code:     o.code,
		Language: o.language,
		Answer:   o.answer,
		QAID:     o.qaID,
		Turns:    turns,
		History:  hist,
	}
}

func (o *Orchestrator) SetQuestion(q string) {
	o.mu.Lock()
	o.question = q
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)
}

func (o *Orchestrator) Question() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.question
}

func (o *Orchestrator) SetCode(code, language string) {
	o.mu.Lock()
	o.code = code
	o.language = language
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)
}

// SetPreferences updates the model, tone and domain used for subsequent
// generations. Empty values leave the current preference unchanged.
func (o *Orchestrator) SetPreferences(aiModel, tone, domain string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if aiModel != "" {
		o.aiModel = aiModel
	}
	if tone != "" {
		o.tone = tone
	}
	if domain != "" {
		o.domain = domain
	}
}

func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

func (o *Orchestrator) History() []client.QAPair {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]client.QAPair, len(o.history))
	copy(out, o.history)
	return out
}

// Generate sends the draft question with recent conversation context. It
// is single-flight: a second call while one is running returns ErrBusy.
// On failure the question is kept so the user can retry; on success it is
// cleared, the exchange joins the turn log, and the persisted QA history
// is re-fetched for sessions with a backing record.
func (o *Orchestrator) Generate(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if o.busy {
		o.mu.Unlock()
		return "", ErrBusy
	}
	question := strings.TrimSpace(o.question)
	if question == "" {
		o.mu.Unlock()
		notify.Error(o.notifier, "Please enter or speak a question first")
		return "", ErrEmptyQuestion
	}
	o.busy = true
	req := client.GenerateAnswerRequest{
		Question:  question,
		AIModel:   o.aiModel,
		Tone:      o.tone,
		Domain:    o.domain,
		Context:   o.contextLocked(),
		SessionID: o.sessionID,
	}
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)

	resp, err := o.gw.GenerateAnswer(ctx, req)

	o.mu.Lock()
	o.busy = false
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if err != nil {
		s = o.snapshotLocked()
		o.mu.Unlock()
		o.push(s)
		notify.Error(o.notifier, "Failed to generate answer. Please try again.")
		return "", err
	}

	o.answer = resp.Answer
	o.qaID = resp.QAID
	o.question = ""
	o.turns = append(o.turns,
		Turn{Role: "user", Content: question},
		Turn{Role: "assistant", Content: resp.Answer},
	)
	s = o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)

	// the answer has already been delivered; a failed refresh only means
	// the history panel lags until the next one
	_ = o.RefreshHistory(ctx)
	return resp.Answer, nil
}

// ExplainCode asks the backend about the current code snippet. With no
// draft question a generic explain prompt is used.
func (o *Orchestrator) ExplainCode(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if o.busy {
		o.mu.Unlock()
		return "", ErrBusy
	}
	code := strings.TrimSpace(o.code)
	if code == "" {
		o.mu.Unlock()
		notify.Error(o.notifier, "Paste some code first")
		return "", ErrEmptyQuestion
	}
	question := strings.TrimSpace(o.question)
	if question == "" {
		question = defaultCodeQuestion
	}
	o.busy = true
	req := client.CodeAssistRequest{
		Code:     code,
		Language: o.language,
		Question: question,
		AIModel:  o.aiModel,
	}
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)

	resp, err := o.gw.CodeAssist(ctx, req)

	o.mu.Lock()
	o.busy = false
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if err != nil {
		s = o.snapshotLocked()
		o.mu.Unlock()
		o.push(s)
		notify.Error(o.notifier, "Failed to analyze code. Please try again.")
		return "", err
	}

	o.answer = resp.Explanation
	o.turns = append(o.turns,
		Turn{Role: "user", Content: question + "\n\n" + code},
		Turn{Role: "assistant", Content: resp.Explanation},
	)
	s = o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)
	return resp.Explanation, nil
}

// RefreshHistory reloads the session's stored QA pairs and pushes the
// refreshed view. Sessions without a backing record are a no-op.
func (o *Orchestrator) RefreshHistory(ctx context.Context) error {
	o.mu.Lock()
	sid := o.sessionID
	o.mu.Unlock()
	if sid == "" {
		return nil
	}

	rows, err := o.gw.ListQAPairs(ctx, sid)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.history = rows
	s := o.snapshotLocked()
	o.mu.Unlock()
	o.push(s)
	return nil
}

// Close drops any in-flight result when it lands.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// contextLocked renders the most recent turns as role-prefixed lines,
// with the current code snippet appended when present.
func (o *Orchestrator) contextLocked() string {
	start := len(o.turns) - contextTurns
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, t := range o.turns[start:] {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	if code := strings.TrimSpace(o.code); code != "" {
		b.WriteString("Current code:\n")
		b.WriteString(code)
	}
	return strings.TrimSpace(b.String())
}

func (o *Orchestrator) push(s Snapshot) {
	if o.onUpdate != nil {
		o.onUpdate(s)
	}
}
