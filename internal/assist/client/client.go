// Package client is the typed HTTP client for the assistant backend. The
// agent talks to the backend only through this package, so transport
// details and error decoding stay in one place.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

const defaultTimeout = 150 * time.Second

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type Session struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	InterviewType        string    `json:"interview_type"`
	Domain               string    `json:"domain"`
	JobDescription       string    `json:"job_description,omitempty"`
	Resume               string    `json:"resume,omitempty"`
	CompanyName          string    `json:"company_name,omitempty"`
	RoleTitle            string    `json:"role_title,omitempty"`
	DurationLimitMinutes int       `json:"duration_limit_minutes,omitempty"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type CreateSessionRequest struct {
	Name                 string `json:"name"`
	InterviewType        string `json:"interview_type"`
	Domain               string `json:"domain"`
	JobDescription       string `json:"job_description,omitempty"`
	Resume               string `json:"resume,omitempty"`
	CompanyName          string `json:"company_name,omitempty"`
	RoleTitle            string `json:"role_title,omitempty"`
	DurationLimitMinutes int    `json:"duration_limit_minutes,omitempty"`
}

type QAPair struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	AIModel   string    `json:"ai_model"`
	Tone      string    `json:"tone"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerateAnswerRequest struct {
	Question  string `json:"question"`
	AIModel   string `json:"ai_model"`
	Tone      string `json:"tone"`
	Domain    string `json:"domain"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type GenerateAnswerResponse struct {
	Answer  string `json:"answer"`
	AIModel string `json:"ai_model"`
	QAID    string `json:"qa_id,omitempty"`
}

type CodeAssistRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Question string `json:"question"`
	AIModel  string `json:"ai_model"`
}

type CodeAssistResponse struct {
	Explanation string `json:"explanation"`
	AIModel     string `json:"ai_model"`
}

type TranscribeRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`
}

type TranscribeResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

type Settings struct {
	DefaultAIModel      string  `json:"default_ai_model"`
	DefaultTone         string  `json:"default_tone"`
	DefaultDomain       string  `json:"default_domain"`
	StealthOpacity      float64 `json:"stealth_opacity"`
	AutoCopy            bool    `json:"auto_copy"`
	HighAccuracyCapture bool    `json:"high_accuracy_capture"`
}

type MockQuestion struct {
	Category   string `json:"category"`
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"`
	Tips       string `json:"tips,omitempty"`
}

type MockQuestionsRequest struct {
	Domain         string `json:"domain"`
	JobDescription string `json:"job_description,omitempty"`
	Resume         string `json:"resume,omitempty"`
	Count          int    `json:"count"`
	AIModel        string `json:"ai_model"`
}

type MockQuestionsResponse struct {
	Questions []MockQuestion `json:"questions"`
	AIModel   string         `json:"ai_model"`
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) EndSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/sessions/"+id+"/end", nil, nil)
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

func (c *Client) ListQAPairs(ctx context.Context, sessionID string) ([]QAPair, error) {
	var out []QAPair
	if err := c.do(ctx, http.MethodGet, "/api/qa-pairs/"+sessionID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteQAPair(ctx context.Context, qaID string) error {
	return c.do(ctx, http.MethodDelete, "/api/qa-pairs/"+qaID, nil, nil)
}

func (c *Client) GenerateAnswer(ctx context.Context, req GenerateAnswerRequest) (*GenerateAnswerResponse, error) {
	var out GenerateAnswerResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-answer", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CodeAssist(ctx context.Context, req CodeAssistRequest) (*CodeAssistResponse, error) {
	var out CodeAssistResponse
	if err := c.do(ctx, http.MethodPost, "/api/code-assist", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error) {
	var out TranscribeResponse
	if err := c.do(ctx, http.MethodPost, "/api/transcribe", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateMockQuestions(ctx context.Context, req MockQuestionsRequest) (*MockQuestionsResponse, error) {
	var out MockQuestionsResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-mock-questions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s Settings) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodPut, "/api/settings", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportSession returns the raw export body; format is "json" or "markdown".
func (c *Client) ExportSession(ctx context.Context, sessionID, format string) ([]byte, error) {
	const op = "Client.ExportSession"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/export?format="+format, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "backend unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(op, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := "Client." + method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to encode request", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(op, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to decode response", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, "Client.newRequest", "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// decodeAPIError rebuilds the backend's error contract so callers can
// branch on the same codes the server uses.
func decodeAPIError(op string, status int, body []byte) error {
	var payload struct {
		Code    utils.Code `json:"code"`
		Message string     `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Code != "" {
		return utils.E(payload.Code, op, payload.Message, nil)
	}
	return utils.E(utils.CodeInternal, op, fmt.Sprintf("unexpected status %d", status), nil)
}
