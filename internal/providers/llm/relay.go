package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Relay talks to a hosted multi-model relay (one API key fronting the
// gpt-* and claude-* families) over a chat-completions style endpoint.
type Relay struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewRelay(baseURL, apiKey, model string) *Relay {
	return &Relay{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (r *Relay) Close() error { return nil }

type relayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type relayRequest struct {
	Model    string         `json:"model"`
	Messages []relayMessage `json:"messages"`
}

type relayResponse struct {
	Choices []struct {
		Message relayMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r *Relay) Complete(ctx context.Context, system, prompt string) (string, error) {
	msgs := []relayMessage{}
	if system != "" {
		msgs = append(msgs, relayMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, relayMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(relayRequest{Model: r.model, Messages: msgs})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var rr relayResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return "", fmt.Errorf("relay: decode response: %w", err)
	}
	if rr.Error != nil {
		return "", fmt.Errorf("relay: %s", rr.Error.Message)
	}
	if len(rr.Choices) == 0 {
		return "", fmt.Errorf("relay: empty choices")
	}
	return rr.Choices[0].Message.Content, nil
}

// StreamAnswer fakes streaming over the blocking call; the relay endpoint
// does not expose SSE through the shared key.
func (r *Relay) StreamAnswer(ctx context.Context, system, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		text, err := r.Complete(ctx, system, prompt)
		if err != nil {
			errs <- err
			return
		}
		out <- text
	}()

	return out, errs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
