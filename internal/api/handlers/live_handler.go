package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Geeklady55/Interview-assistant1/internal/services"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
	"github.com/Geeklady55/Interview-assistant1/internal/workers"
)

// LiveHandler bridges the live interview WebSocket: audio chunks in, STT
// transcripts and generated answers out.
type LiveHandler struct {
	sessions services.SessionService
	chunks   services.ChunkService
	redis    *redis.Client
	stream   string
	upgrader websocket.Upgrader
}

func NewLiveHandler(sessions services.SessionService, chunks services.ChunkService, rdb *redis.Client) *LiveHandler {
	return &LiveHandler{
		sessions: sessions,
		chunks:   chunks,
		redis:    rdb,
		stream:   "interview:audio",
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type liveClientMsg struct {
	Type        string `json:"type"`
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`
	AIModel     string `json:"ai_model"`
	IsFinal     bool   `json:"is_final"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *LiveHandler) SessionWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveHandler.SessionWS", "missing session_id", nil))
		return
	}

	if _, err := h.sessions.Get(c.Request.Context(), sessionID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, workers.EventsChannel(sessionID), workers.StatusChannel(sessionID))
	defer pubsub.Close()

	// reader: WS -> Redis stream (+ chunk insert)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg liveClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			switch msg.Type {
			case "audio_chunk":
				if msg.ChunkIndex <= 0 {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"chunk_index must be > 0"}`))
					continue
				}
				if msg.AudioBase64 == "" {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 required"}`))
					continue
				}

				if err := h.chunks.InsertAudioChunk(ctx, sessionID, msg.ChunkIndex, msg.AudioBase64, msg.IsFinal); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"INTERNAL","message":"failed to record chunk"}`))
					continue
				}

				fields := map[string]any{
					"session_id":   sessionID,
					"chunk_index":  strconv.FormatInt(msg.ChunkIndex, 10),
					"audio_base64": msg.AudioBase64,
					"language":     msg.Language,
					"ai_model":     msg.AIModel,
					"is_final":     strconv.FormatBool(msg.IsFinal),
					"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
				}
				if err := h.redis.XAdd(ctx, &redis.XAddArgs{Stream: h.stream, Values: fields}).Err(); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
					continue
				}

			case "end_session":
				_ = h.sessions.End(ctx, sessionID)
				_ = wc.writeText([]byte(`{"type":"status","status":"ended","message":"session ended"}`))
				return

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis pub/sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
