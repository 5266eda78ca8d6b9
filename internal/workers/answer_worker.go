package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/stt"
	"github.com/Geeklady55/Interview-assistant1/internal/services"
)

// AnswerWorkerPool drains the live interview audio stream: each chunk is
// transcribed, and final chunks get a generated answer streamed back over
// the session's event channel.
type AnswerWorkerPool struct {
	Redis      *redis.Client
	Chunks     services.ChunkService
	Sessions   services.SessionService
	NumWorkers int

	STT stt.Provider
	LLM *llm.Router

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func EventsChannel(sessionID string) string { return "live:" + sessionID + ":events" }
func StatusChannel(sessionID string) string { return "live:" + sessionID + ":status" }

func (p *AnswerWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Chunks == nil || p.STT == nil || p.LLM == nil {
		return errors.New("AnswerWorkerPool missing dependency: Redis/Chunks/STT/LLM must be set")
	}
	if p.Stream == "" {
		p.Stream = "interview:audio"
	}
	if p.Group == "" {
		p.Group = "answer-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "w"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnswerWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnswerWorkerPool) publishStatus(ctx context.Context, sessionID, status, message string, chunkIndex int64) {
	payload, _ := json.Marshal(map[string]any{
		"type":        "status",
		"status":      status,
		"message":     message,
		"chunk_index": chunkIndex,
	})
	_ = p.Redis.Publish(ctx, StatusChannel(sessionID), string(payload)).Err()
}

func (p *AnswerWorkerPool) publishEvent(ctx context.Context, sessionID string, event map[string]any) {
	payload, _ := json.Marshal(event)
	_ = p.Redis.Publish(ctx, EventsChannel(sessionID), string(payload)).Err()
}

func (p *AnswerWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	chunkIndexStr := getStr("chunk_index")
	if sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)
	isFinal := getStr("is_final") == "true"

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	audio, err := services.DecodeAudio(getStr("audio_base64"))
	if err != nil || len(audio) == 0 {
		log.WithError(err).Warn("base64 decode failed")
		p.publishStatus(ctx, sessionID, "failed", "invalid audio_base64", chunkIndex)
		return
	}

	// STT
	_ = p.Chunks.MarkSTT(ctx, sessionID, chunkIndex, "", 0, models.ChunkProcessing)
	p.publishStatus(ctx, sessionID, "processing", "transcribing", chunkIndex)

	text, conf, err := p.STT.Transcribe(ctx, audio, getStr("language"))
	if err != nil {
		log.WithError(err).Error("stt failed")
		_ = p.Chunks.MarkSTT(ctx, sessionID, chunkIndex, "", 0, models.ChunkFailed)
		p.publishStatus(ctx, sessionID, "failed", "transcription failed", chunkIndex)
		return
	}

	_ = p.Chunks.MarkSTT(ctx, sessionID, chunkIndex, text, conf, models.ChunkDone)
	p.publishEvent(ctx, sessionID, map[string]any{
		"type":        "transcript",
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
		"is_final":    isFinal,
	})

	// Interim chunks only feed the caption; answers are generated once the
	// question is complete.
	if !isFinal || strings.TrimSpace(text) == "" {
		_ = p.Chunks.MarkAnswer(ctx, sessionID, chunkIndex, "", models.ChunkDone, 0)
		return
	}

	start := time.Now()
	_ = p.Chunks.MarkAnswer(ctx, sessionID, chunkIndex, "", models.ChunkProcessing, 0)
	p.publishStatus(ctx, sessionID, "processing", "generating answer", chunkIndex)

	domain := models.DomainGeneral
	tone := models.ToneProfessional
	pc := services.PromptContext{}
	if p.Sessions != nil {
		if sess, err := p.Sessions.Get(ctx, sessionID); err == nil {
			domain = sess.Domain
			pc = services.PromptContext{
				JobDescription: sess.JobDescription,
				Resume:         sess.Resume,
				CompanyName:    sess.CompanyName,
				RoleTitle:      sess.RoleTitle,
			}
		}
	}

	system := services.AnswerSystemPrompt(domain, tone, pc)
	chunks, errs := p.LLM.StreamAnswer(ctx, getStr("ai_model"), system, text)

	full := strings.Builder{}
	seq := int64(0)
	for chunk := range chunks {
		seq++
		full.WriteString(chunk)
		p.publishEvent(ctx, sessionID, map[string]any{
			"type":        "answer_chunk",
			"chunk_index": chunkIndex,
			"seq":         seq,
			"chunk":       chunk,
		})
	}

	var streamErr error
	select {
	case streamErr = <-errs:
	default:
	}
	if streamErr != nil {
		log.WithError(streamErr).Error("answer stream failed")
		_ = p.Chunks.MarkAnswer(ctx, sessionID, chunkIndex, "", models.ChunkFailed, time.Since(start).Milliseconds())
		p.publishStatus(ctx, sessionID, "failed", "answer generation failed", chunkIndex)
		return
	}

	answer := full.String()
	procMS := time.Since(start).Milliseconds()
	_ = p.Chunks.MarkAnswer(ctx, sessionID, chunkIndex, answer, models.ChunkDone, procMS)

	p.publishEvent(ctx, sessionID, map[string]any{
		"type":               "answer_complete",
		"chunk_index":        chunkIndex,
		"answer":             answer,
		"processing_time_ms": procMS,
	})
	p.publishStatus(ctx, sessionID, "done", "chunk processed", chunkIndex)
}
