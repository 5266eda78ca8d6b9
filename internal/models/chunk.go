package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chunk processing statuses.
const (
	ChunkPending    = "pending"
	ChunkProcessing = "processing"
	ChunkDone       = "done"
	ChunkFailed     = "failed"
)

// TranscriptChunk is one audio chunk flowing through the live interview
// pipeline. Documents expire via the TTL index on expires_at.
type TranscriptChunk struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	ChunkIndex int64              `bson:"chunk_index" json:"chunk_index"`

	AudioBase64 string `bson:"audio_base64,omitempty" json:"-"`
	IsFinal     bool   `bson:"is_final" json:"is_final"`

	Text          string  `bson:"text,omitempty" json:"text,omitempty"`
	STTConfidence float64 `bson:"stt_confidence,omitempty" json:"stt_confidence,omitempty"`
	STTStatus     string  `bson:"stt_status" json:"stt_status"`

	Answer       string `bson:"answer,omitempty" json:"answer,omitempty"`
	AnswerStatus string `bson:"answer_status" json:"answer_status"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`
	ExpiresAt        time.Time `bson:"expires_at" json:"-"`
}
