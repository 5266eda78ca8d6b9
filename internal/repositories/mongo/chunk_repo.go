package mongo

import (
	"context"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ChunkRepository interface {
	Insert(ctx context.Context, c *models.TranscriptChunk) error
	MarkSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error
	MarkAnswer(ctx context.Context, sessionID string, chunkIndex int64, answer, status string, procMS int64) error
}

type chunkRepo struct {
	col *mongo.Collection
}

func NewChunkRepo(db *mongo.Database) ChunkRepository {
	return &chunkRepo{col: db.Collection("transcript_chunks")}
}

func (r *chunkRepo) Insert(ctx context.Context, c *models.TranscriptChunk) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = c.Timestamp.Add(24 * time.Hour)
	}
	if c.STTStatus == "" {
		c.STTStatus = models.ChunkPending
	}
	if c.AnswerStatus == "" {
		c.AnswerStatus = models.ChunkPending
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *chunkRepo) MarkSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error {
	set := bson.M{"stt_status": status}
	if text != "" {
		set["text"] = text
		set["stt_confidence"] = confidence
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": set},
	)
	return err
}

func (r *chunkRepo) MarkAnswer(ctx context.Context, sessionID string, chunkIndex int64, answer, status string, procMS int64) error {
	set := bson.M{"answer_status": status}
	if answer != "" {
		set["answer"] = answer
	}
	if procMS > 0 {
		set["processing_time_ms"] = procMS
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "chunk_index": chunkIndex},
		bson.M{"$set": set},
	)
	return err
}
