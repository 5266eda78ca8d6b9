package services

import (
	"context"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	mongorepo "github.com/Geeklady55/Interview-assistant1/internal/repositories/mongo"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

// ChunkService tracks live pipeline chunks through their STT and answer
// stages.
type ChunkService interface {
	InsertAudioChunk(ctx context.Context, sessionID string, chunkIndex int64, audioBase64 string, isFinal bool) error
	MarkSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error
	MarkAnswer(ctx context.Context, sessionID string, chunkIndex int64, answer, status string, procMS int64) error
}

type chunkService struct {
	chunks mongorepo.ChunkRepository
}

func NewChunkService(chunks mongorepo.ChunkRepository) ChunkService {
	return &chunkService{chunks: chunks}
}

func (s *chunkService) InsertAudioChunk(ctx context.Context, sessionID string, chunkIndex int64, audioBase64 string, isFinal bool) error {
	const op = "ChunkService.InsertAudioChunk"

	if sessionID == "" || chunkIndex <= 0 || audioBase64 == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id, chunk_index and audio_base64 are required", nil)
	}
	c := &models.TranscriptChunk{
		SessionID:   sessionID,
		ChunkIndex:  chunkIndex,
		AudioBase64: audioBase64,
		IsFinal:     isFinal,
	}
	if err := s.chunks.Insert(ctx, c); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert transcript chunk", err)
	}
	return nil
}

func (s *chunkService) MarkSTT(ctx context.Context, sessionID string, chunkIndex int64, text string, confidence float64, status string) error {
	return s.chunks.MarkSTT(ctx, sessionID, chunkIndex, text, confidence, status)
}

func (s *chunkService) MarkAnswer(ctx context.Context, sessionID string, chunkIndex int64, answer, status string, procMS int64) error {
	return s.chunks.MarkAnswer(ctx, sessionID, chunkIndex, answer, status, procMS)
}
