package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/providers/stt"
	"github.com/Geeklady55/Interview-assistant1/internal/storage"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const archiveTimeout = 30 * time.Second

type TranscribeInput struct {
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"`
}

type TranscribeOutput struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

type TranscribeService interface {
	Transcribe(ctx context.Context, in TranscribeInput) (*TranscribeOutput, error)
}

type transcribeService struct {
	stt      stt.Provider
	archiver storage.Uploader // optional
	log      *logrus.Logger
}

func NewTranscribeService(provider stt.Provider, archiver storage.Uploader, log *logrus.Logger) TranscribeService {
	return &transcribeService{stt: provider, archiver: archiver, log: log}
}

// DecodeAudio strips an optional data URL prefix and base64-decodes the
// payload.
func DecodeAudio(audioBase64 string) ([]byte, error) {
	raw := audioBase64
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[i+1:] // strip data:...;base64,
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
}

func normalizeLanguage(v string) string {
	switch strings.TrimSpace(v) {
	case "", "en", "en-US":
		return "en-US"
	default:
		return strings.TrimSpace(v)
	}
}

func (s *transcribeService) Transcribe(ctx context.Context, in TranscribeInput) (*TranscribeOutput, error) {
	const op = "TranscribeService.Transcribe"

	if in.AudioBase64 == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "audio_base64 is required", nil)
	}
	audio, err := DecodeAudio(in.AudioBase64)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid audio_base64", err)
	}
	if len(audio) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty audio", nil)
	}

	text, _, err := s.stt.Transcribe(ctx, audio, normalizeLanguage(in.Language))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "transcription failed", err)
	}

	if s.archiver != nil {
		// best-effort archival for quality review; never fails the request
		go func(audio []byte) {
			name := "transcripts/" + uuid.NewString() + ".raw"
			bg, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()
			if _, err := s.archiver.Upload(bg, name, "application/octet-stream", bytes.NewReader(audio)); err != nil {
				s.log.WithError(err).Warn("audio archival failed")
			}
		}(audio)
	}

	return &TranscribeOutput{Success: true, Text: text}, nil
}
