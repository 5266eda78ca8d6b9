package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
)

type fakeChunkTracker struct {
	mu       sync.Mutex
	sttMarks []string
	answers  []string
}

func (f *fakeChunkTracker) InsertAudioChunk(context.Context, string, int64, string, bool) error {
	return nil
}

func (f *fakeChunkTracker) MarkSTT(_ context.Context, _ string, _ int64, text string, _ float64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sttMarks = append(f.sttMarks, status)
	return nil
}

func (f *fakeChunkTracker) MarkAnswer(_ context.Context, _ string, _ int64, answer, status string, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == models.ChunkDone && answer != "" {
		f.answers = append(f.answers, answer)
	}
	return nil
}

type fakeSTT struct{ text string }

func (f *fakeSTT) Transcribe(context.Context, []byte, string) (string, float64, error) {
	return f.text, 0.9, nil
}

func (f *fakeSTT) Close() error { return nil }

type fakeProvider struct{ chunks []string }

func (p *fakeProvider) Complete(context.Context, string, string) (string, error) {
	out := ""
	for _, c := range p.chunks {
		out += c
	}
	return out, nil
}

func (p *fakeProvider) StreamAnswer(context.Context, string, string) (<-chan string, <-chan error) {
	chunks := make(chan string, len(p.chunks))
	errs := make(chan error, 1)
	for _, c := range p.chunks {
		chunks <- c
	}
	close(chunks)
	close(errs)
	return chunks, errs
}

func (p *fakeProvider) Close() error { return nil }

func collectEvents(t *testing.T, rdb *redis.Client, channel string) (<-chan map[string]any, func()) {
	t.Helper()
	sub := rdb.Subscribe(context.Background(), channel)
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	out := make(chan map[string]any, 32)
	go func() {
		for m := range sub.Channel() {
			var ev map[string]any
			if json.Unmarshal([]byte(m.Payload), &ev) == nil {
				out <- ev
			}
		}
	}()
	return out, func() { sub.Close() }
}

func TestPoolAnswersFinalChunk(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	tracker := &fakeChunkTracker{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	pool := &AnswerWorkerPool{
		Redis:      rdb,
		Chunks:     tracker,
		NumWorkers: 1,
		STT:        &fakeSTT{text: "what is eventual consistency"},
		LLM:        llm.NewRouter(&fakeProvider{chunks: []string{"Replicas ", "converge."}}),
		Logger:     log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pool.Start(ctx))

	events, stop := collectEvents(t, rdb, EventsChannel("s1"))
	defer stop()

	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: pool.Stream,
		Values: map[string]any{
			"session_id":   "s1",
			"chunk_index":  "1",
			"audio_base64": base64.StdEncoding.EncodeToString([]byte("pcm")),
			"language":     "en-US",
			"ai_model":     models.ModelGemini,
			"is_final":     "true",
		},
	}).Err())

	var transcript, complete map[string]any
	var answerChunks []string
	deadline := time.After(5 * time.Second)
	for complete == nil {
		select {
		case ev := <-events:
			switch ev["type"] {
			case "transcript":
				transcript = ev
			case "answer_chunk":
				answerChunks = append(answerChunks, ev["chunk"].(string))
			case "answer_complete":
				complete = ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for answer_complete")
		}
	}

	require.NotNil(t, transcript)
	assert.Equal(t, "what is eventual consistency", transcript["text"])
	assert.Equal(t, []string{"Replicas ", "converge."}, answerChunks)
	assert.Equal(t, "Replicas converge.", complete["answer"])

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	assert.Equal(t, []string{"Replicas converge."}, tracker.answers)
	assert.Contains(t, tracker.sttMarks, models.ChunkProcessing)
	assert.Contains(t, tracker.sttMarks, models.ChunkDone)
}

func TestPoolSkipsAnswerForInterimChunk(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	tracker := &fakeChunkTracker{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	pool := &AnswerWorkerPool{
		Redis:      rdb,
		Chunks:     tracker,
		NumWorkers: 1,
		STT:        &fakeSTT{text: "partial words"},
		LLM:        llm.NewRouter(&fakeProvider{chunks: []string{"should not stream"}}),
		Logger:     log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pool.Start(ctx))

	events, stop := collectEvents(t, rdb, EventsChannel("s2"))
	defer stop()

	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: pool.Stream,
		Values: map[string]any{
			"session_id":   "s2",
			"chunk_index":  "1",
			"audio_base64": base64.StdEncoding.EncodeToString([]byte("pcm")),
			"is_final":     "false",
		},
	}).Err())

	select {
	case ev := <-events:
		assert.Equal(t, "transcript", ev["type"])
		assert.Equal(t, false, ev["is_final"])
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for transcript event")
	}

	// no answer follows an interim chunk
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after interim transcript: %v", ev)
	case <-time.After(300 * time.Millisecond):
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	assert.Empty(t, tracker.answers)
}

func TestStartValidatesDependencies(t *testing.T) {
	pool := &AnswerWorkerPool{}
	assert.Error(t, pool.Start(context.Background()))
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "live:abc:events", EventsChannel("abc"))
	assert.Equal(t, "live:abc:status", StatusChannel("abc"))
}
