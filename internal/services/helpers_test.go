package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/providers/llm"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

// fakeProvider scripts the model response for router-backed services.
type fakeProvider struct {
	mu       sync.Mutex
	response string
	err      error
	systems  []string
	prompts  []string
}

func (p *fakeProvider) Complete(_ context.Context, system, prompt string) (string, error) {
	p.mu.Lock()
	p.systems = append(p.systems, system)
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *fakeProvider) StreamAnswer(ctx context.Context, system, prompt string) (<-chan string, <-chan error) {
	chunks := make(chan string, 1)
	errs := make(chan error, 1)
	out, err := p.Complete(ctx, system, prompt)
	if err != nil {
		errs <- err
	} else {
		chunks <- out
	}
	close(chunks)
	close(errs)
	return chunks, errs
}

func (p *fakeProvider) Close() error { return nil }

func testRouter(p llm.Provider) *llm.Router {
	return llm.NewRouter(p)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	updates  []bson.M
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) List(_ context.Context, limit int64) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, id string, set bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	r.updates = append(r.updates, set)
	if v, ok := set["is_active"]; ok {
		s.IsActive = v.(bool)
	}
	if v, ok := set["duration_limit_minutes"]; ok {
		s.DurationLimitMinutes = v.(int)
	}
	if v, ok := set["job_description"]; ok {
		s.JobDescription = v.(string)
	}
	if v, ok := set["resume"]; ok {
		s.Resume = v.(string)
	}
	if v, ok := set["company_name"]; ok {
		s.CompanyName = v.(string)
	}
	if v, ok := set["role_title"]; ok {
		s.RoleTitle = v.(string)
	}
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type fakeQARepo struct {
	mu        sync.Mutex
	rows      []models.QAPair
	insertErr error
}

func (r *fakeQARepo) Insert(_ context.Context, qa *models.QAPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows = append(r.rows, *qa)
	return nil
}

func (r *fakeQARepo) ListBySession(_ context.Context, sessionID string, _ int) ([]models.QAPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.QAPair
	for _, row := range r.rows {
		if row.SessionID == sessionID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeQARepo) GetByID(_ context.Context, id string) (*models.QAPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			cp := row
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeQARepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return utils.ErrNotFound
}

func (r *fakeQARepo) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.SessionID != sessionID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type fakeSettingsRepo struct {
	mu    sync.Mutex
	doc   *models.Settings
	reads int
}

func (r *fakeSettingsRepo) Get(context.Context) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.doc == nil {
		return nil, utils.ErrNotFound
	}
	cp := *r.doc
	return &cp, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, s *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.doc = &cp
	return nil
}
