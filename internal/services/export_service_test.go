package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeklady55/Interview-assistant1/internal/cache"
	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

func exportFixture(t *testing.T) (ExportService, string) {
	t.Helper()
	_, rdb := testRedis(t)
	sessionRepo := newFakeSessionRepo()
	qaRepo := &fakeQARepo{}
	sessions := NewSessionService(sessionRepo, qaRepo)
	qa := NewQAService(qaRepo)

	sess, err := sessions.Create(context.Background(), CreateSessionInput{
		Name:          "Initech onsite",
		InterviewType: models.InterviewVideo,
		Domain:        models.DomainBackend,
		CompanyName:   "Initech",
		RoleTitle:     "Backend Engineer",
	})
	require.NoError(t, err)
	_, err = qa.Record(context.Background(), sess.ID, "What is a mutex?", "A mutual exclusion lock.", models.ModelGemini, models.ToneProfessional, models.DomainBackend)
	require.NoError(t, err)

	return NewExportService(sessions, qa, cache.NewRedisCache(rdb)), sess.ID
}

func TestExportJSONPayload(t *testing.T) {
	svc, sid := exportFixture(t)

	payload, rendered, err := svc.Export(context.Background(), sid, ExportJSON)
	require.NoError(t, err)
	assert.Empty(t, rendered)
	assert.Equal(t, "Initech onsite", payload.Session.Name)
	require.Len(t, payload.QAPairs, 1)
	assert.False(t, payload.ExportedAt.IsZero())
}

func TestExportMarkdownRendering(t *testing.T) {
	svc, sid := exportFixture(t)

	_, rendered, err := svc.Export(context.Background(), sid, ExportMarkdown)
	require.NoError(t, err)
	assert.Contains(t, rendered, "# Initech onsite")
	assert.Contains(t, rendered, "- Company: Initech")
	assert.Contains(t, rendered, "## Q1: What is a mutex?")
	assert.Contains(t, rendered, "A mutual exclusion lock.")
	assert.Contains(t, rendered, models.ModelGemini)
}

func TestExportMarkdownEmptyHistory(t *testing.T) {
	_, rdb := testRedis(t)
	sessionRepo := newFakeSessionRepo()
	qaRepo := &fakeQARepo{}
	sessions := NewSessionService(sessionRepo, qaRepo)
	sess, err := sessions.Create(context.Background(), CreateSessionInput{
		Name:          "fresh",
		InterviewType: models.InterviewPhone,
		Domain:        models.DomainGeneral,
	})
	require.NoError(t, err)

	svc := NewExportService(sessions, NewQAService(qaRepo), cache.NewRedisCache(rdb))
	_, rendered, err := svc.Export(context.Background(), sess.ID, ExportMarkdown)
	require.NoError(t, err)
	assert.Contains(t, rendered, "_No questions recorded._")
}

func TestExportInvalidFormat(t *testing.T) {
	svc, sid := exportFixture(t)
	_, _, err := svc.Export(context.Background(), sid, "pdf")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestExportUnknownSession(t *testing.T) {
	svc, _ := exportFixture(t)
	_, _, err := svc.Export(context.Background(), "missing", ExportJSON)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
