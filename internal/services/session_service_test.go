package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

func newSessionFixture(t *testing.T) (SessionService, *fakeSessionRepo, *fakeQARepo) {
	t.Helper()
	sessionRepo := newFakeSessionRepo()
	qaRepo := &fakeQARepo{}
	return NewSessionService(sessionRepo, qaRepo), sessionRepo, qaRepo
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateSessionInput
	}{
		{"blank name", CreateSessionInput{Name: "  ", InterviewType: models.InterviewCoding, Domain: models.DomainGeneral}},
		{"bad type", CreateSessionInput{Name: "s", InterviewType: "onsite", Domain: models.DomainGeneral}},
		{"bad domain", CreateSessionInput{Name: "s", InterviewType: models.InterviewCoding, Domain: "pottery"}},
		{"negative limit", CreateSessionInput{Name: "s", InterviewType: models.InterviewCoding, Domain: models.DomainGeneral, DurationLimitMinutes: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
		})
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	sess, err := svc.Create(context.Background(), CreateSessionInput{
		Name:          "  FAANG practice  ",
		InterviewType: models.InterviewMock,
		Domain:        models.DomainSystemDesign,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "FAANG practice", sess.Name)
	assert.True(t, sess.IsActive)
	assert.Zero(t, sess.DurationLimitMinutes, "0 means untimed")
}

func TestGetSessionNotFound(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestUpdateSessionPartial(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, CreateSessionInput{
		Name:          "s",
		InterviewType: models.InterviewVideo,
		Domain:        models.DomainBackend,
		CompanyName:   "Initech",
	})
	require.NoError(t, err)

	role := "SRE"
	limit := 45
	updated, err := svc.Update(ctx, sess.ID, models.SessionUpdate{RoleTitle: &role, DurationLimitMinutes: &limit})
	require.NoError(t, err)
	assert.Equal(t, "SRE", updated.RoleTitle)
	assert.Equal(t, 45, updated.DurationLimitMinutes)
	assert.Equal(t, "Initech", updated.CompanyName, "untouched fields survive")

	bad := -1
	_, err = svc.Update(ctx, sess.ID, models.SessionUpdate{DurationLimitMinutes: &bad})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestEndSession(t *testing.T) {
	svc, repo, _ := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, CreateSessionInput{Name: "s", InterviewType: models.InterviewPhone, Domain: models.DomainGeneral})
	require.NoError(t, err)

	require.NoError(t, svc.End(ctx, sess.ID))
	got, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.True(t, utils.IsCode(svc.End(ctx, "missing"), utils.CodeNotFound))
}

func TestDeleteSessionCascades(t *testing.T) {
	svc, _, qaRepo := newSessionFixture(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, CreateSessionInput{Name: "s", InterviewType: models.InterviewCoding, Domain: models.DomainDSA})
	require.NoError(t, err)

	qa := NewQAService(qaRepo)
	_, err = qa.Record(ctx, sess.ID, "q", "a", models.DefaultAIModel, models.ToneProfessional, models.DomainDSA)
	require.NoError(t, err)
	_, err = qa.Record(ctx, "other-session", "q2", "a2", models.DefaultAIModel, models.ToneProfessional, models.DomainDSA)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess.ID))

	_, err = svc.Get(ctx, sess.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	left, err := qaRepo.ListBySession(ctx, "other-session", 0)
	require.NoError(t, err)
	assert.Len(t, left, 1, "other sessions' history is untouched")
	gone, err := qaRepo.ListBySession(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, gone)
}
