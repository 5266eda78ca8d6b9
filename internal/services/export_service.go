package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Geeklady55/Interview-assistant1/internal/cache"
	"github.com/Geeklady55/Interview-assistant1/internal/models"
	"github.com/Geeklady55/Interview-assistant1/internal/utils"
)

// Export formats.
const (
	ExportJSON     = "json"
	ExportMarkdown = "markdown"
)

const exportCacheTTL = 30 * time.Second

// SessionExport is the JSON export payload: the session plus its full QA
// history in creation order.
type SessionExport struct {
	Session    models.Session  `json:"session"`
	QAPairs    []models.QAPair `json:"qa_pairs"`
	ExportedAt time.Time       `json:"exported_at"`
}

type ExportService interface {
	// Export renders the session history. For markdown the second return
	// value holds the rendered document; for json it is empty and the
	// caller serializes the payload.
	Export(ctx context.Context, sessionID, format string) (*SessionExport, string, error)
}

type exportService struct {
	sessions SessionService
	qa       QAService
	cache    cache.Cache
}

func NewExportService(sessions SessionService, qa QAService, c cache.Cache) ExportService {
	return &exportService{sessions: sessions, qa: qa, cache: c}
}

func (s *exportService) Export(ctx context.Context, sessionID, format string) (*SessionExport, string, error) {
	const op = "ExportService.Export"

	if format != ExportJSON && format != ExportMarkdown {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "format must be json or markdown", nil)
	}

	key := "export:" + sessionID
	var payload SessionExport
	hit := false
	if s.cache != nil {
		if h, err := s.cache.GetJSON(ctx, key, &payload); err == nil && h {
			hit = true
		}
	}

	if !hit {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, "", err
		}
		pairs, err := s.qa.ListBySession(ctx, sessionID)
		if err != nil {
			return nil, "", err
		}
		payload = SessionExport{Session: *sess, QAPairs: pairs, ExportedAt: time.Now().UTC()}
		if s.cache != nil {
			_ = s.cache.SetJSON(ctx, key, &payload, exportCacheTTL)
		}
	}

	if format == ExportMarkdown {
		return &payload, renderMarkdown(&payload), nil
	}
	return &payload, "", nil
}

func renderMarkdown(e *SessionExport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", e.Session.Name)
	fmt.Fprintf(&sb, "- Interview type: %s\n", e.Session.InterviewType)
	fmt.Fprintf(&sb, "- Domain: %s\n", e.Session.Domain)
	if e.Session.CompanyName != "" {
		fmt.Fprintf(&sb, "- Company: %s\n", e.Session.CompanyName)
	}
	if e.Session.RoleTitle != "" {
		fmt.Fprintf(&sb, "- Role: %s\n", e.Session.RoleTitle)
	}
	fmt.Fprintf(&sb, "- Created: %s\n", e.Session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Exported: %s\n\n", e.ExportedAt.Format(time.RFC3339))

	if len(e.QAPairs) == 0 {
		sb.WriteString("_No questions recorded._\n")
		return sb.String()
	}

	for i, qa := range e.QAPairs {
		fmt.Fprintf(&sb, "## Q%d: %s\n\n", i+1, qa.Question)
		fmt.Fprintf(&sb, "%s\n\n", qa.Answer)
		fmt.Fprintf(&sb, "_%s · %s · %s_\n\n", qa.AIModel, qa.Tone, qa.CreatedAt.Format(time.RFC3339))
	}
	return sb.String()
}
