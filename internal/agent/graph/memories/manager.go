package memories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

const (
	// NoHistorySummary is returned for sessions without any prior turns.
	NoHistorySummary = "No previous conversation history."
	// SummaryUnavailable is returned when summary generation fails.
	SummaryUnavailable = "Unable to generate session summary."

	summaryInstruction     = "Summarize the key points and context from this conversation in 2-3 sentences."
	preferencesInstruction = "Extract user preferences and interests from this conversation. Return as JSON with categories like 'topics_of_interest', 'communication_style', 'preferred_detail_level', etc."
)

// Manager layers derived memory (rolling summaries, inferred preferences,
// facts, long-term notes) on top of the raw session record log.
type Manager struct {
	repo            model.MemoryRepository
	utility         einomodel.BaseChatModel
	summaryMaxTurns int
}

func NewManager(repo model.MemoryRepository, utility einomodel.BaseChatModel, cfg model.MemoryConfig) *Manager {
	maxTurns := cfg.SummaryMaxTurns
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Manager{
		repo:            repo,
		utility:         utility,
		summaryMaxTurns: maxTurns,
	}
}

// AppendTurn persists one transcript entry with the current timestamp.
func (m *Manager) AppendTurn(ctx context.Context, sessionID string, role model.Role, content string, metadata map[string]any) error {
	return m.repo.AppendTurn(ctx, model.ChatTurn{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	})
}

// History returns the ordered session transcript; limit <= 0 means all.
func (m *Manager) History(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	return m.repo.History(ctx, sessionID, limit)
}

// Summary produces a rolling summary of the transcript tail. Failures degrade
// to fixed fallback strings and never block the turn.
func (m *Manager) Summary(ctx context.Context, turns []model.ChatTurn) string {
	if len(turns) == 0 {
		return NoHistorySummary
	}

	tail := turns
	if len(tail) > m.summaryMaxTurns {
		tail = tail[len(tail)-m.summaryMaxTurns:]
	}

	out, err := m.utility.Generate(ctx, []*schema.Message{
		schema.SystemMessage(summaryInstruction),
		schema.UserMessage(fmt.Sprintf("Conversation:\n%s", renderTranscript(tail))),
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to generate session summary")
		return SummaryUnavailable
	}
	return out.Content
}

// Preferences infers user preferences from the whole transcript. A non-JSON
// model output is kept under raw_preferences; failures yield nil.
func (m *Manager) Preferences(ctx context.Context, turns []model.ChatTurn) model.Preferences {
	if len(turns) == 0 {
		return nil
	}

	out, err := m.utility.Generate(ctx, []*schema.Message{
		schema.SystemMessage(preferencesInstruction),
		schema.UserMessage(fmt.Sprintf("Conversation:\n%s", renderTranscript(turns))),
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to extract user preferences")
		return nil
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(out.Content), &prefs); err != nil {
		return model.Preferences{"raw_preferences": out.Content}
	}
	return prefs
}

// StoreFacts appends important facts learned during the session.
func (m *Manager) StoreFacts(ctx context.Context, sessionID string, facts []string) error {
	for _, fact := range facts {
		rec := model.SessionMemoryRecord{
			SessionID: sessionID,
			Type:      model.RecordTypeImportantFact,
			Content:   fact,
			Timestamp: time.Now().UTC(),
		}
		if err := m.repo.AppendRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Facts returns the session's important facts, oldest first.
func (m *Manager) Facts(ctx context.Context, sessionID string) ([]string, error) {
	return m.repo.Facts(ctx, sessionID)
}

// StoreLongTerm appends a persistent record retrievable across sessions by
// kind.
func (m *Manager) StoreLongTerm(ctx context.Context, sessionID, kind, content string) error {
	return m.repo.AppendRecord(ctx, model.SessionMemoryRecord{
		SessionID:  sessionID,
		Type:       model.LongTermRecordType(kind),
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Persistent: true,
	})
}

// LongTerm returns persistent records of the given kind, newest first.
func (m *Manager) LongTerm(ctx context.Context, kind string, limit int) ([]model.SessionMemoryRecord, error) {
	return m.repo.LongTerm(ctx, model.LongTermRecordType(kind), limit)
}

// Clear removes every record of the session and reports whether anything was
// deleted.
func (m *Manager) Clear(ctx context.Context, sessionID string) (bool, error) {
	count, err := m.repo.Clear(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func renderTranscript(turns []model.ChatTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
