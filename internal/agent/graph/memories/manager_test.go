package memories

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/repo"
)

type fakeUtilityModel struct {
	reply string
	err   error
}

func (f *fakeUtilityModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeUtilityModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func newTestManager(utility einomodel.BaseChatModel) *Manager {
	return NewManager(repo.NewInMemoryRepository(), utility, model.MemoryConfig{SummaryMaxTurns: 10})
}

func TestAppendTurnAndHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&fakeUtilityModel{})

	require.NoError(t, m.AppendTurn(ctx, "s1", model.RoleUser, "hello", nil))
	require.NoError(t, m.AppendTurn(ctx, "s1", model.RoleAssistant, "hi there", nil))
	require.NoError(t, m.AppendTurn(ctx, "s2", model.RoleUser, "other session", nil))

	turns, err := m.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "hi there", turns[1].Content)
	assert.False(t, turns[0].Timestamp.IsZero())
}

func TestSummaryEmptyHistory(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{reply: "should not be called"})

	assert.Equal(t, NoHistorySummary, m.Summary(context.Background(), nil))
}

func TestSummaryModelFailure(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{err: errors.New("unavailable")})

	turns := []model.ChatTurn{{Role: model.RoleUser, Content: "hello"}}
	assert.Equal(t, SummaryUnavailable, m.Summary(context.Background(), turns))
}

func TestSummarySuccess(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{reply: "User asked about pricing."})

	turns := []model.ChatTurn{{Role: model.RoleUser, Content: "how much does it cost?"}}
	assert.Equal(t, "User asked about pricing.", m.Summary(context.Background(), turns))
}

func TestPreferencesNonJSONKeptRaw(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{reply: "the user likes short answers"})

	turns := []model.ChatTurn{{Role: model.RoleUser, Content: "keep it brief"}}
	prefs := m.Preferences(context.Background(), turns)

	require.NotNil(t, prefs)
	assert.Equal(t, "the user likes short answers", prefs["raw_preferences"])
}

func TestPreferencesStructured(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{reply: `{"topics_of_interest": ["databases"]}`})

	turns := []model.ChatTurn{{Role: model.RoleUser, Content: "tell me about databases"}}
	prefs := m.Preferences(context.Background(), turns)

	require.NotNil(t, prefs)
	assert.Contains(t, prefs, "topics_of_interest")
}

func TestPreferencesFailureYieldsNil(t *testing.T) {
	m := newTestManager(&fakeUtilityModel{err: errors.New("unavailable")})

	turns := []model.ChatTurn{{Role: model.RoleUser, Content: "hello"}}
	assert.Nil(t, m.Preferences(context.Background(), turns))
}

func TestFactsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&fakeUtilityModel{})

	require.NoError(t, m.StoreFacts(ctx, "s1", []string{"prefers Go", "works with Atlas"}))

	facts, err := m.Facts(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"prefers Go", "works with Atlas"}, facts)
}

func TestLongTermRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&fakeUtilityModel{})

	require.NoError(t, m.StoreLongTerm(ctx, "s1", "user_preference", "dark mode"))
	require.NoError(t, m.StoreLongTerm(ctx, "s2", "user_preference", "metric units"))

	recs, err := m.LongTerm(ctx, "user_preference", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.True(t, rec.Persistent)
		assert.Equal(t, model.LongTermRecordType("user_preference"), rec.Type)
	}
}

func TestClearReportsWhetherAnythingRemoved(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&fakeUtilityModel{})

	cleared, err := m.Clear(ctx, "empty-session")
	require.NoError(t, err)
	assert.False(t, cleared)

	require.NoError(t, m.AppendTurn(ctx, "s1", model.RoleUser, "hello", nil))
	cleared, err = m.Clear(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cleared)

	turns, err := m.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
