package nodes

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

func TestTrimTail(t *testing.T) {
	turns := []model.ChatTurn{
		{Content: "a"}, {Content: "b"}, {Content: "c"}, {Content: "d"},
	}

	got := trimTail(turns, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "d", got[1].Content)

	assert.Len(t, trimTail(turns, 0), 4)
	assert.Len(t, trimTail(turns, 10), 4)
}

func TestToSchemaMessagesStripsNonConversationRoles(t *testing.T) {
	turns := []model.ChatTurn{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.Role("system"), Content: "should drop"},
		{Role: model.RoleAssistant, Content: "hello"},
	}

	got := toSchemaMessages(turns)
	require.Len(t, got, 2)
	assert.Equal(t, schema.User, got[0].Role)
	assert.Equal(t, schema.Assistant, got[1].Role)
}

func TestPlaceSystemInstructionPrependsWhenAbsent(t *testing.T) {
	msgs := []*schema.Message{schema.UserMessage("hi")}

	got := placeSystemInstruction(msgs, "be brief")
	require.Len(t, got, 2)
	assert.Equal(t, schema.System, got[0].Role)
	assert.Equal(t, "be brief", got[0].Content)
}

func TestPlaceSystemInstructionAppendsWhenPresent(t *testing.T) {
	msgs := []*schema.Message{
		schema.SystemMessage("summary"),
		schema.UserMessage("hi"),
	}

	got := placeSystemInstruction(msgs, "use the documents")
	require.Len(t, got, 3)
	assert.Equal(t, "summary", got[0].Content)
	assert.Equal(t, schema.System, got[2].Role)
	assert.Equal(t, "use the documents", got[2].Content)
}

func TestRenderNumberedDocs(t *testing.T) {
	docs := []model.RetrievedDocument{
		{Text: "first chunk"},
		{Text: "second chunk"},
	}

	got := renderNumberedDocs(docs)
	assert.Equal(t, "Document 1:\nfirst chunk\n\nDocument 2:\nsecond chunk", got)
}

func TestRenderHybridSectionsPartitionsByOrigin(t *testing.T) {
	docs := []model.RetrievedDocument{
		{Text: "semantic hit", SearchType: model.SearchTypeVector},
		{Text: "keyword hit", SearchType: model.SearchTypeText},
	}

	got := renderHybridSections(docs)
	assert.Equal(t,
		"Semantic Search Results:\nDocument 1:\nsemantic hit\n\nKeyword Search Results:\nDocument 1:\nkeyword hit",
		got)
}
