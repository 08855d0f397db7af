package nodes

import (
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
)

// ===== Small helpers to keep node lambdas simple/readable =====

// trimTail returns the most recent maxTurns entries of the transcript.
func trimTail(turns []model.ChatTurn, maxTurns int) []model.ChatTurn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		result := make([]model.ChatTurn, len(turns))
		copy(result, turns)
		return result
	}
	source := turns[len(turns)-maxTurns:]
	result := make([]model.ChatTurn, len(source))
	copy(result, source)
	return result
}

// toSchemaMessages reduces persisted turns to {role, content} schema messages.
// Timestamps and metadata are stripped here so they never leak into prompts.
func toSchemaMessages(turns []model.ChatTurn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return msgs
}

// placeSystemInstruction inserts the instruction into the conversation:
// prepended when no system message exists yet, appended otherwise. An
// existing system message is supplemented, never replaced.
func placeSystemInstruction(msgs []*schema.Message, instruction string) []*schema.Message {
	sys := schema.SystemMessage(instruction)
	for _, m := range msgs {
		if m != nil && m.Role == schema.System {
			return append(msgs, sys)
		}
	}
	out := make([]*schema.Message, 0, len(msgs)+1)
	out = append(out, sys)
	out = append(out, msgs...)
	return out
}
