// Package analytics derives conversation statistics and topical insight
// from a session transcript.
package analytics

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

const (
	// StatusNoHistory marks an analysis of a session with no turns.
	StatusNoHistory = "no_history"
	// StatusAnalyzed marks a completed analysis.
	StatusAnalyzed = "analyzed"

	// TopicsUnavailable is reported when topic extraction fails.
	TopicsUnavailable = "Unable to extract topics"

	topicsInstruction = "Identify the main topics discussed in this conversation. Return a short list, one topic per line, without numbering or bullets."
)

// Question type labels keyed by leading interrogative.
const (
	QuestionFactual     = "factual"
	QuestionProcedural  = "procedural"
	QuestionExplanatory = "explanatory"
	QuestionGeneral     = "general"
)

// ContextAnalysis summarizes a session transcript.
type ContextAnalysis struct {
	Status             string         `json:"status"`
	TotalMessages      int            `json:"total_messages,omitempty"`
	UserMessages       int            `json:"user_messages,omitempty"`
	AssistantMessages  int            `json:"assistant_messages,omitempty"`
	MainTopics         []string       `json:"main_topics,omitempty"`
	QuestionTypes      map[string]int `json:"question_types,omitempty"`
	MostCommonQuestion string         `json:"most_common_question_type,omitempty"`
}

// Analyzer computes transcript statistics, using the utility model for topic
// extraction.
type Analyzer struct {
	utility einomodel.BaseChatModel
}

func NewAnalyzer(utility einomodel.BaseChatModel) *Analyzer {
	return &Analyzer{utility: utility}
}

// AnalyzeContext inspects the transcript and reports message counts, main
// topics, and the question-type distribution. Topic extraction failures
// degrade to a fixed marker; classification is local and never fails.
func (a *Analyzer) AnalyzeContext(ctx context.Context, turns []model.ChatTurn) ContextAnalysis {
	if len(turns) == 0 {
		return ContextAnalysis{Status: StatusNoHistory}
	}

	analysis := ContextAnalysis{
		Status:        StatusAnalyzed,
		TotalMessages: len(turns),
	}
	for _, turn := range turns {
		switch turn.Role {
		case model.RoleUser:
			analysis.UserMessages++
		case model.RoleAssistant:
			analysis.AssistantMessages++
		}
	}

	analysis.MainTopics = a.extractTopics(ctx, turns)
	analysis.QuestionTypes, analysis.MostCommonQuestion = classifyQuestions(turns)

	return analysis
}

func (a *Analyzer) extractTopics(ctx context.Context, turns []model.ChatTurn) []string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}

	out, err := a.utility.Generate(ctx, []*schema.Message{
		schema.SystemMessage(topicsInstruction),
		schema.UserMessage(fmt.Sprintf("Conversation:\n%s", b.String())),
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to extract conversation topics")
		return []string{TopicsUnavailable}
	}

	var topics []string
	for _, line := range strings.Split(out.Content, "\n") {
		if topic := strings.TrimSpace(line); topic != "" {
			topics = append(topics, topic)
		}
	}
	if len(topics) == 0 {
		return []string{TopicsUnavailable}
	}
	return topics
}

// classifyQuestions buckets user questions by the interrogative they contain
// (what before how before why) and reports the distribution plus the most
// common bucket. Ties keep the bucket encountered first in transcript order.
func classifyQuestions(turns []model.ChatTurn) (map[string]int, string) {
	counts := make(map[string]int)
	var order []string

	for _, turn := range turns {
		if turn.Role != model.RoleUser || !strings.Contains(turn.Content, "?") {
			continue
		}
		label := questionLabel(turn.Content)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	if len(counts) == 0 {
		return nil, ""
	}

	mostCommon := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[mostCommon] {
			mostCommon = label
		}
	}
	return counts, mostCommon
}

func questionLabel(content string) string {
	lowered := strings.ToLower(content)
	switch {
	case strings.Contains(lowered, "what"):
		return QuestionFactual
	case strings.Contains(lowered, "how"):
		return QuestionProcedural
	case strings.Contains(lowered, "why"):
		return QuestionExplanatory
	default:
		return QuestionGeneral
	}
}
