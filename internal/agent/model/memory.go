package model

import (
	"time"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single persisted message of a session transcript.
// Turns are immutable once written and ordered by Timestamp ascending
// within a session.
type ChatTurn struct {
	SessionID string         `bson:"session_id" json:"session_id"`
	Role      Role           `bson:"role" json:"role"`
	Content   string         `bson:"content" json:"content"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Memory record types stored alongside chat turns in the memory collection.
const (
	RecordTypeImportantFact = "important_fact"
	recordTypeLongTermFmt   = "long_term_"
)

// LongTermRecordType builds the record type tag for a long-term memory kind.
func LongTermRecordType(kind string) string {
	return recordTypeLongTermFmt + kind
}

// SessionMemoryRecord is a derived memory entry (important fact or long-term
// note) appended to the same record log as chat turns. Facts are scoped to a
// session; long-term records are queried by Type across sessions.
type SessionMemoryRecord struct {
	SessionID  string    `bson:"session_id" json:"session_id"`
	Type       string    `bson:"type" json:"type"`
	Content    string    `bson:"content" json:"content"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Persistent bool      `bson:"persistent,omitempty" json:"persistent,omitempty"`
}

// Preferences holds user preferences inferred from a conversation. The shape
// is model-defined; when the extraction output is not valid JSON the raw text
// is kept under "raw_preferences".
type Preferences map[string]any
