package model

import (
	"context"
)

// MemoryRepository persists the session record log: chat turns plus derived
// memory records, all in one session-keyed, append-only collection.
type MemoryRepository interface {
	// AppendTurn stores a chat turn. Turns are never updated afterwards.
	AppendTurn(ctx context.Context, turn ChatTurn) error

	// History returns the session transcript ordered by timestamp ascending.
	// limit <= 0 means no limit.
	History(ctx context.Context, sessionID string, limit int) ([]ChatTurn, error)

	// AppendRecord stores a derived memory record (fact or long-term note).
	AppendRecord(ctx context.Context, rec SessionMemoryRecord) error

	// Facts returns important facts for the session, oldest first.
	Facts(ctx context.Context, sessionID string) ([]string, error)

	// LongTerm returns persistent records of the given type across all
	// sessions, newest first, up to limit.
	LongTerm(ctx context.Context, recordType string, limit int) ([]SessionMemoryRecord, error)

	// Clear deletes every record of the session and reports how many were
	// removed.
	Clear(ctx context.Context, sessionID string) (int64, error)
}

// CorpusRepository queries the ingested document corpus. Index construction
// and ingestion are out of scope; the adapter only consumes existing indexes.
type CorpusRepository interface {
	// VectorSearch runs an exact nearest-neighbour query over the corpus
	// vector index and returns up to limit documents ordered by descending
	// similarity, projected to text and metadata.
	VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]RetrievedDocument, error)

	// TextSearch runs a keyword/full-text query over the same corpus.
	TextSearch(ctx context.Context, query string, limit int) ([]RetrievedDocument, error)
}

// Embedder turns text into a fixed-length vector via the remote provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
