package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	errx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/core/error"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// RedisMemoryRepository keeps the session record log on Redis lists: one list
// per session for turns and facts, one list per record type for long-term
// memory. It is an alternative backend for deployments without a document
// store; the corpus (vector/text search) always stays in MongoDB.
type RedisMemoryRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisMemoryRepository(rdb redis.Cmdable, ttl time.Duration) *RedisMemoryRepository {
	return &RedisMemoryRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisMemoryRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("memory:%s:log", sessionID)
}

func (r *RedisMemoryRepository) longTermKey(recordType string) string {
	return fmt.Sprintf("memory:longterm:%s", recordType)
}

// redisRecord is the single envelope shape stored in the log; chat turns
// carry Role, memory records carry Type.
type redisRecord struct {
	SessionID  string         `json:"session_id"`
	Role       model.Role     `json:"role,omitempty"`
	Type       string         `json:"type,omitempty"`
	Content    string         `json:"content"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Persistent bool           `json:"persistent,omitempty"`
}

func (r *RedisMemoryRepository) push(ctx context.Context, key string, rec redisRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push record to redis")
		return errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Dur("ttl", r.ttl).Msg("failed to refresh TTL")
		}
	}
	return nil
}

func (r *RedisMemoryRepository) load(ctx context.Context, key string) ([]redisRecord, error) {
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load records from redis")
		return nil, errx.WrapRedis(err)
	}

	recs := make([]redisRecord, 0, len(rows))
	for i, row := range rows {
		var rec redisRecord
		if err := json.Unmarshal([]byte(row), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record at index %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *RedisMemoryRepository) AppendTurn(ctx context.Context, turn model.ChatTurn) error {
	return r.push(ctx, r.sessionKey(turn.SessionID), redisRecord{
		SessionID: turn.SessionID,
		Role:      turn.Role,
		Content:   turn.Content,
		Timestamp: turn.Timestamp,
		Metadata:  turn.Metadata,
	})
}

func (r *RedisMemoryRepository) History(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	recs, err := r.load(ctx, r.sessionKey(sessionID))
	if err != nil {
		return nil, err
	}

	turns := make([]model.ChatTurn, 0, len(recs))
	for _, rec := range recs {
		if rec.Role == "" {
			continue
		}
		turns = append(turns, model.ChatTurn{
			SessionID: rec.SessionID,
			Role:      rec.Role,
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
			Metadata:  rec.Metadata,
		})
		if limit > 0 && len(turns) == limit {
			break
		}
	}
	return turns, nil
}

func (r *RedisMemoryRepository) AppendRecord(ctx context.Context, rec model.SessionMemoryRecord) error {
	envelope := redisRecord{
		SessionID:  rec.SessionID,
		Type:       rec.Type,
		Content:    rec.Content,
		Timestamp:  rec.Timestamp,
		Persistent: rec.Persistent,
	}
	if rec.Persistent {
		// Long-term records live on a per-type list so they survive a
		// session clear and are queryable across sessions.
		return r.push(ctx, r.longTermKey(rec.Type), envelope)
	}
	return r.push(ctx, r.sessionKey(rec.SessionID), envelope)
}

func (r *RedisMemoryRepository) Facts(ctx context.Context, sessionID string) ([]string, error) {
	recs, err := r.load(ctx, r.sessionKey(sessionID))
	if err != nil {
		return nil, err
	}

	var facts []string
	for _, rec := range recs {
		if rec.Type == model.RecordTypeImportantFact {
			facts = append(facts, rec.Content)
		}
	}
	return facts, nil
}

func (r *RedisMemoryRepository) LongTerm(ctx context.Context, recordType string, limit int) ([]model.SessionMemoryRecord, error) {
	recs, err := r.load(ctx, r.longTermKey(recordType))
	if err != nil {
		return nil, err
	}

	// Lists append oldest first; the contract wants newest first.
	out := make([]model.SessionMemoryRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		out = append(out, model.SessionMemoryRecord{
			SessionID:  rec.SessionID,
			Type:       rec.Type,
			Content:    rec.Content,
			Timestamp:  rec.Timestamp,
			Persistent: rec.Persistent,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *RedisMemoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	key := r.sessionKey(sessionID)
	count, err := r.rdb.LLen(ctx, key).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to count session records")
		return 0, errx.WrapRedis(err)
	}
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session log")
		return 0, errx.WrapRedis(err)
	}
	return count, nil
}

var _ model.MemoryRepository = (*RedisMemoryRepository)(nil)
