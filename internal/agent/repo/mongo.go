package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/agent/model"
	errx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/internal/core/error"
	logx "github.com/carlos-alonso-mongodb/mongodb-atlas-agentic-rag-demo/pkg/logger"
)

// MongoMemoryRepository stores chat turns and derived memory records in a
// single session-keyed collection. Chat turns carry a role, derived records
// carry a type; both shapes share the same record log.
type MongoMemoryRepository struct {
	coll *mongo.Collection
}

func NewMongoMemoryRepository(coll *mongo.Collection) *MongoMemoryRepository {
	return &MongoMemoryRepository{coll: coll}
}

func (r *MongoMemoryRepository) AppendTurn(ctx context.Context, turn model.ChatTurn) error {
	if turn.Metadata == nil {
		turn.Metadata = map[string]any{}
	}
	if _, err := r.coll.InsertOne(ctx, turn); err != nil {
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("failed to insert chat turn")
		return errx.WrapMongo(err)
	}
	return nil
}

func (r *MongoMemoryRepository) History(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	// Restrict to role-bearing documents so memory records sharing the
	// collection never surface as transcript entries.
	filter := bson.M{
		"session_id": sessionID,
		"role":       bson.M{"$in": []model.Role{model.RoleUser, model.RoleAssistant}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session history")
		return nil, errx.WrapMongo(err)
	}
	defer cursor.Close(ctx)

	var turns []model.ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}
	return turns, nil
}

func (r *MongoMemoryRepository) AppendRecord(ctx context.Context, rec model.SessionMemoryRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		logx.Error().Err(err).Str("session_id", rec.SessionID).Str("type", rec.Type).
			Msg("failed to insert memory record")
		return errx.WrapMongo(err)
	}
	return nil
}

func (r *MongoMemoryRepository) Facts(ctx context.Context, sessionID string) ([]string, error) {
	filter := bson.M{"session_id": sessionID, "type": model.RecordTypeImportantFact}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load important facts")
		return nil, errx.WrapMongo(err)
	}
	defer cursor.Close(ctx)

	var recs []model.SessionMemoryRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode important facts: %w", err)
	}
	facts := make([]string, 0, len(recs))
	for _, rec := range recs {
		facts = append(facts, rec.Content)
	}
	return facts, nil
}

func (r *MongoMemoryRepository) LongTerm(ctx context.Context, recordType string, limit int) ([]model.SessionMemoryRecord, error) {
	filter := bson.M{"type": recordType, "persistent": true}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		logx.Error().Err(err).Str("type", recordType).Msg("failed to load long-term memory")
		return nil, errx.WrapMongo(err)
	}
	defer cursor.Close(ctx)

	var recs []model.SessionMemoryRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode long-term memory: %w", err)
	}
	return recs, nil
}

func (r *MongoMemoryRepository) Clear(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear session memory")
		return 0, errx.WrapMongo(err)
	}
	return res.DeletedCount, nil
}

var _ model.MemoryRepository = (*MongoMemoryRepository)(nil)
