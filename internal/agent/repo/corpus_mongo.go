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

const (
	defaultVectorIndex   = "vector_index"
	defaultEmbeddingPath = "embedding"
)

// MongoCorpusRepository queries the ingested corpus collection through its
// Atlas Vector Search index and its text index. Ingestion and index
// provisioning happen in a separate one-shot setup process.
type MongoCorpusRepository struct {
	coll        *mongo.Collection
	vectorIndex string
	path        string
}

func NewMongoCorpusRepository(coll *mongo.Collection) *MongoCorpusRepository {
	return &MongoCorpusRepository{
		coll:        coll,
		vectorIndex: defaultVectorIndex,
		path:        defaultEmbeddingPath,
	}
}

func (r *MongoCorpusRepository) VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]model.RetrievedDocument, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.vectorIndex},
			{Key: "queryVector", Value: queryVector},
			{Key: "path", Value: r.path},
			{Key: "exact", Value: true},
			{Key: "limit", Value: limit},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		logx.Error().Err(err).Msg("vector search aggregate failed")
		return nil, errx.WrapMongo(err)
	}
	defer cursor.Close(ctx)

	var docs []model.RetrievedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode vector search results: %w", err)
	}
	return docs, nil
}

func (r *MongoCorpusRepository) TextSearch(ctx context.Context, query string, limit int) ([]model.RetrievedDocument, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "text": 1, "metadata": 1}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		logx.Error().Err(err).Msg("text search failed")
		return nil, errx.WrapMongo(err)
	}
	defer cursor.Close(ctx)

	var docs []model.RetrievedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode text search results: %w", err)
	}
	return docs, nil
}

var _ model.CorpusRepository = (*MongoCorpusRepository)(nil)
