package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI              string `split_words:"true" required:"true"`
	Database         string `split_words:"true" default:"ai_agent_db"`
	MemoryCollection string `split_words:"true" default:"chat_history"`
	CorpusCollection string `split_words:"true" default:"embeddings"`
	ConnectTimeout   int    `split_words:"true" default:"10"`
}

func (c *Config) New(ctx context.Context) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(c.ConnectTimeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return client, nil
}

func (c *Config) MustNew(ctx context.Context) *mongo.Client {
	client, err := c.New(ctx)
	if err != nil {
		panic(err)
	}

	return client
}
