package qdrantDB

import (
	"context"
	"errors"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger

// Cache is the semantic answer cache kept in a qdrant collection.
type Cache struct {
	client     *qdrant.Client
	collection string
	cutoff     float32
}

// Open connects to qdrant and makes sure the cache collection exists. It returns
// nil, nil when no host is configured so callers can run without a cache.
func Open(ctx context.Context, cfg config.QdrantConfig, dimension int) (*Cache, error) {
	logger = logger_i.NewLogger("Qdrant")
	if cfg.Host == "" {
		logger.Info("no qdrant host configured, semantic cache disabled")
		return nil, nil
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, errorModel.StoreUnavailable("qdrant connect", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if err := createCollection(initCtx, client, config.SemanticCacheCollection, uint64(dimension)); err != nil {
		_ = client.Close()
		return nil, errorModel.StoreUnavailable("qdrant collection", err)
	}

	return &Cache{
		client:     client,
		collection: config.SemanticCacheCollection,
		cutoff:     config.CacheSimilarityCutoff,
	}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	logger.Info("Shutting down Qdrant")
	return c.client.Close()
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	if dimension == 0 {
		return errors.New("zero vector dimension")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
