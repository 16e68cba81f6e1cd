package qdrantDB

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/chatModel"
	"github.com/akolanti/DocAssist/internal/rag/vectorDB"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var _ vectorDB.AnswerCache = (*Cache)(nil)

// Lookup returns the cached answer of the nearest earlier question asked in the
// same mode and tier, if it scores at least the cutoff.
func (c *Cache) Lookup(ctx context.Context, vector []float32, mode chatModel.Mode, tier chatModel.Tier) (vectorDB.CachedAnswer, bool, error) {
	loggr := logger.FromContext(ctx)

	result, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         scopeFilter(mode, tier),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Warn("Cache query failed", "error", err)
		return vectorDB.CachedAnswer{}, false, err
	}
	if len(result) == 0 {
		return vectorDB.CachedAnswer{}, false, nil
	}

	hit := result[0]
	loggr.Debug("Nearest cached answer", "semantic similarity score", hit.Score)
	if hit.Score < c.cutoff {
		return vectorDB.CachedAnswer{}, false, nil
	}

	cached, ok := answerFromPayload(hit.Payload, hit.Score)
	if !ok {
		return vectorDB.CachedAnswer{}, false, nil
	}
	loggr.Info("semantic cache hit", "score", hit.Score)
	return cached, true, nil
}

func (c *Cache) Store(ctx context.Context, vector []float32, mode chatModel.Mode, tier chatModel.Tier, answer vectorDB.CachedAnswer) error {
	loggr := logger.FromContext(ctx)

	payload, err := answerPayload(mode, tier, answer, time.Now())
	if err != nil {
		return err
	}
	_, err = c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		loggr.Warn("Saving answer to cache failed", "error", err)
	}
	return err
}

func scopeFilter(mode chatModel.Mode, tier chatModel.Tier) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("mode", string(mode)),
			qdrant.NewMatch("tier", string(tier)),
		},
	}
}

func answerPayload(mode chatModel.Mode, tier chatModel.Tier, answer vectorDB.CachedAnswer, at time.Time) (map[string]*qdrant.Value, error) {
	sources, err := json.Marshal(answer.Sources)
	if err != nil {
		return nil, err
	}
	return qdrant.NewValueMap(map[string]any{
		"answer":    answer.Answer,
		"sources":   string(sources),
		"mode":      string(mode),
		"tier":      string(tier),
		"timestamp": at.Unix(),
	}), nil
}

func answerFromPayload(payload map[string]*qdrant.Value, score float32) (vectorDB.CachedAnswer, bool) {
	text := payload["answer"].GetStringValue()
	if text == "" {
		return vectorDB.CachedAnswer{}, false
	}
	var sources []chatModel.Source
	if raw := payload["sources"].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sources); err != nil {
			logger_i.NewLogger("Qdrant").Warn("cached sources unreadable", "error", err)
		}
	}
	return vectorDB.CachedAnswer{Answer: text, Sources: sources, Score: score}, true
}
