package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/data/redisStore"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

const (
	chatKeyPrefix = "chat:"
	// number of previous question/answer pairs handed to the model
	historyTurns = 5
	// first list entry marks the chat as existing
	chatMarker = "{}"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisMessageStore returns nil when redis is unreachable.
func GetRedisMessageStore(ctx context.Context, cfg config.RedisConfig) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, cfg, config.RedisMessageStore)
	if s == nil {
		return nil
	}
	return NewRedisMessageStore(s)
}

func NewRedisMessageStore(s *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  s,
		logger: logger_i.NewLogger("message store"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	isFound, err := s.store.Exists(ctx, chatKeyPrefix+chatId)
	if err != nil {
		s.logger.FromContext(ctx).Error("failed to check if chat exists", "chatId", chatId, "error", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	if !s.ValidateChatId(ctx, id) {
		return errors.New("invalid chat id")
	}
	data, err := json.Marshal(conversation)
	if err != nil {
		return err
	}
	return s.store.ListPush(ctx, chatKeyPrefix+id, data, config.RedisMessageStoreTTL)
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.FromContext(ctx).With("chatId", id)
	if err := s.store.Del(ctx, chatKeyPrefix+id); err != nil {
		log.Error("error resetting chat", "error", err)
		return err
	}
	log.Debug("initialized new chat")
	return s.store.ListPush(ctx, chatKeyPrefix+id, chatMarker, config.RedisMessageStoreTTL)
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]string, error) {
	res, err := s.store.ListTail(ctx, chatKeyPrefix+chatId, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}

	history := make([]string, 0, len(res))
	for _, raw := range res {
		if raw == chatMarker {
			continue
		}
		var turn jobModel.JobPayload
		if err := json.Unmarshal([]byte(raw), &turn); err != nil {
			s.logger.FromContext(ctx).Warn("skipping unreadable chat turn", "chatId", chatId, "error", err)
			continue
		}
		history = append(history, formatTurn(turn))
	}
	return history, nil
}

func formatTurn(turn jobModel.JobPayload) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", turn.Question, turn.Answer)
}
