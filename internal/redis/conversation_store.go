package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parkassist/internal/llm"
)

// ConversationStore keeps per-conversation message history in redis, one
// list per conversation ID. The TTL is refreshed on every append so idle
// conversations expire on their own.
type ConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConversationStore returns redis-backed store.
func NewConversationStore(client *redis.Client, ttl time.Duration) *ConversationStore {
	return &ConversationStore{client: client, ttl: ttl}
}

func (s *ConversationStore) key(conversationID string) string {
	return fmt.Sprintf("chat:history:%s", conversationID)
}

// Append pushes messages onto the conversation's list.
func (s *ConversationStore) Append(ctx context.Context, conversationID string, messages ...llm.Message) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	key := s.key(conversationID)
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

// List returns the conversation's messages in order. A missing key means
// an empty history, not an error.
func (s *ConversationStore) List(ctx context.Context, conversationID string) ([]llm.Message, error) {
	raw, err := s.client.LRange(ctx, s.key(conversationID), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	messages := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Clear removes the conversation's history.
func (s *ConversationStore) Clear(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, s.key(conversationID)).Err()
}
