package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strivetech/homematch/internal/model"
)

const redisMergeRetries = 5

// RedisStore keeps session state in Redis so multiple server instances can
// share conversations. Merge uses WATCH-based optimistic locking: if another
// turn writes the same session mid-merge the transaction is retried against
// the fresh state, so no extracted field is ever lost.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. Each session expires ttl
// after its last merge.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "homematch:session:" + sessionID
}

// Get returns the stored state, zero-value if the key is missing or expired.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (State, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("session get: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("session decode: %w", err)
	}
	return state, nil
}

// Merge folds extracted into the session state under optimistic locking.
func (s *RedisStore) Merge(ctx context.Context, sessionID string, extracted model.ExtractionResult) (State, error) {
	key := sessionKey(sessionID)
	var merged State

	txn := func(tx *redis.Tx) error {
		var state State
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(raw, &state); err != nil {
				return fmt.Errorf("session decode: %w", err)
			}
		}

		state.Preferences = model.MergePreferences(state.Preferences, extracted.Preferences)
		state.Contact = mergeContact(state.Contact, extracted.Contact)
		state.TurnCount++

		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("session encode: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		merged = state
		return nil
	}

	for i := 0; i < redisMergeRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return State{}, fmt.Errorf("session merge: %w", err)
	}
	return State{}, fmt.Errorf("session merge: too many concurrent updates for %s", sessionID)
}

// Clear removes the session key.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
