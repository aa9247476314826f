package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "drafting_session:"

// SessionRepository keeps sessions as JSON documents in Redis so any
// instance behind the load balancer can resume them.
type SessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewSessionRepository(rdb redis.Cmdable, ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.DraftingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}
	return r.rdb.Set(ctx, key(session.Id), data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.DraftingSession, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session entity.DraftingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
