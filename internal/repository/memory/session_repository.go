package memory

import (
	"context"
	"time"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last save and
// purges expired items every 10 minutes.
func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save stores a copy so callers cannot mutate the stored state in place.
func (r *SessionRepository) Save(_ context.Context, session *entity.DraftingSession) error {
	r.cache.Set(session.Id, clone(session), cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id string) (*entity.DraftingSession, error) {
	if x, found := r.cache.Get(id); found {
		return clone(x.(*entity.DraftingSession)), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func clone(s *entity.DraftingSession) *entity.DraftingSession {
	c := *s
	if s.State != nil {
		c.State = s.State.Clone()
	}
	return &c
}
