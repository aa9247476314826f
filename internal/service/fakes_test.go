package service

import (
	"context"
	"sort"
	"sync"

	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/repository/contract"
	"idea-contract-be/internal/repository/specification"
	"idea-contract-be/internal/repository/unitofwork"
	"idea-contract-be/pkg/ai/categorization"
	"idea-contract-be/pkg/events"
	"idea-contract-be/pkg/workflow"
)

// memContractRepo understands the specifications the services use.
type memContractRepo struct {
	mu        sync.Mutex
	rows      []*entity.Contract
	updateErr error
}

func (r *memContractRepo) Create(_ context.Context, c *entity.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memContractRepo) Update(_ context.Context, c *entity.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	for i, row := range r.rows {
		if row.SessionId == c.SessionId {
			cp := *c
			r.rows[i] = &cp
			return nil
		}
	}
	return nil
}

func (r *memContractRepo) DeleteBySessionID(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.SessionId != sessionID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *memContractRepo) query(specs []specification.Specification) []*entity.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Contract, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	limit := -1
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.BySessionID:
			filtered := out[:0:0]
			for _, row := range out {
				if row.SessionId == s.SessionID {
					filtered = append(filtered, row)
				}
			}
			out = filtered
		case specification.Unscored:
			filtered := out[:0:0]
			for _, row := range out {
				if row.AiScore == nil {
					filtered = append(filtered, row)
				}
			}
			out = filtered
		case specification.ByStatus:
			filtered := out[:0:0]
			for _, row := range out {
				if string(row.Status) == s.Status {
					filtered = append(filtered, row)
				}
			}
			out = filtered
		case specification.OrderBy:
			sort.SliceStable(out, func(i, j int) bool {
				if s.Desc {
					return out[i].CreatedAt.After(out[j].CreatedAt)
				}
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			})
		case specification.Pagination:
			limit = s.Limit
		}
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	copies := make([]*entity.Contract, len(out))
	for i, row := range out {
		cp := *row
		copies[i] = &cp
	}
	return copies
}

func (r *memContractRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Contract, error) {
	rows := r.query(specs)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *memContractRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Contract, error) {
	return r.query(specs), nil
}

func (r *memContractRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.query(specs))), nil
}

func (r *memContractRepo) bySession(id string) *entity.Contract {
	c, _ := r.FindOne(context.Background(), specification.BySessionID{SessionID: id})
	return c
}

type fakeUoW struct {
	repo *memContractRepo
}

func (u *fakeUoW) Begin(context.Context) error { return nil }
func (u *fakeUoW) Commit() error { return nil }
func (u *fakeUoW) Rollback() error { return nil }

func (u *fakeUoW) ContractRepository() contract.ContractRepository { return u.repo }

type fakeFactory struct {
	repo *memContractRepo
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUoW{repo: f.repo}
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingQueue struct {
	payloads [][]byte
	err      error
}

func (q *recordingQueue) Publish(_ context.Context, payload []byte) error {
	q.payloads = append(q.payloads, payload)
	return q.err
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent map[string][]interface{}
}

func (b *recordingBroadcaster) Send(sessionID string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sent == nil {
		b.sent = make(map[string][]interface{})
	}
	b.sent[sessionID] = append(b.sent[sessionID], payload)
}

type fixedScorer struct {
	review *workflow.Review
	calls  []workflow.ReviewRequest
}

func (s *fixedScorer) Review(_ context.Context, req workflow.ReviewRequest) (*workflow.Review, error) {
	s.calls = append(s.calls, req)
	r := *s.review
	return &r, nil
}

type titleCategorizer map[string]string

func (c titleCategorizer) CategorizeOrFallback(_ context.Context, title, _, _ string) *categorization.Result {
	primary, ok := c[title]
	if !ok {
		return categorization.Fallback()
	}
	return &categorization.Result{PrimaryCategory: primary, ConfidenceScore: 90}
}
