package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idea-contract-be/internal/dto"
	"idea-contract-be/internal/entity"
	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/repository/contract"
	"idea-contract-be/pkg/events"
	"idea-contract-be/pkg/workflow"

	"github.com/google/uuid"
)

type IDraftingService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type draftingService struct {
	engine         *workflow.Engine
	sessions       contract.SessionRepository
	contracts      IContractService
	eventPublisher events.Publisher
	broadcaster    SessionBroadcaster
	logger         logger.ILogger

	locks *sessionLocks
}

// NewDraftingService accepts nil for contracts, eventPublisher and broadcaster.
func NewDraftingService(
	engine *workflow.Engine,
	sessions contract.SessionRepository,
	contracts IContractService,
	eventPublisher events.Publisher,
	broadcaster SessionBroadcaster,
	log logger.ILogger,
) IDraftingService {
	return &draftingService{
		engine:         engine,
		sessions:       sessions,
		contracts:      contracts,
		eventPublisher: eventPublisher,
		broadcaster:    broadcaster,
		logger:         log,
		locks:          newSessionLocks(),
	}
}

// Chat advances one session to its next suspension point or to completion.
// Engine failures come back as an error response, not as an error.
func (s *draftingService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionID := req.SessionId
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st := session.State

	var evt *workflow.Event
	if req.IsInterrupt {
		evt, err = s.engine.Run(ctx, st, resumeFor(st, req))
	} else {
		s.logger.Info("DraftingService", "Starting drafting run", map[string]interface{}{"session_id": sessionID})
		evt, err = s.engine.Start(ctx, st, req.Query)
	}

	if err != nil {
		details := map[string]interface{}{"session_id": sessionID, "error": err.Error()}
		if isClientError(err) {
			s.logger.Warn("DraftingService", "Chat request does not fit the session position", details)
		} else {
			s.logger.Error("DraftingService", "Workflow run failed", details)
		}
		// the stored session keeps its last saved state
		return s.respond(sessionID, workflow.ErrorEvent(err)), nil
	}

	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	if evt.Type == workflow.EventEnd {
		s.complete(ctx, sessionID, st)
	}
	return s.respond(sessionID, evt), nil
}

func (s *draftingService) loadOrCreate(ctx context.Context, sessionID string) (*entity.DraftingSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session != nil {
		return session, nil
	}

	now := time.Now()
	session = &entity.DraftingSession{
		Id:        sessionID,
		State:     workflow.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	if s.contracts != nil && s.contracts.Enabled() {
		if err := s.contracts.SaveSession(ctx, sessionID, session.State); err != nil {
			s.logger.Warn("DraftingService", "Failed to create contract record", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}
	s.publish(ctx, events.SessionStarted, map[string]interface{}{"session_id": sessionID})

	s.logger.Info("DraftingService", "Session created", map[string]interface{}{"session_id": sessionID})
	return session, nil
}

// resumeFor builds the resume value the session is waiting for. A structure
// review without an edited payload accepts the current structure unchanged.
func resumeFor(st *workflow.State, req *dto.ChatRequest) *workflow.Resume {
	if st.Awaiting != workflow.AwaitingStructureReview {
		return &workflow.Resume{Text: req.Query}
	}

	review := &workflow.StructureReview{Idea: st.Idea, Title: st.Title, Sections: st.Sections}
	if is := req.IdeaStructuring; is != nil {
		if is.Idea != "" {
			review.Idea = is.Idea
		}
		if is.Title != "" {
			review.Title = is.Title
		}
		if len(is.AllSections) > 0 {
			review.Sections = is.AllSections
		}
	}
	return &workflow.Resume{Structure: review}
}

func (s *draftingService) complete(ctx context.Context, sessionID string, st *workflow.State) {
	if s.contracts != nil && s.contracts.Enabled() {
		if err := s.contracts.MarkCompleted(ctx, sessionID, st); err != nil {
			s.logger.Error("DraftingService", "Failed to mark contract completed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	s.publish(ctx, events.DocumentCompleted, map[string]interface{}{
		"session_id": sessionID,
		"title":      st.Title,
		"score":      st.ReviewScore,
		"risk_level": st.ReviewRiskLevel,
		"sections":   len(st.AllDrafts),
	})

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("DraftingService", "Failed to delete finished session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("DraftingService", "Session completed", map[string]interface{}{
		"session_id": sessionID,
		"score":      st.ReviewScore,
		"questions":  st.QuestionsAsked(),
	})
}

func (s *draftingService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("DraftingService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *draftingService) respond(sessionID string, evt *workflow.Event) *dto.ChatResponse {
	res := dto.NewChatResponse(sessionID, evt)
	if s.broadcaster != nil {
		s.broadcaster.Send(sessionID, res)
	}
	return res
}

// isClientError reports engine errors caused by the request rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, workflow.ErrResumeRequired) ||
		errors.Is(err, workflow.ErrUnexpectedResume) ||
		errors.Is(err, workflow.ErrInvalidResume) ||
		errors.Is(err, workflow.ErrSessionFinished)
}
