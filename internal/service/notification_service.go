package service

import (
	"context"
	"fmt"

	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/pkg/mailer"
	"idea-contract-be/pkg/events"
	pktNats "idea-contract-be/pkg/nats"
)

// SessionBroadcaster pushes live updates to watchers of a session.
// Implemented by the WebSocket hub.
type SessionBroadcaster interface {
	Send(sessionID string, payload interface{})
}

// EventSubscriber is implemented by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pktNats.EventHandler) error
}

// NotificationService reacts to drafting events: it mails completion notices
// and relays asynchronous scores to session watchers.
type NotificationService struct {
	subscriber  EventSubscriber
	mailer      mailer.IEmailService
	notifyEmail string
	delivery    SessionBroadcaster
	logger      logger.ILogger
}

func NewNotificationService(sub EventSubscriber, mail mailer.IEmailService, notifyEmail string, delivery SessionBroadcaster, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber:  sub,
		mailer:      mail,
		notifyEmail: notifyEmail,
		delivery:    delivery,
		logger:      log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if err := s.subscriber.Subscribe("events.>", "contract-notifier", s.HandleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	sessionID, _ := payload["session_id"].(string)

	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"session_id": sessionID})

	switch event.EventType() {
	case events.DocumentCompleted:
		return s.notifyCompletion(sessionID, payload)
	case events.ContractScored:
		if s.delivery != nil && sessionID != "" {
			s.delivery.Send(sessionID, map[string]interface{}{
				"action":     "contract_scored",
				"score":      payload["score"],
				"risk_level": payload["risk_level"],
			})
		}
	}
	return nil
}

func (s *NotificationService) notifyCompletion(sessionID string, payload map[string]interface{}) error {
	if s.mailer == nil || s.notifyEmail == "" {
		return nil
	}

	title, _ := payload["title"].(string)
	risk, _ := payload["risk_level"].(string)
	notice := mailer.CompletionNotice{
		SessionID: sessionID,
		Title:     title,
		Score:     asInt(payload["score"]),
		RiskLevel: risk,
		Sections:  asInt(payload["sections"]),
	}

	// returning the error lets JetStream redeliver
	if err := s.mailer.SendCompletionNotice(s.notifyEmail, notice); err != nil {
		s.logger.Error("NotificationService", "Failed to send completion notice", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// asInt reads JSON numbers, which decode as float64.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
