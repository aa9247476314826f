package service

import (
	"context"
	"errors"
	"testing"

	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/pkg/mailer"
	"idea-contract-be/pkg/events"
	pktNats "idea-contract-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	to      []string
	notices []mailer.CompletionNotice
	err     error
}

func (m *recordingMailer) SendCompletionNotice(to string, notice mailer.CompletionNotice) error {
	m.to = append(m.to, to)
	m.notices = append(m.notices, notice)
	return m.err
}

type recordingSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
	err     error
}

func (s *recordingSubscriber) Subscribe(subject, durable string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durable, handler
	return s.err
}

func completedEvent() events.Event {
	// numbers arrive as float64 after a trip through JSON
	return events.New(events.DocumentCompleted, map[string]interface{}{
		"session_id": "s1",
		"title":      "Office Lease",
		"score":      float64(88),
		"risk_level": "Low",
		"sections":   float64(3),
	})
}

func TestNotificationService_Start(t *testing.T) {
	sub := &recordingSubscriber{}
	svc := NewNotificationService(sub, nil, "", nil, logger.NewNopLogger())
	svc.Start()

	assert.Equal(t, "events.>", sub.subject)
	assert.Equal(t, "contract-notifier", sub.durable)
	require.NotNil(t, sub.handler)

	failing := &recordingSubscriber{err: errors.New("no jetstream")}
	NewNotificationService(failing, nil, "", nil, logger.NewNopLogger()).Start()
}

func TestNotificationService_CompletionMail(t *testing.T) {
	m := &recordingMailer{}
	svc := NewNotificationService(&recordingSubscriber{}, m, "legal@example.com", nil, logger.NewNopLogger())

	require.NoError(t, svc.HandleEvent(context.Background(), completedEvent()))
	require.Len(t, m.notices, 1)
	assert.Equal(t, []string{"legal@example.com"}, m.to)
	assert.Equal(t, mailer.CompletionNotice{SessionID: "s1", Title: "Office Lease", Score: 88, RiskLevel: "Low", Sections: 3}, m.notices[0])

	m.err = errors.New("smtp down")
	assert.Error(t, svc.HandleEvent(context.Background(), completedEvent()))
}

func TestNotificationService_NoRecipientSkipsMail(t *testing.T) {
	m := &recordingMailer{}
	svc := NewNotificationService(&recordingSubscriber{}, m, "", nil, logger.NewNopLogger())

	require.NoError(t, svc.HandleEvent(context.Background(), completedEvent()))
	assert.Empty(t, m.notices)
}

func TestNotificationService_RelaysScores(t *testing.T) {
	b := &recordingBroadcaster{}
	svc := NewNotificationService(&recordingSubscriber{}, nil, "", b, logger.NewNopLogger())

	require.NoError(t, svc.HandleEvent(context.Background(), events.New(events.ContractScored, map[string]interface{}{
		"session_id": "s1",
		"score":      float64(72),
		"risk_level": "Medium",
	})))
	require.NoError(t, svc.HandleEvent(context.Background(), events.New(events.SessionStarted, map[string]interface{}{"session_id": "s1"})))

	require.Len(t, b.sent["s1"], 1)
	assert.Equal(t, map[string]interface{}{
		"action":     "contract_scored",
		"score":      float64(72),
		"risk_level": "Medium",
	}, b.sent["s1"][0])
}
