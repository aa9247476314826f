package service

import (
	"context"
	"encoding/json"
	"errors"

	"idea-contract-be/internal/dto"
	"idea-contract-be/internal/pkg/logger"
	"idea-contract-be/internal/pkg/serverutils"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// scoringConsumer applies AI scores to contracts queued by ContractService.Create.
type scoringConsumer struct {
	subscriber message.Subscriber
	topicName  string
	contracts  IContractService
	logger     logger.ILogger
}

func NewScoringConsumer(
	subscriber message.Subscriber,
	topicName string,
	contracts IContractService,
	log logger.ILogger,
) IConsumerService {
	return &scoringConsumer{
		subscriber: subscriber,
		topicName:  topicName,
		contracts:  contracts,
		logger:     log,
	}
}

func (cs *scoringConsumer) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *scoringConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishScoreContractMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.SessionId == "" {
		cs.logger.Error("ScoringConsumer", "Invalid scoring message", map[string]interface{}{"message_id": msg.UUID})
		msg.Ack() // invalid messages are never retried
		return
	}

	cs.logger.Info("ScoringConsumer", "Scoring contract", map[string]interface{}{"session_id": payload.SessionId})

	err := cs.contracts.ScoreContract(ctx, payload.SessionId)
	if err != nil {
		var appErr *serverutils.AppError
		if errors.As(err, &appErr) {
			// not found or catalog disabled: retrying cannot help
			cs.logger.Warn("ScoringConsumer", "Dropping scoring message", map[string]interface{}{
				"session_id": payload.SessionId,
				"reason":     appErr.Message,
			})
			msg.Ack()
			return
		}
		cs.logger.Error("ScoringConsumer", "Scoring failed, will retry", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
