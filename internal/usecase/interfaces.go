package usecase

import (
	"context"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}

type EmailService interface {
	SendDailyDigest(to, username string, leads []entity.Lead) error
}

type TokenIssuer interface {
	Generate(clientID, email, accountType string) (string, error)
}
