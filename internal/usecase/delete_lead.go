package usecase

import (
	"context"
	"log"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
)

type DeleteLeadUseCase struct {
	Leads entity.LeadRepository
	Queue QueueProducerInterface
}

func NewDeleteLeadUseCase(leads entity.LeadRepository, producer QueueProducerInterface) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Leads: leads, Queue: producer}
}

func (uc *DeleteLeadUseCase) Execute(ctx context.Context, input DeleteLeadInput) error {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(errs),
		}
	}

	lead, err := uc.Leads.FindByID(ctx, input.ClientID, input.Channel, input.LeadID)
	if err != nil {
		return &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo cargar el lead: " + err.Error(),
		}
	}
	if lead == nil {
		return &DomainError{
			Code:    "LEAD_NOT_FOUND",
			Message: "lead no encontrado: " + input.LeadID,
		}
	}

	if err := uc.Leads.Delete(ctx, input.ClientID, input.Channel, input.LeadID); err != nil {
		return &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo borrar el lead: " + err.Error(),
		}
	}

	log.Printf("🗑️ Lead borrado: %s (cliente %s)", input.LeadID, input.ClientID)

	if uc.Queue != nil {
		payload := queue.LeadEventPayload{
			Type:       queue.EventLeadDeleted,
			ClientID:   input.ClientID,
			Channel:    input.Channel,
			LeadID:     input.LeadID,
			Name:       lead.Contact.Name,
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.Queue.PublishLeadEvent(ctx, payload); err != nil {
			log.Printf("⚠️ evento %s no publicado para lead %s: %v", queue.EventLeadDeleted, input.LeadID, err)
		}
	}

	return nil
}
