package usecase

import (
	"context"
	"log"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
)

type MutateLeadUseCase struct {
	Leads  entity.LeadRepository
	Stages entity.StageRepository
	Queue  QueueProducerInterface
}

func NewMutateLeadUseCase(
	leads entity.LeadRepository,
	stages entity.StageRepository,
	producer QueueProducerInterface,
) *MutateLeadUseCase {
	return &MutateLeadUseCase{
		Leads:  leads,
		Stages: stages,
		Queue:  producer,
	}
}

func (uc *MutateLeadUseCase) Execute(ctx context.Context, input MutateLeadInput) (*MutateLeadOutput, error) {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(errs),
		}
	}

	now := time.Now().UTC()

	if input.Action == crm.ActionCreateLead {
		return uc.createLead(ctx, input, now)
	}

	if input.LeadID == "" {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: "leadId es obligatorio",
		}
	}

	lead, err := uc.Leads.FindByID(ctx, input.ClientID, input.Channel, input.LeadID)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo cargar el lead: " + err.Error(),
		}
	}
	if lead == nil {
		return nil, &DomainError{
			Code:    "LEAD_NOT_FOUND",
			Message: "lead no encontrado: " + input.LeadID,
		}
	}

	data := input.Data
	if input.Action == crm.ActionUpdateContact && data.Phone != nil {
		normalized := NormalizePhone(*data.Phone)
		data.Phone = &normalized
	}

	stageSet, err := uc.Stages.Get(ctx, input.ClientID)
	if err != nil {
		// sin estados no hay etiqueta bonita para el timeline, pero la
		// mutación sigue adelante con los de serie
		log.Printf("⚠️ estados CRM ilegibles para %s, uso los de serie: %v", input.ClientID, err)
		stageSet = entity.DefaultStages()
	}

	next, msg, err := crm.Apply(lead, input.Action, data, stageSet, now)
	if err != nil {
		return nil, &DomainError{
			Code:    "INVALID_ACTION",
			Message: err.Error(),
		}
	}

	if err := uc.Leads.Save(ctx, next); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo guardar el lead: " + err.Error(),
		}
	}

	uc.publish(ctx, next, input.Action)

	return &MutateLeadOutput{Success: true, Message: msg, Lead: next}, nil
}

func (uc *MutateLeadUseCase) createLead(ctx context.Context, input MutateLeadInput, now time.Time) (*MutateLeadOutput, error) {
	data := input.Data

	if data.Name == nil && data.Email == nil && data.Phone == nil {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: "hace falta al menos nombre, email o teléfono",
		}
	}
	if data.Email != nil && *data.Email != "" && !isValidEmail(*data.Email) {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "email inválido"}
	}
	if data.Temperature != "" && !isValidTemperature(data.Temperature) {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "temperatura inválida: " + data.Temperature}
	}
	if data.DealValue < 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "el valor del deal no puede ser negativo"}
	}
	if data.Phone != nil {
		normalized := NormalizePhone(*data.Phone)
		data.Phone = &normalized
	}

	lead := crm.NewLead(input.ClientID, data, now)

	if err := uc.Leads.Save(ctx, lead); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo crear el lead: " + err.Error(),
		}
	}

	log.Printf("✅ Lead manual creado: %s (cliente %s)", lead.LeadID, lead.ClientID)
	uc.publish(ctx, lead, crm.ActionCreateLead)

	return &MutateLeadOutput{Success: true, Message: "Lead creado", Lead: lead}, nil
}

func (uc *MutateLeadUseCase) publish(ctx context.Context, lead *entity.Lead, action crm.Action) {
	if uc.Queue == nil {
		return
	}

	eventType := queue.EventLeadUpdated
	switch action {
	case crm.ActionCreateLead:
		eventType = queue.EventLeadCreated
	case crm.ActionUpdateStatus:
		eventType = queue.EventLeadStatusChanged
	case crm.ActionUpdateTemperature:
		if lead.Temperature() == entity.TemperatureHot {
			eventType = queue.EventLeadHot
		}
	}

	payload := queue.LeadEventPayload{
		Type:        eventType,
		ClientID:    lead.ClientID,
		Channel:     lead.Channel,
		LeadID:      lead.LeadID,
		Status:      lead.Status(),
		Temperature: lead.Temperature(),
		Name:        lead.Contact.Name,
		Email:       lead.Contact.Email,
		Phone:       lead.Contact.Phone,
		OccurredAt:  lead.LastUpdated,
	}

	if err := uc.Queue.PublishLeadEvent(ctx, payload); err != nil {
		// la mutación ya está persistida, el evento es best-effort
		log.Printf("⚠️ evento %s no publicado para lead %s: %v", eventType, lead.LeadID, err)
	}
}
