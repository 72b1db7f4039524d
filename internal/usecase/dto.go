package usecase

import (
	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// Sobre de mutación que manda el panel: una acción sobre un lead.
type MutateLeadInput struct {
	ClientID string         `json:"clientId" validate:"required"`
	Channel  string         `json:"channel"`
	LeadID   string         `json:"leadId"`
	Action   crm.Action     `json:"action" validate:"required"`
	Data     crm.ActionData `json:"data"`
}

type MutateLeadOutput struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Lead    *entity.Lead `json:"lead,omitempty"`
}

type DeleteLeadInput struct {
	ClientID string `json:"clientId" validate:"required"`
	Channel  string `json:"channel"`
	LeadID   string `json:"leadId" validate:"required"`
}

type SaveStagesInput struct {
	ClientID   string                  `json:"clientId" validate:"required"`
	Stages     []entity.PipelineStage  `json:"crmStatuses" validate:"required"`
	Migrations []entity.StageMigration `json:"migrations"`
}

type SaveStagesOutput struct {
	Success  bool                   `json:"success"`
	Stages   []entity.PipelineStage `json:"crmStatuses"`
	Migrated int64                  `json:"migratedLeads"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Token          string                 `json:"token"`
	ClientID       string                 `json:"clientId"`
	Username       string                 `json:"username"`
	Email          string                 `json:"email"`
	AccountType    string                 `json:"accountType"`
	ManagedClients []entity.ManagedClient `json:"managedClients,omitempty"`
}
