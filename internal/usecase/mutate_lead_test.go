package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

func storedLead() *entity.Lead {
	return &entity.Lead{
		LeadID:        "lead-1",
		ClientID:      "client-1",
		Channel:       "web",
		Contact:       entity.Contact{Name: "Ana García", Email: "ana@example.com"},
		Qualification: entity.Qualification{Temperature: "warm", Score: 6},
		CRMStatus:     "new",
	}
}

func TestMutateLeadUpdateStatus(t *testing.T) {
	leads := new(MockLeadRepository)
	stages := new(MockStageRepository)
	producer := new(MockQueueProducer)

	leads.On("FindByID", mock.Anything, "client-1", "web", "lead-1").Return(storedLead(), nil)
	stages.On("Get", mock.Anything, "client-1").Return(entity.DefaultStages(), nil)
	leads.On("Save", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.CRMStatus == "contacted" && len(l.Timeline) == 1
	})).Return(nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Type == queue.EventLeadStatusChanged && p.LeadID == "lead-1"
	})).Return(nil)

	uc := usecase.NewMutateLeadUseCase(leads, stages, producer)
	out, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "lead-1",
		Action:   crm.ActionUpdateStatus,
		Data:     crm.ActionData{Status: "contacted"},
	})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "contacted", out.Lead.CRMStatus)
	leads.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestMutateLeadNotFound(t *testing.T) {
	leads := new(MockLeadRepository)
	stages := new(MockStageRepository)

	leads.On("FindByID", mock.Anything, "client-1", "web", "ghost").Return(nil, nil)

	uc := usecase.NewMutateLeadUseCase(leads, stages, nil)
	_, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "ghost",
		Action:   crm.ActionAddNote,
		Data:     crm.ActionData{Text: "hola"},
	})

	require.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
	assert.Equal(t, "LEAD_NOT_FOUND", err.(*usecase.DomainError).Code)
}

func TestMutateLeadMissingClientID(t *testing.T) {
	uc := usecase.NewMutateLeadUseCase(new(MockLeadRepository), new(MockStageRepository), nil)

	_, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		LeadID: "lead-1",
		Action: crm.ActionAddNote,
	})

	require.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
	assert.Equal(t, "VALIDATION_ERROR", err.(*usecase.DomainError).Code)
}

func TestMutateLeadSaveFailureIsTechnical(t *testing.T) {
	leads := new(MockLeadRepository)
	stages := new(MockStageRepository)

	leads.On("FindByID", mock.Anything, "client-1", "web", "lead-1").Return(storedLead(), nil)
	stages.On("Get", mock.Anything, "client-1").Return(entity.DefaultStages(), nil)
	leads.On("Save", mock.Anything, mock.Anything).Return(errors.New("db caída"))

	uc := usecase.NewMutateLeadUseCase(leads, stages, nil)
	_, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "lead-1",
		Action:   crm.ActionUpdateStatus,
		Data:     crm.ActionData{Status: "won"},
	})

	require.Error(t, err)
	assert.True(t, usecase.IsTechnicalError(err))
}

func TestMutateLeadHotTemperaturePublishesHotEvent(t *testing.T) {
	leads := new(MockLeadRepository)
	stages := new(MockStageRepository)
	producer := new(MockQueueProducer)

	leads.On("FindByID", mock.Anything, "client-1", "web", "lead-1").Return(storedLead(), nil)
	stages.On("Get", mock.Anything, "client-1").Return(entity.DefaultStages(), nil)
	leads.On("Save", mock.Anything, mock.Anything).Return(nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Type == queue.EventLeadHot && p.Temperature == "hot"
	})).Return(nil)

	uc := usecase.NewMutateLeadUseCase(leads, stages, producer)
	_, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "lead-1",
		Action:   crm.ActionUpdateTemperature,
		Data:     crm.ActionData{Temperature: "hot"},
	})

	require.NoError(t, err)
	producer.AssertExpectations(t)
}

func TestMutateLeadEventFailureDoesNotFailMutation(t *testing.T) {
	leads := new(MockLeadRepository)
	stages := new(MockStageRepository)
	producer := new(MockQueueProducer)

	leads.On("FindByID", mock.Anything, "client-1", "web", "lead-1").Return(storedLead(), nil)
	stages.On("Get", mock.Anything, "client-1").Return(entity.DefaultStages(), nil)
	leads.On("Save", mock.Anything, mock.Anything).Return(nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker fuera"))

	uc := usecase.NewMutateLeadUseCase(leads, stages, producer)
	out, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "lead-1",
		Action:   crm.ActionAddNote,
		Data:     crm.ActionData{Text: "seguir mañana"},
	})

	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestMutateLeadCreateLead(t *testing.T) {
	leads := new(MockLeadRepository)
	producer := new(MockQueueProducer)
	name := "Luis"

	leads.On("Save", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.ClientID == "client-1" && l.Channel == entity.ChannelManual && l.Contact.Name == "Luis"
	})).Return(nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Type == queue.EventLeadCreated
	})).Return(nil)

	uc := usecase.NewMutateLeadUseCase(leads, new(MockStageRepository), producer)
	out, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Action:   crm.ActionCreateLead,
		Data:     crm.ActionData{Name: &name},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Lead.LeadID)
	leads.AssertExpectations(t)
}

func TestMutateLeadCreateLeadNeedsSomeContact(t *testing.T) {
	uc := usecase.NewMutateLeadUseCase(new(MockLeadRepository), new(MockStageRepository), nil)

	_, err := uc.Execute(context.Background(), usecase.MutateLeadInput{
		ClientID: "client-1",
		Action:   crm.ActionCreateLead,
	})

	require.Error(t, err)
	assert.True(t, usecase.IsDomainError(err))
}

func TestDeleteLead(t *testing.T) {
	leads := new(MockLeadRepository)
	producer := new(MockQueueProducer)

	leads.On("FindByID", mock.Anything, "client-1", "web", "lead-1").Return(storedLead(), nil)
	leads.On("Delete", mock.Anything, "client-1", "web", "lead-1").Return(nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Type == queue.EventLeadDeleted
	})).Return(nil)

	uc := usecase.NewDeleteLeadUseCase(leads, producer)
	err := uc.Execute(context.Background(), usecase.DeleteLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "lead-1",
	})

	require.NoError(t, err)
	leads.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestDeleteLeadNotFound(t *testing.T) {
	leads := new(MockLeadRepository)
	leads.On("FindByID", mock.Anything, "client-1", "web", "ghost").Return(nil, nil)

	uc := usecase.NewDeleteLeadUseCase(leads, nil)
	err := uc.Execute(context.Background(), usecase.DeleteLeadInput{
		ClientID: "client-1",
		Channel:  "web",
		LeadID:   "ghost",
	})

	require.Error(t, err)
	assert.Equal(t, "LEAD_NOT_FOUND", err.(*usecase.DomainError).Code)
}
