package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

func TestDailyDigestSendsOnlyWhenThereAreNewLeads(t *testing.T) {
	users := new(MockUserRepository)
	leads := new(MockLeadRepository)
	email := new(MockEmailService)

	users.On("List", mock.Anything).Return([]entity.User{
		{ClientID: "client-1", Username: "María", Email: "hola@gmail.com", AccountType: entity.AccountTypeIndividual},
		{ClientID: "client-2", Username: "Pepe", Email: "pepe@test.com", AccountType: entity.AccountTypeIndividual},
	}, nil)
	leads.On("CreatedSince", mock.Anything, "client-1", mock.Anything).
		Return([]entity.Lead{{LeadID: "l1"}, {LeadID: "l2"}}, nil)
	leads.On("CreatedSince", mock.Anything, "client-2", mock.Anything).
		Return([]entity.Lead{}, nil)
	email.On("SendDailyDigest", "hola@gmail.com", "María", mock.Anything).Return(nil)

	uc := usecase.NewDailyDigestUseCase(users, leads, email)
	require.NoError(t, uc.Execute(context.Background()))

	email.AssertNumberOfCalls(t, "SendDailyDigest", 1)
}

func TestDailyDigestAgencyAggregatesManagedClients(t *testing.T) {
	users := new(MockUserRepository)
	leads := new(MockLeadRepository)
	email := new(MockEmailService)

	users.On("List", mock.Anything).Return([]entity.User{{
		ClientID:    "agency-1",
		Username:    "Agencia Digital",
		Email:       "agencia@test.com",
		AccountType: entity.AccountTypeAgency,
		ManagedClients: []entity.ManagedClient{
			{ClientID: "rest123"}, {ClientID: "gym789"},
		},
	}}, nil)
	leads.On("CreatedSince", mock.Anything, "rest123", mock.Anything).
		Return([]entity.Lead{{LeadID: "a"}}, nil)
	leads.On("CreatedSince", mock.Anything, "gym789", mock.Anything).
		Return([]entity.Lead{{LeadID: "b"}}, nil)
	email.On("SendDailyDigest", "agencia@test.com", "Agencia Digital", mock.MatchedBy(func(ls []entity.Lead) bool {
		return len(ls) == 2
	})).Return(nil)

	uc := usecase.NewDailyDigestUseCase(users, leads, email)
	require.NoError(t, uc.Execute(context.Background()))

	email.AssertExpectations(t)
	// la cuenta propia de la agencia no se consulta, solo las gestionadas
	leads.AssertNotCalled(t, "CreatedSince", mock.Anything, "agency-1", mock.Anything)
}
