package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

func demoUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{
		ClientID:     "client-1",
		Username:     "María",
		Email:        "hola@gmail.com",
		PasswordHash: string(hash),
		AccountType:  entity.AccountTypeIndividual,
	}
}

func TestLoginHappyPath(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)

	users.On("FindByEmail", mock.Anything, "hola@gmail.com").Return(demoUser(t, "hola"), nil)
	tokens.On("Generate", "client-1", "hola@gmail.com", entity.AccountTypeIndividual).
		Return("jwt-token", nil)

	uc := usecase.NewLoginUseCase(users, tokens)
	out, err := uc.Execute(context.Background(), usecase.LoginInput{
		Email:    "Hola@Gmail.com", // el email se normaliza a minúsculas
		Password: "hola",
	})

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", out.Token)
	assert.Equal(t, "client-1", out.ClientID)
	assert.Equal(t, "María", out.Username)
	assert.Empty(t, out.ManagedClients)
}

func TestLoginAgencyReturnsManagedClients(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenIssuer)

	agency := demoUser(t, "agencia")
	agency.Email = "agencia@test.com"
	agency.AccountType = entity.AccountTypeAgency
	agency.ManagedClients = []entity.ManagedClient{
		{ClientID: "rest123", Name: "Restaurante El Sol"},
		{ClientID: "clinic456", Name: "Clínica Dental"},
		{ClientID: "gym789", Name: "Gimnasio Fuerte"},
	}

	users.On("FindByEmail", mock.Anything, "agencia@test.com").Return(agency, nil)
	tokens.On("Generate", "client-1", "agencia@test.com", entity.AccountTypeAgency).
		Return("jwt-token", nil)

	uc := usecase.NewLoginUseCase(users, tokens)
	out, err := uc.Execute(context.Background(), usecase.LoginInput{
		Email:    "agencia@test.com",
		Password: "agencia",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.AccountTypeAgency, out.AccountType)
	require.Len(t, out.ManagedClients, 3)
	assert.Equal(t, "rest123", out.ManagedClients[0].ClientID)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)

	users.On("FindByEmail", mock.Anything, "hola@gmail.com").Return(demoUser(t, "hola"), nil)

	uc := usecase.NewLoginUseCase(users, new(MockTokenIssuer))
	_, err := uc.Execute(context.Background(), usecase.LoginInput{
		Email:    "hola@gmail.com",
		Password: "adios",
	})

	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", err.(*usecase.DomainError).Code)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	users := new(MockUserRepository)

	users.On("FindByEmail", mock.Anything, "nadie@test.com").Return(nil, entity.ErrUserNotFound)

	uc := usecase.NewLoginUseCase(users, new(MockTokenIssuer))
	_, err := uc.Execute(context.Background(), usecase.LoginInput{
		Email:    "nadie@test.com",
		Password: "loquesea",
	})

	require.Error(t, err)
	// mismo código y mensaje que la contraseña mala
	assert.Equal(t, "INVALID_CREDENTIALS", err.(*usecase.DomainError).Code)
}

func TestLoginValidatesInput(t *testing.T) {
	uc := usecase.NewLoginUseCase(new(MockUserRepository), new(MockTokenIssuer))

	_, err := uc.Execute(context.Background(), usecase.LoginInput{Email: "no-es-un-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.(*usecase.DomainError).Code)

	_, err = uc.Execute(context.Background(), usecase.LoginInput{Email: "hola@gmail.com"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.(*usecase.DomainError).Code)
}
