package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type LoginUseCase struct {
	Users  entity.UserRepository
	Tokens TokenIssuer
}

func NewLoginUseCase(users entity.UserRepository, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{Users: users, Tokens: tokens}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(errs),
		}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			// mismo mensaje que la contraseña mala, no regalamos pistas
			return nil, &DomainError{
				Code:    "INVALID_CREDENTIALS",
				Message: "Email o contraseña incorrectos",
			}
		}
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudo consultar el usuario: " + err.Error(),
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, &DomainError{
			Code:    "INVALID_CREDENTIALS",
			Message: "Email o contraseña incorrectos",
		}
	}

	token, err := uc.Tokens.Generate(user.ClientID, user.Email, user.AccountType)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "TOKEN_ERROR",
			Message: "no se pudo emitir el token: " + err.Error(),
		}
	}

	log.Printf("🔐 Login correcto: %s (%s)", user.Email, user.AccountType)

	return &LoginOutput{
		Token:          token,
		ClientID:       user.ClientID,
		Username:       user.Username,
		Email:          user.Email,
		AccountType:    user.AccountType,
		ManagedClients: user.ManagedClients,
	}, nil
}
