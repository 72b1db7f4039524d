package entity

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("usuario no encontrado")

const (
	AccountTypeIndividual = "individual"
	AccountTypeAgency     = "agency"
)

// ManagedClient is one account an agency user can administer.
type ManagedClient struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
}

type User struct {
	ClientID       string          `json:"clientId"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	AccountType    string          `json:"accountType"` // individual | agency
	ManagedClients []ManagedClient `json:"managedClients"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (u *User) IsAgency() bool {
	return u.AccountType == AccountTypeAgency
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	List(ctx context.Context) ([]User, error)
}
