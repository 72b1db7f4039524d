package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"

	"github.com/lib/pq"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT client_id, username, email, password_hash, account_type, managed_clients, created_at
		FROM users
		WHERE email = $1
	`, email)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	managed, _ := json.Marshal(user.ManagedClients)

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (client_id, username, email, password_hash, account_type, managed_clients, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ClientID, user.Username, user.Email, user.PasswordHash, user.AccountType, managed, user.CreatedAt)

	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errors.New("el email ya está registrado")
		}
		log.Printf("Error crítico en la base de datos: %v", err)
		return err
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT client_id, username, email, password_hash, account_type, managed_clients, created_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// FindOwnerEmail resuelve a quién avisar por un clientId: el dueño
// directo o, si la cuenta la lleva una agencia, la agencia.
func (r *UserRepository) FindOwnerEmail(ctx context.Context, clientID string) (string, error) {
	var email string
	err := r.DB.QueryRowContext(ctx, `
		SELECT email FROM users
		WHERE client_id = $1
		   OR managed_clients @> jsonb_build_array(jsonb_build_object('clientId', $1::text))
		ORDER BY (client_id = $1) DESC
		LIMIT 1
	`, clientID).Scan(&email)
	if err == sql.ErrNoRows {
		return "", entity.ErrUserNotFound
	}
	return email, err
}

func scanUser(row rowScanner) (*entity.User, error) {
	var user entity.User
	var managed []byte

	err := row.Scan(
		&user.ClientID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AccountType,
		&managed,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(managed, &user.ManagedClients)
	return &user, nil
}
