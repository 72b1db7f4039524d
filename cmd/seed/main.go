package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/database"
)

// Crea el esquema y carga los datos de demo: las dos cuentas de prueba
// del panel, el pipeline de serie y un puñado de leads y conversaciones
// inventados por cada cliente.
func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Base de datos inaccesible: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := createSchema(ctx, db); err != nil {
		log.Fatalf("❌ Error creando el esquema: %v", err)
	}
	log.Println("✅ Esquema listo")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Error sembrando usuarios: %v", err)
	}

	clients := []string{"client-demo", "rest123", "clinic456", "gym789"}
	leadRepo := database.NewLeadRepository(db)
	stageRepo := database.NewStageRepository(db)

	gofakeit.Seed(42)
	for _, clientID := range clients {
		if err := stageRepo.Save(ctx, clientID, entity.DefaultStages()); err != nil {
			log.Fatalf("❌ Error sembrando estados de %s: %v", clientID, err)
		}
		if err := seedLeads(ctx, leadRepo, clientID); err != nil {
			log.Fatalf("❌ Error sembrando leads de %s: %v", clientID, err)
		}
		if err := seedConversations(ctx, db, clientID); err != nil {
			log.Fatalf("❌ Error sembrando conversaciones de %s: %v", clientID, err)
		}
		log.Printf("✅ Cliente %s sembrado", clientID)
	}

	log.Println("🌱 Seed completado")
}

func createSchema(ctx context.Context, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			client_id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			account_type TEXT NOT NULL DEFAULT 'individual',
			managed_clients JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			lead_id TEXT NOT NULL,
			client_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT 'web',
			contact JSONB NOT NULL DEFAULT '{}',
			source_contact JSONB NOT NULL DEFAULT '{}',
			qualification JSONB NOT NULL DEFAULT '{}',
			crm_status TEXT NOT NULL DEFAULT '',
			deal_value INTEGER NOT NULL DEFAULT 0,
			notes JSONB NOT NULL DEFAULT '[]',
			timeline JSONB NOT NULL DEFAULT '[]',
			conversation_id TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (client_id, lead_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_listing ON leads (client_id, created_at DESC, lead_id DESC)`,
		`CREATE TABLE IF NOT EXISTS crm_settings (
			client_id TEXT PRIMARY KEY,
			stages JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT NOT NULL,
			client_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT 'web',
			sender TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			messages JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (client_id, conversation_id)
		)`,
		`CREATE TABLE IF NOT EXISTS qualitative_reports (
			client_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT '',
			report JSONB NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			client_id TEXT NOT NULL,
			channel TEXT NOT NULL DEFAULT 'web',
			file_name TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			content_type TEXT NOT NULL DEFAULT '',
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (client_id, channel, file_name)
		)`,
		`CREATE TABLE IF NOT EXISTS bot_configs (
			client_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			config JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (client_id, channel)
		)`,
		`CREATE TABLE IF NOT EXISTS channel_credentials (
			client_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			credentials JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (client_id, kind)
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(ctx context.Context, db *sql.DB) error {
	userRepo := database.NewUserRepository(db)

	hash := func(pw string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		return string(h)
	}

	users := []entity.User{
		{
			ClientID:     "client-demo",
			Username:     "María",
			Email:        "hola@gmail.com",
			PasswordHash: hash("hola"),
			AccountType:  entity.AccountTypeIndividual,
			CreatedAt:    time.Now().UTC(),
		},
		{
			ClientID:     "agency-demo",
			Username:     "Agencia Digital",
			Email:        "agencia@test.com",
			PasswordHash: hash("agencia"),
			AccountType:  entity.AccountTypeAgency,
			ManagedClients: []entity.ManagedClient{
				{ClientID: "rest123", Name: "Restaurante El Sol"},
				{ClientID: "clinic456", Name: "Clínica Dental Sonrisa"},
				{ClientID: "gym789", Name: "Gimnasio PowerFit"},
			},
			CreatedAt: time.Now().UTC(),
		},
	}

	for _, u := range users {
		if err := userRepo.Create(ctx, &u); err != nil {
			// re-ejecutar el seed no debe reventar por los UNIQUE
			log.Printf("⚠️ Usuario %s no insertado (¿ya existe?): %v", u.Email, err)
		}
	}
	return nil
}

func seedLeads(ctx context.Context, leadRepo *database.LeadRepository, clientID string) error {
	channels := []string{"web", "whatsapp", "email"}
	temperatures := []string{"hot", "warm", "cold"}
	statuses := []string{"new", "contacted", "negotiation", "proposal", "won", "lost"}

	for i := 0; i < 35; i++ {
		name := gofakeit.Name()
		createdAt := time.Now().UTC().AddDate(0, 0, -gofakeit.Number(0, 29))
		channel := channels[gofakeit.Number(0, len(channels)-1)]

		lead := &entity.Lead{
			LeadID:   uuid.New().String(),
			ClientID: clientID,
			Channel:  channel,
			Contact: entity.Contact{
				Name:  name,
				Email: gofakeit.Email(),
				Phone: fmt.Sprintf("+346%08d", gofakeit.Number(0, 99999999)),
			},
			SourceContact: entity.SourceContact{
				Type:  channel,
				Name:  name,
				Email: gofakeit.Email(),
			},
			Qualification: entity.Qualification{
				Temperature: temperatures[gofakeit.Number(0, 2)],
				Score:       gofakeit.Number(1, 10),
			},
			CRMStatus:   statuses[gofakeit.Number(0, len(statuses)-1)],
			DealValue:   gofakeit.Number(0, 50) * 100,
			CreatedAt:   createdAt,
			LastUpdated: createdAt,
		}

		if err := leadRepo.Save(ctx, lead); err != nil {
			return err
		}
	}
	return nil
}

func seedConversations(ctx context.Context, db *sql.DB, clientID string) error {
	channels := []string{"web", "whatsapp", "email"}

	for i := 0; i < 20; i++ {
		startedAt := time.Now().UTC().AddDate(0, 0, -gofakeit.Number(0, 13)).
			Add(time.Duration(gofakeit.Number(9, 20)) * time.Hour)

		messages := []entity.Message{}
		at := startedAt
		for m := 0; m < gofakeit.Number(2, 8); m++ {
			role := entity.RoleUser
			if m%2 == 1 {
				role = entity.RoleAssistant
				at = at.Add(time.Duration(gofakeit.Number(2, 30)) * time.Second)
			} else if m > 0 {
				at = at.Add(time.Duration(gofakeit.Number(1, 5)) * time.Minute)
			}
			messages = append(messages, entity.Message{
				Role:      role,
				Content:   gofakeit.Sentence(gofakeit.Number(4, 12)),
				Timestamp: at,
			})
		}

		raw, _ := json.Marshal(messages)
		_, err := db.ExecContext(ctx, `
			INSERT INTO conversations (conversation_id, client_id, channel, sender, started_at, messages)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (client_id, conversation_id) DO NOTHING
		`, uuid.New().String(), clientID, channels[gofakeit.Number(0, 2)], gofakeit.Name(), startedAt, raw)
		if err != nil {
			return err
		}
	}
	return nil
}
