package usecase

import (
	"context"
	"log"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// DailyDigestUseCase manda a cada usuario un resumen con los leads
// entrados en las últimas 24h. Lo dispara el cron de cmd/api.
type DailyDigestUseCase struct {
	Users entity.UserRepository
	Leads entity.LeadRepository
	Email EmailService
}

func NewDailyDigestUseCase(users entity.UserRepository, leads entity.LeadRepository, email EmailService) *DailyDigestUseCase {
	return &DailyDigestUseCase{Users: users, Leads: leads, Email: email}
}

func (uc *DailyDigestUseCase) Execute(ctx context.Context) error {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudieron listar los usuarios: " + err.Error(),
		}
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	sent := 0

	for _, user := range users {
		clientIDs := []string{user.ClientID}
		if user.IsAgency() {
			clientIDs = clientIDs[:0]
			for _, mc := range user.ManagedClients {
				clientIDs = append(clientIDs, mc.ClientID)
			}
		}

		var leads []entity.Lead
		for _, id := range clientIDs {
			batch, err := uc.Leads.CreatedSince(ctx, id, since)
			if err != nil {
				log.Printf("⚠️ leads de %s ilegibles para el resumen: %v", id, err)
				continue
			}
			leads = append(leads, batch...)
		}

		// sin leads nuevos no hay email
		if len(leads) == 0 {
			continue
		}

		if err := uc.Email.SendDailyDigest(user.Email, user.Username, leads); err != nil {
			log.Printf("⚠️ resumen diario no enviado a %s: %v", user.Email, err)
			continue
		}
		sent++
	}

	log.Printf("📬 Resumen diario: %d emails enviados (%d usuarios)", sent, len(users))
	return nil
}
