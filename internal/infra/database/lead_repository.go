package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `lead_id, client_id, channel, contact, source_contact, qualification,
	crm_status, deal_value, notes, timeline, conversation_id, created_at, last_updated`

// List pagina por keyset (created_at, lead_id) descendente. lastKey es el
// lead_id de la última fila que ya tiene el panel; pedimos limit+1 filas
// para saber si queda más detrás sin un COUNT aparte.
func (r *LeadRepository) List(ctx context.Context, clientID, channel string, since time.Time, lastKey string, limit int) (*entity.LeadPage, error) {
	if limit <= 0 {
		limit = 20
	}

	// el cursor se resuelve aparte: si la fila ya no existe (lead borrado
	// entre páginas) se sirve desde el principio en vez de una página vacía
	var cursorAt any
	if lastKey != "" {
		var at time.Time
		err := r.DB.QueryRowContext(ctx,
			`SELECT created_at FROM leads WHERE client_id = $1 AND lead_id = $2`,
			clientID, lastKey,
		).Scan(&at)
		switch {
		case err == sql.ErrNoRows:
			lastKey = ""
		case err != nil:
			return nil, fmt.Errorf("error resolviendo el cursor de leads: %w", err)
		default:
			cursorAt = at
		}
	}

	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE client_id = $1
		  AND ($2 = '' OR channel = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR (created_at, lead_id) < ($4::timestamptz, $5))
		ORDER BY created_at DESC, lead_id DESC
		LIMIT $6
	`

	var sinceArg any
	if !since.IsZero() {
		sinceArg = since
	}

	rows, err := r.DB.QueryContext(ctx, query, clientID, channel, sinceArg, cursorAt, lastKey, limit+1)
	if err != nil {
		return nil, fmt.Errorf("error listando leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &entity.LeadPage{Leads: leads}
	if len(leads) > limit {
		page.Leads = leads[:limit]
		page.HasMore = true
		page.NextKey = page.Leads[limit-1].LeadID
	}
	return page, nil
}

func (r *LeadRepository) Summary(ctx context.Context, clientID, channel string, since time.Time) (*entity.LeadSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE qualification->>'temperature' = 'hot'),
			COUNT(*) FILTER (WHERE qualification->>'temperature' = 'warm'),
			COUNT(*) FILTER (WHERE qualification->>'temperature' = 'cold')
		FROM leads
		WHERE client_id = $1
		  AND ($2 = '' OR channel = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
	`

	var sinceArg any
	if !since.IsZero() {
		sinceArg = since
	}

	var s entity.LeadSummary
	err := r.DB.QueryRowContext(ctx, query, clientID, channel, sinceArg).
		Scan(&s.Total, &s.Hot, &s.Warm, &s.Cold)
	if err != nil {
		return nil, fmt.Errorf("error calculando el resumen de leads: %w", err)
	}
	return &s, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, clientID, channel, leadID string) (*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE client_id = $1 AND lead_id = $2 AND ($3 = '' OR channel = $3)
	`

	row := r.DB.QueryRowContext(ctx, query, clientID, leadID, channel)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) Save(ctx context.Context, lead *entity.Lead) error {
	contact, _ := json.Marshal(lead.Contact)
	source, _ := json.Marshal(lead.SourceContact)
	qualification, _ := json.Marshal(lead.Qualification)
	notes, _ := json.Marshal(lead.Notes)
	timeline, _ := json.Marshal(lead.Timeline)

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (client_id, lead_id)
		DO UPDATE SET
			contact = EXCLUDED.contact,
			source_contact = EXCLUDED.source_contact,
			qualification = EXCLUDED.qualification,
			crm_status = EXCLUDED.crm_status,
			deal_value = EXCLUDED.deal_value,
			notes = EXCLUDED.notes,
			timeline = EXCLUDED.timeline,
			last_updated = EXCLUDED.last_updated
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.LeadID,
		lead.ClientID,
		lead.Channel,
		contact,
		source,
		qualification,
		lead.CRMStatus,
		lead.DealValue,
		notes,
		timeline,
		nullString(lead.ConversationID),
		lead.CreatedAt,
		lead.LastUpdated,
	)
	if err != nil {
		log.Printf("Error crítico en la base de datos: %v", err)
		return err
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, clientID, channel, leadID string) error {
	query := `DELETE FROM leads WHERE client_id = $1 AND lead_id = $2 AND ($3 = '' OR channel = $3)`
	_, err := r.DB.ExecContext(ctx, query, clientID, leadID, channel)
	return err
}

// CountByStatus agrupa los leads por estado. Un crm_status vacío cuenta
// en el bucket reservado "new", igual que hace el tablero.
func (r *LeadRepository) CountByStatus(ctx context.Context, clientID string, statusIDs []string) (map[string]int, error) {
	query := `
		SELECT COALESCE(NULLIF(crm_status, ''), 'new') AS status, COUNT(*)
		FROM leads
		WHERE client_id = $1
		  AND COALESCE(NULLIF(crm_status, ''), 'new') = ANY($2)
		GROUP BY status
	`

	rows, err := r.DB.QueryContext(ctx, query, clientID, pq.Array(statusIDs))
	if err != nil {
		return nil, fmt.Errorf("error contando leads por estado: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) MigrateStatus(ctx context.Context, clientID string, migrations []entity.StageMigration) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	for _, m := range migrations {
		res, err := tx.ExecContext(ctx, `
			UPDATE leads
			SET crm_status = $3, last_updated = NOW()
			WHERE client_id = $1
			  AND COALESCE(NULLIF(crm_status, ''), 'new') = $2
		`, clientID, m.FromStatus, m.ToStatus)
		if err != nil {
			return 0, fmt.Errorf("error migrando leads de %s a %s: %w", m.FromStatus, m.ToStatus, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *LeadRepository) CreatedSince(ctx context.Context, clientID string, since time.Time) ([]entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE client_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query, clientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var contact, source, qualification, notes, timeline []byte
	var conversationID sql.NullString

	err := row.Scan(
		&lead.LeadID,
		&lead.ClientID,
		&lead.Channel,
		&contact,
		&source,
		&qualification,
		&lead.CRMStatus,
		&lead.DealValue,
		&notes,
		&timeline,
		&conversationID,
		&lead.CreatedAt,
		&lead.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(contact, &lead.Contact)
	json.Unmarshal(source, &lead.SourceContact)
	json.Unmarshal(qualification, &lead.Qualification)
	json.Unmarshal(notes, &lead.Notes)
	json.Unmarshal(timeline, &lead.Timeline)
	lead.ConversationID = conversationID.String

	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
