package entity

import (
	"context"
	"time"
)

// Temperaturas de cualificación
const (
	TemperatureHot  = "hot"
	TemperatureWarm = "warm"
	TemperatureCold = "cold"
)

// Canales de captura
const (
	ChannelWeb      = "web"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelManual   = "manual"
)

// StatusNew is the fallback pipeline bucket. It is the only stage id the
// code is allowed to recognize; every other stage comes from configuration.
const StatusNew = "new"

type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SourceContact is the contact info exactly as the bot captured it,
// plus the channel it came through. Never edited from the dashboard.
type SourceContact struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Qualification struct {
	Temperature string `json:"temperature"` // hot | warm | cold
	Score       int    `json:"score"`       // 0-10
}

type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// TimelineEntry is one line of the lead's audit trail. Append-only.
type TimelineEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

type Lead struct {
	LeadID         string        `json:"leadId"`
	ClientID       string        `json:"clientId"`
	Channel        string        `json:"channel"`
	Contact        Contact       `json:"contact"`
	SourceContact  SourceContact `json:"sourceContact"`
	Qualification  Qualification `json:"qualification"`
	CRMStatus      string        `json:"crmStatus"`
	DealValue      int           `json:"dealValue"`
	Notes          []Note        `json:"notes"`
	Timeline       []TimelineEntry `json:"timeline"`
	ConversationID string        `json:"conversationId,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastUpdated    time.Time     `json:"lastUpdated"`
}

// Status returns the pipeline bucket, falling back to the reserved "new" id.
func (l *Lead) Status() string {
	if l.CRMStatus == "" {
		return StatusNew
	}
	return l.CRMStatus
}

// Temperature falls back to cold, same as the dashboard always did.
func (l *Lead) Temperature() string {
	if l.Qualification.Temperature == "" {
		return TemperatureCold
	}
	return l.Qualification.Temperature
}

// SourceType falls back to manual for leads created from the dashboard.
func (l *Lead) SourceType() string {
	if l.SourceContact.Type == "" {
		return ChannelManual
	}
	return l.SourceContact.Type
}

// Clone returns a deep copy. Mutation handlers snapshot the lead before
// applying an action so the pre-image can be restored on failure.
func (l *Lead) Clone() *Lead {
	c := *l
	c.Notes = append([]Note(nil), l.Notes...)
	c.Timeline = append([]TimelineEntry(nil), l.Timeline...)
	return &c
}

// LeadSummary son los contadores de las tarjetas del dashboard.
type LeadSummary struct {
	Total int `json:"total"`
	Hot   int `json:"hot"`
	Warm  int `json:"warm"`
	Cold  int `json:"cold"`
}

// LeadPage is one keyset-paginated page of leads.
type LeadPage struct {
	Leads   []Lead `json:"leads"`
	HasMore bool   `json:"hasMore"`
	NextKey string `json:"nextKey,omitempty"`
}

type LeadRepository interface {
	List(ctx context.Context, clientID, channel string, since time.Time, lastKey string, limit int) (*LeadPage, error)
	Summary(ctx context.Context, clientID, channel string, since time.Time) (*LeadSummary, error)
	FindByID(ctx context.Context, clientID, channel, leadID string) (*Lead, error)
	Save(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, clientID, channel, leadID string) error
	CountByStatus(ctx context.Context, clientID string, statusIDs []string) (map[string]int, error)
	MigrateStatus(ctx context.Context, clientID string, migrations []StageMigration) (int64, error)
	CreatedSince(ctx context.Context, clientID string, since time.Time) ([]Lead, error)
}
