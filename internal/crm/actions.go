// Package crm holds the pure lead/pipeline logic shared by the API and the
// dashboard SDK: mutation snapshots, stage-set diffing with migrations,
// in-memory filtering and exports. No I/O here.
package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type Action string

const (
	ActionUpdateStatus      Action = "updateStatus"
	ActionAddNote           Action = "addNote"
	ActionDeleteNote        Action = "deleteNote"
	ActionUpdateDealValue   Action = "updateDealValue"
	ActionUpdateContact     Action = "updateContact"
	ActionUpdateTemperature Action = "updateTemperature"
	ActionCreateLead        Action = "createLead"
)

// ActionData carries the payload of every mutation in one envelope, same
// shape the dashboard always sent ({action, data}).
type ActionData struct {
	Status      string  `json:"status,omitempty"`
	Text        string  `json:"text,omitempty"`
	NoteID      string  `json:"noteId,omitempty"`
	Value       *int    `json:"value,omitempty"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Temperature string  `json:"temperature,omitempty"`

	// createLead only
	DealValue int    `json:"dealValue,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

var temperatureLabels = map[string]string{
	entity.TemperatureHot:  "Caliente",
	entity.TemperatureWarm: "Tibio",
	entity.TemperatureCold: "Frío",
}

// TemperatureLabel devuelve la etiqueta visible de una temperatura.
func TemperatureLabel(temp string) string {
	if label, ok := temperatureLabels[temp]; ok {
		return label
	}
	return temp
}

// StageLabel resolves a stage id against the configured set, falling back to
// the raw id for stages that no longer exist.
func StageLabel(stages []entity.PipelineStage, id string) string {
	for _, s := range stages {
		if s.ID == id {
			return s.Label
		}
	}
	return id
}

// Apply derives the post-mutation snapshot of a lead. It never touches the
// input: callers keep the original as the rollback pre-image. The returned
// message is the user-facing confirmation for the action.
func Apply(lead *entity.Lead, action Action, data ActionData, stages []entity.PipelineStage, now time.Time) (*entity.Lead, string, error) {
	if lead == nil {
		return nil, "", fmt.Errorf("apply %s: nil lead", action)
	}

	next := lead.Clone()
	var msg string

	switch action {
	case ActionUpdateStatus:
		label := StageLabel(stages, data.Status)
		next.CRMStatus = data.Status
		appendTimeline(next, "status_change", now, "Estado cambiado a: "+label)
		msg = "Estado actualizado: " + label

	case ActionAddNote:
		next.Notes = append(next.Notes, entity.Note{
			ID:        uuid.NewString(),
			Text:      data.Text,
			CreatedAt: now,
		})
		appendTimeline(next, "note_added", now, "Nota añadida")
		msg = "Nota añadida"

	case ActionDeleteNote:
		kept := next.Notes[:0]
		for _, n := range next.Notes {
			if n.ID != data.NoteID {
				kept = append(kept, n)
			}
		}
		next.Notes = kept
		msg = "Nota eliminada"

	case ActionUpdateDealValue:
		if data.Value == nil {
			return nil, "", fmt.Errorf("updateDealValue: missing value")
		}
		if *data.Value < 0 {
			return nil, "", fmt.Errorf("updateDealValue: negative value %d", *data.Value)
		}
		next.DealValue = *data.Value
		desc := fmt.Sprintf("Valor del deal: %d€", *data.Value)
		appendTimeline(next, "deal_value_changed", now, desc)
		msg = desc

	case ActionUpdateContact:
		if data.Name != nil {
			next.Contact.Name = *data.Name
		}
		if data.Email != nil {
			next.Contact.Email = *data.Email
		}
		if data.Phone != nil {
			next.Contact.Phone = *data.Phone
		}
		appendTimeline(next, "contact_updated", now, "Datos de contacto actualizados")
		msg = "Contacto actualizado"

	case ActionUpdateTemperature:
		if _, ok := temperatureLabels[data.Temperature]; !ok {
			return nil, "", fmt.Errorf("updateTemperature: unknown temperature %q", data.Temperature)
		}
		next.Qualification.Temperature = data.Temperature
		label := TemperatureLabel(data.Temperature)
		appendTimeline(next, "temperature_changed", now, "Temperatura cambiada a: "+label)
		msg = "Temperatura: " + label

	default:
		return nil, "", fmt.Errorf("acción CRM desconocida: %q", action)
	}

	next.LastUpdated = now
	return next, msg, nil
}

// NewLead builds a manually created lead from the dashboard's creation form.
func NewLead(clientID string, data ActionData, now time.Time) *entity.Lead {
	contact := entity.Contact{}
	if data.Name != nil {
		contact.Name = *data.Name
	}
	if data.Email != nil {
		contact.Email = *data.Email
	}
	if data.Phone != nil {
		contact.Phone = *data.Phone
	}

	temp := data.Temperature
	if _, ok := temperatureLabels[temp]; !ok {
		temp = entity.TemperatureCold
	}
	status := data.Status
	if status == "" {
		status = entity.StatusNew
	}

	lead := &entity.Lead{
		LeadID:   uuid.NewString(),
		ClientID: clientID,
		Channel:  entity.ChannelManual,
		Contact:  contact,
		SourceContact: entity.SourceContact{
			Type:  entity.ChannelManual,
			Name:  contact.Name,
			Email: contact.Email,
			Phone: contact.Phone,
		},
		Qualification: entity.Qualification{Temperature: temp, Score: 5},
		CRMStatus:     status,
		DealValue:     data.DealValue,
		CreatedAt:     now,
		LastUpdated:   now,
	}

	appendTimeline(lead, "created", now, "Lead creado manualmente")
	if data.Notes != "" {
		lead.Notes = append(lead.Notes, entity.Note{
			ID:        uuid.NewString(),
			Text:      data.Notes,
			CreatedAt: now,
		})
	}
	return lead
}

func appendTimeline(lead *entity.Lead, entryType string, now time.Time, description string) {
	lead.Timeline = append(lead.Timeline, entity.TimelineEntry{
		ID:          uuid.NewString(),
		Type:        entryType,
		Timestamp:   now,
		Description: description,
	})
}
