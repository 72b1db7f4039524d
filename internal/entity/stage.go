package entity

import (
	"context"
	"errors"
)

var ErrStageSetEmpty = errors.New("debe haber al menos un estado")

// PipelineStage is one column of the CRM board. The stage set is owned per
// client; only the ids are referenced from leads (Lead.CRMStatus).
type PipelineStage struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

// StageMigration reassigns every lead in FromStatus to ToStatus. Only built
// while saving a stage set that deletes referenced stages; never persisted.
type StageMigration struct {
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
}

// DefaultStages is the stage set a client starts with before configuring
// anything (mirrors the dashboard fallback).
func DefaultStages() []PipelineStage {
	return []PipelineStage{
		{ID: StatusNew, Label: "Nuevo", Color: "#3B82F6", Order: 0},
		{ID: "contacted", Label: "Contactado", Color: "#EAB308", Order: 1},
		{ID: "negotiation", Label: "En negociación", Color: "#F97316", Order: 2},
		{ID: "proposal", Label: "Propuesta", Color: "#A855F7", Order: 3},
		{ID: "won", Label: "Ganado", Color: "#22C55E", Order: 4},
		{ID: "lost", Label: "Perdido", Color: "#EF4444", Order: 5},
	}
}

type StageRepository interface {
	Get(ctx context.Context, clientID string) ([]PipelineStage, error)
	Save(ctx context.Context, clientID string, stages []PipelineStage) error
}
