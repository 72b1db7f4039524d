package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// SaveStageSettingsUseCase guarda el pipeline editado en el panel.
// Si se borraron estados con leads dentro, exige un plan de migración
// completo antes de tocar nada, y persiste estados + migración como
// una sola unidad compensable.
type SaveStageSettingsUseCase struct {
	Stages entity.StageRepository
	Leads  entity.LeadRepository
}

func NewSaveStageSettingsUseCase(stages entity.StageRepository, leads entity.LeadRepository) *SaveStageSettingsUseCase {
	return &SaveStageSettingsUseCase{Stages: stages, Leads: leads}
}

func (uc *SaveStageSettingsUseCase) Execute(ctx context.Context, input SaveStagesInput) (*SaveStagesOutput, error) {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: joinValidationErrors(errs),
		}
	}

	if err := crm.ValidateStageSet(input.Stages); err != nil {
		if errors.Is(err, entity.ErrStageSetEmpty) {
			return nil, &DomainError{
				Code:    "EMPTY_STAGE_SET",
				Message: "Debe haber al menos un estado",
			}
		}
		return nil, &DomainError{Code: "INVALID_STAGES", Message: err.Error()}
	}
	for _, s := range input.Stages {
		if s.Color != "" && !isValidHexColor(s.Color) {
			return nil, &DomainError{
				Code:    "INVALID_STAGES",
				Message: "color inválido para el estado " + s.ID + ": " + s.Color,
			}
		}
	}

	current, err := uc.Stages.Get(ctx, input.ClientID)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudieron cargar los estados actuales: " + err.Error(),
		}
	}

	deleted := crm.DeletedStages(current, input.Stages)

	var conflicts []crm.StageConflict
	if len(deleted) > 0 {
		ids := make([]string, len(deleted))
		for i, d := range deleted {
			ids[i] = d.ID
		}
		counts, err := uc.Leads.CountByStatus(ctx, input.ClientID, ids)
		if err != nil {
			return nil, &TechnicalError{
				Code:    "DATABASE_ERROR",
				Message: "no se pudieron contar los leads afectados: " + err.Error(),
			}
		}
		conflicts = crm.ConflictsFromCounts(deleted, counts)
	}

	if err := crm.ValidateMigrations(conflicts, input.Migrations, input.Stages); err != nil {
		return nil, &DomainError{
			Code:    "MIGRATION_REQUIRED",
			Message: err.Error(),
		}
	}

	ranked := crm.Rerank(input.Stages)

	var migrated int64
	txn := NewTransaction()
	txn.AddOperation("save_stages", func(ctx context.Context) error {
		return uc.Stages.Save(ctx, input.ClientID, ranked)
	})
	txn.AddCompensation("restore_stages", func(ctx context.Context) error {
		return uc.Stages.Save(ctx, input.ClientID, current)
	})
	if len(input.Migrations) > 0 {
		txn.AddOperation("migrate_leads", func(ctx context.Context) error {
			n, err := uc.Leads.MigrateStatus(ctx, input.ClientID, input.Migrations)
			migrated = n
			return err
		})
	}

	if err := txn.Execute(ctx); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "no se pudieron guardar los estados: " + err.Error(),
		}
	}

	log.Printf("✅ Estados CRM guardados para %s (%d etapas, %d leads migrados)",
		input.ClientID, len(ranked), migrated)

	return &SaveStagesOutput{Success: true, Stages: ranked, Migrated: migrated}, nil
}
