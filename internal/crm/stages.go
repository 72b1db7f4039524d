package crm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// StageConflict is one to-be-deleted stage that still has leads on it.
type StageConflict struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NewStage returns a fresh editable stage with a generated id, appended at
// the end of the scratch list by callers.
func NewStage(position int) entity.PipelineStage {
	return entity.PipelineStage{
		ID:    "status_" + uuid.NewString()[:8],
		Label: "Nuevo Estado",
		Color: "#6B7280",
		Order: position,
	}
}

// ValidateStageSet enforces the stage-set invariants: non-empty, unique ids,
// non-blank labels.
func ValidateStageSet(stages []entity.PipelineStage) error {
	if len(stages) == 0 {
		return entity.ErrStageSetEmpty
	}
	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("estado sin id")
		}
		if seen[s.ID] {
			return fmt.Errorf("estado duplicado: %s", s.ID)
		}
		seen[s.ID] = true
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("estado %s sin nombre", s.ID)
		}
	}
	return nil
}

// RemoveStage drops the stage at index from the scratch list, refusing to
// empty it. The original slice is left untouched.
func RemoveStage(stages []entity.PipelineStage, index int) ([]entity.PipelineStage, error) {
	if len(stages) <= 1 {
		return stages, entity.ErrStageSetEmpty
	}
	if index < 0 || index >= len(stages) {
		return stages, fmt.Errorf("índice de estado fuera de rango: %d", index)
	}
	out := make([]entity.PipelineStage, 0, len(stages)-1)
	out = append(out, stages[:index]...)
	out = append(out, stages[index+1:]...)
	return out, nil
}

// Rerank rewrites Order as the 0-based position, the form the save request
// always carries.
func Rerank(stages []entity.PipelineStage) []entity.PipelineStage {
	out := make([]entity.PipelineStage, len(stages))
	for i, s := range stages {
		s.Order = i
		out[i] = s
	}
	return out
}

// SortByOrder returns the stages sorted by their rank, leaving input as-is.
func SortByOrder(stages []entity.PipelineStage) []entity.PipelineStage {
	out := append([]entity.PipelineStage(nil), stages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// DeletedStages returns the stages present in original but absent from
// scratch, i.e. the deletion candidates of a pending save.
func DeletedStages(original, scratch []entity.PipelineStage) []entity.PipelineStage {
	kept := make(map[string]bool, len(scratch))
	for _, s := range scratch {
		kept[s.ID] = true
	}
	var deleted []entity.PipelineStage
	for _, s := range original {
		if !kept[s.ID] {
			deleted = append(deleted, s)
		}
	}
	return deleted
}

// Conflicts pairs each deleted stage with how many leads still reference it,
// dropping the ones nobody references. Order follows the original stage set.
func Conflicts(deleted []entity.PipelineStage, leads []entity.Lead) []StageConflict {
	counts := make(map[string]int)
	for i := range leads {
		counts[leads[i].Status()]++
	}
	var out []StageConflict
	for _, s := range deleted {
		if n := counts[s.ID]; n > 0 {
			out = append(out, StageConflict{ID: s.ID, Label: s.Label, Count: n})
		}
	}
	return out
}

// ConflictsFromCounts is the server-side variant fed from a COUNT query
// instead of an in-memory lead cache.
func ConflictsFromCounts(deleted []entity.PipelineStage, counts map[string]int) []StageConflict {
	var out []StageConflict
	for _, s := range deleted {
		if n := counts[s.ID]; n > 0 {
			out = append(out, StageConflict{ID: s.ID, Label: s.Label, Count: n})
		}
	}
	return out
}

// DefaultMigrationPlan proposes a target for every conflicting stage: the
// first stage of the new set, or the reserved bucket when the set is empty.
func DefaultMigrationPlan(conflicts []StageConflict, scratch []entity.PipelineStage) map[string]string {
	target := entity.StatusNew
	if len(scratch) > 0 {
		target = scratch[0].ID
	}
	plan := make(map[string]string, len(conflicts))
	for _, c := range conflicts {
		plan[c.ID] = target
	}
	return plan
}

// MigrationsFromPlan flattens a plan into the wire shape, deterministically
// ordered by source stage.
func MigrationsFromPlan(plan map[string]string) []entity.StageMigration {
	froms := make([]string, 0, len(plan))
	for from := range plan {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	out := make([]entity.StageMigration, 0, len(froms))
	for _, from := range froms {
		out = append(out, entity.StageMigration{FromStatus: from, ToStatus: plan[from]})
	}
	return out
}

// ValidateMigrations checks that every conflicting stage has a mapping and
// every target survives in the new set.
func ValidateMigrations(conflicts []StageConflict, migrations []entity.StageMigration, scratch []entity.PipelineStage) error {
	targets := make(map[string]bool, len(scratch))
	for _, s := range scratch {
		targets[s.ID] = true
	}
	mapped := make(map[string]string, len(migrations))
	for _, m := range migrations {
		mapped[m.FromStatus] = m.ToStatus
	}
	for _, c := range conflicts {
		to, ok := mapped[c.ID]
		if !ok {
			return fmt.Errorf("el estado %q tiene %d leads y no tiene destino de migración", c.ID, c.Count)
		}
		if !targets[to] {
			return fmt.Errorf("destino de migración inexistente: %q", to)
		}
	}
	return nil
}

// MigrateLeads applies the migration pairs to an in-memory lead list,
// mirroring what the backend did to the stored rows.
func MigrateLeads(leads []entity.Lead, migrations []entity.StageMigration) []entity.Lead {
	if len(migrations) == 0 {
		return leads
	}
	byFrom := make(map[string]string, len(migrations))
	for _, m := range migrations {
		byFrom[m.FromStatus] = m.ToStatus
	}
	out := make([]entity.Lead, len(leads))
	for i, l := range leads {
		if to, ok := byFrom[l.Status()]; ok {
			l.CRMStatus = to
		}
		out[i] = l
	}
	return out
}
