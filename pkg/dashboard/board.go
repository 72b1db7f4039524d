package dashboard

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// Notifier recibe los avisos del tablero. isError marca los de fallo;
// cada operación fallida emite exactamente un aviso.
type Notifier func(message string, isError bool)

const defaultPageSize = 50

// Board mantiene la copia local del tablero de leads: la lista paginada,
// los contadores, el pipeline configurado y el filtro activo. Las
// mutaciones se aplican de forma optimista y se revierten si el gateway
// las rechaza.
type Board struct {
	api      *Client
	clientID string
	channel  string
	days     int
	pageSize int
	notify   Notifier

	mu      sync.Mutex
	leads   []entity.Lead
	summary entity.LeadSummary
	stages  []entity.PipelineStage
	hasMore bool
	nextKey string
	loading bool
	filter  crm.LeadFilter
}

func NewBoard(api *Client, clientID string, notify Notifier) *Board {
	if notify == nil {
		notify = func(string, bool) {}
	}
	return &Board{
		api:      api,
		clientID: clientID,
		days:     30,
		pageSize: defaultPageSize,
		notify:   notify,
		stages:   entity.DefaultStages(),
	}
}

// SetPeriod cambia la ventana temporal y el canal de las consultas.
// No recarga: el llamante decide cuándo pedir Load de nuevo.
func (b *Board) SetPeriod(days int, channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.days = days
	if channel == crm.FilterAll {
		channel = ""
	}
	b.channel = channel
}

// Load trae el pipeline y la primera página, descartando lo que hubiera.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	if b.loading {
		b.mu.Unlock()
		return nil
	}
	b.loading = true
	channel, days := b.channel, b.days
	b.mu.Unlock()
	defer b.clearLoading()

	stages, err := b.api.Stages(ctx, b.clientID)
	if err != nil {
		b.notify("No se pudo cargar el pipeline", true)
		return err
	}

	page, err := b.api.Leads(ctx, LeadQuery{
		ClientID: b.clientID,
		Channel:  channel,
		Days:     days,
		Limit:    b.pageSize,
	})
	if err != nil {
		b.notify("No se pudieron cargar los leads", true)
		return err
	}

	b.mu.Lock()
	b.stages = crm.SortByOrder(stages)
	b.leads = page.Leads
	if page.Summary != nil {
		b.summary = *page.Summary
	}
	b.hasMore = page.HasMore
	b.nextKey = page.NextKey
	b.mu.Unlock()
	return nil
}

// LoadMore pide la página siguiente. Con una carga en vuelo o sin más
// páginas no hace nada, así el scroll no duplica peticiones.
func (b *Board) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	if b.loading || !b.hasMore {
		b.mu.Unlock()
		return nil
	}
	b.loading = true
	key, channel, days := b.nextKey, b.channel, b.days
	b.mu.Unlock()
	defer b.clearLoading()

	page, err := b.api.Leads(ctx, LeadQuery{
		ClientID: b.clientID,
		Channel:  channel,
		Days:     days,
		LastKey:  key,
		Limit:    b.pageSize,
	})
	if err != nil {
		b.notify("No se pudieron cargar más leads", true)
		return err
	}

	b.mu.Lock()
	b.leads = append(b.leads, page.Leads...)
	b.hasMore = page.HasMore
	b.nextKey = page.NextKey
	b.mu.Unlock()
	return nil
}

func (b *Board) clearLoading() {
	b.mu.Lock()
	b.loading = false
	b.mu.Unlock()
}

// Mutate aplica la acción en local al instante y la envía al gateway.
// Si el envío falla, restaura el lead y los contadores exactamente como
// estaban y emite un único aviso de error.
func (b *Board) Mutate(ctx context.Context, channel, leadID string, action crm.Action, data crm.ActionData) error {
	b.mu.Lock()
	idx := b.indexOf(leadID)
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("lead no cargado en el tablero: %s", leadID)
	}

	before := b.leads[idx].Clone()
	summaryBefore := b.summary

	next, msg, err := crm.Apply(&b.leads[idx], action, data, b.stages, time.Now().UTC())
	if err != nil {
		b.mu.Unlock()
		b.notify("Acción inválida", true)
		return err
	}
	b.applyLocal(idx, before, next)
	b.mu.Unlock()

	result, err := b.api.MutateLead(ctx, MutationEnvelope{
		ClientID: b.clientID,
		Channel:  channel,
		LeadID:   leadID,
		Action:   action,
		Data:     data,
	})
	if err != nil {
		b.rollback(leadID, before, summaryBefore)
		b.notify("No se pudo guardar el cambio", true)
		return err
	}

	// el servidor es la verdad: su snapshot pisa el optimista
	if result.Lead != nil {
		b.mu.Lock()
		if i := b.indexOf(leadID); i >= 0 {
			b.leads[i] = *result.Lead
		}
		b.mu.Unlock()
	}
	b.notify(msg, false)
	return nil
}

// CreateLead da de alta un lead manual. Aquí no hay optimismo: el id lo
// genera el servidor, así que se inserta al confirmar.
func (b *Board) CreateLead(ctx context.Context, data crm.ActionData) (*entity.Lead, error) {
	result, err := b.api.MutateLead(ctx, MutationEnvelope{
		ClientID: b.clientID,
		Channel:  entity.ChannelManual,
		Action:   crm.ActionCreateLead,
		Data:     data,
	})
	if err != nil {
		b.notify("No se pudo crear el lead", true)
		return nil, err
	}

	if result.Lead != nil {
		b.mu.Lock()
		b.leads = append([]entity.Lead{*result.Lead}, b.leads...)
		b.summary.Total++
		b.bumpTemperature(result.Lead.Temperature(), +1)
		b.mu.Unlock()
	}
	b.notify("Lead creado", false)
	return result.Lead, nil
}

// Delete quita el lead en local y confirma contra el gateway,
// restaurándolo en su posición si el borrado falla.
func (b *Board) Delete(ctx context.Context, channel, leadID string) error {
	b.mu.Lock()
	idx := b.indexOf(leadID)
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("lead no cargado en el tablero: %s", leadID)
	}
	removed := b.leads[idx]
	b.leads = append(b.leads[:idx], b.leads[idx+1:]...)
	b.summary.Total--
	b.bumpTemperature(removed.Temperature(), -1)
	b.mu.Unlock()

	if err := b.api.DeleteLead(ctx, b.clientID, channel, leadID); err != nil {
		b.mu.Lock()
		if idx > len(b.leads) {
			idx = len(b.leads)
		}
		b.leads = append(b.leads[:idx], append([]entity.Lead{removed}, b.leads[idx:]...)...)
		b.summary.Total++
		b.bumpTemperature(removed.Temperature(), +1)
		b.mu.Unlock()
		b.notify("No se pudo eliminar el lead", true)
		return err
	}

	b.notify("Lead eliminado", false)
	return nil
}

// SetFilter cambia el filtro local. No toca la caché ni pide nada.
func (b *Board) SetFilter(f crm.LeadFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = f
}

// Filtered devuelve la vista filtrada de los leads cargados.
func (b *Board) Filtered() []entity.Lead {
	b.mu.Lock()
	defer b.mu.Unlock()
	return crm.FilterLeads(b.leads, b.filter)
}

// ConflictsFor calcula, contra los leads cargados, qué estados del
// borrador del editor dejarían leads huérfanos al borrarse.
func (b *Board) ConflictsFor(scratch []entity.PipelineStage) []crm.StageConflict {
	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := crm.DeletedStages(b.stages, scratch)
	return crm.Conflicts(deleted, b.leads)
}

// SaveStages persiste el borrador del editor de pipeline. Si hubo
// migraciones, los leads locales se reubican igual que los guardados.
func (b *Board) SaveStages(ctx context.Context, scratch []entity.PipelineStage, migrations []entity.StageMigration) error {
	result, err := b.api.SaveStages(ctx, SaveStagesRequest{
		ClientID:   b.clientID,
		Stages:     scratch,
		Migrations: migrations,
	})
	if err != nil {
		b.notify("No se pudo guardar el pipeline", true)
		return err
	}

	b.mu.Lock()
	b.stages = crm.SortByOrder(result.Stages)
	b.leads = crm.MigrateLeads(b.leads, migrations)
	b.mu.Unlock()

	if result.Migrated > 0 {
		b.notify(fmt.Sprintf("Pipeline guardado, %d leads migrados", result.Migrated), false)
	} else {
		b.notify("Pipeline guardado", false)
	}
	return nil
}

// ExportCSV vuelca la vista filtrada, no solo lo visible en pantalla.
func (b *Board) ExportCSV(w io.Writer) error {
	return crm.WriteCSV(w, b.Filtered())
}

func (b *Board) Leads() []entity.Lead {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.Lead, len(b.leads))
	copy(out, b.leads)
	return out
}

func (b *Board) Summary() entity.LeadSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

func (b *Board) Stages() []entity.PipelineStage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.PipelineStage, len(b.stages))
	copy(out, b.stages)
	return out
}

func (b *Board) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMore
}

// indexOf y los helpers de abajo asumen el mutex cogido.
func (b *Board) indexOf(leadID string) int {
	for i := range b.leads {
		if b.leads[i].LeadID == leadID {
			return i
		}
	}
	return -1
}

func (b *Board) applyLocal(idx int, before, next *entity.Lead) {
	b.leads[idx] = *next
	if before.Temperature() != next.Temperature() {
		b.bumpTemperature(before.Temperature(), -1)
		b.bumpTemperature(next.Temperature(), +1)
	}
}

func (b *Board) bumpTemperature(temp string, delta int) {
	switch temp {
	case entity.TemperatureHot:
		b.summary.Hot += delta
	case entity.TemperatureWarm:
		b.summary.Warm += delta
	case entity.TemperatureCold:
		b.summary.Cold += delta
	}
}

func (b *Board) rollback(leadID string, before *entity.Lead, summaryBefore entity.LeadSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(leadID); i >= 0 {
		b.leads[i] = *before
	}
	b.summary = summaryBefore
}
