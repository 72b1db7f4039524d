package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/pkg/dashboard"
)

type notifyRecorder struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (n *notifyRecorder) fn(msg string, isError bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if isError {
		n.errors = append(n.errors, msg)
	} else {
		n.infos = append(n.infos, msg)
	}
}

func (n *notifyRecorder) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func boardFixtureLeads() []entity.Lead {
	now := time.Now().UTC()
	return []entity.Lead{
		{
			LeadID:        "lead-1",
			ClientID:      "client-demo",
			Channel:       entity.ChannelWeb,
			Contact:       entity.Contact{Name: "Ana García", Email: "ana@example.com"},
			SourceContact: entity.SourceContact{Type: entity.ChannelWeb, Name: "Ana García"},
			Qualification: entity.Qualification{Temperature: entity.TemperatureHot, Score: 8},
			CRMStatus:     "new",
			CreatedAt:     now,
			LastUpdated:   now,
		},
		{
			LeadID:        "lead-2",
			ClientID:      "client-demo",
			Channel:       entity.ChannelWhatsApp,
			Contact:       entity.Contact{Name: "Luis Pérez", Email: "luis@example.com"},
			SourceContact: entity.SourceContact{Type: entity.ChannelWhatsApp, Name: "Luis Pérez"},
			Qualification: entity.Qualification{Temperature: entity.TemperatureCold, Score: 3},
			CRMStatus:     "contacted",
			CreatedAt:     now.Add(-time.Hour),
			LastUpdated:   now.Add(-time.Hour),
		},
	}
}

// newBoardServer sirve las rutas mínimas que Load necesita y delega las
// mutaciones en mutateFn para que cada test elija cómo responde el gateway.
func newBoardServer(t *testing.T, mutateFn http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/crm/settings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"crmStatuses": entity.DefaultStages(),
		})
	})
	mux.HandleFunc("GET /api/leads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"leads":   boardFixtureLeads(),
			"summary": entity.LeadSummary{Total: 2, Hot: 1, Cold: 1},
			"hasMore": false,
		})
	})
	if mutateFn != nil {
		mux.HandleFunc("POST /api/leads/update", mutateFn)
	}
	return httptest.NewServer(mux)
}

func TestBoardMutateOptimisticSuccess(t *testing.T) {
	server := newBoardServer(t, func(w http.ResponseWriter, r *http.Request) {
		var env dashboard.MutationEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		assert.Equal(t, crm.ActionUpdateStatus, env.Action)
		assert.Equal(t, "negotiation", env.Data.Status)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Estado actualizado",
		})
	})
	defer server.Close()

	rec := &notifyRecorder{}
	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", rec.fn)
	require.NoError(t, board.Load(context.Background()))

	err := board.Mutate(context.Background(), entity.ChannelWeb, "lead-1",
		crm.ActionUpdateStatus, crm.ActionData{Status: "negotiation"})
	require.NoError(t, err)

	leads := board.Leads()
	assert.Equal(t, "negotiation", leads[0].CRMStatus)
	assert.NotEmpty(t, leads[0].Timeline, "el cambio de estado deja rastro en el timeline")
	assert.Zero(t, rec.errorCount())
}

func TestBoardMutateRollbackOnFailure(t *testing.T) {
	server := newBoardServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Error interno del servidor",
		})
	})
	defer server.Close()

	rec := &notifyRecorder{}
	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", rec.fn)
	require.NoError(t, board.Load(context.Background()))

	before := board.Leads()[0]
	summaryBefore := board.Summary()

	err := board.Mutate(context.Background(), entity.ChannelWeb, "lead-1",
		crm.ActionUpdateStatus, crm.ActionData{Status: "won"})
	require.Error(t, err)

	after := board.Leads()[0]
	assert.Equal(t, before.CRMStatus, after.CRMStatus)
	assert.Len(t, after.Timeline, len(before.Timeline), "el timeline optimista se revierte")
	assert.Equal(t, summaryBefore, board.Summary())
	assert.Equal(t, 1, rec.errorCount(), "exactamente un aviso de error por fallo")
}

func TestBoardMutateTemperatureRollsBackCounters(t *testing.T) {
	server := newBoardServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "boom"})
	})
	defer server.Close()

	rec := &notifyRecorder{}
	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", rec.fn)
	require.NoError(t, board.Load(context.Background()))

	summaryBefore := board.Summary()
	require.Equal(t, 1, summaryBefore.Cold)

	// lead-2 pasa de cold a hot en local y el gateway lo rechaza
	err := board.Mutate(context.Background(), entity.ChannelWhatsApp, "lead-2",
		crm.ActionUpdateTemperature, crm.ActionData{Temperature: entity.TemperatureHot})
	require.Error(t, err)

	assert.Equal(t, summaryBefore, board.Summary())
	assert.Equal(t, entity.TemperatureCold, board.Leads()[1].Temperature())
}

func TestBoardMutateUnknownLead(t *testing.T) {
	server := newBoardServer(t, nil)
	defer server.Close()

	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", nil)
	require.NoError(t, board.Load(context.Background()))

	err := board.Mutate(context.Background(), entity.ChannelWeb, "no-existe",
		crm.ActionUpdateStatus, crm.ActionData{Status: "won"})
	assert.Error(t, err)
}

func TestBoardLoadMoreInFlightGuard(t *testing.T) {
	var leadRequests atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/crm/settings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "crmStatuses": entity.DefaultStages()})
	})
	mux.HandleFunc("GET /api/leads", func(w http.ResponseWriter, r *http.Request) {
		leadRequests.Add(1)
		if r.URL.Query().Get("lastKey") != "" {
			// la segunda página se queda en vuelo hasta que el test la suelte
			close(entered)
			<-release
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"leads":   boardFixtureLeads()[:1],
				"hasMore": false,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"leads":   boardFixtureLeads(),
			"summary": entity.LeadSummary{Total: 3, Hot: 2, Cold: 1},
			"hasMore": true,
			"nextKey": "key-1",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", nil)
	require.NoError(t, board.Load(context.Background()))
	require.True(t, board.HasMore())
	require.Equal(t, int32(1), leadRequests.Load())

	done := make(chan error, 1)
	go func() { done <- board.LoadMore(context.Background()) }()
	<-entered

	// con una página en vuelo, pedir más no dispara otra petición
	require.NoError(t, board.LoadMore(context.Background()))
	assert.Equal(t, int32(2), leadRequests.Load())

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, board.Leads(), 3)
	assert.False(t, board.HasMore())

	// agotadas las páginas, LoadMore es un no-op
	require.NoError(t, board.LoadMore(context.Background()))
	assert.Equal(t, int32(2), leadRequests.Load())
}

func TestBoardFilteredAndExport(t *testing.T) {
	server := newBoardServer(t, nil)
	defer server.Close()

	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", nil)
	require.NoError(t, board.Load(context.Background()))

	board.SetFilter(crm.LeadFilter{Temperature: entity.TemperatureHot})
	filtered := board.Filtered()
	require.Len(t, filtered, 1)
	assert.Equal(t, "lead-1", filtered[0].LeadID)

	var buf strings.Builder
	require.NoError(t, board.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "cabecera más el único lead filtrado")
	assert.Contains(t, lines[0], "Nombre")
	assert.Contains(t, lines[1], "Ana García")
	assert.NotContains(t, buf.String(), "Luis Pérez")
}

func TestBoardConflictsFor(t *testing.T) {
	server := newBoardServer(t, nil)
	defer server.Close()

	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", nil)
	require.NoError(t, board.Load(context.Background()))

	// el borrador elimina "contacted", donde vive lead-2
	var scratch []entity.PipelineStage
	for _, s := range entity.DefaultStages() {
		if s.ID != "contacted" {
			scratch = append(scratch, s)
		}
	}

	conflicts := board.ConflictsFor(scratch)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "contacted", conflicts[0].ID)
	assert.Equal(t, 1, conflicts[0].Count)
}

func TestBoardDeleteRollbackOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/crm/settings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "crmStatuses": entity.DefaultStages()})
	})
	mux.HandleFunc("GET /api/leads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"leads":   boardFixtureLeads(),
			"summary": entity.LeadSummary{Total: 2, Hot: 1, Cold: 1},
			"hasMore": false,
		})
	})
	mux.HandleFunc("DELETE /api/leads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "boom"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec := &notifyRecorder{}
	board := dashboard.NewBoard(dashboard.NewClient(server.URL), "client-demo", rec.fn)
	require.NoError(t, board.Load(context.Background()))

	err := board.Delete(context.Background(), entity.ChannelWeb, "lead-1")
	require.Error(t, err)

	leads := board.Leads()
	require.Len(t, leads, 2)
	assert.Equal(t, "lead-1", leads[0].LeadID, "el lead vuelve a su posición")
	assert.Equal(t, entity.LeadSummary{Total: 2, Hot: 1, Cold: 1}, board.Summary())
	assert.Equal(t, 1, rec.errorCount())
}
