package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/pkg/dashboard"
)

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hola@gmail.com", body["email"])
		assert.Equal(t, "hola", body["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"token":       "tok-abc",
			"clientId":    "client-demo",
			"username":    "María",
			"accountType": "individual",
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	result, err := c.Login(context.Background(), "hola@gmail.com", "hola")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", result.Token)
	assert.Equal(t, "client-demo", result.ClientID)
}

func TestClientLoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Email o contraseña incorrectos",
			"code":    "INVALID_CREDENTIALS",
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	_, err := c.Login(context.Background(), "hola@gmail.com", "mal")
	require.Error(t, err)

	var apiErr *dashboard.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "Email o contraseña incorrectos", apiErr.Message)
}

func TestClientLeadsQueryAndBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "client-demo", q.Get("clientId"))
		assert.Equal(t, "whatsapp", q.Get("channel"))
		assert.Equal(t, "7", q.Get("days"))
		assert.Equal(t, "key-42", q.Get("lastKey"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"leads":   []any{},
			"summary": map[string]int{"total": 12, "hot": 3, "warm": 4, "cold": 5},
			"hasMore": true,
			"nextKey": "key-43",
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	c.SetToken("tok-abc")

	page, err := c.Leads(context.Background(), dashboard.LeadQuery{
		ClientID: "client-demo",
		Channel:  "whatsapp",
		Days:     7,
		LastKey:  "key-42",
	})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "key-43", page.NextKey)
	require.NotNil(t, page.Summary)
	assert.Equal(t, 12, page.Summary.Total)
}

func TestClientSaveStagesMigrationConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   `el estado "proposal" tiene 4 leads y no tiene destino de migración`,
			"code":    "MIGRATION_REQUIRED",
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	_, err := c.SaveStages(context.Background(), dashboard.SaveStagesRequest{ClientID: "client-demo"})

	var apiErr *dashboard.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "MIGRATION_REQUIRED", apiErr.Code)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestClientConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/history", r.URL.Path)
		assert.Equal(t, "conv-7", r.URL.Query().Get("conversationId"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"conversation": map[string]any{
				"conversationId": "conv-7",
				"sender":         "Ana García",
				"messages": []map[string]any{
					{"role": "user", "content": "Hola"},
					{"role": "assistant", "content": "¡Hola! ¿En qué te ayudo?"},
				},
			},
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	conv, err := c.Conversation(context.Background(), "client-demo", "conv-7")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "Ana García", conv.Sender)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "assistant", conv.Messages[1].Role)
}

func TestClientPresignDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/documents/presign", r.URL.Path)

		var req dashboard.PresignRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "menu.pdf", req.FileName)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"upload": map[string]any{
				"url":    "https://bucket.s3.amazonaws.com/",
				"fields": map[string]string{"key": "client-demo/web/menu.pdf"},
				"key":    "client-demo/web/menu.pdf",
			},
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	ticket, err := c.PresignDocument(context.Background(), dashboard.PresignRequest{
		ClientID: "client-demo",
		Channel:  "web",
		FileName: "menu.pdf",
		FileSize: 1024,
	})
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, "client-demo/web/menu.pdf", ticket.Key)
	assert.NotEmpty(t, ticket.URL)
}

func TestClientSaveBotConfigReturnsMerged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["config"].(map[string]any)
		assert.Equal(t, "formal", cfg["tone"])

		// el gateway funde lo mandado con lo guardado
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"config":  map[string]any{"tone": "formal", "welcomeMessage": "¡Hola!"},
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	merged, err := c.SaveBotConfig(context.Background(), "client-demo", "web",
		entity.BotConfig{"tone": "formal"})
	require.NoError(t, err)
	assert.Equal(t, "formal", merged["tone"])
	assert.Equal(t, "¡Hola!", merged["welcomeMessage"])
}

func TestClientEmailCredentialsArriveRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"credentials": map[string]any{
				"smtpHost":     "smtp.example.com",
				"smtpPort":     "587",
				"smtpUser":     "bot@example.com",
				"smtpPassword": "",
			},
		})
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	creds, err := c.EmailCredentials(context.Background(), "client-demo")
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "smtp.example.com", creds.SMTPHost)
	assert.Empty(t, creds.SMTPPassword)
}

func TestClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	c := dashboard.NewClient(server.URL)
	_, err := c.Stages(context.Background(), "client-demo")

	var apiErr *dashboard.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Bad Gateway")
}
