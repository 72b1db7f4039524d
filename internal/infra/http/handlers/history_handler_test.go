package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/http/handlers"
)

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) List(ctx context.Context, clientID, channel string, f entity.ConversationFilter) ([]entity.Conversation, *entity.Pagination, error) {
	args := m.Called(ctx, clientID, channel, f)
	var convs []entity.Conversation
	if args.Get(0) != nil {
		convs = args.Get(0).([]entity.Conversation)
	}
	var pag *entity.Pagination
	if args.Get(1) != nil {
		pag = args.Get(1).(*entity.Pagination)
	}
	return convs, pag, args.Error(2)
}

func (m *MockConversationRepository) FindByID(ctx context.Context, clientID, conversationID string) (*entity.Conversation, error) {
	args := m.Called(ctx, clientID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Conversation), args.Error(1)
}

func TestHistoryListPaged(t *testing.T) {
	repo := new(MockConversationRepository)
	repo.On("List", mock.Anything, "client-demo", "whatsapp", entity.ConversationFilter{Page: 2, Limit: 5, Search: "ana"}).
		Return([]entity.Conversation{{ConversationID: "conv-1"}}, &entity.Pagination{HasMore: true, Total: 11, Page: 2}, nil)

	h := handlers.NewHistoryHandler(repo)
	req := httptest.NewRequest(http.MethodGet,
		"/api/history?clientId=client-demo&channel=whatsapp&page=2&limit=5&search=ana", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success       bool                  `json:"success"`
		Conversations []entity.Conversation `json:"conversations"`
		Pagination    entity.Pagination     `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Conversations, 1)
	assert.Equal(t, 11, body.Pagination.Total)
	repo.AssertExpectations(t)
}

func TestHistoryFindByConversationID(t *testing.T) {
	conv := &entity.Conversation{
		ConversationID: "conv-7",
		ClientID:       "client-demo",
		Channel:        entity.ChannelWeb,
		Sender:         "Ana García",
		StartedAt:      time.Now().UTC(),
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: "Hola, ¿tenéis cita mañana?"},
			{Role: entity.RoleAssistant, Content: "¡Claro! ¿A qué hora te viene bien?"},
		},
	}

	repo := new(MockConversationRepository)
	repo.On("FindByID", mock.Anything, "client-demo", "conv-7").Return(conv, nil)

	h := handlers.NewHistoryHandler(repo)
	req := httptest.NewRequest(http.MethodGet,
		"/api/history?clientId=client-demo&conversationId=conv-7", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success      bool                `json:"success"`
		Conversation entity.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "conv-7", body.Conversation.ConversationID)
	assert.Equal(t, "Ana García", body.Conversation.Sender)
	require.Len(t, body.Conversation.Messages, 2)

	// la rama de conversación única no debe tocar el listado paginado
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryFindByConversationIDNotFound(t *testing.T) {
	repo := new(MockConversationRepository)
	repo.On("FindByID", mock.Anything, "client-demo", "no-existe").Return(nil, nil)

	h := handlers.NewHistoryHandler(repo)
	req := httptest.NewRequest(http.MethodGet,
		"/api/history?clientId=client-demo&conversationId=no-existe", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRequiresClientID(t *testing.T) {
	h := handlers.NewHistoryHandler(new(MockConversationRepository))
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
