package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) List(ctx context.Context, clientID, channel string, since time.Time, lastKey string, limit int) (*entity.LeadPage, error) {
	args := m.Called(ctx, clientID, channel, since, lastKey, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadPage), args.Error(1)
}

func (m *MockLeadRepository) Summary(ctx context.Context, clientID, channel string, since time.Time) (*entity.LeadSummary, error) {
	args := m.Called(ctx, clientID, channel, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadSummary), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, clientID, channel, leadID string) (*entity.Lead, error) {
	args := m.Called(ctx, clientID, channel, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, clientID, channel, leadID string) error {
	args := m.Called(ctx, clientID, channel, leadID)
	return args.Error(0)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context, clientID string, statusIDs []string) (map[string]int, error) {
	args := m.Called(ctx, clientID, statusIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockLeadRepository) MigrateStatus(ctx context.Context, clientID string, migrations []entity.StageMigration) (int64, error) {
	args := m.Called(ctx, clientID, migrations)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CreatedSince(ctx context.Context, clientID string, since time.Time) ([]entity.Lead, error) {
	args := m.Called(ctx, clientID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

// MockStageRepository
type MockStageRepository struct {
	mock.Mock
}

func (m *MockStageRepository) Get(ctx context.Context, clientID string) ([]entity.PipelineStage, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PipelineStage), args.Error(1)
}

func (m *MockStageRepository) Save(ctx context.Context, clientID string, stages []entity.PipelineStage) error {
	args := m.Called(ctx, clientID, stages)
	return args.Error(0)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendDailyDigest(to, username string, leads []entity.Lead) error {
	args := m.Called(to, username, leads)
	return args.Error(0)
}

// MockTokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Generate(clientID, email, accountType string) (string, error) {
	args := m.Called(clientID, email, accountType)
	return args.String(0), args.Error(1)
}
