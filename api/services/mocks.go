package services

import (
	"context"

	"github.com/mockhub/mockhub-console/db"
	"github.com/mockhub/mockhub-console/models"
	"github.com/stretchr/testify/mock"
)

var _ db.Repository = (*MockRepository)(nil)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, u models.UserRecord) (models.UserRecord, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (models.UserRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (models.UserRecord, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

func (m *MockRepository) GetUserByUsername(ctx context.Context, username string) (models.UserRecord, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.UserRecord), args.Error(1)
}

func (m *MockRepository) ListGroups(ctx context.Context, owner int64) ([]models.GroupWire, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).([]models.GroupWire), args.Error(1)
}

func (m *MockRepository) GetGroup(ctx context.Context, owner, id int64) (models.GroupWire, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(models.GroupWire), args.Error(1)
}

func (m *MockRepository) GetGroupByEndpoint(ctx context.Context, owner int64, endpoint string) (models.GroupWire, error) {
	args := m.Called(ctx, owner, endpoint)
	return args.Get(0).(models.GroupWire), args.Error(1)
}

func (m *MockRepository) CreateGroup(ctx context.Context, owner int64, p models.GroupPayload) (models.GroupWire, error) {
	args := m.Called(ctx, owner, p)
	return args.Get(0).(models.GroupWire), args.Error(1)
}

func (m *MockRepository) UpdateGroup(ctx context.Context, owner, id int64, p models.GroupPayload) (models.GroupWire, error) {
	args := m.Called(ctx, owner, id, p)
	return args.Get(0).(models.GroupWire), args.Error(1)
}

func (m *MockRepository) DeleteGroup(ctx context.Context, owner, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockRepository) ListEndpoints(ctx context.Context, owner int64, groupName string) ([]models.EndpointWire, error) {
	args := m.Called(ctx, owner, groupName)
	return args.Get(0).([]models.EndpointWire), args.Error(1)
}

func (m *MockRepository) GetEndpoint(ctx context.Context, owner, id int64) (models.EndpointWire, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(models.EndpointWire), args.Error(1)
}

func (m *MockRepository) CreateEndpoint(ctx context.Context, owner int64, p models.EndpointPayload) (models.EndpointWire, error) {
	args := m.Called(ctx, owner, p)
	return args.Get(0).(models.EndpointWire), args.Error(1)
}

func (m *MockRepository) UpdateEndpoint(ctx context.Context, owner, id int64, p models.EndpointPayload) (models.EndpointWire, error) {
	args := m.Called(ctx, owner, id, p)
	return args.Get(0).(models.EndpointWire), args.Error(1)
}

func (m *MockRepository) DeleteEndpoint(ctx context.Context, owner, id int64) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockRepository) Close() error {
	return m.Called().Error(0)
}
