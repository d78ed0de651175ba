// Package mocks provides testify mocks for the storage, event and execution interfaces.
package mocks

import (
	"context"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Flows(ctx context.Context) ([]models.Flow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Flow), args.Error(1)
}

func (m *MockPersistence) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Flow), args.Error(1)
}

func (m *MockPersistence) CreateFlow(ctx context.Context, flow models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockPersistence) SaveFlow(ctx context.Context, flow models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockPersistence) DeleteFlow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

var _ persistence.Persistence = (*MockPersistence)(nil)
