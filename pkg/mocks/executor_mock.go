package mocks

import (
	"context"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/stretchr/testify/mock"
)

// MockFlowExecutor is a mock of the flow executor used by the flow service.
type MockFlowExecutor struct {
	mock.Mock
}

func (m *MockFlowExecutor) Execute(ctx context.Context, flow models.Flow) (workflow.Result, error) {
	args := m.Called(ctx, flow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(workflow.Result), args.Error(1)
}
