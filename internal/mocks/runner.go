package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/calloway/weatherline"
	"github.com/calloway/weatherline/runner"
)

// MockCommandRunner implements runner.CommandRunner for testing across packages
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, cmd weatherline.Command) error {
	args := m.Called(ctx, cmd)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context, weatherline.Command) error); ok {
		return fn(ctx, cmd)
	}

	return args.Error(0)
}

func (m *MockCommandRunner) LookPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

var _ runner.CommandRunner = (*MockCommandRunner)(nil)
