package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/calloway/weatherline"
)

// MockToolchain implements weatherline.Toolchain for testing across packages
type MockToolchain struct {
	mock.Mock
}

func (m *MockToolchain) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockToolchain) Requires() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockToolchain) CreateCommand(envDir string) weatherline.Command {
	args := m.Called(envDir)
	if args.Get(0) == nil {
		return weatherline.Command{}
	}
	return args.Get(0).(weatherline.Command)
}

func (m *MockToolchain) InstallCommand(envDir, manifestPath string) weatherline.Command {
	args := m.Called(envDir, manifestPath)
	if args.Get(0) == nil {
		return weatherline.Command{}
	}
	return args.Get(0).(weatherline.Command)
}

func (m *MockToolchain) LaunchCommand(envDir, entry string, launchArgs []string) weatherline.Command {
	args := m.Called(envDir, entry, launchArgs)
	if args.Get(0) == nil {
		return weatherline.Command{}
	}
	return args.Get(0).(weatherline.Command)
}

func (m *MockToolchain) Activate(envDir string, base []string) []string {
	args := m.Called(envDir, base)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(string, []string) []string); ok {
		return fn(envDir, base)
	}

	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

var _ weatherline.Toolchain = (*MockToolchain)(nil)
