package executor

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// RunnerMock is a testify mock of Runner for service tests.
type RunnerMock struct {
	mock.Mock
}

// Run records the call and returns the configured error.
func (m *RunnerMock) Run(ctx context.Context, cmd Command) error {
	args := m.Called(ctx, cmd)

	return args.Error(0)
}

// Output records the call and returns the configured output and error.
func (m *RunnerMock) Output(ctx context.Context, cmd Command) ([]byte, error) {
	args := m.Called(ctx, cmd)

	var out []byte
	if v := args.Get(0); v != nil {
		out = v.([]byte) //nolint:forcetypeassert // Test helper, wrong types should panic loudly.
	}

	return out, args.Error(1)
}

// LookPath records the call and returns the configured path and error.
func (m *RunnerMock) LookPath(name string) (string, error) {
	args := m.Called(name)

	return args.String(0), args.Error(1)
}
