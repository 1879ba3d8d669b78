package nginx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/boundaries/out/mocks"
)

func TestController_DefaultCommands(t *testing.T) {
	executor := new(mocks.MockCommandExecutor)
	executor.On("Exec", mock.Anything, []string{"nginx", "-t"}, nil).
		Return(&out.ExecResult{ExitCode: 0}, nil).Once()
	executor.On("Exec", mock.Anything, []string{"nginx", "-s", "reload"}, nil).
		Return(&out.ExecResult{ExitCode: 0}, nil).Once()

	c := NewController(executor, nil, nil)

	res, err := c.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success())

	res, err = c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success())

	executor.AssertExpectations(t)
}

func TestController_CustomCommands(t *testing.T) {
	executor := new(mocks.MockCommandExecutor)
	executor.On("Exec", mock.Anything, []string{"openresty", "-t"}, nil).
		Return(&out.ExecResult{ExitCode: 1, Stderr: []byte("emerg")}, nil).Once()

	c := NewController(executor, []string{"openresty", "-t"}, []string{"openresty", "-s", "reload"})

	res, err := c.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 1, res.ExitCode)

	executor.AssertExpectations(t)
}

func TestController_ExecutorError(t *testing.T) {
	executor := new(mocks.MockCommandExecutor)
	executor.On("Exec", mock.Anything, mock.Anything, nil).
		Return(nil, errors.New("no such container: nginx")).Once()

	res, err := NewController(executor, nil, nil).Reload(context.Background())

	assert.Nil(t, res)
	assert.ErrorContains(t, err, "no such container")
}
