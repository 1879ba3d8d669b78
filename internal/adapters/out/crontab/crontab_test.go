package crontab

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sitectl/internal/boundaries/out"
	"github.com/bnema/sitectl/internal/boundaries/out/mocks"
)

func TestCrontab_Read(t *testing.T) {
	tests := []struct {
		name     string
		result   *out.ExecResult
		expected string
		wantErr  bool
	}{
		{
			name:     "existing crontab",
			result:   &out.ExecResult{Stdout: []byte("0 1 * * * backup\n")},
			expected: "0 1 * * * backup\n",
		},
		{
			name:   "no crontab for user",
			result: &out.ExecResult{ExitCode: 1, Stderr: []byte("no crontab for deploy\n")},
		},
		{
			name:    "other failure",
			result:  &out.ExecResult{ExitCode: 1, Stderr: []byte("crontab: permission denied\n")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := new(mocks.MockCommandExecutor)
			exec.On("Exec", mock.Anything, []string{"crontab", "-l"}, mock.Anything).Return(tt.result, nil)

			content, err := New(exec, "").Read(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, content)
			exec.AssertExpectations(t)
		})
	}
}

func TestCrontab_ReadExecutorError(t *testing.T) {
	exec := new(mocks.MockCommandExecutor)
	exec.On("Exec", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("not found"))

	_, err := New(exec, "").Read(context.Background())
	assert.Error(t, err)
}

func TestCrontab_Write(t *testing.T) {
	var written string
	exec := new(mocks.MockCommandExecutor)
	exec.On("Exec", mock.Anything, []string{"/usr/bin/crontab", "-"}, mock.Anything).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			written = string(data)
		}).
		Return(&out.ExecResult{}, nil)

	err := New(exec, "/usr/bin/crontab").Write(context.Background(), "0 3 * * * sitectl reload\n")
	require.NoError(t, err)
	assert.Equal(t, "0 3 * * * sitectl reload\n", written)
	exec.AssertExpectations(t)
}

func TestCrontab_WriteFailure(t *testing.T) {
	exec := new(mocks.MockCommandExecutor)
	exec.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(&out.ExecResult{ExitCode: 1, Stderr: []byte("bad minute")}, nil)

	err := New(exec, "").Write(context.Background(), "x\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad minute")
}
