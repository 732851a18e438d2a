package gateway

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Run(t *testing.T) {
	requireShell(t)

	testCases := []struct {
		name     string
		script   string
		expected CommandResult
	}{
		{
			name:     "stdout and stderr are separated",
			script:   "echo 'Signature type: Repository'; echo oops >&2",
			expected: CommandResult{Stdout: "Signature type: Repository\n", Stderr: "oops\n"},
		},
		{
			name:     "exit code is reported",
			script:   "echo partial; exit 3",
			expected: CommandResult{Stdout: "partial\n", ExitCode: 3},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ExecRunner{}.Run(context.Background(), "sh", "-c", tc.script)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res)
		})
	}
}

func TestExecRunner_ToolNotFound(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-real-nuget-binary")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestExecRunner_Cancelled(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecRunner{}.Run(ctx, "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, context.Canceled)
}
