package gateway

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRunner is a mock implementation of the CommandRunner interface.
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	callArgs := m.Called(ctx, name, args)
	return callArgs.Get(0).(CommandResult), callArgs.Error(1)
}

func TestNuGetCLI_Verify(t *testing.T) {
	testCases := []struct {
		name         string
		result       CommandResult
		runErr       error
		expectedOut  string
		expectedCode int
		expectError  bool
	}{
		{
			name:        "happy path - stdout captured",
			result:      CommandResult{Stdout: "Signature type: Repository", Stderr: "warning"},
			expectedOut: "Signature type: Repository",
		},
		{
			name:         "non-zero exit is returned, not raised",
			result:       CommandResult{Stdout: "NU3008", ExitCode: 1},
			expectedOut:  "NU3008",
			expectedCode: 1,
		},
		{
			name:        "error case - tool missing",
			runErr:      ErrToolNotFound,
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner := new(mockRunner)
			runner.On("Run", mock.Anything, "nuget", []string{"verify", "-Signatures", "/tmp/x/Foo.1.0.0.nupkg"}).
				Return(tc.result, tc.runErr)
			cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org", zap.NewNop().Sugar())

			v, err := cli.Verify(context.Background(), "/tmp/x/Foo.1.0.0.nupkg")
			if tc.expectError {
				assert.ErrorIs(t, err, ErrToolNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedOut, v.Output)
				assert.Equal(t, tc.expectedCode, v.ExitCode)
			}
			runner.AssertExpectations(t)
		})
	}
}

func TestNuGetCLI_Install(t *testing.T) {
	installArgs := func(dir string) []string {
		return []string{"install", "Castle.Core", "-Source", "https://api.nuget.org/v3/index.json", "-ExcludeVersion", "-OutputDirectory", dir}
	}

	t.Run("happy path - artifact located by glob", func(t *testing.T) {
		dir := t.TempDir()
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, "nuget", installArgs(dir)).
			Run(func(mock.Arguments) {
				pkgDir := filepath.Join(dir, "Castle.Core")
				require.NoError(t, os.MkdirAll(pkgDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "castle.core.5.1.1.nupkg"), []byte("nupkg"), 0o644))
			}).
			Return(CommandResult{}, nil)
		cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org/", zap.NewNop().Sugar())

		artifact, err := cli.Install(context.Background(), "Castle.Core", dir)
		require.NoError(t, err)
		assert.Equal(t, "5.1.1", artifact.Version)
		assert.Equal(t, int64(5), artifact.Size)
		assert.Contains(t, artifact.Digest, "sha256:")
		runner.AssertExpectations(t)
	})

	t.Run("error case - nothing installed", func(t *testing.T) {
		dir := t.TempDir()
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, "nuget", installArgs(dir)).Return(CommandResult{}, nil)
		cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org/", zap.NewNop().Sugar())

		_, err := cli.Install(context.Background(), "Castle.Core", dir)
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("error case - install exits non-zero", func(t *testing.T) {
		dir := t.TempDir()
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, "nuget", installArgs(dir)).Return(CommandResult{ExitCode: 1, Stderr: "Unable to find package"}, nil)
		cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org/", zap.NewNop().Sugar())

		_, err := cli.Install(context.Background(), "Castle.Core", dir)
		assert.ErrorIs(t, err, ErrInstallFailed)
	})

	t.Run("error case - runner fails", func(t *testing.T) {
		dir := t.TempDir()
		runner := new(mockRunner)
		runner.On("Run", mock.Anything, "nuget", installArgs(dir)).Return(CommandResult{}, errors.New("boom"))
		cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org/", zap.NewNop().Sugar())

		_, err := cli.Install(context.Background(), "Castle.Core", dir)
		assert.ErrorContains(t, err, "failed to run nuget install")
	})

	t.Run("error case - id escapes the output directory", func(t *testing.T) {
		runner := new(mockRunner)
		cli := NewNuGetCLI(runner, "nuget", "https://api.nuget.org/", zap.NewNop().Sugar())

		_, err := cli.Install(context.Background(), "../../Castle.Core", t.TempDir())
		assert.ErrorIs(t, err, ErrUnsafeName)
		runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVersionFromFileName(t *testing.T) {
	assert.Equal(t, "13.0.3", versionFromFileName("Newtonsoft.Json", "newtonsoft.json.13.0.3.nupkg"))
	assert.Equal(t, "1.0.0-preview.2", versionFromFileName("Foo", "Foo.1.0.0-preview.2.nupkg"))
	assert.Equal(t, "", versionFromFileName("Foo", "Bar.1.0.0.nupkg"))
}
