package usecase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrTempDirMissing is returned when the parent temporary directory does not exist.
	ErrTempDirMissing = errors.New("temporary directory does not exist")

	// ErrWorkspace is returned when the run directory cannot be created.
	ErrWorkspace = errors.New("failed to create run workspace")
)

// workspacePrefix names run directories as nuget-sign-audit-{runID}.
const workspacePrefix = "nuget-sign-audit-"

// removeAll is swapped in tests to simulate a failed cleanup.
var removeAll = os.RemoveAll

// WithWorkspace creates a run directory under parent, passes it to fn and
// removes it afterwards on every exit path, including panics. A failed
// removal is logged as a warning and does not change the returned error.
func WithWorkspace(parent, runID string, logger *zap.SugaredLogger, fn func(dir string) error) error {
	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTempDirMissing, parent)
	}

	dir := filepath.Join(parent, workspacePrefix+runID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	logger.Debugf("Created workspace %s", dir)

	defer func() {
		if err := removeAll(dir); err != nil {
			logger.Warnf("Cleaning up the workspace %s failed: %v", dir, err)
			return
		}
		logger.Debugf("Removed workspace %s", dir)
	}()

	return fn(dir)
}
