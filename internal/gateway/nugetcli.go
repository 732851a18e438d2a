package gateway

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
)

// Installer installs a package through the package-manager CLI.
type Installer interface {
	Install(ctx context.Context, id, dir string) (domain.Artifact, error)
}

// Verifier checks the signatures of a package file.
type Verifier interface {
	Verify(ctx context.Context, nupkgPath string) (domain.Verification, error)
}

// NuGetCLI drives the nuget command-line client.
type NuGetCLI struct {
	runner CommandRunner
	path   string
	source string
	logger *zap.SugaredLogger
}

// NewNuGetCLI creates a client for the nuget executable at path. Installs
// resolve packages from the v3 service index under apiBaseURL.
func NewNuGetCLI(runner CommandRunner, path, apiBaseURL string, logger *zap.SugaredLogger) *NuGetCLI {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &NuGetCLI{
		runner: runner,
		path:   path,
		source: ensureTrailingSlash(apiBaseURL) + "v3/index.json",
		logger: logger,
	}
}

// Install runs `nuget install` into dir and locates the resulting .nupkg
// under dir/{id}/.
func (c *NuGetCLI) Install(ctx context.Context, id, dir string) (domain.Artifact, error) {
	artifact := domain.Artifact{ID: id}
	if err := checkFileSegment(id); err != nil {
		return artifact, err
	}
	res, err := c.runner.Run(ctx, c.path, "install", id, "-Source", c.source, "-ExcludeVersion", "-OutputDirectory", dir)
	if err != nil {
		return artifact, fmt.Errorf("failed to run nuget install for %s: %w", id, err)
	}
	if res.ExitCode != 0 {
		c.logger.Debugf("nuget install %s stderr: %s", id, res.Stderr)
		return artifact, fmt.Errorf("%w: %s exited with code %d", ErrInstallFailed, id, res.ExitCode)
	}

	matches, err := filepath.Glob(filepath.Join(dir, id, "*.nupkg"))
	if err != nil {
		return artifact, fmt.Errorf("failed to search for %s artifact: %w", id, err)
	}
	if len(matches) == 0 {
		return artifact, fmt.Errorf("%w: %s in %s", ErrArtifactNotFound, id, filepath.Join(dir, id))
	}

	artifact.Path = matches[0]
	artifact.Version = versionFromFileName(id, filepath.Base(matches[0]))
	dgst, size, err := fileDigest(artifact.Path)
	if err != nil {
		return artifact, fmt.Errorf("failed to digest %s: %w", artifact.Path, err)
	}
	artifact.Size = size
	artifact.Digest = dgst.String()
	return artifact, nil
}

// Verify runs `nuget verify -Signatures` on a package file. Only stdout is
// classified; stderr is logged at debug level.
func (c *NuGetCLI) Verify(ctx context.Context, nupkgPath string) (domain.Verification, error) {
	res, err := c.runner.Run(ctx, c.path, "verify", "-Signatures", nupkgPath)
	if err != nil {
		return domain.Verification{}, fmt.Errorf("failed to run nuget verify on %s: %w", nupkgPath, err)
	}
	if res.Stderr != "" {
		c.logger.Debugf("nuget verify %s stderr: %s", filepath.Base(nupkgPath), strings.TrimSpace(res.Stderr))
	}
	return domain.Verification{Output: res.Stdout, ExitCode: res.ExitCode}, nil
}

// versionFromFileName extracts the version from "{id}.{version}.nupkg".
// Installs may produce lower-cased names, so the prefix match ignores case.
func versionFromFileName(id, name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	prefix := id + "."
	if len(base) > len(prefix) && strings.EqualFold(base[:len(prefix)], prefix) {
		return base[len(prefix):]
	}
	return ""
}
