package gateway

import "errors"

var (
	// ErrStatsTableNotFound is returned when the statistics page lacks the
	// ranked package table for the requested filter.
	ErrStatsTableNotFound = errors.New("package statistics table not found")

	// ErrNoPackageRows is returned when the statistics table has no data rows.
	ErrNoPackageRows = errors.New("package statistics table has no rows")

	// ErrNoVersions is returned when the package index lists no versions.
	ErrNoVersions = errors.New("no versions found")

	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrArtifactNotFound is returned when an install left no .nupkg behind.
	ErrArtifactNotFound = errors.New("package artifact not found")

	// ErrInstallFailed is returned when the package manager exits non-zero.
	ErrInstallFailed = errors.New("package install failed")

	// ErrUnsafeName is returned when a package id or version from the remote
	// side cannot be used as a single file name inside the workspace.
	ErrUnsafeName = errors.New("unsafe package file name")

	// ErrToolNotFound is returned when the external CLI is not on PATH.
	ErrToolNotFound = errors.New("external tool not found")
)
