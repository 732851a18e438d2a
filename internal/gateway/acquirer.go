package gateway

import (
	"context"
	"fmt"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
)

// Acquisition strategies.
const (
	StrategyDownload = "download"
	StrategyInstall  = "install"
)

// Acquirer places a package's latest release in a directory.
type Acquirer interface {
	Acquire(ctx context.Context, id, dir string) (domain.Artifact, error)
}

// DownloadAcquirer resolves the latest version from the feed and downloads
// the artifact directly.
type DownloadAcquirer struct {
	resolver   VersionResolver
	downloader Downloader
}

// NewDownloadAcquirer creates a DownloadAcquirer.
func NewDownloadAcquirer(resolver VersionResolver, downloader Downloader) *DownloadAcquirer {
	return &DownloadAcquirer{resolver: resolver, downloader: downloader}
}

func (a *DownloadAcquirer) Acquire(ctx context.Context, id, dir string) (domain.Artifact, error) {
	version, err := a.resolver.FetchLatestVersion(ctx, id)
	if err != nil {
		return domain.Artifact{ID: id}, err
	}
	return a.downloader.DownloadPackage(ctx, id, version, dir)
}

// InstallAcquirer lets the package-manager CLI pick and fetch the release.
type InstallAcquirer struct {
	installer Installer
}

// NewInstallAcquirer creates an InstallAcquirer.
func NewInstallAcquirer(installer Installer) *InstallAcquirer {
	return &InstallAcquirer{installer: installer}
}

func (a *InstallAcquirer) Acquire(ctx context.Context, id, dir string) (domain.Artifact, error) {
	return a.installer.Install(ctx, id, dir)
}

// NewAcquirer returns the acquirer for a strategy name.
func NewAcquirer(strategy string, gw *NuGetGateway, cli *NuGetCLI) (Acquirer, error) {
	switch strategy {
	case StrategyDownload:
		return NewDownloadAcquirer(gw, gw), nil
	case StrategyInstall:
		return NewInstallAcquirer(cli), nil
	default:
		return nil, fmt.Errorf("unknown acquisition strategy %q", strategy)
	}
}
