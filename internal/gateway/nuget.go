// Package gateway provides access to the NuGet gallery, its v3 feed and the
// nuget command-line client.
package gateway

import (
	"context"
	_ "crypto/sha256" // registers digest.Canonical
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching the ranked package list.
type Fetcher interface {
	FetchPopularPackageIDs(ctx context.Context, communityOnly bool, top int) ([]string, error)
}

// VersionResolver looks up the newest published version of a package.
type VersionResolver interface {
	FetchLatestVersion(ctx context.Context, id string) (string, error)
}

// Downloader fetches a package artifact into a directory.
type Downloader interface {
	DownloadPackage(ctx context.Context, id, version, dir string) (domain.Artifact, error)
}

// Options configures a NuGetGateway.
type Options struct {
	StatsURL     string
	APIBaseURL   string
	ShowProgress bool
}

// NuGetGateway talks to the gallery statistics page and the v3 flat container.
type NuGetGateway struct {
	httpClient   *http.Client
	statsURL     string
	apiBaseURL   string
	showProgress bool
	logger       *zap.SugaredLogger
}

// packageVersions is the body of a flat container index.json.
type packageVersions struct {
	Versions []string `json:"versions"`
}

// NewNuGetGateway is a constructor that creates a new instance of NuGetGateway.
func NewNuGetGateway(httpClient *http.Client, opts Options, logger *zap.SugaredLogger) (*NuGetGateway, error) {
	if _, err := url.ParseRequestURI(opts.StatsURL); err != nil {
		return nil, fmt.Errorf("invalid statistics URL %q: %w", opts.StatsURL, err)
	}
	if _, err := url.ParseRequestURI(opts.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", opts.APIBaseURL, err)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient("")
	}
	return &NuGetGateway{
		httpClient:   httpClient,
		statsURL:     opts.StatsURL,
		apiBaseURL:   ensureTrailingSlash(opts.APIBaseURL),
		showProgress: opts.ShowProgress,
		logger:       logger,
	}, nil
}

// FetchLatestVersion returns the last version listed in the package's flat
// container index, which the feed orders oldest to newest.
func (g *NuGetGateway) FetchLatestVersion(ctx context.Context, id string) (string, error) {
	indexURL := g.flatContainerURL(id, "index.json")
	resp, err := get(ctx, g.httpClient, indexURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch versions of %s: %w", id, err)
	}
	defer resp.Body.Close()

	var versions packageVersions
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", fmt.Errorf("failed to decode versions of %s: %w", id, err)
	}
	if len(versions.Versions) == 0 {
		return "", fmt.Errorf("%s: %w", id, ErrNoVersions)
	}
	latest := versions.Versions[len(versions.Versions)-1]
	g.logger.Debugf("Latest version of %s is %s (%d listed)", id, latest, len(versions.Versions))
	return latest, nil
}

// DownloadPackage streams {id}.{version}.nupkg into dir, recording its size
// and digest. A partially written file is removed on failure.
func (g *NuGetGateway) DownloadPackage(ctx context.Context, id, version, dir string) (domain.Artifact, error) {
	artifact := domain.Artifact{ID: id, Version: version}
	if err := checkFileSegment(id); err != nil {
		return artifact, err
	}
	if err := checkFileSegment(version); err != nil {
		return artifact, err
	}
	lowerID, lowerVersion := strings.ToLower(id), strings.ToLower(version)
	artifactURL := g.flatContainerURL(id, lowerVersion, lowerID+"."+lowerVersion+".nupkg")

	resp, err := get(ctx, g.httpClient, artifactURL)
	if err != nil {
		return artifact, fmt.Errorf("failed to download %s %s: %w", id, version, err)
	}
	defer resp.Body.Close()

	fileName := id + "." + version + ".nupkg"
	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return artifact, fmt.Errorf("failed to create %s: %w", path, err)
	}

	digester := digest.Canonical.Digester()
	writers := []io.Writer{f, digester.Hash()}
	if g.showProgress {
		bar := newProgressBar(resp.ContentLength, fileName)
		defer bar.Finish()
		writers = append(writers, bar)
	}

	n, copyErr := io.Copy(io.MultiWriter(writers...), resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return artifact, fmt.Errorf("failed to write %s: %w", path, copyErr)
	}

	artifact.Path = path
	artifact.Size = n
	artifact.Digest = digester.Digest().String()
	g.logger.Debugf("Downloaded %s (%s, %s)", fileName, humanize.Bytes(uint64(n)), artifact.Digest)
	return artifact, nil
}

// flatContainerURL joins path segments under v3-flatcontainer/{id}/. The
// feed only serves lower-cased ids and versions.
func (g *NuGetGateway) flatContainerURL(id string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, url.PathEscape(strings.ToLower(id)))
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return g.apiBaseURL + "v3-flatcontainer/" + strings.Join(parts, "/")
}

// checkFileSegment rejects ids and versions that would resolve to a path
// outside the directory they are joined to.
func checkFileSegment(s string) error {
	if s == "" || s == "." || strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return fmt.Errorf("%w: %q", ErrUnsafeName, s)
	}
	return nil
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
