// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
	"github.com/naka-gawa/nuget-sign-audit/internal/gateway"
)

// statusColumn is the width the package id is padded to on status lines.
const statusColumn = 43

// Options selects what a single audit run covers.
type Options struct {
	RunID         string
	TempDir       string
	CommunityOnly bool
	Top           int
	Strategy      string
}

// Auditor is the use case for auditing package signatures.
// It orchestrates fetching, acquiring, verifying and tallying packages.
type Auditor struct {
	fetcher  gateway.Fetcher
	acquirer gateway.Acquirer
	verifier gateway.Verifier
	out      io.Writer
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewAuditor creates a new Auditor instance. Status lines and the summary
// are written to out.
func NewAuditor(fetcher gateway.Fetcher, acquirer gateway.Acquirer, verifier gateway.Verifier, out io.Writer, logger *zap.SugaredLogger) *Auditor {
	return &Auditor{
		fetcher:  fetcher,
		acquirer: acquirer,
		verifier: verifier,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs the audit. Packages are processed one at a time inside a
// run workspace that is removed before Run returns. Per-package failures
// are recorded in the report; fetching the package list, a missing verifier
// tool and cancellation abort the run.
func (a *Auditor) Run(ctx context.Context, opts Options) (*domain.Report, error) {
	report := &domain.Report{
		RunID:         opts.RunID,
		CommunityOnly: opts.CommunityOnly,
		Strategy:      opts.Strategy,
		Top:           opts.Top,
		StartedAt:     a.now(),
		Packages:      []domain.PackageResult{},
	}

	err := WithWorkspace(opts.TempDir, opts.RunID, a.logger, func(dir string) error {
		scope := "community packages"
		if !opts.CommunityOnly {
			scope = "packages"
		}
		fmt.Fprintf(a.out, "Downloading the top %d most popular %s (by download count) to '%s'\n", opts.Top, scope, dir)

		ids, err := a.fetcher.FetchPopularPackageIDs(ctx, opts.CommunityOnly, opts.Top)
		if err != nil {
			return fmt.Errorf("failed to fetch popular packages: %w", err)
		}
		a.logger.Infof("Auditing %d packages", len(ids))

		for i, id := range ids {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("audit interrupted after %d of %d packages: %w", i, len(ids), err)
			}
			res, err := a.auditPackage(ctx, id, dir)
			if err != nil {
				return err
			}
			report.Add(res)
			fmt.Fprintf(a.out, "%-*s%s\n", statusColumn, id, res.Outcome.Label())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Finalize(a.now())
	for _, line := range report.Summary() {
		fmt.Fprintln(a.out, line)
	}
	return report, nil
}

// auditPackage acquires and verifies one package. The returned error is
// reserved for conditions that make the rest of the run pointless.
func (a *Auditor) auditPackage(ctx context.Context, id, dir string) (domain.PackageResult, error) {
	artifact, err := a.acquirer.Acquire(ctx, id, dir)
	res := domain.PackageResult{ID: id, Version: artifact.Version}
	if err != nil {
		if fatal := a.fatal(ctx, err); fatal != nil {
			return res, fatal
		}
		a.logger.Warnf("Acquiring %s failed: %v", id, err)
		res.Outcome = domain.OutcomeAcquireFailed
		res.Error = err.Error()
		return res, nil
	}
	res.SizeBytes = artifact.Size
	res.Digest = artifact.Digest

	if info, err := gateway.InspectArchive(artifact.Path); err != nil {
		a.logger.Debugf("Inspecting %s failed: %v", artifact.Path, err)
	} else {
		res.HasSignatureFile = info.HasSignature
		a.logger.Debugf("%s %s: %d entries, nuspec %q, signature entry %t", id, artifact.Version, info.Entries, info.Nuspec, info.HasSignature)
	}

	v, err := a.verifier.Verify(ctx, artifact.Path)
	if err != nil {
		if fatal := a.fatal(ctx, err); fatal != nil {
			return res, fatal
		}
		a.logger.Warnf("Verifying %s failed: %v", id, err)
		res.Outcome = domain.OutcomeVerifyFailed
		res.Error = err.Error()
		return res, nil
	}

	res.ExitCode = v.ExitCode
	res.Outcome = domain.Classify(v)
	switch res.Outcome {
	case domain.OutcomeVerifyFailed:
		res.Error = fmt.Sprintf("verifier exited with code %d", v.ExitCode)
		a.logger.Warnf("Verifying %s: %s", id, res.Error)
	case domain.OutcomeUnexpected:
		a.logger.Warnf("%s %s lacks a repository signature", id, artifact.Version)
	}
	return res, nil
}

// fatal returns a non-nil error when err should end the run.
func (a *Auditor) fatal(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("audit interrupted: %w", ctxErr)
	}
	if errors.Is(err, gateway.ErrToolNotFound) {
		return err
	}
	return nil
}
