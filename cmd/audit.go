package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/nuget-sign-audit/internal/config"
	"github.com/naka-gawa/nuget-sign-audit/internal/domain"
	"github.com/naka-gawa/nuget-sign-audit/internal/gateway"
	"github.com/naka-gawa/nuget-sign-audit/internal/logger"
	"github.com/naka-gawa/nuget-sign-audit/internal/usecase"
)

func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audits the most downloaded packages for author signatures",
		Long: `Fetches the most downloaded packages from the nuget.org statistics page,
acquires the latest release of each, runs "nuget verify -Signatures" on it and
reports how many are author signed versus only repository signed.

Every flag can also be set through an environment variable prefixed with
NUGET_AUDIT_, e.g. NUGET_AUDIT_TOP=20. A bearer token for private feeds is
read from NUGET_AUDIT_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}

	flags := auditCmd.Flags()
	flags.String("stats-url", config.DefaultStatsURL, "Gallery statistics page listing the most downloaded packages")
	flags.String("api-base-url", config.DefaultAPIBaseURL, "Base address of the NuGet v3 API")
	flags.Bool("all-packages", false, "Audit the all-packages ranking instead of community packages only")
	flags.Int("top", domain.DefaultTop, fmt.Sprintf("Number of packages to audit (%d for a quick run)", domain.QuickTop))
	flags.String("strategy", gateway.StrategyDownload, "How packages are acquired: download or install")
	flags.String("nuget-path", "nuget", "Path to the nuget executable")
	flags.String("temp-dir", "", "Parent directory of the run workspace (default: system temp dir)")
	flags.StringP("format", "f", config.FormatText, "Report format: text, json or yaml")
	flags.String("progress", gateway.ProgressAuto, "Download progress bars: auto, tty or plain")
	return auditCmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	// Status lines move to stderr when stdout carries a report document.
	status := cmd.OutOrStdout()
	if cfg.Format != config.FormatText {
		status = cmd.ErrOrStderr()
	}

	gw, err := gateway.NewNuGetGateway(gateway.NewHTTPClient(cfg.Token), gateway.Options{
		StatsURL:     cfg.StatsURL,
		APIBaseURL:   cfg.APIBaseURL,
		ShowProgress: gateway.ShouldShowProgress(cfg.Progress),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create NuGet gateway: %w", err)
	}
	cli := gateway.NewNuGetCLI(gateway.ExecRunner{}, cfg.NuGetPath, cfg.APIBaseURL, log)
	acquirer, err := gateway.NewAcquirer(cfg.Strategy, gw, cli)
	if err != nil {
		return err
	}
	auditor := usecase.NewAuditor(gw, acquirer, cli, status, log)

	ctx, cancel := signalContext()
	defer cancel()

	runID := uuid.NewString()
	log.Debugf("Starting run %s", runID)
	report, err := auditor.Run(ctx, usecase.Options{
		RunID:         runID,
		TempDir:       cfg.TempDir,
		CommunityOnly: cfg.CommunityOnly(),
		Top:           cfg.Top,
		Strategy:      cfg.Strategy,
	})
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), report, cfg.Format)
}

// writeReport prints the report document for the json and yaml formats.
// The text format is fully covered by the status lines.
func writeReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case config.FormatJSON:
		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonData))
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to marshal report to YAML: %w", err)
		}
		return enc.Close()
	}
	return nil
}
