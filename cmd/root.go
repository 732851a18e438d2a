// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/nuget-sign-audit/internal/gateway"
	"github.com/naka-gawa/nuget-sign-audit/internal/usecase"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nuget-sign-audit",
		Short: "A CLI tool to measure author signing among popular NuGet packages.",
		Long: `nuget-sign-audit downloads the latest release of the most downloaded
packages on nuget.org, verifies their signatures with the nuget CLI and
reports how many carry an author signature on top of the repository one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Add a persistent flag for verbose output, available to all commands.
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	root.AddCommand(newAuditCmd(), newVersionCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := run(rootCmd, os.Args[1:], os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(root *cobra.Command, args []string, stderr io.Writer) error {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, formatError(err))
	}
	return err
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// formatError converts audit errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, usecase.ErrTempDirMissing):
		return fmt.Sprintf("Error: %v. That's odd; bailing out before doing any work.", err)
	case errors.Is(err, usecase.ErrWorkspace):
		return fmt.Sprintf("Error: had some trouble creating the temp directory: %v", err)
	case errors.Is(err, gateway.ErrStatsTableNotFound), errors.Is(err, gateway.ErrNoPackageRows):
		return fmt.Sprintf("Error: the statistics page layout is not what this tool expects: %v", err)
	case errors.Is(err, gateway.ErrToolNotFound):
		return fmt.Sprintf("Error: %v (install the nuget CLI or pass --nuget-path)", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
