// intcode - command line front end for the Intcode machine
// Subcommands load a program file, run it, and report outputs:
// run/disasm/debug operate on any program, the remaining commands drive
// the well known programs (gravity assist, diagnostics, amplifiers, BOOST, hull painting).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/colorfulnotion/intcode/common"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/telemetry"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode virtual machine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		logLevel     string
		debug        string
		otelEndpoint string
		shutdown     telemetry.ShutdownFunc
	)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, crit)")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "Comma separated log modules to enable, or \"all\"")
	rootCmd.PersistentFlags().StringVar(&otelEndpoint, "otel", "", "OTLP/HTTP endpoint for spans (host:port)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := log.InitLogger(logLevel); err != nil {
			return err
		}
		log.EnableModules(debug)
		fn, err := telemetry.InitTracing(cmd.Context(), otelEndpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		shutdown = fn
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if shutdown == nil {
			return
		}
		if err := shutdown(context.Background()); err != nil {
			log.Warn(log.CLIMonitoring, "tracing shutdown", "err", err)
		}
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("intcode %s\n", Version)
			fmt.Printf("  Commit:     %s\n", Commit)
			fmt.Printf("  Build Time: %s\n", BuildTime)
			fmt.Printf("  Source:     %s\n", common.GetCommitHash())
			fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDisasmCmd(),
		newDebugCmd(),
		newGravityCmd(),
		newDiagnosticCmd(),
		newAmplifyCmd(),
		newBoostCmd(),
		newPaintCmd(),
		versionCmd,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
