package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/colorfulnotion/intcode/console"
	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/program"
	"github.com/colorfulnotion/intcode/intcode/trace"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		inputs     []int64
		patchSpecs []string
		tracePath  string
		traceWS    string
		showDiff   bool
		showTree   bool
		maxSteps   uint64
	)
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program with the given inputs until it halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			patches, err := parsePatches(patchSpecs)
			if err != nil {
				return err
			}

			var writers trace.MultiWriter
			if tracePath != "" {
				var jw *trace.JSONLTraceWriter
				if jw, err = trace.NewJSONLTraceWriterFile(tracePath); err != nil {
					return err
				}
				defer func() { err = closeJoin(err, jw, tracePath) }()
				writers = append(writers, jw)
			}
			if traceWS != "" {
				hub, stopHub, err := serveTraceHub(cmd.Context(), traceWS)
				if err != nil {
					return err
				}
				defer stopHub()
				writers = append(writers, hub)
			}

			opts := []intcode.Option{intcode.WithName(args[0]), intcode.WithLogging(log.VMMonitoring)}
			if len(writers) > 0 {
				opts = append(opts, intcode.WithTracer(writers))
			}
			if maxSteps > 0 {
				opts = append(opts, intcode.WithMaxSteps(maxSteps))
			}
			vm, err := intcode.New(prog, opts...)
			if err != nil {
				return err
			}
			applyPatches(vm, patches)
			before := vm.Snapshot()

			outputs, runErr := intcode.Collect(vm, inputs)
			fmt.Printf("Outputs: %s\n", program.Format(outputs))
			fmt.Printf("State:   %s\n", vm.State())
			fmt.Printf("Steps:   %d\n", vm.Steps())
			fmt.Printf("Cell 0:  %d\n", vm.Read(0))

			if showDiff {
				diff, changed, err := intcode.DiffSnapshots(before, vm.Snapshot(), true)
				if err != nil {
					return err
				}
				if changed {
					fmt.Println(diff)
				} else {
					fmt.Println("memory unchanged")
				}
			}
			if showTree {
				fmt.Println(vm.ToTree(16).String())
			}
			return runErr
		},
	}
	cmd.Flags().Int64SliceVar(&inputs, "input", nil, "Input values, in order (repeatable or comma separated)")
	cmd.Flags().StringArrayVar(&patchSpecs, "patch", nil, "Write memory before running, addr=value (repeatable)")
	cmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSONL step trace to this file")
	cmd.Flags().StringVar(&traceWS, "trace-ws", "", "Stream steps to websocket clients on this address (e.g. :8088)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a memory diff between load and exit")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the final machine state tree")
	cmd.Flags().Uint64Var(&maxSteps, "max-steps", 0, "Stop after this many instructions (0 = unlimited)")
	return cmd
}

// serveTraceHub starts a websocket hub on addr; the returned func stops it.
func serveTraceHub(ctx context.Context, addr string) (*trace.Hub, func(), error) {
	hub := trace.NewHub()
	hubCtx, cancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		cancel()
		return nil, nil, fmt.Errorf("trace hub on %s: %w", addr, err)
	case <-time.After(100 * time.Millisecond):
	}
	log.Info(log.TraceMonitoring, "trace hub listening", "addr", addr, "path", "/ws")

	stop := func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
		cancel()
	}
	return hub, stop, nil
}

func newDisasmCmd() *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "disasm <program>",
		Short: "Disassemble a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			fmt.Print(program.DisassembleText(prog))
			if stats {
				s := program.Analyze(prog)
				fmt.Printf("\ncells=%d instructions=%d data=%d\n", s.CellCount, s.InstructionCount, s.DataCount)
				for _, op := range sortedOpcodes(s.OpcodeDistribution) {
					fmt.Printf("  %-6s %d\n", op, s.OpcodeDistribution[op])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "Print instruction statistics")
	return cmd
}

func newDebugCmd() *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "debug <program>",
		Short: "Interactive JavaScript console over a machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			con, err := console.New(prog, os.Stdout, intcode.WithName(args[0]), intcode.WithLogging(log.VMMonitoring))
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "intcode> ",
				HistoryFile: history,
			})
			if err != nil {
				return fmt.Errorf("start readline: %w", err)
			}
			defer rl.Close()

			fmt.Printf("Intcode console, %d cells loaded. Type help() for bindings, 'exit' to quit.\n", len(prog))
			for {
				line, err := rl.Readline()
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" {
					return nil
				}
				value, err := con.Eval(line)
				if err != nil {
					fmt.Println("error:", err)
					continue
				}
				if value != nil && value.Export() != nil {
					fmt.Println(value)
				}
			}
		},
	}
	cmd.Flags().StringVar(&history, "history", os.TempDir()+"/intcode_console_history.txt", "Console history file")
	return cmd
}
