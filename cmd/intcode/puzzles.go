package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/program"
	log "github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/pipeline"
	"github.com/colorfulnotion/intcode/puzzle"
	"github.com/colorfulnotion/intcode/robot"
	"github.com/colorfulnotion/intcode/storage"
	"github.com/spf13/cobra"
)

func newGravityCmd() *cobra.Command {
	var (
		noun, verb int64
		target     int64
	)
	cmd := &cobra.Command{
		Use:   "gravity <program>",
		Short: "Run the gravity assist program, or search noun/verb for --target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("target") {
				nv, err := puzzle.FindNounVerb(cmd.Context(), prog, target)
				if err != nil {
					return err
				}
				fmt.Printf("noun=%d verb=%d answer=%d\n", nv.Noun, nv.Verb, nv.Answer())
				return nil
			}
			out, err := puzzle.GravityAssist(prog, noun, verb)
			if err != nil {
				return err
			}
			fmt.Printf("cell 0 = %d\n", out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&noun, "noun", 12, "Value written to cell 1")
	cmd.Flags().Int64Var(&verb, "verb", 2, "Value written to cell 2")
	cmd.Flags().Int64Var(&target, "target", 0, "Search noun and verb in 0..99 for this cell 0 value")
	return cmd
}

func newDiagnosticCmd() *cobra.Command {
	var systemID int64
	cmd := &cobra.Command{
		Use:   "diagnostic <program>",
		Short: "Run the diagnostic program for a system id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			report, err := puzzle.Diagnostic(prog, systemID)
			if err != nil {
				return err
			}
			printReport("diagnostic code", report)
			return nil
		},
	}
	cmd.Flags().Int64Var(&systemID, "system-id", 1, "System id supplied as the only input (1 air conditioner, 5 thermal radiator)")
	return cmd
}

func newBoostCmd() *cobra.Command {
	var mode int64
	cmd := &cobra.Command{
		Use:   "boost <program>",
		Short: "Run the BOOST program in test (1) or sensor boost (2) mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			report, err := puzzle.Boost(prog, mode)
			if err != nil {
				return err
			}
			printReport("keycode", report)
			return nil
		},
	}
	cmd.Flags().Int64Var(&mode, "mode", 1, "1 runs the self test, 2 the sensor boost")
	return cmd
}

func printReport(label string, r puzzle.Report) {
	if !r.Passed() {
		fmt.Printf("failing checks: %s\n", program.Format(r.Outputs[:len(r.Outputs)-1]))
	}
	fmt.Printf("%s = %d\n", label, r.Code)
}

func newAmplifyCmd() *cobra.Command {
	var (
		feedback  bool
		parallel  int
		cacheDir  string
		chartPath string
	)
	cmd := &cobra.Command{
		Use:   "amplify <program>",
		Short: "Find the phase ordering giving the highest thruster signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			opts := []pipeline.Option{
				pipeline.WithParallelism(parallel),
				pipeline.WithMachineOptions(intcode.WithLogging(log.VMMonitoring)),
			}
			if cacheDir != "" {
				var cache *storage.ResultCache
				if cache, err = storage.OpenResultCache(cacheDir); err != nil {
					return err
				}
				defer func() { err = closeJoin(err, cache, cacheDir) }()
				opts = append(opts, pipeline.WithCache(cache))
			}
			res, err := pipeline.MaxSignal(cmd.Context(), prog, phaseSet(feedback), opts...)
			if err != nil {
				return err
			}
			if res.Cached {
				fmt.Println("(cached)")
			}
			fmt.Printf("phases=%s signal=%d\n", program.Format(res.Best.Phases), res.Best.Signal)
			if chartPath != "" && len(res.All) > 0 {
				var f *os.File
				if f, err = os.Create(chartPath); err != nil {
					return err
				}
				defer func() { err = closeJoin(err, f, chartPath) }()
				if err := pipeline.RenderSearchChart(f, res); err != nil {
					return err
				}
				fmt.Printf("chart written to %s\n", chartPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&feedback, "feedback", false, "Use the feedback loop with phases 5..9 instead of the chain with 0..4")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Networks evaluated at once (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&cacheDir, "cache", "", "LevelDB directory caching search results")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write an HTML bar chart of every ordering")
	return cmd
}

func newPaintCmd() *cobra.Command {
	var (
		startWhite bool
		htmlPath   string
	)
	cmd := &cobra.Command{
		Use:   "paint <program>",
		Short: "Run the hull painting robot and render the hull",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}
			brain, err := intcode.New(prog, intcode.WithName("robot"), intcode.WithLogging(log.VMMonitoring))
			if err != nil {
				return err
			}
			r := robot.New(brain)
			if startWhite {
				r.SetPanel(robot.Point{}, robot.White)
			}
			painted, err := r.Paint(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("painted %d panels in %d moves\n", painted, r.Moves())
			fmt.Print(r.Render())
			if htmlPath != "" {
				var f *os.File
				if f, err = os.Create(htmlPath); err != nil {
					return err
				}
				defer func() { err = closeJoin(err, f, htmlPath) }()
				if err := r.RenderHullChart(f); err != nil {
					return err
				}
				fmt.Printf("hull chart written to %s\n", htmlPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&startWhite, "start-white", false, "Paint the starting panel white before the robot starts")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML heat map of the hull")
	return cmd
}
