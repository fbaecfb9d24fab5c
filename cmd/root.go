package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloth-sim/cloth-sim/sim/scenario"
	"github.com/cloth-sim/cloth-sim/sim/trace"
)

var (
	scenarioPath string // Scenario YAML file
	frames       int    // Frame count override (0 = scenario value)
	seed         int64  // Jitter seed override
	logLevel     string // Log verbosity level
	traceOut     string // Trace output file (YAML)
	traceLevel   string // Trace level override
	workers      int    // Parallel pass width override (0 = scenario value)
	watch        bool   // Re-run when the scenario changes
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cloth-sim",
	Short: "Headless cloth team scheduler driven by YAML scenarios",
}

// runCmd runs a scenario and prints its metrics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		opts, err := runOptions(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runScenario(ctx, scenarioPath, opts, traceOut, os.Stdout); err != nil {
			if !watch {
				logrus.Fatalf("%v", err)
			}
			logrus.Errorf("%v", err)
		}
		if !watch {
			return
		}
		err = scenario.Watch(ctx, scenarioPath, scenario.DefaultDebounce, func() {
			logrus.Infof("%s changed, re-running", scenarioPath)
			if err := runScenario(ctx, scenarioPath, opts, traceOut, os.Stdout); err != nil {
				logrus.Errorf("%v", err)
			}
		})
		if err != nil {
			logrus.Fatalf("watch: %v", err)
		}
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runOptions maps the command-line overrides onto scenario.Options.
func runOptions(cmd *cobra.Command) (scenario.Options, error) {
	opts := scenario.Options{Frames: frames, Workers: workers}
	if frames < 0 {
		return opts, fmt.Errorf("--frames must be >= 0, got %d", frames)
	}
	if workers < 0 {
		return opts, fmt.Errorf("--workers must be >= 0, got %d", workers)
	}
	if cmd.Flags().Changed("seed") {
		s := seed
		opts.Seed = &s
	}
	if !trace.IsValidTraceLevel(traceLevel) {
		return opts, fmt.Errorf("unknown --trace-level %q (valid: none, frames, substeps)", traceLevel)
	}
	opts.TraceLevel = trace.TraceLevel(traceLevel)
	if traceOut != "" && (opts.TraceLevel == "" || opts.TraceLevel == trace.TraceLevelNone) {
		opts.TraceLevel = trace.TraceLevelFrames
	}
	return opts, nil
}

// runScenario loads, runs and reports one scenario. The trace is written to
// tracePath when it is non-empty.
func runScenario(ctx context.Context, path string, opts scenario.Options, tracePath string, out io.Writer) error {
	spec, err := scenario.LoadSpec(path)
	if err != nil {
		return err
	}
	r, err := scenario.NewRunner(spec, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	res.Metrics.Print(out)
	printTeams(out, res.Teams)
	if tracePath != "" {
		if err := writeTrace(tracePath, res.Trace); err != nil {
			return err
		}
		logrus.Infof("trace written to %s", tracePath)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
	runCmd.Flags().IntVar(&frames, "frames", 0, "Number of frames to run (0 = scenario frames.count)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for frame-delta jitter (default: scenario frames.seed)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the scheduling trace to this YAML file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "", "Trace level override (none, frames, substeps)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Parallel pass width (0 = scenario world.workers)")
	runCmd.Flags().BoolVar(&watch, "watch", false, "Re-run whenever the scenario file changes")
	_ = runCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(runCmd)
}
