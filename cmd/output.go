package cmd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloth-sim/cloth-sim/sim/scenario"
	"github.com/cloth-sim/cloth-sim/sim/trace"
)

// traceFile is the document written by --trace-out.
type traceFile struct {
	Summary *trace.TraceSummary    `yaml:"summary"`
	Trace   *trace.SimulationTrace `yaml:"trace"`
}

func writeTrace(path string, st *trace.SimulationTrace) error {
	if st == nil {
		return fmt.Errorf("no trace recorded")
	}
	data, err := yaml.Marshal(traceFile{Summary: trace.Summarize(st), Trace: st})
	if err != nil {
		return fmt.Errorf("encoding trace: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

func printTeams(w io.Writer, teams []scenario.TeamResult) {
	fmt.Fprintln(w, "=== Teams ===")
	for _, t := range teams {
		state := "enabled"
		switch {
		case t.Destroyed:
			state = "destroyed"
		case t.Suspended:
			state = "suspended"
		case !t.Enabled:
			state = "disabled"
		}
		line := fmt.Sprintf("%-16s %-9s updates %6d  time %10.4f", t.Name, state, t.TotalUpdates, t.Time)
		if t.SyncTo != "" {
			line += "  sync " + t.SyncTo
		}
		fmt.Fprintln(w, line)
	}
}
