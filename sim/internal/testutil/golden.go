// Package testutil provides shared test infrastructure for the cloth scheduler.
// It consolidates golden scenario outcomes and assertion helpers used across
// sim/, sim/scenario/ and cmd/ test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// GoldenDataset represents the structure of testdata/golden.yaml.
type GoldenDataset struct {
	Tests []GoldenTestCase `yaml:"tests"`
}

// GoldenTestCase is the expected outcome of running one scenario file.
type GoldenTestCase struct {
	Scenario string        `yaml:"scenario"`
	Frames   int           `yaml:"frames"`
	Metrics  GoldenMetrics `yaml:"metrics"`
	Teams    []GoldenTeam  `yaml:"teams"`
}

// GoldenMetrics represents the expected world metrics of a golden test case.
type GoldenMetrics struct {
	Substeps        int64 `yaml:"substeps"`
	TeamSubsteps    int64 `yaml:"team_substeps"`
	SkippedSubsteps int64 `yaml:"skipped_substeps"`
	SuspendedFrames int64 `yaml:"suspended_frames"`
}

// GoldenTeam is the expected end state of one team.
type GoldenTeam struct {
	Name         string  `yaml:"name"`
	TotalUpdates int     `yaml:"total_updates"`
	Time         float64 `yaml:"time"`
	SyncTo       string  `yaml:"sync_to"`
}

// repoRoot resolves the module root from this source file: sim/internal/testutil/ → ../../..
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
}

// TestdataPath returns the absolute path of a file under the repo-root testdata/.
func TestdataPath(t *testing.T, elem ...string) string {
	t.Helper()
	return filepath.Join(append([]string{repoRoot(t), "testdata"}, elem...)...)
}

// ScenarioPath returns the path of a scenario under testdata/scenarios/.
func ScenarioPath(t *testing.T, name string) string {
	t.Helper()
	return TestdataPath(t, "scenarios", name)
}

// LoadGoldenDataset loads the golden outcomes from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	data, err := os.ReadFile(TestdataPath(t, "golden.yaml"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertVec3Near compares two vectors component-wise with an absolute tolerance.
func AssertVec3Near(t *testing.T, name string, want, got mgl64.Vec3, absTol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(want[i]-got[i]) > absTol {
			t.Errorf("%s: got %v, want %v (component %d off by %v)", name, got, want, i, math.Abs(want[i]-got[i]))
			return
		}
	}
}
