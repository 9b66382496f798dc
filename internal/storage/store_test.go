package storage

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/cpgsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States: []sim.State{
			{0.0, math.Pi, 0.0, 0.0},
			{0.1, math.Pi + 0.1, 0.2, 0.2},
		},
		Controls: []sim.Control{
			{1.0, 1.0},
		},
		Times:      []float64{0.0, 1e-4},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"coherence": 0.42,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	runID, err := st.Save("tripod", 1e-4, 1.0, 42, "euler", "constant", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}
	if !strings.HasPrefix(runID, "tripod_") {
		t.Errorf("run id %q should carry the gait prefix", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Gait != "tripod" {
		t.Errorf("expected gait tripod, got %q", meta.Gait)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["coherence"] != 0.42 {
		t.Errorf("expected coherence 0.42, got %f", meta.Metrics["coherence"])
	}

	states, controls, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states, %d times", len(states), len(times))
	}
	if len(states[0]) != 4 {
		t.Errorf("expected 4 state columns, got %d", len(states[0]))
	}
	if len(controls) != 2 || len(controls[0]) != 2 {
		t.Fatalf("expected 2x2 control columns, got %dx%d", len(controls), len(controls[0]))
	}
	if math.Abs(states[1][1]-(math.Pi+0.1)) > 1e-5 {
		t.Errorf("state round trip lost precision: %g", states[1][1])
	}
}

// A run exported after reload must have the same row widths as one
// exported straight from the result.
func TestExportShapeMatchesFreshRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	result := sampleResult()
	fresh := FromResult("tripod", "euler", "constant", 1e-4, 1.0, result)

	runID, err := st.Save("tripod", 1e-4, 1.0, 42, "euler", "constant", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	states, controls, _, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}

	if len(states[0]) != len(fresh.States[0]) {
		t.Errorf("reloaded state width %d, fresh export width %d",
			len(states[0]), len(fresh.States[0]))
	}
	if len(controls[0]) != len(fresh.Controls[0]) {
		t.Errorf("reloaded control width %d, fresh export width %d",
			len(controls[0]), len(fresh.Controls[0]))
	}
}

func TestIndexList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	if _, err := st.Save("tripod", 1e-4, 1.0, 1, "euler", "constant", sampleResult()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := st.Save("wave", 1e-4, 2.0, 2, "rk4", "wander", sampleResult()); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	waveRuns, err := st.ListGait("wave")
	if err != nil {
		t.Fatalf("list by gait failed: %v", err)
	}
	if len(waveRuns) != 1 || waveRuns[0].Policy != "wander" {
		t.Errorf("gait filter wrong: %+v", waveRuns)
	}

	// Without the index the same filter comes from a directory scan.
	scanned, err := New(st.baseDir).ListGait("wave")
	if err != nil {
		t.Fatalf("scan list failed: %v", err)
	}
	if len(scanned) != 1 {
		t.Errorf("expected 1 scanned run, got %d", len(scanned))
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStatesCSVStream(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	runID, err := st.Save("tripod", 1e-4, 1.0, 42, "euler", "constant", sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.StatesCSV(runID, &buf); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "time,") {
		t.Errorf("unexpected header: %q", lines[0])
	}

	if err := st.StatesCSV("absent", &buf); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer st.Close()

	if _, err := st.Load("absent"); err == nil {
		t.Error("expected error for missing run")
	}
}
