package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		Times: []float64{0, 0.5, 1},
		States: []dynamo.State{
			{1 - 3e-8, 3e-8, 0},
			{0.99999996, 3.9e-8, 1e-9},
			{0.9999999, 5.1e-8, 4.9e-8},
		},
		Metrics:     map[string]float64{"peak_I": 5.1e-8},
		StepsTaken:  2,
		Rejected:    1,
		Evaluations: 23,
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Model:   "sir",
		Method:  "rk45",
		T1:      1,
		RelTol:  1e-9,
		AbsTol:  1e-12,
		Species: []string{"S", "I", "R"},
		Rates:   map[string]float64{"infect": 0.6},
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return st, dir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)

	runID, err := st.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "sir_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Model != "sir" || meta.Method != "rk45" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.StepsTaken != 2 || meta.Rejected != 1 || meta.Evaluations != 23 {
		t.Errorf("solver counters not stored: %+v", meta)
	}
	if meta.Metrics["peak_I"] != 5.1e-8 {
		t.Errorf("expected peak_I 5.1e-8, got %g", meta.Metrics["peak_I"])
	}
	if meta.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	series, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if strings.Join(series.Species, ",") != "S,I,R" {
		t.Errorf("header = %v", series.Species)
	}
	want := sampleResult()
	for i := range want.States {
		if series.Times[i] != want.Times[i] {
			t.Errorf("time %d = %g, want %g", i, series.Times[i], want.Times[i])
		}
		for j := range want.States[i] {
			if series.States[i][j] != want.States[i][j] {
				t.Errorf("state[%d][%d] = %g, want %g (precision lost)", i, j, series.States[i][j], want.States[i][j])
			}
		}
	}

	r := series.Result(meta)
	if r.Final()[1] != 5.1e-8 || r.StepsTaken != 2 {
		t.Errorf("rebuilt result mismatch: %+v", r)
	}
}

func TestStoreSaveRejectsMismatchedSpecies(t *testing.T) {
	st, _ := newStore(t)
	meta := sampleMeta()
	meta.Species = []string{"S", "I"}
	if _, err := st.Save(meta, sampleResult()); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := st.Save(sampleMeta(), nil); !errors.Is(err, ErrCorruptRun) {
		t.Errorf("expected ErrCorruptRun, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	st, dir := newStore(t)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, _ := st.Save(sampleMeta(), sampleResult())
	second, _ := st.Save(sampleMeta(), sampleResult())
	if first == second {
		t.Fatal("run ids collide")
	}

	// stray directories are ignored
	if err := os.Mkdir(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}

	missing := New(filepath.Join(dir, "nowhere"))
	if runs, err := missing.List(); err != nil || len(runs) != 0 {
		t.Errorf("missing base dir: %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st, dir := newStore(t)

	runID, err := st.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(dir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	data, err := os.ReadFile(filepath.Join(runDir, "states.csv"))
	if err != nil {
		t.Fatal("states.csv not created")
	}
	if !strings.HasPrefix(string(data), "time,S,I,R\n") {
		t.Errorf("unexpected csv header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestStoreMissingAndInvalid(t *testing.T) {
	st, dir := newStore(t)

	if _, err := st.Load("sir_deadbeef"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadStates("sir_deadbeef"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	for _, id := range []string{"", "..", "../etc", `a\b`} {
		if _, err := st.Load(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Load(%q): expected ErrInvalidID, got %v", id, err)
		}
	}

	runID, _ := st.Save(sampleMeta(), sampleResult())
	csvPath := filepath.Join(dir, runID, "states.csv")
	if err := os.WriteFile(csvPath, []byte("time,S\n0,abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadStates(runID); !errors.Is(err, ErrCorruptRun) {
		t.Errorf("expected ErrCorruptRun, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st, _ := newStore(t)
	runID, err := st.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded struct {
		ID      string      `json:"id"`
		Species []string    `json:"species"`
		Times   []float64   `json:"times"`
		States  [][]float64 `json:"states"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.ID != runID || len(decoded.Times) != 3 || len(decoded.States) != 3 || len(decoded.Species) != 3 {
		t.Errorf("unexpected export %+v", decoded)
	}
}
