package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ratenet/internal/dynamo"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrCorruptRun  = errors.New("storage: corrupt run")
	ErrInvalidID   = errors.New("storage: invalid run id")
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Method      string             `json:"method"`
	T0          float64            `json:"t0"`
	T1          float64            `json:"t1"`
	Dt          float64            `json:"dt,omitempty"`
	RelTol      float64            `json:"rtol,omitempty"`
	AbsTol      float64            `json:"atol,omitempty"`
	Species     []string           `json:"species"`
	Rates       map[string]float64 `json:"rates,omitempty"`
	StepsTaken  int                `json:"steps_taken"`
	Rejected    int                `json:"rejected"`
	Evaluations int                `json:"evaluations"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Series is a stored trajectory; States[i] is aligned with Species.
type Series struct {
	Species []string
	Times   []float64
	States  []dynamo.State
}

// Save writes a run under a fresh id and returns the id. meta.ID,
// Timestamp and the solver counters are filled in from result.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("%w: nil result", ErrCorruptRun)
	}
	for _, x := range result.States {
		if len(x) != len(meta.Species) {
			return "", fmt.Errorf("%w: %d species for %d-component states",
				dynamo.ErrDimensionMismatch, len(meta.Species), len(x))
		}
	}

	meta.ID = meta.Model + "_" + uuid.NewString()[:8]
	meta.Timestamp = time.Now().UTC()
	meta.StepsTaken = result.StepsTaken
	meta.Rejected = result.Rejected
	meta.Evaluations = result.Evaluations
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), meta.Species, result); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, species []string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, species...)); err != nil {
		return err
	}
	for i, x := range result.States {
		row := make([]string, 0, len(x)+1)
		row = append(row, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, v := range x {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) runPath(runID, name string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, runID)
	}
	return filepath.Join(s.baseDir, runID, name), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	path, err := s.runPath(runID, metadataFile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) (*Series, error) {
	path, err := s.runPath(runID, statesFile)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "time" {
		return nil, fmt.Errorf("%w: %s: missing header", ErrCorruptRun, runID)
	}

	series := &Series{
		Species: records[0][1:],
		Times:   make([]float64, 0, len(records)-1),
		States:  make([]dynamo.State, 0, len(records)-1),
	}
	for line, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrCorruptRun, runID, line+2, err)
			}
			values[j] = v
		}
		series.Times = append(series.Times, values[0])
		series.States = append(series.States, dynamo.State(values[1:]))
	}
	return series, nil
}

// Result rebuilds a dynamo.Result from a stored series and its metadata.
func (s *Series) Result(meta *RunMetadata) *dynamo.Result {
	r := &dynamo.Result{Times: s.Times, States: s.States}
	if meta != nil {
		r.Metrics = meta.Metrics
		r.StepsTaken = meta.StepsTaken
		r.Rejected = meta.Rejected
		r.Evaluations = meta.Evaluations
	}
	return r
}

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run's metadata and full trajectory as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       series.Times,
		States:      make([][]float64, len(series.States)),
	}
	for i, x := range series.States {
		data.States[i] = x
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
