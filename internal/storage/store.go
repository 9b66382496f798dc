// Package storage persists simulation runs: one directory per run with
// metadata.json and states.csv, plus a SQLite index for listing and
// querying across runs.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cpgsim/internal/sim"
)

type Store struct {
	baseDir string
	index   *Index
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	idx, err := OpenIndex(filepath.Join(s.baseDir, "runs.db"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	s.index = idx
	return nil
}

func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

type RunMetadata struct {
	ID         string             `json:"id" db:"id"`
	Gait       string             `json:"gait" db:"gait"`
	Timestamp  time.Time          `json:"timestamp" db:"timestamp"`
	Seed       int64              `json:"seed" db:"seed"`
	Dt         float64            `json:"dt" db:"dt"`
	Duration   float64            `json:"duration" db:"duration"`
	Integrator string             `json:"integrator" db:"integrator"`
	Policy     string             `json:"policy" db:"policy"`
	Steps      int                `json:"steps" db:"steps"`
	Metrics    map[string]float64 `json:"metrics" db:"-"`
}

func (s *Store) Save(gait string, dt, duration float64, seed int64, integrator, policy string, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", gait, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Gait:       gait,
		Timestamp:  time.Now(),
		Seed:       seed,
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Policy:     policy,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeStates(runDir, result); err != nil {
		return "", err
	}

	if s.index != nil {
		if err := s.index.Insert(meta); err != nil {
			// Index is derived data; the run directory stays the source
			// of truth.
			slog.Warn("run saved but not indexed", "run", runID, "err", err)
		}
	}

	return runID, nil
}

func (s *Store) writeStates(runDir string, result *sim.Result) error {
	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.States) == 0 {
		return nil
	}

	n := len(result.States[0]) / 2
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("theta%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("r%d", i))
	}

	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
		for i := 0; i < numControls; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}

	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else if numControls > 0 {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// List returns run metadata from the index when available, falling back
// to a directory scan.
func (s *Store) List() ([]RunMetadata, error) {
	if s.index != nil {
		runs, err := s.index.List()
		if err == nil {
			return runs, nil
		}
		slog.Warn("index list failed, scanning directories", "err", err)
	}
	return s.scan()
}

// ListGait returns runs for one gait, newest first.
func (s *Store) ListGait(gaitName string) ([]RunMetadata, error) {
	if s.index != nil {
		runs, err := s.index.ListByGait(gaitName)
		if err == nil {
			return runs, nil
		}
		slog.Warn("index query failed, scanning directories", "err", err)
	}
	all, err := s.scan()
	if err != nil {
		return nil, err
	}
	filtered := make([]RunMetadata, 0, len(all))
	for _, r := range all {
		if r.Gait == gaitName {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Store) scan() ([]RunMetadata, error) {
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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads a run trace back, splitting the state columns from the
// trailing u* control columns so re-exported runs match a fresh export.
func (s *Store) LoadStates(runID string) (states, controls [][]float64, times []float64, err error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, [][]float64{}, []float64{}, nil
	}

	numControls := 0
	for _, col := range records[0][1:] {
		if strings.HasPrefix(col, "u") {
			numControls++
		}
	}
	stateCols := len(records[0]) - 1 - numControls

	times = make([]float64, 0, len(records)-1)
	states = make([][]float64, 0, len(records)-1)
	controls = make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		tval, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				break
			}
			row = append(row, v)
		}
		if len(row) < stateCols {
			continue
		}
		times = append(times, tval)
		states = append(states, row[:stateCols])
		if len(row) == stateCols+numControls && numControls > 0 {
			controls = append(controls, row[stateCols:])
		}
	}

	return states, controls, times, nil
}

// StatesCSV streams the raw per-step trace of a run to w.
func (s *Store) StatesCSV(runID string, w io.Writer) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
