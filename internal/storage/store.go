package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	pressureFile = "pressure.csv"
)

// Store keeps one directory per run under baseDir plus a SQLite catalog.
type Store struct {
	baseDir string
	catalog *catalog
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	cat, err := openCatalog(filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	s.catalog = cat
	return nil
}

func (s *Store) Close() error {
	return s.catalog.close()
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Preset    string    `json:"preset"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`

	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Particles     int     `json:"particles"`
	Radius        float64 `json:"radius"`
	Mass          float64 `json:"mass"`
	VMax          float64 `json:"vmax"`
	Dt            float64 `json:"dt"`
	Duration      float64 `json:"duration"`
	SampleEvery   int     `json:"sample_every"`
	SnapshotEvery int     `json:"snapshot_every"`

	Steps           int                `json:"steps"`
	InitialEnergy   float64            `json:"initial_energy"`
	FinalEnergy     float64            `json:"final_energy"`
	TotalBounces    int                `json:"total_bounces"`
	MeanPressureExp float64            `json:"mean_p_exp"`
	MeanPressureTeo float64            `json:"mean_p_teo"`
	PressureError   float64            `json:"pressure_error"`
	Metrics         map[string]float64 `json:"metrics"`
}

func newRunID(preset string, ts time.Time) string {
	if preset == "" {
		preset = "run"
	}
	id := uuid.Must(uuid.NewV7()).String()
	return fmt.Sprintf("%s_%d_%s", preset, ts.Unix(), id[len(id)-8:])
}

// Run is an open run directory. It streams states as an observer of the
// simulator and is closed by Finish.
type Run struct {
	store *Store
	meta  RunMetadata
	dir   string

	every  int
	steps  int
	file   *os.File
	w      *csv.Writer
	header bool
	err    error
}

// Create allocates a run id and directory and opens states.csv. When
// stateEvery > 0 the run records every stateEvery-th step it observes;
// otherwise only states passed to WriteState are kept.
func (s *Store) Create(meta RunMetadata, stateEvery int) (*Run, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = newRunID(meta.Preset, meta.Timestamp)
	dir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.Create(filepath.Join(dir, statesFile))
	if err != nil {
		return nil, err
	}

	return &Run{
		store: s,
		meta:  meta,
		dir:   dir,
		every: stateEvery,
		file:  file,
		w:     csv.NewWriter(file),
	}, nil
}

func (r *Run) ID() string { return r.meta.ID }

func (r *Run) Dir() string { return r.dir }

// OnStep implements sim.Observer.
func (r *Run) OnStep(snap dynamo.Snapshot) {
	r.steps++
	if r.every <= 0 || r.steps%r.every != 0 {
		return
	}
	r.WriteState(snap)
}

// WriteState appends one row; the first write error is kept and reported
// by Finish.
func (r *Run) WriteState(snap dynamo.Snapshot) {
	if r.err != nil {
		return
	}
	if !r.header {
		header := []string{"time"}
		for i := 0; i < snap.State.Len(); i++ {
			header = append(header,
				fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
				fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
		}
		if r.err = r.w.Write(header); r.err != nil {
			return
		}
		r.header = true
	}

	row := make([]string, 0, len(snap.State)+1)
	row = append(row, formatFloat(snap.Time))
	for _, val := range snap.State {
		row = append(row, formatFloat(val))
	}
	r.err = r.w.Write(row)
}

// Finish writes the pressure series and metadata, catalogs the run and
// closes its files.
func (r *Run) Finish(result *sim.Result) (string, error) {
	r.w.Flush()
	if r.err == nil {
		r.err = r.w.Error()
	}
	if err := r.file.Close(); err != nil && r.err == nil {
		r.err = err
	}
	if r.err != nil {
		return "", fmt.Errorf("write states: %w", r.err)
	}

	meta := r.meta
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.InitialEnergy = result.InitialEnergy
		meta.FinalEnergy = result.FinalEnergy
		meta.TotalBounces = result.TotalBounces
		meta.MeanPressureExp = result.MeanPressureExp
		meta.MeanPressureTeo = result.MeanPressureTeo
		meta.PressureError = result.PressureError
		meta.Metrics = result.Metrics

		if err := writePressure(filepath.Join(r.dir, pressureFile), result.Pressure); err != nil {
			return "", err
		}
	}

	if err := writeMetadata(filepath.Join(r.dir, metadataFile), &meta); err != nil {
		return "", err
	}

	if r.store.catalog != nil {
		if err := r.store.catalog.insert(&meta); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

// Abort closes the run's files and removes its directory without
// cataloging it.
func (r *Run) Abort() error {
	r.w.Flush()
	r.file.Close()
	return os.RemoveAll(r.dir)
}

// Save writes a finished in-memory result: its snapshots become states.csv.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	run, err := s.Create(meta, 0)
	if err != nil {
		return "", err
	}
	for _, snap := range result.Snapshots {
		run.WriteState(snap)
	}
	return run.Finish(result)
}

func writeMetadata(path string, meta *RunMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writePressure(path string, samples []metrics.PressureSample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"time", "p_exp", "p_teo", "bounces", "energy"}); err != nil {
		return err
	}
	for _, p := range samples {
		row := []string{
			formatFloat(p.Time),
			formatFloat(p.Exp),
			formatFloat(p.Teo),
			strconv.Itoa(p.Bounces),
			formatFloat(p.Energy),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns saved runs, oldest first. Runs missing from the catalog are
// found by scanning the run directories.
func (s *Store) List() ([]RunMetadata, error) {
	var ids []string
	if s.catalog != nil {
		var err error
		if ids, err = s.catalog.ids(); err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return s.scan()
	}

	runs := make([]RunMetadata, 0, len(ids))
	for _, id := range ids {
		meta, err := s.Load(id)
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Delete removes a run directory and its catalog entry.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	if s.catalog != nil {
		if err := s.catalog.delete(runID); err != nil {
			return err
		}
	}
	return os.RemoveAll(dir)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadStates(runID string) ([]dynamo.Snapshot, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	snaps := make([]dynamo.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		values, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("states.csv row %d: %w", i+2, err)
		}
		if (len(values)-1)%dynamo.FieldsPerParticle != 0 {
			return nil, fmt.Errorf("states.csv row %d: %d state columns is not a multiple of %d",
				i+2, len(values)-1, dynamo.FieldsPerParticle)
		}
		snaps = append(snaps, dynamo.Snapshot{Time: values[0], State: dynamo.State(values[1:])})
	}

	return snaps, nil
}

func (s *Store) LoadPressure(runID string) ([]metrics.PressureSample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, pressureFile))
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []metrics.PressureSample{}, nil
	}

	samples := make([]metrics.PressureSample, 0, len(records)-1)
	for i, record := range records[1:] {
		values, err := parseRow(record)
		if err != nil || len(values) != 5 {
			return nil, errors.Join(fmt.Errorf("pressure.csv row %d is malformed", i+2), err)
		}
		samples = append(samples, metrics.PressureSample{
			Time:    values[0],
			Exp:     values[1],
			Teo:     values[2],
			Bounces: int(values[3]),
			Energy:  values[4],
		})
	}
	return samples, nil
}

func parseRow(record []string) ([]float64, error) {
	values := make([]float64, len(record))
	for j, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		values[j] = v
	}
	return values, nil
}
