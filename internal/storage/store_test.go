package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/physics"
	"github.com/san-kum/hardgas/internal/sim"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult() *sim.Result {
	return &sim.Result{
		Snapshots: []dynamo.Snapshot{
			{Time: 0, State: dynamo.State{0.5, 0.5, 0.1, -0.2, 0.25, 0.75, 0, 0.3}},
			{Time: 0.002, State: dynamo.State{0.5002, 0.4996, 0.1, -0.2, 0.25, 0.7506, 0, 0.3}},
		},
		Pressure: []metrics.PressureSample{
			{Time: 2, Exp: 0.011, Teo: 0.012, Bounces: 7, Energy: 0.07},
		},
		Metrics:         map[string]float64{"wall_bounces": 7},
		StepsTaken:      1000,
		TotalBounces:    7,
		InitialEnergy:   0.07,
		FinalEnergy:     0.07,
		MeanPressureExp: 0.011,
		MeanPressureTeo: 0.012,
		PressureError:   8.333,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(RunMetadata{Preset: "tiny", Seed: 42, Particles: 2, Dt: 0.002}, sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "tiny_"), runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 1000, meta.Steps)
	assert.Equal(t, 7.0, meta.Metrics["wall_bounces"])
	assert.Equal(t, 0.012, meta.MeanPressureTeo)

	states, err := st.LoadStates(runID)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 0.002, states[1].Time)
	assert.Equal(t, 2, states[1].State.Len())
	assert.Equal(t, 0.7506, states[1].State.Position(1).Y)

	pressure, err := st.LoadPressure(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleResult().Pressure, pressure)
}

func TestStoreFileStructure(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "run_"), runID)

	for _, name := range []string{metadataFile, statesFile, pressureFile} {
		_, err := os.Stat(filepath.Join(st.baseDir, runID, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(st.baseDir, catalogFile))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(st.baseDir, runID, statesFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,x0,y0,vx0,vy0,x1,y1,vx1,vy1\n"))
}

func TestStoreList(t *testing.T) {
	st := newStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Now()
	first, err := st.Save(RunMetadata{Timestamp: base.Add(-time.Minute)}, sampleResult())
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{Timestamp: base}, sampleResult())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreListWithoutCatalog(t *testing.T) {
	dir := t.TempDir()
	st := newStoreAt(t, dir)
	runID, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// A store that never opened the catalog scans run directories.
	bare := New(dir)
	runs, err := bare.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func newStoreAt(t *testing.T, dir string) *Store {
	t.Helper()
	st := New(dir)
	require.NoError(t, st.Init())
	return st
}

func TestStoreDelete(t *testing.T) {
	st := newStore(t)

	runID, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)

	require.NoError(t, st.Delete(runID))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	assert.Error(t, st.Delete(runID))
}

func TestRunStreamsObservedStates(t *testing.T) {
	st := newStore(t)

	box, err := physics.NewBox(1, 1)
	require.NoError(t, err)
	require.NoError(t, box.InitializeRandom(5, 0.01, 0.4, 45))

	run, err := st.Create(RunMetadata{Preset: "stream", Particles: 5}, 10)
	require.NoError(t, err)
	run.WriteState(box.Snapshot(0))

	s := sim.New(box)
	s.AddObserver(run)
	result, err := s.Run(context.Background(), sim.Config{Dt: 0.002, Steps: 100, SampleEvery: 50})
	require.NoError(t, err)

	runID, err := run.Finish(result)
	require.NoError(t, err)
	assert.Equal(t, run.ID(), runID)

	states, err := st.LoadStates(runID)
	require.NoError(t, err)
	require.Len(t, states, 11)
	assert.Equal(t, 0.0, states[0].Time)
	assert.Equal(t, box.FillState(nil), states[10].State)

	pressure, err := st.LoadPressure(runID)
	require.NoError(t, err)
	assert.Equal(t, result.Pressure, pressure)
}

type cancelAfter struct {
	n, seen int
	cancel  context.CancelFunc
}

func (c *cancelAfter) OnStep(dynamo.Snapshot) {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
}

func TestRunFinishesPartialResult(t *testing.T) {
	st := newStore(t)

	box, err := physics.NewBox(1, 1)
	require.NoError(t, err)
	require.NoError(t, box.InitializeRandom(5, 0.01, 0.4, 45))

	run, err := st.Create(RunMetadata{Particles: 5}, 10)
	require.NoError(t, err)
	run.WriteState(box.Snapshot(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := sim.New(box)
	s.AddObserver(run)
	s.AddObserver(&cancelAfter{n: 35, cancel: cancel})
	result, err := s.Run(ctx, sim.Config{Dt: 0.002, Steps: 100, SampleEvery: 50})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	runID, err := run.Finish(result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, 35, meta.Steps)

	states, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Len(t, states, 4)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestRunAbortRemovesDirectory(t *testing.T) {
	st := newStore(t)

	run, err := st.Create(RunMetadata{}, 10)
	require.NoError(t, err)
	run.WriteState(dynamo.Snapshot{State: dynamo.State{0.5, 0.5, 0, 0}})

	require.NoError(t, run.Abort())

	_, err = os.Stat(run.Dir())
	assert.True(t, os.IsNotExist(err))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
