package trace_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coheq-dsp/coheq/internal/cx"
	"github.com/coheq-dsp/coheq/internal/trace"
)

func TestMemoryRecorderKeepsOrder(t *testing.T) {
	m := trace.NewMemory()
	ctx := context.Background()

	for step := 0; step < 5; step++ {
		require.NoError(t, m.Record(ctx, trace.Entry{Step: step, Loss: float64(step) * 0.5}))
	}
	require.NoError(t, m.Close())

	entries := m.Entries()
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, i, e.Step)
		assert.Equal(t, float64(i)*0.5, e.Loss)
	}
}

func TestMemoryEntriesIsCopy(t *testing.T) {
	m := trace.NewMemory()
	require.NoError(t, m.Record(context.Background(), trace.Entry{Step: 0, Loss: 1}))

	got := m.Entries()
	got[0].Loss = 99
	assert.Equal(t, 1.0, m.Entries()[0].Loss)
}

func TestWeightsCodecRoundTrip(t *testing.T) {
	w := cx.ZerosTensor(2, 2, 3)
	for i := range w.Data {
		w.Data[i] = complex(float64(i), -float64(i)/3)
	}

	data, err := trace.EncodeWeights(w)
	require.NoError(t, err)

	got, err := trace.DecodeWeights(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(w))
}

func TestWeightsCodecRejectsBadPayloads(t *testing.T) {
	_, err := trace.EncodeWeights(nil)
	require.Error(t, err)

	_, err = trace.DecodeWeights([]byte(`{"codec_version":99,"dims":[1,1,1],"re":[0],"im":[0]}`))
	require.ErrorIs(t, err, trace.ErrVersionMismatch)

	_, err = trace.DecodeWeights([]byte(`{"codec_version":1,"dims":[2,2,2],"re":[0],"im":[0]}`))
	require.Error(t, err)
}

func TestVectorCodecRoundTrip(t *testing.T) {
	v := []complex128{1 + 2i, -3, 0.5i}

	data, err := trace.EncodeVector(v)
	require.NoError(t, err)

	got, err := trace.DecodeVector(data)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := trace.NewSQLiteStore(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, store.Init(ctx))
	defer store.Close()

	run, err := store.StartRun(ctx, "cma")
	require.NoError(t, err)

	w := cx.ZerosTensor(1, 1, 2)
	w.Data[0] = 1 + 1i
	payload, err := trace.EncodeWeights(w)
	require.NoError(t, err)

	require.NoError(t, run.Record(ctx, trace.Entry{Step: 0, Loss: 0.8}))
	require.NoError(t, run.Record(ctx, trace.Entry{Step: 1, Loss: 0.4, Payload: payload}))

	entries, err := store.Entries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Step)
	assert.Equal(t, 0.8, entries[0].Loss)
	assert.Nil(t, entries[0].Payload)

	got, err := trace.DecodeWeights(entries[1].Payload)
	require.NoError(t, err)
	assert.True(t, got.Equal(w))
}

func TestSQLiteStoreListsRuns(t *testing.T) {
	ctx := context.Background()
	store := trace.NewSQLiteStore(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, store.Init(ctx))
	defer store.Close()

	_, err := store.StartRun(ctx, "cma")
	require.NoError(t, err)
	_, err = store.StartRun(ctx, "ddlms")
	require.NoError(t, err)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.CreatedAt)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := trace.NewSQLiteStore("")
	require.Error(t, store.Init(context.Background()))

	_, err := store.StartRun(context.Background(), "cma")
	require.Error(t, err)
	require.NoError(t, store.Close())
}

func TestSQLiteRecordUpsertsStep(t *testing.T) {
	ctx := context.Background()
	store := trace.NewSQLiteStore(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, store.Init(ctx))
	defer store.Close()

	run, err := store.StartRun(ctx, "rde")
	require.NoError(t, err)

	require.NoError(t, run.Record(ctx, trace.Entry{Step: 3, Loss: 1}))
	require.NoError(t, run.Record(ctx, trace.Entry{Step: 3, Loss: 2}))

	entries, err := store.Entries(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2.0, entries[0].Loss)
}
