package dataset_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"cidl/core/storage"
	"cidl/core/storage/mocks"
	"cidl/feature/dataset"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	metadataKey = "acic22/metadata/acic22_metadata.json"
	dgpInfoKey  = "acic22/metadata/acic22_dgp_info.json"

	metadataDoc = `[
		{"index": 1, "filename": "sim_0001.csv", "dgp": 10},
		{"index": 2, "filename": "sim_0002.csv", "dgp": 20}
	]`
	dgpInfoDoc = `{"dgps": [
		{"dgp": 10, "difficulty_tier": "easy"},
		{"dgp": 20, "difficulty_tier": "hard"}
	]}`
)

func testConfig() dataset.Config {
	return dataset.Config{
		SimPrefix:      "acic22/simulations",
		TruthPrefix:    "acic22/truth",
		MetadataSource: metadataKey,
		DGPInfoSource:  dgpInfoKey,
	}
}

func newTestStore(client *mocks.Client, cfg dataset.Config) *dataset.Store {
	backend := storage.NewBackend(storage.Config{Bucket: "cidl-test"}, zap.NewNop())
	backend.Attach(storage.NewSession(client, "cidl-test", "https://s3.example.org", true))
	return dataset.NewStore(backend, cfg, zap.NewNop())
}

func serveObject(client *mocks.Client, key, body string) {
	client.On("GetObject", mock.Anything, "cidl-test", key, mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(body))), nil).Once()
}

func TestEligibleIndices(t *testing.T) {
	t.Run("SingleTier", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		serveObject(client, dgpInfoKey, dgpInfoDoc)
		store := newTestStore(client, testConfig())

		indices, err := store.EligibleIndices(context.Background(), dataset.DifficultyEasy, true)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, indices)
	})

	t.Run("All", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		store := newTestStore(client, testConfig())

		indices, err := store.EligibleIndices(context.Background(), dataset.DifficultyAll, true)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, indices)
	})

	t.Run("InvalidLabel", func(t *testing.T) {
		store := newTestStore(new(mocks.Client), testConfig())

		_, err := store.EligibleIndices(context.Background(), dataset.Difficulty("trivial"), true)
		assert.Error(t, err)
	})

	t.Run("MetadataCachedAcrossCalls", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		serveObject(client, dgpInfoKey, dgpInfoDoc)
		store := newTestStore(client, testConfig())

		_, err := store.EligibleIndices(context.Background(), dataset.DifficultyEasy, true)
		require.NoError(t, err)
		_, err = store.EligibleIndices(context.Background(), dataset.DifficultyHard, true)
		require.NoError(t, err)

		// Both documents were fetched at most once.
		client.AssertNumberOfCalls(t, "GetObject", 2)
	})
}

func TestSimulationIndex_SchemaErrors(t *testing.T) {
	t.Run("NotAList", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, `{"not": "a list"}`)
		store := newTestStore(client, testConfig())

		_, err := store.SimulationIndex(context.Background(), true)
		assert.ErrorIs(t, err, dataset.ErrSchema)
	})

	t.Run("RecordMissingIndex", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, `[{"filename": "sim_0001.csv"}]`)
		store := newTestStore(client, testConfig())

		_, err := store.SimulationIndex(context.Background(), true)
		assert.ErrorIs(t, err, dataset.ErrSchema)
		assert.Contains(t, err.Error(), "index")
	})

	t.Run("ByteOrderMarkTolerated", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, "\xEF\xBB\xBF"+metadataDoc)
		store := newTestStore(client, testConfig())

		meta, err := store.SimulationIndex(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, meta, 2)
	})
}

func TestDGPInfo_SchemaErrors(t *testing.T) {
	t.Run("MissingDGPsField", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, dgpInfoKey, `[]`)
		store := newTestStore(client, testConfig())

		_, err := store.DGPInfo(context.Background(), true)
		assert.ErrorIs(t, err, dataset.ErrSchema)
	})

	t.Run("RecordMissingDGP", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, dgpInfoKey, `{"dgps": [{"difficulty_tier": "easy"}]}`)
		store := newTestStore(client, testConfig())

		_, err := store.DGPInfo(context.Background(), true)
		assert.ErrorIs(t, err, dataset.ErrSchema)
	})
}

func TestLoadMany(t *testing.T) {
	t.Run("FilenamesFromMetadata", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		serveObject(client, "acic22/simulations/sim_0001.csv", "y\n1.5\n")
		serveObject(client, "acic22/simulations/sim_0002.csv", "y\n2.5\n")
		store := newTestStore(client, testConfig())

		sims, err := store.LoadMany(context.Background(), []int{1, 2}, dataset.LoadOptions{})
		require.NoError(t, err)
		assert.Len(t, sims, 2)

		rows, _ := sims[1].Dims()
		assert.Equal(t, 1, rows)
	})

	t.Run("ConventionFallbackForUnlistedIndex", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		// Index 3 is not in the metadata document, so the fixed-width
		// convention applies. Serving CSV content under a .parquet name makes
		// the parse fail, which is enough to observe the requested key.
		client.On("GetObject", mock.Anything, "cidl-test", "acic22/simulations/sim_0003.parquet", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
		store := newTestStore(client, testConfig())

		_, err := store.LoadMany(context.Background(), []int{3}, dataset.LoadOptions{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		client.AssertCalled(t, "GetObject", mock.Anything, "cidl-test", "acic22/simulations/sim_0003.parquet", mock.Anything)
	})

	t.Run("SingleFailurePropagates", func(t *testing.T) {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		serveObject(client, "acic22/simulations/sim_0001.csv", "y\n1.5\n")
		client.On("GetObject", mock.Anything, "cidl-test", "acic22/simulations/sim_0002.csv", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
		store := newTestStore(client, testConfig())

		_, err := store.LoadMany(context.Background(), []int{1, 2}, dataset.LoadOptions{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Contains(t, err.Error(), "simulation 2")
	})
}

func TestLoadRandom(t *testing.T) {
	seed := func(v int64) *int64 { return &v }

	newRandomStore := func() *dataset.Store {
		client := new(mocks.Client)
		serveObject(client, metadataKey, metadataDoc)
		serveObject(client, dgpInfoKey, dgpInfoDoc)
		serveObject(client, "acic22/simulations/sim_0001.csv", "y\n1.5\n")
		serveObject(client, "acic22/simulations/sim_0002.csv", "y\n2.5\n")
		return newTestStore(client, testConfig())
	}

	t.Run("DeterministicForSeed", func(t *testing.T) {
		first := newRandomStore()
		second := newRandomStore()

		a, err := first.LoadRandom(context.Background(), 1, dataset.RandomOptions{Seed: seed(42)})
		require.NoError(t, err)
		b, err := second.LoadRandom(context.Background(), 1, dataset.RandomOptions{Seed: seed(42)})
		require.NoError(t, err)

		aKeys := make([]int, 0, len(a))
		for k := range a {
			aKeys = append(aKeys, k)
		}
		bKeys := make([]int, 0, len(b))
		for k := range b {
			bKeys = append(bKeys, k)
		}
		assert.ElementsMatch(t, aKeys, bKeys)
	})

	t.Run("NonPositiveN", func(t *testing.T) {
		store := newRandomStore()

		_, err := store.LoadRandom(context.Background(), 0, dataset.RandomOptions{})
		assert.ErrorIs(t, err, dataset.ErrInvalidSampleSize)
	})

	t.Run("NExceedsPopulation", func(t *testing.T) {
		store := newRandomStore()

		_, err := store.LoadRandom(context.Background(), 5, dataset.RandomOptions{Difficulty: dataset.DifficultyEasy, Seed: seed(1)})
		assert.ErrorIs(t, err, dataset.ErrInvalidSampleSize)
		assert.Contains(t, err.Error(), "easy")
	})
}

func TestLoadPrefix_PartialFailureIsolation(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
		Return(mocks.ObjectsChannel("p/good.csv", "p/bad.xlsx"))
	serveObject(client, "p/good.csv", "y\n1.5\n")
	serveObject(client, "p/bad.xlsx", "not tabular")
	store := newTestStore(client, testConfig())

	out, err := store.LoadPrefix(context.Background(), "p/", 0, true)
	require.NoError(t, err)

	assert.Len(t, out, 1)
	_, ok := out["p/good.csv"]
	assert.True(t, ok)
}
