package transfer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cidl/core/storage"
	"cidl/core/storage/mocks"
	"cidl/feature/transfer"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(client *mocks.Client, readOnly bool) *transfer.Service {
	backend := storage.NewBackend(storage.Config{Bucket: "cidl-test"}, zap.NewNop())
	backend.Attach(storage.NewSession(client, "cidl-test", "https://s3.example.org", readOnly))
	return transfer.NewService(backend, zap.NewNop())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestUploadFile(t *testing.T) {
	t.Run("ReadOnlySessionRejected", func(t *testing.T) {
		svc := newService(new(mocks.Client), true)

		_, err := svc.UploadFile(context.Background(), "whatever.csv", "acic22")
		assert.ErrorIs(t, err, storage.ErrReadOnly)
	})

	t.Run("Success", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "sim_0001.csv", "y\n1.5\n")

		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, "cidl-test", "acic22/sim_0001.csv", mock.Anything, int64(6), mock.Anything).
			Return(minio.UploadInfo{Key: "acic22/sim_0001.csv"}, nil)
		svc := newService(client, false)

		result, err := svc.UploadFile(context.Background(), path, "acic22")
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, "sim_0001.csv", result.Name)
		assert.Equal(t, "acic22/sim_0001.csv", result.Key)
	})

	t.Run("MissingLocalFileReportedInResult", func(t *testing.T) {
		svc := newService(new(mocks.Client), false)

		result, err := svc.UploadFile(context.Background(), "/nonexistent/sim.csv", "acic22")
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, "sim.csv", result.Name)
	})
}

func TestUploadDirectory(t *testing.T) {
	t.Run("SkipsExistingAndUnmatchedFiles", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "sim_0001.csv", "a\n1\n")
		writeFile(t, dir, "sim_0002.csv", "a\n2\n")
		writeFile(t, dir, "notes.txt", "not a dataset")

		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
			Return(mocks.ObjectsChannel("acic22/sim_0001.csv"))
		client.On("PutObject", mock.Anything, "cidl-test", "acic22/sim_0002.csv", mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)
		svc := newService(client, false)

		results, err := svc.UploadDirectory(context.Background(), dir, "acic22", transfer.UploadOptions{Concurrency: 2})
		require.NoError(t, err)

		require.Len(t, results, 1)
		assert.True(t, results[0].OK())
		assert.Equal(t, "sim_0002.csv", results[0].Name)
		client.AssertNumberOfCalls(t, "PutObject", 1)
	})

	t.Run("FailuresCollectedNotPropagated", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "sim_0001.csv", "a\n1\n")
		writeFile(t, dir, "sim_0002.csv", "a\n2\n")

		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
			Return(mocks.ObjectsChannel())
		client.On("PutObject", mock.Anything, "cidl-test", "acic22/sim_0001.csv", mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, minio.ErrorResponse{Code: "SlowDown", StatusCode: 503})
		client.On("PutObject", mock.Anything, "cidl-test", "acic22/sim_0002.csv", mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)
		svc := newService(client, false)

		results, err := svc.UploadDirectory(context.Background(), dir, "acic22", transfer.UploadOptions{})
		require.NoError(t, err)

		require.Len(t, results, 2)
		assert.False(t, results[0].OK())
		assert.True(t, results[1].OK())
	})

	t.Run("ReadOnlySessionRejected", func(t *testing.T) {
		svc := newService(new(mocks.Client), true)

		_, err := svc.UploadDirectory(context.Background(), t.TempDir(), "acic22", transfer.UploadOptions{})
		assert.ErrorIs(t, err, storage.ErrReadOnly)
	})
}

func TestDeleteObject(t *testing.T) {
	t.Run("ReadOnlySessionRejected", func(t *testing.T) {
		svc := newService(new(mocks.Client), true)

		err := svc.DeleteObject(context.Background(), "acic22/sim_0001.parquet")
		assert.ErrorIs(t, err, storage.ErrReadOnly)
	})

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("RemoveObject", mock.Anything, "cidl-test", "acic22/sim_0001.parquet", mock.Anything).
			Return(nil)
		svc := newService(client, false)

		err := svc.DeleteObject(context.Background(), "acic22/sim_0001.parquet")
		assert.NoError(t, err)
	})
}

func TestDeletePrefix(t *testing.T) {
	t.Run("EmptyPrefixIsNoOp", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
			Return(mocks.ObjectsChannel())
		svc := newService(client, false)

		deleted, err := svc.DeletePrefix(context.Background(), "acic22/old")
		assert.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})

	t.Run("DeletesAllListedObjects", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
			Return(mocks.ObjectsChannel("acic22/a.parquet", "acic22/b.parquet"))
		client.On("RemoveObjects", mock.Anything, "cidl-test", mock.Anything, mock.Anything).
			Return(nil)
		svc := newService(client, false)

		deleted, err := svc.DeletePrefix(context.Background(), "acic22")
		assert.NoError(t, err)
		assert.Equal(t, 2, deleted)
	})

	t.Run("PartialFailureReported", func(t *testing.T) {
		errCh := make(chan minio.RemoveObjectError, 1)
		errCh <- minio.RemoveObjectError{ObjectName: "acic22/b.parquet", Err: minio.ErrorResponse{Code: "AccessDenied"}}
		close(errCh)

		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "cidl-test", mock.Anything).
			Return(mocks.ObjectsChannel("acic22/a.parquet", "acic22/b.parquet"))
		client.On("RemoveObjects", mock.Anything, "cidl-test", mock.Anything, mock.Anything).
			Return((<-chan minio.RemoveObjectError)(errCh))
		svc := newService(client, false)

		deleted, err := svc.DeletePrefix(context.Background(), "acic22")
		assert.Error(t, err)
		assert.Equal(t, 1, deleted)
	})
}
