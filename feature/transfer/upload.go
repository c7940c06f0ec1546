package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cidl/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the dataset file suffixes eligible for upload.
var DefaultExtensions = []string{".parquet", ".csv", ".json"}

// DefaultConcurrency is the upload worker pool width.
const DefaultConcurrency = 8

// Service moves files between the local filesystem and the object store.
// All operations require a session established with ReadOnly=false.
type Service struct {
	backend *storage.Backend
	log     *zap.Logger
}

// NewService creates a transfer service on top of a backend.
func NewService(backend *storage.Backend, log *zap.Logger) *Service {
	return &Service{backend: backend, log: log}
}

// Result is the outcome of one upload attempt. Err is nil on success, in
// which case Key holds the resulting object key.
type Result struct {
	// Name is the base name of the local file.
	Name string
	// Key is the object key the file was uploaded to.
	Key string
	// Err is the per-file failure, if any.
	Err error
}

// OK reports whether the upload succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// UploadOptions control directory uploads.
type UploadOptions struct {
	// Concurrency is the worker pool width; 0 means DefaultConcurrency.
	Concurrency int
	// Extensions filters local files by suffix; nil means DefaultExtensions.
	Extensions []string
}

// UploadFile uploads a single file under prefix, reporting per-byte progress.
//
// Per-file failures come back inside the Result so batch callers can
// aggregate them; only session and permission failures are returned as
// errors.
func (s *Service) UploadFile(ctx context.Context, path, prefix string) (Result, error) {
	name := filepath.Base(path)

	session, err := s.backend.Session(ctx)
	if err != nil {
		return Result{Name: name}, err
	}
	if err := session.RequireWrite(); err != nil {
		return Result{Name: name}, err
	}

	return s.uploadOne(ctx, session, path, prefix), nil
}

func (s *Service) uploadOne(ctx context.Context, session *storage.Session, path, prefix string) Result {
	name := filepath.Base(path)
	key := fmt.Sprintf("%s/%s", strings.Trim(prefix, "/"), name)

	f, err := os.Open(path)
	if err != nil {
		return Result{Name: name, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{Name: name, Err: err}
	}

	bar := progressbar.DefaultBytes(info.Size(), "Uploading "+name)
	reader := progressbar.NewReader(f, bar)

	if _, err := session.Client.PutObject(ctx, session.Bucket, key, &reader, info.Size(), minio.PutObjectOptions{}); err != nil {
		return Result{Name: name, Err: fmt.Errorf("uploading %q: %w", key, err)}
	}

	return Result{Name: name, Key: key}
}

// UploadDirectory uploads every matching file in dir that is not already
// present under prefix, spreading the work across a bounded pool.
//
// The returned slice has one Result per attempted file, in local enumeration
// order regardless of completion order. Per-file failures are collected, not
// propagated; the batch never aborts early.
func (s *Service) UploadDirectory(ctx context.Context, dir, prefix string, opts UploadOptions) ([]Result, error) {
	session, err := s.backend.Session(ctx)
	if err != nil {
		return nil, err
	}
	if err := session.RequireWrite(); err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	extensions := opts.Extensions
	if extensions == nil {
		extensions = DefaultExtensions
	}

	files, err := matchingFiles(dir, extensions)
	if err != nil {
		return nil, err
	}

	existing, err := s.backend.ListKeys(ctx, prefix, 0)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, key := range existing {
		existingSet[key] = struct{}{}
	}

	cleanPrefix := strings.Trim(prefix, "/")
	var toUpload []string
	for _, path := range files {
		key := fmt.Sprintf("%s/%s", cleanPrefix, filepath.Base(path))
		if _, ok := existingSet[key]; !ok {
			toUpload = append(toUpload, path)
		}
	}

	batch := uuid.NewString()
	s.log.Info("Starting directory upload",
		zap.String("batch", batch),
		zap.String("dir", dir),
		zap.String("prefix", cleanPrefix),
		zap.Int("found", len(files)),
		zap.Int("to_upload", len(toUpload)),
		zap.Int("concurrency", concurrency),
	)

	// Results are index-addressed so out-of-order completion cannot reorder
	// or duplicate outcomes.
	results := make([]Result, len(toUpload))
	pool := new(errgroup.Group)
	pool.SetLimit(concurrency)

	for i, path := range toUpload {
		i, path := i, path
		pool.Go(func() error {
			results[i] = s.uploadOne(ctx, session, path, prefix)
			return nil
		})
	}
	_ = pool.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
			s.log.Warn("Upload failed",
				zap.String("batch", batch),
				zap.String("file", r.Name),
				zap.Error(r.Err),
			)
		}
	}
	s.log.Info("Directory upload complete",
		zap.String("batch", batch),
		zap.Int("uploaded", len(toUpload)-failed),
		zap.Int("failed", failed),
	)

	return results, nil
}

// matchingFiles enumerates the regular files in dir carrying one of the
// suffixes, in name order.
func matchingFiles(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		for _, ext := range extensions {
			if strings.HasSuffix(name, strings.ToLower(ext)) {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	return files, nil
}
