package storage

import (
	"context"
	"fmt"
	"io"

	"cidl/core/cache"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Backend owns the connection state and the raw-byte cache. It replaces the
// process-wide globals of earlier designs with an explicit handle that every
// operation receives, so multiple backends (and tests) can coexist.
//
// Backend is not safe for concurrent use except where noted; the byte cache in
// particular is shared unsynchronized state. The bounded upload pool in the
// transfer feature is the only sanctioned concurrent consumer, and it only
// touches the session, never the cache.
type Backend struct {
	cfg     Config
	log     *zap.Logger
	session *Session
	bytes   *cache.Cache[[]byte]

	// connect deduplicates concurrent implicit connects.
	connect singleflight.Group
}

// NewBackend creates a backend with no established session. The first
// operation that needs one triggers an implicit Connect with defaults.
func NewBackend(cfg Config, log *zap.Logger) *Backend {
	return &Backend{
		cfg:   cfg,
		log:   log,
		bytes: cache.New[[]byte](cfg.ByteCacheCapacity),
	}
}

// Connect establishes a session to the selected bucket and endpoint, probing
// the bucket before replacing the backend's session state.
//
// Credentials come from the UHH_S3_ACCESS / UHH_S3_SECRET environment
// variables. Probe failures are classified into ErrInvalidAccessKey,
// ErrInvalidSecretKey, ErrAccessDenied, ErrBucketNotFound or ErrConnection.
func (b *Backend) Connect(ctx context.Context, opts ConnectOptions) (*Session, error) {
	bucket := opts.Bucket
	if bucket == "" {
		bucket = b.cfg.Bucket
	}
	selector := opts.Endpoint
	if selector == "" {
		selector = b.cfg.Endpoint
	}
	readOnly := b.cfg.ReadOnly
	if opts.ReadOnly != nil {
		readOnly = *opts.ReadOnly
	}

	creds, err := ResolveCredentials()
	if err != nil {
		return nil, fmt.Errorf("S3 connection failed: %w", err)
	}

	endpoint, err := ResolveEndpoint(selector)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(endpoint, creds, b.cfg.TimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("S3 connection failed: %w", err)
	}

	session := NewSession(client, bucket, endpoint, readOnly)
	if err := session.probe(ctx); err != nil {
		return nil, err
	}

	b.session = session

	mode := "WRITE"
	if readOnly {
		mode = "READ-ONLY"
	}
	b.log.Info("Connected to bucket",
		zap.String("bucket", bucket),
		zap.String("endpoint", endpoint),
		zap.String("mode", mode),
	)

	return session, nil
}

// Attach replaces the backend's session with an externally built one.
func (b *Backend) Attach(s *Session) {
	b.session = s
}

// Session returns the active session, connecting implicitly with default
// options when none exists yet. The implicit connect is an ergonomics feature:
// forgetting to call Connect is not an error.
func (b *Backend) Session(ctx context.Context) (*Session, error) {
	if b.session != nil {
		return b.session, nil
	}

	// Deduplicate racing implicit connects the same way the reconcile cache
	// guarded against stampedes.
	result, err, _ := b.connect.Do("connect", func() (any, error) {
		if b.session != nil {
			return b.session, nil
		}
		return b.Connect(ctx, ConnectOptions{})
	})
	if err != nil {
		return nil, err
	}
	return result.(*Session), nil
}

// FetchBytes downloads an object's payload, serving and populating the byte
// cache when useCache is true.
//
// Cached content is never re-validated against the remote store: datasets are
// assumed immutable once published. A missing object yields ErrNotFound; any
// other transport failure is returned as-is, wrapped with the offending key.
func (b *Backend) FetchBytes(ctx context.Context, key string, useCache bool) ([]byte, error) {
	if useCache {
		if data, ok := b.bytes.Get(key); ok {
			return data, nil
		}
	}

	session, err := b.Session(ctx)
	if err != nil {
		return nil, err
	}

	obj, err := session.Client.GetObject(ctx, session.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapFetchError(key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, wrapFetchError(key, err)
	}

	if useCache {
		b.bytes.Put(key, data)
	}

	return data, nil
}

func wrapFetchError(key string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%q: %w", key, ErrNotFound)
	}
	return fmt.Errorf("downloading %q: %w", key, err)
}

// StatKey returns an object's metadata without downloading the payload. A
// missing object yields ErrNotFound.
func (b *Backend) StatKey(ctx context.Context, key string) (minio.ObjectInfo, error) {
	session, err := b.Session(ctx)
	if err != nil {
		return minio.ObjectInfo{}, err
	}

	info, err := session.Client.StatObject(ctx, session.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if IsNotFound(err) {
			return minio.ObjectInfo{}, fmt.Errorf("%q: %w", key, ErrNotFound)
		}
		return minio.ObjectInfo{}, fmt.Errorf("stat %q: %w", key, err)
	}

	return info, nil
}

// ListKeys returns the keys under prefix in listing order, truncated to limit
// when limit is positive.
func (b *Backend) ListKeys(ctx context.Context, prefix string, limit int) ([]string, error) {
	session, err := b.Session(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	for info := range session.Client.ListObjects(ctx, session.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("listing prefix %q: %w", prefix, info.Err)
		}
		keys = append(keys, info.Key)
		if limit > 0 && len(keys) >= limit {
			break
		}
	}

	return keys, nil
}

// Summary describes the connected bucket for debugging and quick checks.
type Summary struct {
	Bucket      string  `json:"bucket"`
	Endpoint    string  `json:"endpoint"`
	ReadOnly    bool    `json:"read_only"`
	ObjectCount int     `json:"object_count"`
	TotalSizeGB float64 `json:"total_size_gb"`
}

// Summary walks the whole bucket and aggregates object count and total size.
func (b *Backend) Summary(ctx context.Context) (*Summary, error) {
	session, err := b.Session(ctx)
	if err != nil {
		return nil, err
	}

	var count int
	var size int64
	for info := range session.Client.ListObjects(ctx, session.Bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("listing bucket %q: %w", session.Bucket, info.Err)
		}
		count++
		size += info.Size
	}

	return &Summary{
		Bucket:      session.Bucket,
		Endpoint:    session.Endpoint,
		ReadOnly:    session.ReadOnly,
		ObjectCount: count,
		TotalSizeGB: float64(size) / (1 << 30),
	}, nil
}
