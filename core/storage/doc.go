// Package storage provides the connection layer to the S3-compatible object
// store holding simulation and truth datasets.
//
// It wraps the MinIO Go client behind a Client interface (mockable via
// core/storage/mocks) and adds the session lifecycle on top:
//
//   - Connect resolves credentials from the environment, selects one of the
//     fixed named endpoints, and probes the target bucket with granular error
//     classification (invalid key, invalid secret, access denied, missing
//     bucket, unknown).
//   - Backend owns the active Session plus the raw-byte download cache, and
//     connects implicitly with defaults when an operation needs a session
//     before Connect was called.
//   - Session.RequireWrite gates every mutating operation behind the
//     read-only flag chosen at connect time.
//
// # Usage
//
//	backend := storage.NewBackend(cfg.Storage, log)
//	if _, err := backend.Connect(ctx, storage.ConnectOptions{}); err != nil { ... }
//	data, err := backend.FetchBytes(ctx, "acic22/simulations/sim_0001.parquet", true)
package storage
