// Package transfer handles bulk movement of dataset files to and from the
// object store: single-file and directory uploads (skipping keys already
// present, bounded concurrency, per-item outcomes) and single-object or
// whole-prefix deletion.
//
// Every operation is gated on a writable session; read-only sessions are
// rejected before any remote call.
package transfer
