package storage

import (
	"context"
	"fmt"
)

// Session is an established connection to one bucket on one endpoint.
type Session struct {
	// Client is the underlying storage client.
	Client Client
	// Bucket is the bucket this session is bound to.
	Bucket string
	// Endpoint is the URL of the active deployment.
	Endpoint string
	// ReadOnly disables write operations when true.
	ReadOnly bool
}

// NewSession wraps an already-constructed client in a session. Intended for
// wiring pre-built or mock clients; normal callers go through Backend.Connect.
func NewSession(client Client, bucket, endpoint string, readOnly bool) *Session {
	return &Session{Client: client, Bucket: bucket, Endpoint: endpoint, ReadOnly: readOnly}
}

// RequireWrite rejects the call when the session was established read-only.
func (s *Session) RequireWrite() error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

// ConnectOptions selects bucket, endpoint and access mode for a connection.
// Zero values fall back to the backend's configuration.
type ConnectOptions struct {
	// Bucket overrides the configured bucket name.
	Bucket string
	// Endpoint overrides the configured endpoint selector.
	Endpoint string
	// ReadOnly overrides the configured access mode when non-nil.
	ReadOnly *bool
}

// probe verifies the session can reach its bucket, classifying failures.
func (s *Session) probe(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return classifyProbeError(err, s.Bucket)
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrBucketNotFound, s.Bucket)
	}
	return nil
}
