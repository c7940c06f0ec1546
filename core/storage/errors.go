package storage

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Credential resolution failures. Each names exactly which environment
// variable(s) were absent.
var (
	ErrCredentialsMissing = errors.New("ACCESS_KEY and SECRET_KEY are missing in environment variables")
	ErrAccessKeyMissing   = errors.New("ACCESS_KEY is missing in environment variables")
	ErrSecretKeyMissing   = errors.New("SECRET_KEY is missing in environment variables")
)

// ErrUnknownEndpoint reports an endpoint selector outside the fixed set.
var ErrUnknownEndpoint = errors.New("unknown endpoint selector")

// Connection probe failures, classified from the store's reported error code.
var (
	ErrInvalidAccessKey = errors.New("access key is invalid")
	ErrInvalidSecretKey = errors.New("secret key is invalid")
	ErrAccessDenied     = errors.New("access denied to bucket")
	ErrBucketNotFound   = errors.New("bucket does not exist")
	ErrConnection       = errors.New("connection failed")
)

// ErrReadOnly reports a write operation attempted on a read-only session.
var ErrReadOnly = errors.New("write operation blocked: backend is in read-only mode; connect with ReadOnly=false and valid credentials")

// ErrNotFound reports a missing remote object.
var ErrNotFound = errors.New("object not found")

// classifyProbeError maps the store's error code from the liveness probe onto
// the connection error taxonomy.
func classifyProbeError(err error, bucket string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "InvalidAccessKeyId":
		return fmt.Errorf("connecting to bucket %q: %w", bucket, ErrInvalidAccessKey)
	case "SignatureDoesNotMatch":
		return fmt.Errorf("connecting to bucket %q: %w", bucket, ErrInvalidSecretKey)
	case "AccessDenied":
		return fmt.Errorf("connecting to bucket %q: %w (check credentials and bucket permissions)", bucket, ErrAccessDenied)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %q", ErrBucketNotFound, bucket)
	default:
		return fmt.Errorf("connecting to bucket %q: %w: %v", bucket, ErrConnection, err)
	}
}

// IsNotFound reports whether err represents a missing remote object, either as
// the local ErrNotFound sentinel or as a store-reported not-found code.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NotFound", "404":
		return true
	}
	return resp.StatusCode == 404
}
