// Package config provides centralized configuration management.
//
// Configuration is assembled from three sources, in increasing precedence:
//  1. struct tag defaults (the `default:` tag on each field)
//  2. a .env file in the working directory, if present
//  3. process environment variables
//
// Nested keys map to environment variables by joining with underscores,
// e.g. storage.bucket becomes STORAGE_BUCKET.
//
// S3 credentials are intentionally excluded from this package; they are resolved
// from UHH_S3_ACCESS / UHH_S3_SECRET by the storage package when connecting.
package config
