package storage

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Environment variables holding the S3 credentials.
const (
	EnvAccessKey = "UHH_S3_ACCESS"
	EnvSecretKey = "UHH_S3_SECRET"
)

// Endpoints is the fixed set of named deployments. The selector is the map key.
var Endpoints = map[string]string{
	"primary": "https://s3-uhh.lzs.uni-hamburg.de:443",
	"site-1":  "https://s3-uhh-s1.lzs.uni-hamburg.de:443",
	"site-2":  "https://s3-uhh-s2.lzs.uni-hamburg.de:443",
	"site-3":  "https://s3-uhh-s3.lzs.uni-hamburg.de:443",
}

// Config holds configuration for the storage backend.
type Config struct {
	// Bucket is the name of the bucket holding the datasets.
	Bucket string `mapstructure:"bucket" default:"cidl-test"`
	// Endpoint selects one of the named deployments (primary, site-1, site-2, site-3).
	Endpoint string `mapstructure:"endpoint" default:"primary"`
	// ReadOnly disables write operations when true.
	ReadOnly bool `mapstructure:"read_only" default:"true"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ByteCacheCapacity bounds the raw-byte cache; 0 means unbounded.
	ByteCacheCapacity int `mapstructure:"byte_cache_capacity" default:"0"`
}

// Credentials holds the resolved S3 key pair.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// ResolveCredentials reads the key pair from the environment, distinguishing
// which part is missing.
func ResolveCredentials() (Credentials, error) {
	access := os.Getenv(EnvAccessKey)
	secret := os.Getenv(EnvSecretKey)

	switch {
	case access == "" && secret == "":
		return Credentials{}, ErrCredentialsMissing
	case access == "":
		return Credentials{}, ErrAccessKeyMissing
	case secret == "":
		return Credentials{}, ErrSecretKeyMissing
	}

	return Credentials{AccessKey: access, SecretKey: secret}, nil
}

// ResolveEndpoint maps a selector onto its deployment URL.
func ResolveEndpoint(selector string) (string, error) {
	url, ok := Endpoints[selector]
	if !ok {
		names := make([]string, 0, len(Endpoints))
		for name := range Endpoints {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("%w: %q (choose from %s)", ErrUnknownEndpoint, selector, strings.Join(names, ", "))
	}
	return url, nil
}
