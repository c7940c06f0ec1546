package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredentials(t *testing.T) {
	t.Run("BothMissing", func(t *testing.T) {
		t.Setenv(EnvAccessKey, "")
		t.Setenv(EnvSecretKey, "")

		_, err := ResolveCredentials()
		assert.ErrorIs(t, err, ErrCredentialsMissing)
	})

	t.Run("AccessKeyMissing", func(t *testing.T) {
		t.Setenv(EnvAccessKey, "")
		t.Setenv(EnvSecretKey, "secret")

		_, err := ResolveCredentials()
		assert.ErrorIs(t, err, ErrAccessKeyMissing)
	})

	t.Run("SecretKeyMissing", func(t *testing.T) {
		t.Setenv(EnvAccessKey, "access")
		t.Setenv(EnvSecretKey, "")

		_, err := ResolveCredentials()
		assert.ErrorIs(t, err, ErrSecretKeyMissing)
	})

	t.Run("BothPresent", func(t *testing.T) {
		t.Setenv(EnvAccessKey, "access")
		t.Setenv(EnvSecretKey, "secret")

		creds, err := ResolveCredentials()
		assert.NoError(t, err)
		assert.Equal(t, "access", creds.AccessKey)
		assert.Equal(t, "secret", creds.SecretKey)
	})
}

func TestResolveEndpoint(t *testing.T) {
	t.Run("KnownSelector", func(t *testing.T) {
		url, err := ResolveEndpoint("primary")
		assert.NoError(t, err)
		assert.Equal(t, Endpoints["primary"], url)
	})

	t.Run("UnknownSelector", func(t *testing.T) {
		_, err := ResolveEndpoint("eu-central")
		assert.ErrorIs(t, err, ErrUnknownEndpoint)
		assert.Contains(t, err.Error(), "eu-central")
		// The message enumerates the valid selectors.
		assert.Contains(t, err.Error(), "primary")
	})
}

func TestNewClient(t *testing.T) {
	t.Run("HTTPSEndpoint", func(t *testing.T) {
		client, err := NewClient("https://s3.example.org:443", Credentials{AccessKey: "a", SecretKey: "s"}, 30)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("HTTPEndpoint", func(t *testing.T) {
		client, err := NewClient("http://localhost:9000", Credentials{AccessKey: "a", SecretKey: "s"}, 0)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}
