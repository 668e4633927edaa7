package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv(EnvAPIID, "12345")
	t.Setenv(EnvAPIHash, " abcdef ")

	creds, err := NewEnvProvider().Credentials()
	require.NoError(t, err)
	assert.Equal(t, 12345, creds.APIID)
	assert.Equal(t, "abcdef", creds.APIHash)
}

func TestEnvProviderMissing(t *testing.T) {
	t.Setenv(EnvAPIID, "")
	t.Setenv(EnvAPIHash, "abcdef")

	_, err := NewEnvProvider().Credentials()
	assert.ErrorContains(t, err, EnvAPIID)

	t.Setenv(EnvAPIID, "12345")
	t.Setenv(EnvAPIHash, "")
	_, err = NewEnvProvider().Credentials()
	assert.ErrorContains(t, err, EnvAPIHash)
}

func TestEnvProviderBadID(t *testing.T) {
	t.Setenv(EnvAPIID, "not-a-number")
	t.Setenv(EnvAPIHash, "abcdef")

	_, err := NewEnvProvider().Credentials()
	assert.Error(t, err)
}
