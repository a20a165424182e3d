package auth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/omie-client/internal/auth"
)

func TestResolve(t *testing.T) {
	t.Setenv("OMIE_TEST_SECRET", "from-env")

	dir := t.TempDir()
	secretFile := filepath.Join(dir, "secret")
	emptyFile := filepath.Join(dir, "empty")

	require.NoError(t, os.WriteFile(secretFile, []byte("  from-file\n"), 0o600))
	require.NoError(t, os.WriteFile(emptyFile, []byte("\n"), 0o600))

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "literal", value: "plain", want: "plain"},
		{name: "empty literal", value: "", want: ""},
		{name: "env reference", value: "env:OMIE_TEST_SECRET", want: "from-env"},
		{name: "unset env reference", value: "env:OMIE_TEST_UNSET", wantErr: auth.ErrEmptyReference},
		{name: "file reference", value: "file:" + secretFile, want: "from-file"},
		{name: "empty file reference", value: "file:" + emptyFile, wantErr: auth.ErrEmptyReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Resolve(tt.value)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := auth.Resolve("file:" + filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsReference(t *testing.T) {
	t.Parallel()

	assert.True(t, auth.IsReference("env:X"))
	assert.True(t, auth.IsReference("file:/run/secrets/omie"))
	assert.False(t, auth.IsReference("literal"))
	assert.False(t, auth.IsReference("environment"))
}

func TestCredentialsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, auth.Credentials{AppKey: "key", AppSecret: "secret"}.Validate())

	err := auth.Credentials{AppSecret: "secret"}.Validate()
	require.ErrorIs(t, err, auth.ErrMissingAppKey)
	assert.NotErrorIs(t, err, auth.ErrMissingAppSecret)

	err = auth.Credentials{AppKey: " "}.Validate()
	require.ErrorIs(t, err, auth.ErrMissingAppKey)
	require.ErrorIs(t, err, auth.ErrMissingAppSecret)
}

func TestLoadAndFromEnv(t *testing.T) {
	t.Setenv("OMIE_TEST_KEY", "resolved-key")
	t.Setenv(auth.EnvAppKey, "env:OMIE_TEST_KEY")
	t.Setenv(auth.EnvAppSecret, "secret")

	creds, err := auth.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, auth.Credentials{AppKey: "resolved-key", AppSecret: "secret"}, creds)

	_, err = auth.Load("key", "env:OMIE_TEST_UNSET")
	require.ErrorIs(t, err, auth.ErrEmptyReference)
	assert.Contains(t, err.Error(), "app secret")
}
