package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "srodbpatch/cli/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), FileName))
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, "localhost", s.Server)
	assert.Equal(t, 1433, s.Port)
	assert.Equal(t, "SRO_VT_SHARD", s.Database)
	assert.Equal(t, "sa", s.User)
	assert.Empty(t, s.Password)
}

func TestLoadMalformedFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"server": "db01", "port": "not a number"`), 0o600))
	assert.Equal(t, Defaults(), Load(path))
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"server": "db01", "password": "pw"}`), 0o600))

	s := Load(path)
	assert.Equal(t, "db01", s.Server)
	assert.Equal(t, "pw", s.Password)
	assert.Equal(t, 1433, s.Port)
	assert.Equal(t, "sa", s.User)
	assert.Equal(t, DriverSQLServer, s.Driver)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Settings{Server: "10.0.0.5", Port: 1500, Database: "SRO_VT_SHARD", User: "patcher", Password: "x", Driver: DriverSQLServer}
	require.NoError(t, Save(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, want, Load(path))
}

func TestSaveBlanksKeychainPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := Defaults()
	s.Password = "secret"
	s.PasswordInKeychain = true
	require.NoError(t, Save(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.True(t, Load(path).PasswordInKeychain)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Defaults()))
	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvServer:   "db02",
		EnvPort:     "1444",
		EnvUser:     "  ",
		EnvPassword: " spaced ",
		EnvDriver:   "POSTGRES",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	base := Defaults()
	base.PasswordInKeychain = true
	s, err := ApplyEnv(base, lookup)
	require.NoError(t, err)
	assert.Equal(t, "db02", s.Server)
	assert.Equal(t, 1444, s.Port)
	assert.Equal(t, "sa", s.User)
	assert.Equal(t, " spaced ", s.Password)
	assert.False(t, s.PasswordInKeychain)
	assert.Equal(t, DriverPostgres, s.Driver)
}

func TestApplyEnvBadPort(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvPort {
			return "abc", true
		}
		return "", false
	}
	_, err := ApplyEnv(Defaults(), lookup)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Configuration))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SRODBPATCH_TEST_DOTENV=db03\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SRODBPATCH_TEST_DOTENV") })
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "db03", os.Getenv("SRODBPATCH_TEST_DOTENV"))
}

type fakeSource struct {
	pw  string
	err error
}

func (f fakeSource) LoadPassword() (string, error) { return f.pw, f.err }

func TestResolvePassword(t *testing.T) {
	s := Defaults()
	got, err := ResolvePassword(s, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Password)

	s.PasswordInKeychain = true
	got, err = ResolvePassword(s, fakeSource{pw: "from-keychain"})
	require.NoError(t, err)
	assert.Equal(t, "from-keychain", got.Password)

	_, err = ResolvePassword(s, fakeSource{err: errors.New("locked")})
	assert.True(t, apperrors.Is(err, apperrors.Configuration))

	_, err = ResolvePassword(s, nil)
	assert.True(t, apperrors.Is(err, apperrors.Configuration))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())

	s := Defaults()
	s.Port = 0
	assert.Error(t, s.Validate())

	s = Defaults()
	s.Driver = "oracle"
	assert.Error(t, s.Validate())

	s = Settings{Driver: DriverSQLite, Database: "/tmp/rehearsal.db"}
	assert.NoError(t, s.Validate())
}
