package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welling-fm/fireinspect/internal/buildinfo"
	"github.com/welling-fm/fireinspect/internal/errors"
)

func writeConfig(t *testing.T, body string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return dir, path
}

func TestInitAndClose(t *testing.T) {
	dir, path := writeConfig(t, "")
	textfile := filepath.Join(dir, "fireinspect.prom")
	body := "datastore:\n  path: " + filepath.Join(dir, "db", "fi.db") + "\n" +
		"metrics:\n  textfile: " + textfile + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var out bytes.Buffer
	rc := New(buildinfo.NewContext("1.0.0", "2025-06-04"), &out)
	require.NoError(t, rc.Init(Options{ConfigFile: path, Debug: true}))

	assert.True(t, rc.Settings.Debug)
	assert.Equal(t, "debug", rc.Settings.Logging.DefaultLevel)
	require.NotNil(t, rc.Metrics)

	p, err := rc.Parser()
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = rc.Scanner()
	require.NoError(t, err)

	store, err := rc.OpenDatastore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.FileExists(t, filepath.Join(dir, "db", "fi.db"))

	assert.False(t, rc.Notifier().Enabled())

	rc.Printf("hello %s\n", "world")
	assert.Equal(t, "hello world\n", out.String())

	require.NoError(t, rc.Close())
	assert.FileExists(t, textfile)
}

func TestInitLogLevelOverride(t *testing.T) {
	_, path := writeConfig(t, "logging:\n  default_level: info\n")

	rc := New(nil, &bytes.Buffer{})
	require.NoError(t, rc.Init(Options{ConfigFile: path, LogLevel: "WARN"}))
	t.Cleanup(func() { _ = rc.Close() })

	assert.Equal(t, "warn", rc.Settings.Logging.DefaultLevel)
	require.NotNil(t, rc.Settings.Logging.Console)
	assert.Equal(t, "warn", rc.Settings.Logging.Console.Level)
}

func TestInitRejectsBadLogLevel(t *testing.T) {
	_, path := writeConfig(t, "")

	rc := New(nil, &bytes.Buffer{})
	err := rc.Init(Options{ConfigFile: path, LogLevel: "loud"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Nil(t, rc.Logger)
}

func TestInitMissingConfigFile(t *testing.T) {
	rc := New(nil, &bytes.Buffer{})
	require.Error(t, rc.Init(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.NoError(t, rc.Close())
}

func TestRemoteStoreRequiresCredentials(t *testing.T) {
	_, path := writeConfig(t, "firestore:\n  auth: token\n  token: \"\"\n")
	t.Setenv("FIREINSPECT_TOKEN", "")

	rc := New(nil, &bytes.Buffer{})
	require.NoError(t, rc.Init(Options{ConfigFile: path}))
	t.Cleanup(func() { _ = rc.Close() })

	_, err := rc.RemoteStore(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestNotifierWithBadURL(t *testing.T) {
	_, path := writeConfig(t, "notification:\n  urls: [\"notaservice://x\"]\n")

	rc := New(nil, &bytes.Buffer{})
	require.NoError(t, rc.Init(Options{ConfigFile: path}))
	t.Cleanup(func() { _ = rc.Close() })

	assert.False(t, rc.Notifier().Enabled())
}
