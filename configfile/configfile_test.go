package configfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/configfile"
	"github.com/corvid-systems/entropic/option"
	"github.com/corvid-systems/entropic/status"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoad_RootDocumentMapsRecognizedOptions(t *testing.T) {
	path := writeTemp(t, `{
		// trailing comments are fine, it's JSONC
		"CACHE_TYPE": "MultiThread",
		"CACHE_SIZE": 10240,
		"CACHE_THREAD_COUNT": 4,
		"WSR_TYPE": "RDSEED",
		"HEALTH_TESTS_OUTPUT": true,
	}`)

	set, err := configfile.Load(path, "")
	require.NoError(t, err)

	v, ok := set.Int(option.CacheType)
	require.True(t, ok)
	require.Equal(t, int64(option.CacheTypeMultiThread), v)

	v, ok = set.Int(option.CacheThreadCount)
	require.True(t, ok)
	require.Equal(t, int64(4), v)

	v, ok = set.Int(option.HealthTestsOutput)
	require.True(t, ok)
	require.Equal(t, int64(1), v)
}

func TestLoad_NodePathSelectsSubtree(t *testing.T) {
	path := writeTemp(t, `{
		"production": {
			"engine": {
				"CACHE_TYPE": "SyncCaching",
				"CACHE_SIZE": 4096
			}
		}
	}`)

	set, err := configfile.Load(path, "production/engine")
	require.NoError(t, err)

	v, ok := set.Int(option.CacheType)
	require.True(t, ok)
	require.Equal(t, int64(option.CacheTypeSyncCaching), v)
}

func TestLoad_UnknownNodePathFails(t *testing.T) {
	path := writeTemp(t, `{"a": {}}`)

	_, err := configfile.Load(path, "a/b/c")
	require.ErrorIs(t, err, configfile.ErrNodePathNotFound)
}

func TestLoad_UnrecognizedOptionNameFails(t *testing.T) {
	path := writeTemp(t, `{"NOT_A_REAL_OPTION": 1}`)

	_, err := configfile.Load(path, "")
	require.ErrorIs(t, err, status.ErrUnsupportedOption)
}

func TestLoad_EmptyPathIsRejected(t *testing.T) {
	_, err := configfile.Load("", "")
	require.ErrorIs(t, err, status.ErrConfigFilenameNotSupplied)
}

func TestSaveThenLoad_RoundTripsOptionSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	original := option.NewSet()
	require.NoError(t, original.SetInt(option.CacheSize, 2048))
	require.NoError(t, original.SetInt(option.CachePrefill, 2048))
	require.NoError(t, original.SetStr(option.WSRPath, "/dev/fake"))

	require.NoError(t, configfile.Save(path, "", original))

	reloaded, err := configfile.Load(path, "")
	require.NoError(t, err)

	v, ok := reloaded.Int(option.CacheSize)
	require.True(t, ok)
	require.Equal(t, int64(2048), v)

	s, ok := reloaded.Str(option.WSRPath)
	require.True(t, ok)
	require.Equal(t, "/dev/fake", s)
}
