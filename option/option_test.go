package option_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/option"
	"github.com/corvid-systems/entropic/status"
)

func TestSetInt_RejectsWrongKind(t *testing.T) {
	s := option.NewSet()
	err := s.SetInt(option.SeedContent, 1) // SeedContent is bytes-kind
	require.ErrorIs(t, err, status.ErrUnsupportedOption)
}

func TestSetBytes_DeepCopiesInput(t *testing.T) {
	s := option.NewSet()
	original := []byte{1, 2, 3}
	require.NoError(t, s.SetBytes(option.SeedContent, original))

	original[0] = 0xFF

	stored, ok := s.Bytes(option.SeedContent)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, stored)
}

func TestIntOr_ReturnsDefaultWhenUnset(t *testing.T) {
	s := option.NewSet()
	require.Equal(t, int64(42), s.IntOr(option.CacheSize, 42))
}

func TestByName_RoundTripsAllIDs(t *testing.T) {
	ids := []option.ID{
		option.LoggingFilename, option.LoggingLevel, option.LoggingMode,
		option.CacheType, option.CacheSize, option.CachePrefill, option.CacheRefillAt,
		option.WSRType, option.WSRPath, option.HealthTestsOutput,
		option.SeedSignature, option.SeedContent, option.CacheThreadCount, option.LicenseData,
	}

	for _, id := range ids {
		got, ok := option.ByName(id.Name())
		require.True(t, ok, "ByName(%q)", id.Name())
		require.Equal(t, id, got)
	}
}

func TestClone_ProducesIndependentSnapshot(t *testing.T) {
	s := option.NewSet()
	require.NoError(t, s.SetInt(option.CacheSize, 100))

	snap := s.Clone()
	require.NoError(t, s.SetInt(option.CacheSize, 200))

	require.True(t, cmp.Equal(snap, snap)) // Equal is wired for go-cmp
	require.False(t, snap.Equal(s))

	v, _ := snap.Int(option.CacheSize)
	require.Equal(t, int64(100), v)
}
