package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-systems/entropic/option"
)

func TestParseWSRType_RecognizesAllThreeSpellings(t *testing.T) {
	cases := map[string]option.WSRTypeValue{
		"RDSEED":   option.WSRTypeRDSEED,
		"File":     option.WSRTypeFile,
		"Callback": option.WSRTypeCallback,
	}

	for spelling, want := range cases {
		got, err := parseWSRType(spelling)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseWSRType_RejectsUnknownSpelling(t *testing.T) {
	_, err := parseWSRType("bogus")
	require.Error(t, err)
}

func TestParseCacheType_RecognizesAllFourSpellings(t *testing.T) {
	cases := map[string]option.CacheTypeValue{
		"None":        option.CacheTypeNone,
		"SyncCaching": option.CacheTypeSyncCaching,
		"Caching":     option.CacheTypeCaching,
		"MultiThread": option.CacheTypeMultiThread,
	}

	for spelling, want := range cases {
		got, err := parseCacheType(spelling)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseCacheType_RejectsUnknownSpelling(t *testing.T) {
	_, err := parseCacheType("bogus")
	require.Error(t, err)
}

func TestBuildContext_MinimalFlagsProduceReadyContext(t *testing.T) {
	cfg := &flagConfig{wsrType: "RDSEED", cacheType: "None"}

	ctx, err := buildContext(cfg)
	require.NoError(t, err)
	defer ctx.Destroy()
}

func TestBuildContext_UnrecognizedWSRTypeFails(t *testing.T) {
	cfg := &flagConfig{wsrType: "nonsense", cacheType: "None"}

	_, err := buildContext(cfg)
	require.Error(t, err)
}
