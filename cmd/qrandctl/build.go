package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/corvid-systems/entropic/configfile"
	"github.com/corvid-systems/entropic/facade"
	"github.com/corvid-systems/entropic/option"
)

// flagConfig holds the parsed command-line flags: plain local variables
// bound once at startup, read afterward to drive construction.
type flagConfig struct {
	configFile string
	nodePath   string

	wsrType string
	wsrPath string

	cacheType        string
	cacheSize        int
	cachePrefill     int
	cacheRefillAt    int
	cacheThreadCount int

	seedContentFile   string
	seedSignatureFile string

	licenseData string
}

func bindFlags(fs *flag.FlagSet) *flagConfig {
	cfg := &flagConfig{}

	fs.StringVar(&cfg.configFile, "config", "", "load options from a JSONC config document")
	fs.StringVar(&cfg.nodePath, "node-path", "", "subtree within --config to read")

	fs.StringVar(&cfg.wsrType, "wsr-type", "RDSEED", "RDSEED | File | Callback")
	fs.StringVar(&cfg.wsrPath, "wsr-path", "", "device/file path when --wsr-type=File")

	fs.StringVar(&cfg.cacheType, "cache-type", "None", "None | SyncCaching | Caching | MultiThread")
	fs.IntVar(&cfg.cacheSize, "cache-size", 0, "ring buffer size in bytes")
	fs.IntVar(&cfg.cachePrefill, "cache-prefill", 0, "high watermark")
	fs.IntVar(&cfg.cacheRefillAt, "cache-refill-at", 0, "low watermark")
	fs.IntVar(&cfg.cacheThreadCount, "cache-thread-count", 0, "worker count for MultiThread (0 = GOMAXPROCS)")

	fs.StringVar(&cfg.seedContentFile, "seed-content-file", "", "raw seed content bytes (default: evaluation mode)")
	fs.StringVar(&cfg.seedSignatureFile, "seed-signature-file", "", "raw seed signature bytes (default: evaluation mode)")

	fs.StringVar(&cfg.licenseData, "license-data", "", "opaque LICENSE_DATA payload")

	return cfg
}

// buildContext turns parsed flags into a Ready façade.Context, preferring
// --config when supplied (exercising the same configfile.Load →
// facade.BuildFromSet path cabi's init_from_config_file uses) and falling
// back to the programmatic Builder otherwise.
func buildContext(cfg *flagConfig) (*facade.Context, error) {
	if cfg.configFile != "" {
		set, err := configfile.Load(cfg.configFile, cfg.nodePath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.configFile, err)
		}

		return facade.BuildFromSet(set)
	}

	b := facade.NewBuilder()

	wsrType, err := parseWSRType(cfg.wsrType)
	if err != nil {
		return nil, err
	}

	if err := b.SetInt(option.WSRType, int64(wsrType)); err != nil {
		return nil, err
	}

	if cfg.wsrPath != "" {
		if err := b.SetStr(option.WSRPath, cfg.wsrPath); err != nil {
			return nil, err
		}
	}

	cacheType, err := parseCacheType(cfg.cacheType)
	if err != nil {
		return nil, err
	}

	if err := b.SetInt(option.CacheType, int64(cacheType)); err != nil {
		return nil, err
	}

	if err := b.SetInt(option.CacheSize, int64(cfg.cacheSize)); err != nil {
		return nil, err
	}

	if err := b.SetInt(option.CachePrefill, int64(cfg.cachePrefill)); err != nil {
		return nil, err
	}

	if err := b.SetInt(option.CacheRefillAt, int64(cfg.cacheRefillAt)); err != nil {
		return nil, err
	}

	if err := b.SetInt(option.CacheThreadCount, int64(cfg.cacheThreadCount)); err != nil {
		return nil, err
	}

	if err := b.SetInt(option.HealthTestsOutput, 1); err != nil {
		return nil, err
	}

	if cfg.seedContentFile != "" {
		content, err := os.ReadFile(cfg.seedContentFile) //nolint:gosec // operator-supplied path by design
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.seedContentFile, err)
		}

		if err := b.SetBytes(option.SeedContent, content); err != nil {
			return nil, err
		}
	}

	if cfg.seedSignatureFile != "" {
		signature, err := os.ReadFile(cfg.seedSignatureFile) //nolint:gosec // operator-supplied path by design
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.seedSignatureFile, err)
		}

		if err := b.SetBytes(option.SeedSignature, signature); err != nil {
			return nil, err
		}
	}

	if cfg.licenseData != "" {
		if err := b.SetBytes(option.LicenseData, []byte(cfg.licenseData)); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

func parseWSRType(s string) (option.WSRTypeValue, error) {
	switch s {
	case "RDSEED":
		return option.WSRTypeRDSEED, nil
	case "File":
		return option.WSRTypeFile, nil
	case "Callback":
		return option.WSRTypeCallback, nil
	default:
		return 0, fmt.Errorf("unrecognized --wsr-type %q", s)
	}
}

func parseCacheType(s string) (option.CacheTypeValue, error) {
	switch s {
	case "None":
		return option.CacheTypeNone, nil
	case "SyncCaching":
		return option.CacheTypeSyncCaching, nil
	case "Caching":
		return option.CacheTypeCaching, nil
	case "MultiThread":
		return option.CacheTypeMultiThread, nil
	default:
		return 0, fmt.Errorf("unrecognized --cache-type %q", s)
	}
}
