package facade

import (
	"fmt"

	"github.com/corvid-systems/entropic/cache"
	"github.com/corvid-systems/entropic/extractor"
	"github.com/corvid-systems/entropic/internal/wsrfs"
	"github.com/corvid-systems/entropic/logging"
	"github.com/corvid-systems/entropic/option"
	"github.com/corvid-systems/entropic/seed"
	"github.com/corvid-systems/entropic/status"
	"github.com/corvid-systems/entropic/wsr"
)

// defaultSigningKey is the stand-in HMAC key used to verify a seed's
// signature when the caller doesn't supply their own Verifier. Like
// extractor.Reference, it is a deterministic placeholder for a real
// cryptographic scheme that is out of this module's scope (spec.md §1) -
// not a claim of cryptographic soundness.
var defaultSigningKey = []byte("entropic-reference-seed-signing-key-not-for-production-use")

// BuildFromSet constructs a Context directly from a pre-populated
// option.Set, bypassing Builder. It is what lets a second front door -
// configfile's declarative loader - produce a Context through the exact
// same validation path a Builder's Build uses (spec.md §4.6.2, the
// "config round-trip" testable property), and is what cabi's
// init_from_config_file binds to.
func BuildFromSet(set *option.Set) (*Context, error) {
	return newContextFromSet(set)
}

// newContextFromSet performs spec.md §4.1's "Validation at build":
// required options, derived consistency between cache type and thread
// count, the watermark contract, and WSR-specific requirements. It is the
// single place that turns a flat option.Set into a wired Context.
func newContextFromSet(set *option.Set) (*Context, error) {
	wsrTypeVal, ok := set.Int(option.WSRType)
	if !ok {
		return nil, fmt.Errorf("%w: WSR_TYPE", status.ErrMissingRequiredOption)
	}

	sd, err := buildSeed(set)
	if err != nil {
		return nil, err
	}

	provider, err := buildWSRProvider(set, option.WSRTypeValue(wsrTypeVal))
	if err != nil {
		return nil, err
	}

	healthEnabled := set.IntOr(option.HealthTestsOutput, 1) != 0

	driver := extractor.New(sd, provider, extractor.Reference, extractor.ReferenceParams, healthEnabled)

	cacheCfg, err := buildCacheConfig(set)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(driver, cacheCfg)
	if err != nil {
		return nil, err
	}

	license, _ := set.Bytes(option.LicenseData)

	if sd.IsEvaluation() {
		logging.Emit(logging.LevelWarning, status.OK,
			"context built with the evaluation-mode seed: cryptographically meaningless, for testing only")
	}

	return &Context{
		state:   stateReady,
		seed:    sd,
		cache:   c,
		license: append([]byte(nil), license...),
	}, nil
}

// buildSeed loads SEED_CONTENT/SEED_SIGNATURE, defaulting to the
// well-known evaluation-mode values when either is unset (spec.md §4.1:
// "empty/placeholder content maps to the documented evaluation mode"),
// and verifies the signature exactly once.
func buildSeed(set *option.Set) (*seed.Seed, error) {
	content, hasContent := set.Bytes(option.SeedContent)
	if !hasContent {
		content = seed.EvaluationContent()
	}

	signature, hasSignature := set.Bytes(option.SeedSignature)
	if !hasSignature {
		signature = seed.EvaluationSignature()
	}

	verifier := seed.EvaluationAwareVerifier{Underlying: seed.HMACVerifier{Key: defaultSigningKey}}

	return seed.New(content, signature, verifier)
}

func buildWSRProvider(set *option.Set, t option.WSRTypeValue) (wsr.Provider, error) {
	switch t {
	case option.WSRTypeRDSEED:
		return wsr.NewRdSeed(), nil
	case option.WSRTypeFile:
		path, ok := set.Str(option.WSRPath)
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: WSR_PATH", status.ErrMissingRequiredOption)
		}

		return wsr.NewFile(path, wsrfs.NewReal()), nil
	case option.WSRTypeCallback:
		fn, userData, has := set.WSRCallback()
		if !has || fn == nil {
			return nil, status.ErrCallbackPtrNotSupplied
		}

		return wsr.NewCallback(wsr.CallbackFunc(fn), userData), nil
	default:
		return nil, fmt.Errorf("%w: WSR_TYPE %d", status.ErrUnsupportedOption, int(t))
	}
}

// buildCacheConfig derives a cache.Config from the option set: a zero
// CACHE_SIZE coerces the policy to None, and THREAD_COUNT only matters
// for MultiThread (spec.md §4.1, "derived consistency").
func buildCacheConfig(set *option.Set) (cache.Config, error) {
	cacheTypeVal := set.IntOr(option.CacheType, int64(option.CacheTypeNone))
	size := set.IntOr(option.CacheSize, 0)
	prefill := set.IntOr(option.CachePrefill, 0)
	refillAt := set.IntOr(option.CacheRefillAt, 0)
	threadCount := set.IntOr(option.CacheThreadCount, 0)

	if size == 0 {
		cacheTypeVal = int64(option.CacheTypeNone)
	}

	policy, err := policyFor(option.CacheTypeValue(cacheTypeVal))
	if err != nil {
		return cache.Config{}, err
	}

	return cache.Config{
		Policy:      policy,
		Size:        int(size),
		Prefill:     int(prefill),
		RefillAt:    int(refillAt),
		ThreadCount: int(threadCount),
	}, nil
}

func policyFor(v option.CacheTypeValue) (cache.Policy, error) {
	switch v {
	case option.CacheTypeNone:
		return cache.PolicyNone, nil
	case option.CacheTypeSyncCaching:
		return cache.PolicySync, nil
	case option.CacheTypeCaching:
		return cache.PolicyAsync, nil
	case option.CacheTypeMultiThread:
		return cache.PolicyMultiThread, nil
	default:
		return 0, fmt.Errorf("%w: CACHE_TYPE %d", status.ErrUnsupportedOption, int(v))
	}
}
