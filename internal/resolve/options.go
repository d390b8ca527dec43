package resolve

import (
	"fmt"
	"time"

	"github.com/pedidobot/ordercore/internal/common"
)

// Options enumerates exactly the recognized resolution knobs; ranges are
// validated at construction time rather than at call time.
type Options struct {
	AllowFuzzy     bool
	FuzzyThreshold float64 // minimum blended similarity for a fuzzy hit
	MaxQuantity    int     // clamp for extracted quantities
	Debug          bool    // include evidence in logs and bypass the cache
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		AllowFuzzy:     true,
		FuzzyThreshold: 0.5,
		MaxQuantity:    100,
		CacheEnabled:   true,
		CacheTTL:       90 * time.Second,
	}
}

// OptionsFromConfig builds Options from the environment-backed config.
func OptionsFromConfig(cfg *common.Config) Options {
	return Options{
		AllowFuzzy:     cfg.Resolver.AllowFuzzy,
		FuzzyThreshold: cfg.Resolver.FuzzyThreshold,
		MaxQuantity:    cfg.Resolver.MaxQuantity,
		Debug:          cfg.Resolver.Debug,
		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       cfg.Cache.TTL,
	}
}

func (o Options) validate() error {
	if o.FuzzyThreshold < 0 || o.FuzzyThreshold > 1 {
		return common.NewAppError("INVALID_OPTION", "fuzzy threshold must be in [0,1]", common.ErrInvalidOption)
	}
	if o.MaxQuantity < 1 {
		return common.NewAppError("INVALID_OPTION", "max quantity must be >= 1", common.ErrInvalidOption)
	}
	if o.CacheEnabled && o.CacheTTL <= 0 {
		return common.NewAppError("INVALID_OPTION", "cache TTL must be positive", common.ErrInvalidOption)
	}
	return nil
}

// fingerprint keys the result cache: any knob that changes output is part of
// the key.
func (o Options) fingerprint() string {
	return fmt.Sprintf("fuzzy=%t;thr=%.4f;maxq=%d", o.AllowFuzzy, o.FuzzyThreshold, o.MaxQuantity)
}
