// internal/config/normalize.go
package config

import (
	"time"

	"ventgate/internal/profile"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = 5000
	}
	if cfg.Device.ProbeTimeoutMs == 0 {
		cfg.Device.ProbeTimeoutMs = 2000
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = 30000
	}

	if cfg.Profile.Name == "" {
		cfg.Profile.Name = profile.NameGeneric
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ResolveProfile builds the effective gateway profile: the named built-in
// with any configured overrides applied on top.
func (cfg *Config) ResolveProfile() (profile.Profile, error) {
	p, err := profile.ByName(cfg.Profile.Name)
	if err != nil {
		return profile.Profile{}, err
	}

	o := cfg.Profile
	if o.MaxBatchWords != nil {
		p.MaxBatchWords = *o.MaxBatchWords
	}
	if o.GapBridge != nil {
		p.GapBridge = *o.GapBridge
	}
	if o.InterRequestDelayMs != nil {
		p.InterRequestDelay = time.Duration(*o.InterRequestDelayMs) * time.Millisecond
	}
	if o.PostConnectDelayMs != nil {
		p.PostConnectDelay = time.Duration(*o.PostConnectDelayMs) * time.Millisecond
	}
	if o.MaxRetries != nil {
		p.MaxRetries = *o.MaxRetries
	}
	if o.BackoffBaseMs != nil {
		p.BackoffBase = time.Duration(*o.BackoffBaseMs) * time.Millisecond
	}

	return p, nil
}
