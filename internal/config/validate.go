// internal/config/validate.go
package config

import (
	"fmt"

	"ventgate/internal/profile"
	"ventgate/internal/registry"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.Endpoint == "" {
		return fmt.Errorf("device.endpoint is required")
	}
	if cfg.Device.TimeoutMs < 0 {
		return fmt.Errorf("device.timeout_ms must not be negative")
	}
	if cfg.Device.ProbeTimeoutMs < 0 {
		return fmt.Errorf("device.probe_timeout_ms must not be negative")
	}

	if cfg.Device.Model != "" {
		if _, known := registry.NominalFlow[cfg.Device.Model]; !known {
			return fmt.Errorf("device.model %q is not a known unit model", cfg.Device.Model)
		}
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must not be negative")
	}

	// ------------------------------------------------------------
	// PROFILE (name is opt-in; overrides require sane values)
	// ------------------------------------------------------------

	if _, err := profile.ByName(cfg.Profile.Name); err != nil {
		return err
	}
	if v := cfg.Profile.MaxBatchWords; v != nil && (*v == 0 || *v > 125) {
		// 125 words is the protocol ceiling for one read.
		return fmt.Errorf("profile.max_batch_words must be 1..125")
	}
	if v := cfg.Profile.InterRequestDelayMs; v != nil && *v < 0 {
		return fmt.Errorf("profile.inter_request_delay_ms must not be negative")
	}
	if v := cfg.Profile.PostConnectDelayMs; v != nil && *v < 0 {
		return fmt.Errorf("profile.post_connect_delay_ms must not be negative")
	}
	if v := cfg.Profile.MaxRetries; v != nil && *v < 0 {
		return fmt.Errorf("profile.max_retries must not be negative")
	}
	if v := cfg.Profile.BackoffBaseMs; v != nil && *v < 0 {
		return fmt.Errorf("profile.backoff_base_ms must not be negative")
	}

	// ------------------------------------------------------------
	// MQTT (opt-in via broker)
	// ------------------------------------------------------------

	if cfg.MQTT.Broker != "" && cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}

	return nil
}
