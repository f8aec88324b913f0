// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Poll    PollConfig    `yaml:"poll"`
	Profile ProfileConfig `yaml:"profile"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Endpoint       string `yaml:"endpoint"` // host:port of the Modbus TCP gateway
	UnitID         uint8  `yaml:"unit_id"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	ProbeTimeoutMs int    `yaml:"probe_timeout_ms"`

	// Model selects the nominal flow table entry for flow estimation
	// (optional; empty falls back to the legacy estimate).
	Model string `yaml:"model"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- PROFILE ----

// ProfileConfig names a gateway profile and optionally overrides its
// tuning. Overrides are opt-in; nil means the profile's own value.
type ProfileConfig struct {
	Name string `yaml:"name"`

	MaxBatchWords       *uint16 `yaml:"max_batch_words"`
	GapBridge           *uint16 `yaml:"gap_bridge"`
	InterRequestDelayMs *int    `yaml:"inter_request_delay_ms"`
	PostConnectDelayMs  *int    `yaml:"post_connect_delay_ms"`
	MaxRetries          *int    `yaml:"max_retries"`
	BackoffBaseMs       *int    `yaml:"backoff_base_ms"`
}

// ---- MQTT ----

// MQTTConfig configures the broker sink. An empty broker disables it.
type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	RootTopic string `yaml:"root_topic"`
	QoS       uint8  `yaml:"qos"`
	Retained  bool   `yaml:"retained"`
}

// ---- METRICS ----

// MetricsConfig configures the Prometheus endpoint. An empty listen
// address disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads and parses a YAML configuration file. Validation and
// normalization are separate steps.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}
