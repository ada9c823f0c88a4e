package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Session   SessionConfig   `mapstructure:"session"`
}

type GatewayConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Upstream is the cloud API the bridge synchronizes against.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TelemetryConfig struct {
	// PollInterval is deliberately config, not a constant: a push transport
	// can replace the loop without touching merge or control.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	HistoryLimit int           `mapstructure:"history_limit"`
	// AnalogMax is the full-scale LDR ADC value. Firmware revisions disagree
	// (1050 vs 4095), so the valid range is a knob.
	AnalogMax int `mapstructure:"analog_max"`
}

type SessionConfig struct {
	TokenFile string `mapstructure:"token_file"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Defaults setzen
	viper.SetDefault("gateway.http_port", 8090)
	viper.SetDefault("gateway.shutdown_timeout", "30s")
	viper.SetDefault("upstream.base_url", "http://localhost:8000")
	viper.SetDefault("upstream.timeout", "10s")
	viper.SetDefault("telemetry.poll_interval", "2s")
	viper.SetDefault("telemetry.history_limit", 20)
	viper.SetDefault("telemetry.analog_max", 4095)
	viper.SetDefault("session.token_file", ".sensorbridge/token")

	// Environment Variables automatisch binden (Viper Feature)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SB") // Environment Variables mit Prefix SB_

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
