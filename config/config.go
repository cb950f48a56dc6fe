// Package config loads the service configuration from an optional
// yaml file plus LENDSIGHT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/spf13/viper"
)

type Config struct {
	Deployment Deployment `mapstructure:"deployment"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Web        Web        `mapstructure:"web"`
	Simulator  Simulator  `mapstructure:"simulator"`
}

// Deployment carries the per-chain constants of the tracked protocol.
type Deployment struct {
	ControllerAddress   string         `mapstructure:"controller_address"`
	ProtocolName        string         `mapstructure:"protocol_name"`
	ProtocolSlug        string         `mapstructure:"protocol_slug"`
	Network             string         `mapstructure:"network"`
	NativeTokenDecimals int32          `mapstructure:"native_token_decimals"`
	SecondsPerYear      int64          `mapstructure:"seconds_per_year"`
	BlocksPerDay        int64          `mapstructure:"blocks_per_day"`
	RateBasis           string         `mapstructure:"rate_basis"`
	RewardStreams       []RewardStream `mapstructure:"reward_streams"`
}

type RewardStream struct {
	Side  string `mapstructure:"side"`
	Token string `mapstructure:"token"`
}

type Kafka struct {
	EventTopic      string   `mapstructure:"event_topic"`
	EventGroup      string   `mapstructure:"event_group"`
	FinancialsTopic string   `mapstructure:"financials_topic"`
	Brokers         []string `mapstructure:"brokers"`
}

func (k Kafka) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true

	return cfg
}

type Web struct {
	Addr string `mapstructure:"addr"`
}

type Simulator struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads path when non-empty, falling back to defaults and
// environment variables otherwise.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LENDSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.controller_address", "0x3d5bc3c8d13dcb8bf317092d84783c2697ae9258")
	v.SetDefault("deployment.protocol_name", "Compound")
	v.SetDefault("deployment.protocol_slug", "compound")
	v.SetDefault("deployment.network", "ETHEREUM")
	v.SetDefault("deployment.native_token_decimals", 18)
	v.SetDefault("deployment.seconds_per_year", 31536000)
	v.SetDefault("deployment.blocks_per_day", 7200)
	v.SetDefault("deployment.rate_basis", "per_second")

	v.SetDefault("kafka.event_topic", "chain-events")
	v.SetDefault("kafka.event_group", "lendsight")
	v.SetDefault("kafka.financials_topic", "financials")
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})

	v.SetDefault("web.addr", "127.0.0.1:4242")

	v.SetDefault("simulator.enabled", false)
}
