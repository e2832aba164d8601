package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	pkgconfig "secondbrain/pkg/config"
)

// ProofConfig tunes the proof-of-completion policy. ProductionDomain is
// the domain evidence must reference before a task may be marked done.
type ProofConfig struct {
	ProductionDomain string `yaml:"production_domain"`
}

type Config struct {
	Server pkgconfig.ServerConfig `yaml:"server"`
	DB     pkgconfig.DBConfig     `yaml:"db"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	Auth   pkgconfig.AuthConfig   `yaml:"auth"`
	Proof  ProofConfig            `yaml:"proof"`
}

// Load reads the layered yaml config for the current environment and
// applies environment variable overrides on top.
func Load() (*Config, error) {
	env := pkgconfig.GetConfigEnv()
	merged, err := pkgconfig.LoadConfig(env, pkgconfig.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to remarshal config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideAuthFromEnv(&cfg.Auth)
	if domain := pkgconfig.GetEnv("PROOF_PRODUCTION_DOMAIN", ""); domain != "" {
		cfg.Proof.ProductionDomain = domain
	}

	return &cfg, nil
}
