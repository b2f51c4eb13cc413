package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/andrewgierens/tessie2mqtt/bridge"
	"github.com/andrewgierens/tessie2mqtt/core/metrics"
	"github.com/andrewgierens/tessie2mqtt/infra/mqtt"
)

type Config struct {
	MQTT     mqtt.Config    `json:"mqtt"`
	Bridge   bridge.Config  `json:"bridge"`
	Metrics  metrics.Config `json:"metrics"`
	Fleet    FleetConfig    `json:"fleet"`
	Entities EntitiesConfig `json:"entities"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("T2M_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "t2m_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Bridge.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Fleet.SetDefaults()
	cfg.Entities.SetDefaults()
	if err := cfg.Bridge.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fleet.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Entities.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
