package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EngineConfig 决策引擎配置
type EngineConfig struct {
	MaxLogs                 int     `yaml:"max_logs"`                  // 事件总线历史容量
	ResponderTimeoutSeconds int     `yaml:"responder_timeout_seconds"` // 外部应答器超时
	DefaultRecipient        string  `yaml:"default_recipient"`         // 摄入时的缺省收件人
	ConfidencePlaceholder   float64 `yaml:"confidence_placeholder"`    // 占位置信度
}

// SeedConfig 注册表种子数据配置
type SeedConfig struct {
	Path string `yaml:"path"` // 为空时使用内置演示数据集
}

// LogConfig 日志配置
type LogConfig struct {
	Development bool `yaml:"development"`
}

type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Seed   SeedConfig   `yaml:"seed"`
	Log    LogConfig    `yaml:"log"`
}

// Default 返回缺省配置
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxLogs:                 100,
			ResponderTimeoutSeconds: 60,
			DefaultRecipient:        "sales@lcsc.com",
			ConfidencePlaceholder:   0.85,
		},
	}
}

// Load 读取 yaml 配置文件，文件不存在时回落到缺省配置；
// 环境变量优先级最高（生产环境使用）。
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// 无配置文件，使用缺省值
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if cfg.Engine.MaxLogs <= 0 {
		cfg.Engine.MaxLogs = 100
	}
	if cfg.Engine.ResponderTimeoutSeconds <= 0 {
		cfg.Engine.ResponderTimeoutSeconds = 60
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("MAX_LOGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxLogs = n
		}
	}
	if v := os.Getenv("RESPONDER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.ResponderTimeoutSeconds = n
		}
	}
	if v := os.Getenv("DEFAULT_RECIPIENT"); v != "" {
		cfg.Engine.DefaultRecipient = v
	}
	if v := os.Getenv("SEED_PATH"); v != "" {
		cfg.Seed.Path = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Development = b
		}
	}
}
