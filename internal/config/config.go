// Package config 读取 autofield 命令行工具的配置
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config 命令行工具配置
type Config struct {
	Output  string      `mapstructure:"output"`
	Async   bool        `mapstructure:"async"`
	Verbose bool        `mapstructure:"verbose"`
	Log     LogConfig   `mapstructure:"log"`
	IDGen   IDGenConfig `mapstructure:"idgen"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// IDGenConfig explain -simulate 使用的 ID 生成器
type IDGenConfig struct {
	Kind string `mapstructure:"kind"` // snowflake | uuid | ulid
	Node int64  `mapstructure:"node"`
}

var idKinds = []string{"snowflake", "uuid", "ulid"}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值，命令行参数由调用方再覆盖
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("output", "")
	v.SetDefault("async", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("idgen.kind", "snowflake")
	v.SetDefault("idgen.node", 1)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("autofield")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTOFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置项
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("配置校验失败: log.format 必须是 console 或 json, 得到 %q", c.Log.Format)
	}
	if !slices.Contains(idKinds, c.IDGen.Kind) {
		return fmt.Errorf("配置校验失败: idgen.kind 必须是 %s 之一, 得到 %q", strings.Join(idKinds, "/"), c.IDGen.Kind)
	}
	if c.IDGen.Node < 0 || c.IDGen.Node > 1023 {
		return fmt.Errorf("配置校验失败: idgen.node 必须在 0-1023 之间")
	}
	return nil
}
