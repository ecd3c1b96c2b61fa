// Package feature 解析 @AutoField 特性配置
package feature

import (
	"strconv"
	"strings"
)

// 配置项名称
const (
	OptSnowflakeID      = "snowflake_id"
	OptTimestamps       = "timestamps"
	OptAudit            = "audit"
	OptTenant           = "tenant"
	OptVersion          = "version"
	OptSoftDelete       = "soft_delete"
	OptState            = "state"
	OptDefaultState     = "default_state"
	OptDefaultStateName = "default_state_name"
)

// 字符串配置项默认值
const (
	DefaultState     = "1"
	DefaultStateName = "启用"
)

// Config 实体的自动字段特性配置
// 解析完成后按值传递，不再修改
type Config struct {
	SnowflakeID bool
	Timestamps  bool
	Audit       bool
	Tenant      bool
	Version     bool
	SoftDelete  bool
	State       bool

	DefaultState     string
	DefaultStateName string
}

// Default 返回所有特性关闭、字符串取默认值的配置
func Default() Config {
	return Config{
		DefaultState:     DefaultState,
		DefaultStateName: DefaultStateName,
	}
}

// EnableAll 对应无参数的 @AutoField，开启全部特性
func EnableAll() Config {
	c := Default()
	for _, name := range Features() {
		setFlag(&c, name, true)
	}
	return c
}

// Features 按固定顺序返回七个特性开关的名称
func Features() []string {
	return []string{
		OptSnowflakeID,
		OptTimestamps,
		OptAudit,
		OptTenant,
		OptVersion,
		OptSoftDelete,
		OptState,
	}
}

// Enabled 报告指定特性是否开启，未知名称返回 false
func (c Config) Enabled(name string) bool {
	switch name {
	case OptSnowflakeID:
		return c.SnowflakeID
	case OptTimestamps:
		return c.Timestamps
	case OptAudit:
		return c.Audit
	case OptTenant:
		return c.Tenant
	case OptVersion:
		return c.Version
	case OptSoftDelete:
		return c.SoftDelete
	case OptState:
		return c.State
	}
	return false
}

// EnabledFeatures 返回已开启的特性，保持固定顺序
func (c Config) EnabledFeatures() []string {
	var result []string
	for _, name := range Features() {
		if c.Enabled(name) {
			result = append(result, name)
		}
	}
	return result
}

// Tokens 把配置完整序列化为 token 列表，每个配置项都显式给出
func (c Config) Tokens() []Token {
	tokens := make([]Token, 0, len(options))
	for _, opt := range options {
		tokens = append(tokens, Pair(opt.name, opt.get(c)))
	}
	return tokens
}

// String 渲染为注解参数文本，如 `snowflake_id=true, ..., default_state="1"`
func (c Config) String() string {
	parts := make([]string, 0, len(options))
	for _, tok := range c.Tokens() {
		parts = append(parts, tok.String())
	}
	return strings.Join(parts, ", ")
}

// Short 只渲染开启的特性和非默认的字符串项，用于日志和报告
func (c Config) Short() string {
	parts := c.EnabledFeatures()
	if c.DefaultState != DefaultState {
		parts = append(parts, OptDefaultState+"="+strconv.Quote(c.DefaultState))
	}
	if c.DefaultStateName != DefaultStateName {
		parts = append(parts, OptDefaultStateName+"="+strconv.Quote(c.DefaultStateName))
	}
	return strings.Join(parts, ", ")
}

func setFlag(c *Config, name string, v bool) {
	switch name {
	case OptSnowflakeID:
		c.SnowflakeID = v
	case OptTimestamps:
		c.Timestamps = v
	case OptAudit:
		c.Audit = v
	case OptTenant:
		c.Tenant = v
	case OptVersion:
		c.Version = v
	case OptSoftDelete:
		c.SoftDelete = v
	case OptState:
		c.State = v
	}
}
