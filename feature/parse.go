package feature

// option 配置项元信息
type option struct {
	name        string
	kind        LitKind
	description string
	get         func(Config) Literal
	set         func(*Config, Literal)
}

func flagOption(name, description string) option {
	return option{
		name:        name,
		kind:        LitBool,
		description: description,
		get:         func(c Config) Literal { return BoolLit(c.Enabled(name)) },
		set:         func(c *Config, l Literal) { setFlag(c, name, l.Bool) },
	}
}

var options = []option{
	flagOption(OptSnowflakeID, "创建时生成雪花 ID 写入 id"),
	flagOption(OptTimestamps, "维护 create_time / update_time"),
	flagOption(OptAudit, "维护 create_by / update_by，依赖 timestamps"),
	flagOption(OptTenant, "创建时写入 tenant_id / tenant_name"),
	flagOption(OptVersion, "乐观锁版本号 version"),
	flagOption(OptSoftDelete, "软删除标记 delete_flag"),
	flagOption(OptState, "创建时写入默认 state / state_name"),
	{
		name:        OptDefaultState,
		kind:        LitString,
		description: "state 的默认值",
		get:         func(c Config) Literal { return StringLit(c.DefaultState) },
		set:         func(c *Config, l Literal) { c.DefaultState = l.Text },
	},
	{
		name:        OptDefaultStateName,
		kind:        LitString,
		description: "state_name 的默认值",
		get:         func(c Config) Literal { return StringLit(c.DefaultStateName) },
		set:         func(c *Config, l Literal) { c.DefaultStateName = l.Text },
	},
}

func lookupOption(name string) (option, bool) {
	for _, opt := range options {
		if opt.name == name {
			return opt, true
		}
	}
	return option{}, false
}

// OptionInfo 配置项描述，用于帮助信息
type OptionInfo struct {
	Name        string
	Kind        LitKind
	Default     string
	Description string
}

// Options 按固定顺序返回九个配置项的描述
func Options() []OptionInfo {
	def := Default()
	result := make([]OptionInfo, 0, len(options))
	for _, opt := range options {
		result = append(result, OptionInfo{
			Name:        opt.name,
			Kind:        opt.kind,
			Default:     opt.get(def).String(),
			Description: opt.description,
		})
	}
	return result
}

// Parse 把 token 列表解析为配置
// 遇到第一个错误即返回，不会产生部分配置；重复的配置项以最后一个为准
func Parse(tokens []Token) (Config, error) {
	cfg := Default()
	for _, tok := range tokens {
		opt, ok := lookupOption(tok.Name)
		if !ok {
			return Config{}, &UnknownOptionError{Name: tok.Name}
		}

		value := tok.Value
		if tok.IsFlag() {
			// 简写只适用于开关项
			if opt.kind != LitBool {
				return Config{}, &UnknownOptionError{Name: tok.Name}
			}
			value = BoolLit(true)
		}

		if value.Kind != opt.kind {
			return Config{}, &TypeMismatchError{Name: tok.Name, Expected: opt.kind, Actual: value.Kind}
		}
		opt.set(&cfg, value)
	}
	return cfg, nil
}
