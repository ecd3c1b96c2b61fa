package rule

import "maps"

// State 字段赋值状态
type State int

const (
	Unset    State = iota // 未赋值
	Explicit              // 调用方赋值
	Computed              // 规则写入
)

func (s State) String() string {
	switch s {
	case Explicit:
		return "explicit"
	case Computed:
		return "computed"
	default:
		return "unset"
	}
}

// Value 带赋值状态的字段值
type Value struct {
	State State
	V     any
}

// Record 以列名为键的字段赋值表
// 显式赋 nil 视为未赋值
type Record map[string]Value

// FromMap 把普通 map 转为 Record，所有字段视为调用方赋值
func FromMap(m map[string]any) Record {
	rec := make(Record, len(m))
	for k, v := range m {
		rec.Set(k, v)
	}
	return rec
}

// Set 调用方赋值
func (r Record) Set(column string, v any) {
	r[column] = Value{State: Explicit, V: v}
}

// Get 返回已赋值且非 nil 的值
func (r Record) Get(column string) (any, bool) {
	v, ok := r[column]
	if !ok || v.State == Unset || v.V == nil {
		return nil, false
	}
	return v.V, true
}

// IsSet 字段是否已有非 nil 值
func (r Record) IsSet(column string) bool {
	_, ok := r.Get(column)
	return ok
}

// StateOf 返回字段的赋值状态
func (r Record) StateOf(column string) State {
	return r[column].State
}

func (r Record) compute(column string, v any) {
	r[column] = Value{State: Computed, V: v}
}

// Computed 返回规则写入的字段
func (r Record) Computed() map[string]any {
	result := make(map[string]any)
	for k, v := range r {
		if v.State == Computed {
			result[k] = v.V
		}
	}
	return result
}

// Map 返回全部已赋值的字段
func (r Record) Map() map[string]any {
	result := make(map[string]any, len(r))
	for k, v := range r {
		if v.State != Unset {
			result[k] = v.V
		}
	}
	return result
}

func (r Record) Clone() Record {
	return maps.Clone(r)
}
