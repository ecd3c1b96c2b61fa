package schema

import (
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// Kind 字段类型分类
type Kind int

const (
	KindUnknown Kind = iota // 未声明类型
	KindInt
	KindBool
	KindFloat
	KindString
	KindDatetime
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDatetime:
		return "datetime"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

var (
	intTypes = []string{
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"sql.NullInt16", "sql.NullInt32", "sql.NullInt64", "sql.NullByte",
		"snowflake.ID",
	}
	boolTypes     = []string{"bool", "sql.NullBool"}
	floatTypes    = []string{"float32", "float64", "sql.NullFloat64", "decimal.Decimal"}
	stringTypes   = []string{"string", "sql.NullString", "[]byte", "[]rune", "uuid.UUID", "ulid.ULID"}
	datetimeTypes = []string{"time.Time", "sql.NullTime", "gorm.DeletedAt", "datatypes.Date"}
)

// KindOf 根据 Go 类型名称分类，指针会被剥离
func KindOf(goType string) Kind {
	t := strings.TrimSpace(goType)
	t = strings.TrimLeft(t, "*")
	if t == "" {
		return KindUnknown
	}

	switch {
	case slices.Contains(intTypes, t):
		return KindInt
	case slices.Contains(boolTypes, t):
		return KindBool
	case slices.Contains(floatTypes, t):
		return KindFloat
	case slices.Contains(stringTypes, t):
		return KindString
	case slices.Contains(datetimeTypes, t):
		return KindDatetime
	}
	return KindOther
}

// Coerce 把生成的值转换为字段类型，转换失败时原样返回
func Coerce(k Kind, v any) any {
	out, err := CoerceE(k, v)
	if err != nil {
		return v
	}
	return out
}

// CoerceE 把值转换为字段类型，无法转换时返回错误
// 未知类型原样返回
func CoerceE(k Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch k {
	case KindInt:
		return cast.ToInt64E(v)
	case KindBool:
		return cast.ToBoolE(v)
	case KindFloat:
		return cast.ToFloat64E(v)
	case KindString:
		return cast.ToStringE(v)
	case KindDatetime:
		return cast.ToTimeE(v)
	}
	return v, nil
}
