// Package ambient 在 context.Context 上传递当前操作人和租户
package ambient

import "context"

// Principal 一次请求的操作人和租户，空字符串表示不存在
type Principal struct {
	ActorID    string
	TenantID   string
	TenantName string
}

// IsZero 是否没有任何值
func (p Principal) IsZero() bool {
	return p == Principal{}
}

type principalKey struct{}

// With 把 Principal 绑定到 ctx
func With(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// From 读取 ctx 中的 Principal
func From(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Keys 请求头或元数据中的键名
type Keys struct {
	ActorID    string
	TenantID   string
	TenantName string
}

// DefaultKeys 默认的 HTTP 请求头
var DefaultKeys = Keys{
	ActorID:    "X-Actor-Id",
	TenantID:   "X-Tenant-Id",
	TenantName: "X-Tenant-Name",
}

func (k Keys) withDefaults() Keys {
	if k.ActorID == "" {
		k.ActorID = DefaultKeys.ActorID
	}
	if k.TenantID == "" {
		k.TenantID = DefaultKeys.TenantID
	}
	if k.TenantName == "" {
		k.TenantName = DefaultKeys.TenantName
	}
	return k
}

// extract 用 get 读取三个值
func (k Keys) extract(get func(key string) string) Principal {
	return Principal{
		ActorID:    get(k.ActorID),
		TenantID:   get(k.TenantID),
		TenantName: get(k.TenantName),
	}
}
