package model

import (
	"time"

	sf "github.com/bwmarrin/snowflake"
)

// Order 订单
// @AutoField(timestamps, soft_delete)
type Order struct {
	ID         int64
	Name       string
	CreateTime time.Time
	UpdateTime time.Time
	DeleteFlag int
}

// Account 账户
// @AutoField
type Account struct {
	ID sf.ID
	Audit
	TenantID   int64
	TenantName string
	Version    int
	DeleteFlag bool
	State      string
	StateName  string
}

// Audit 审计字段
type Audit struct {
	CreateTime time.Time
	UpdateTime time.Time
	CreateBy   string
	UpdateBy   string
}

// Bad 缺少字段
// @AutoField(audit)
type Bad struct {
	ID int64
}

// Weird 未知配置项
// @AutoField(bogus)
type Weird struct {
	ID int64
}
