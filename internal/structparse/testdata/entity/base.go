package entity

import "time"

// AuditBase 审计字段
type AuditBase struct {
	CreateTime time.Time
	UpdateTime time.Time
	CreateBy   string
	UpdateBy   string
}

// Tenant 租户信息
type Tenant struct {
	ID   int64
	Name string
}

func (*Tenant) TableName() string {
	return "sys_tenant"
}

func (t Tenant) Label() string {
	return t.Name
}
