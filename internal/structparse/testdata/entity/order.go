package entity

import (
	"database/sql"

	sf "github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Order 订单
type Order struct {
	ID sf.ID
	*AuditBase
	Tenant  Tenant `gorm:"embedded;embeddedPrefix:tenant_"`
	Version sql.NullInt64
	Remark  string `gorm:"column:memo" json:"remark"`
	Cache   string `gorm:"-"`
	a, b    int
}

// Legacy 使用 gorm.Model
type Legacy struct {
	gorm.Model
	sql.NullString
	Name string
}

type (
	Loop struct {
		Loop2
	}
	Loop2 struct {
		Loop
		Name string
	}
)

// Broken 嵌入不存在的结构体
type Broken struct {
	Missing
}
