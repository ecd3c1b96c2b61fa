// Package structparse 从源码中读取结构体字段，供生成器推导数据库列。
//
// 支持匿名嵌入和 gorm:"embedded" 标签两种展开方式：
//
//	type Order struct {
//	    AuditBase                                           // 同包结构体，字段直接展开
//	    Tenant Tenant `gorm:"embedded;embeddedPrefix:tenant_"` // 展开并带 tenant_ 前缀
//	}
//
// 同包结构体在源文件所在目录中查找。跨包结构体只展开 gorm.Model，
// 其余保留为一个 External 字段，由调用方决定如何处理。
package structparse
