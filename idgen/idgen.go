// Package idgen 提供 rule.IDGenerator 的实现
package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/donutnomad/autofield/rule"
)

// 生成器类型
const (
	KindSnowflake = "snowflake"
	KindUUID      = "uuid"
	KindULID      = "ulid"
)

// Snowflake 雪花 ID，十进制字符串
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake 创建雪花 ID 生成器，node 取值 0-1023
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("创建雪花节点失败: %w", err)
	}
	return &Snowflake{node: n}, nil
}

func (s *Snowflake) NextID() string {
	return s.node.Generate().String()
}

// UUID 优先使用 v7，失败时退回 v4
type UUID struct{}

func (UUID) NextID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// ULID 单调递增的 ULID
type ULID struct{}

func (ULID) NextID() string {
	return ulid.Make().String()
}

// New 根据类型名创建生成器
func New(kind string, node int64) (rule.IDGenerator, error) {
	switch strings.ToLower(kind) {
	case "", KindSnowflake:
		return NewSnowflake(node)
	case KindUUID:
		return UUID{}, nil
	case KindULID:
		return ULID{}, nil
	}
	return nil, fmt.Errorf("未知的 ID 生成器类型: %s", kind)
}
