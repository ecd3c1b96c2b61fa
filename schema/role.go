// Package schema 把实体声明的字段绑定到固定的自动字段角色
package schema

import "github.com/donutnomad/autofield/feature"

// Role 自动字段角色，每个角色对应一个固定的列名
type Role int

const (
	RoleID Role = iota
	RoleCreateTime
	RoleUpdateTime
	RoleCreateBy
	RoleUpdateBy
	RoleTenantID
	RoleTenantName
	RoleVersion
	RoleDeleteFlag
	RoleState
	RoleStateName

	roleCount
)

var roleInfos = [roleCount]struct {
	name    string
	column  string
	feature string
	accepts []Kind
}{
	RoleID:         {"Id", "id", feature.OptSnowflakeID, []Kind{KindInt, KindString}},
	RoleCreateTime: {"CreateTime", "create_time", feature.OptTimestamps, []Kind{KindDatetime}},
	RoleUpdateTime: {"UpdateTime", "update_time", feature.OptTimestamps, []Kind{KindDatetime}},
	RoleCreateBy:   {"CreateBy", "create_by", feature.OptAudit, []Kind{KindInt, KindString}},
	RoleUpdateBy:   {"UpdateBy", "update_by", feature.OptAudit, []Kind{KindInt, KindString}},
	RoleTenantID:   {"TenantId", "tenant_id", feature.OptTenant, []Kind{KindInt, KindString}},
	RoleTenantName: {"TenantName", "tenant_name", feature.OptTenant, []Kind{KindString}},
	RoleVersion:    {"Version", "version", feature.OptVersion, []Kind{KindInt}},
	RoleDeleteFlag: {"DeleteFlag", "delete_flag", feature.OptSoftDelete, []Kind{KindInt, KindBool}},
	RoleState:      {"State", "state", feature.OptState, []Kind{KindInt, KindString}},
	RoleStateName:  {"StateName", "state_name", feature.OptState, []Kind{KindString}},
}

// Roles 按固定顺序返回全部角色
func Roles() []Role {
	roles := make([]Role, 0, roleCount)
	for r := Role(0); r < roleCount; r++ {
		roles = append(roles, r)
	}
	return roles
}

func (r Role) valid() bool {
	return r >= 0 && r < roleCount
}

func (r Role) String() string {
	if !r.valid() {
		return "Unknown"
	}
	return roleInfos[r].name
}

// Column 角色对应的固定列名
func (r Role) Column() string {
	if !r.valid() {
		return ""
	}
	return roleInfos[r].column
}

// Feature 需要该角色的特性
func (r Role) Feature() string {
	if !r.valid() {
		return ""
	}
	return roleInfos[r].feature
}

// Accepts 角色允许的字段类型
func (r Role) Accepts() []Kind {
	if !r.valid() {
		return nil
	}
	return roleInfos[r].accepts
}

// Accept 字段类型是否兼容，未知类型视为兼容
func (r Role) Accept(k Kind) bool {
	if k == KindUnknown {
		return true
	}
	for _, a := range r.Accepts() {
		if a == k {
			return true
		}
	}
	return false
}

// RoleOf 根据列名查找角色
func RoleOf(column string) (Role, bool) {
	for r := Role(0); r < roleCount; r++ {
		if roleInfos[r].column == column {
			return r, true
		}
	}
	return 0, false
}

// RolesOf 特性需要的角色，按固定顺序
func RolesOf(featureName string) []Role {
	var roles []Role
	for r := Role(0); r < roleCount; r++ {
		if roleInfos[r].feature == featureName {
			roles = append(roles, r)
		}
	}
	return roles
}
