package user

import (
	"encoding/json"
	"slices"
	"time"

	"weekend-at-joes/pkg/ident"

	"gorm.io/datatypes"
)

// 角色常量，持久化在 User.Roles 的 JSON 数组里。
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// User 是系统中的账号实体，几乎所有其它实体都通过外键引用它。
type User struct {
	UUID         ident.UserUUID `gorm:"primaryKey;type:varchar(36)"`  // 主键
	UserName     string         `gorm:"size:64;uniqueIndex;not null"` // 登录名（唯一）
	DisplayName  string         `gorm:"size:64;not null"`             // 展示名称
	PasswordHash string         `gorm:"size:255;not null"`            // bcrypt 哈希
	Roles        datatypes.JSON `gorm:"type:json"`                    // 角色列表 JSON，如 ["admin"]
	CreatedAt    time.Time      // 创建时间（gorm 自动维护）
	UpdatedAt    time.Time      // 更新时间（gorm 自动维护）
}

func (User) TableName() string {
	return "users"
}

// RoleList 解析 Roles 字段；空值或非法 JSON 视为没有任何角色。
func (u User) RoleList() []string {
	if len(u.Roles) == 0 {
		return nil
	}
	var roles []string
	if err := json.Unmarshal(u.Roles, &roles); err != nil {
		return nil
	}
	return roles
}

// HasRole 判断用户是否具备指定角色，admin 隐含 moderator 权限。
func (u User) HasRole(role string) bool {
	roles := u.RoleList()
	if slices.Contains(roles, role) {
		return true
	}
	return role == RoleModerator && slices.Contains(roles, RoleAdmin)
}

// EncodeRoles 将角色列表编码为 JSON 列值。
func EncodeRoles(roles ...string) datatypes.JSON {
	if roles == nil {
		roles = []string{}
	}
	data, _ := json.Marshal(roles)
	return datatypes.JSON(data)
}

// Changeset 是用户的部分更新，nil 字段保持不变。
type Changeset struct {
	UUID        ident.UserUUID
	DisplayName *string
	Roles       []string // nil 表示不修改
}

// Principal 是一次请求的已认证身份，由鉴权中间件从访问令牌解析得到。
type Principal struct {
	UUID     ident.UserUUID
	UserName string
	Roles    []string
}

// HasRole 与 User.HasRole 规则一致。
func (p Principal) HasRole(role string) bool {
	if slices.Contains(p.Roles, role) {
		return true
	}
	return role == RoleModerator && slices.Contains(p.Roles, RoleAdmin)
}

// PrincipalOf 从用户实体构造身份，登录与本地模式使用。
func PrincipalOf(u User) Principal {
	return Principal{UUID: u.UUID, UserName: u.UserName, Roles: u.RoleList()}
}
