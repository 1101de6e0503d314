package model

// Role 贴吧内角色，数值即全序：None < Member < Moderator < Owner
type Role int8

const (
	RoleNone Role = iota
	RoleMember
	RoleModerator
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleModerator:
		return "moderator"
	case RoleOwner:
		return "owner"
	default:
		return "none"
	}
}

// AtLeast 角色是否满足最低要求
func (r Role) AtLeast(min Role) bool { return r >= min }

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
