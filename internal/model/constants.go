package model

// Role 사용자 역할
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// String 메서드
func (r Role) String() string {
	return string(r)
}
