package models

// Role — роль пользователя. Набор закрыт.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleTeacher    Role = "TEACHER"
	RoleGuardian   Role = "GUARDIAN"
)

// Roles возвращает все допустимые роли.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSupervisor, RoleTeacher, RoleGuardian}
}

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleTeacher, RoleGuardian:
		return true
	}

	return false
}

func (r Role) String() string { return string(r) }
