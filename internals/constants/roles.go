package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleTeacher    = "teacher"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyStaffCanAccess  = "❌ Hanya admin atau supervisor yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

var (
	AllRoles = []string{
		RoleAdmin,
		RoleSupervisor,
		RoleTeacher,
	}

	// boleh mengelola fauj, program & sesi
	StaffRoles = []string{
		RoleAdmin,
		RoleSupervisor,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)

func HasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
