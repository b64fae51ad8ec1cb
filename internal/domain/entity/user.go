package entity

// Roles con los que opera la política de eliminación del libro.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// IsPrivilegedRole indica si el rol puede eliminar movimientos ajenos.
func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
