package model

// Roles del personal de la cadena.
const (
	RolAdministrador      = "administrador"
	RolSuperadministrador = "superadministrador"
)

// Actor is the authenticated user performing an operation, extracted
// from the JWT claims by the handlers.
type Actor struct {
	UID    string
	Email  string
	Nombre string
	Rol    string
}
