package entity

// Roles que emite el servicio de autenticación en el claim "role".
// La API no administra usuarios; solo autoriza por rol.
const (
	RoleAdmin     = "admin"
	RoleTecnico   = "tecnico"   // técnico de campo: registra inventario y movimientos
	RoleGalponero = "galponero" // opera galpones: procesa y cancela movimientos
)
