package entity

import "time"

// Estados de un registro de inventario.
const (
	RecordStatusActive   = "ACTIVE"
	RecordStatusInactive = "INACTIVE"
)

// LocationKey es la llave natural de un registro de inventario: lote + ubicación física.
// Núcleo y galpón son opcionales (cadena vacía = sin especificar).
type LocationKey struct {
	LoteID    string
	FarmID    string
	NucleusID string
	ShedID    string
}

// Equals compara dos llaves naturales campo a campo.
func (k LocationKey) Equals(o LocationKey) bool {
	return k.LoteID == o.LoteID && k.FarmID == o.FarmID && k.NucleusID == o.NucleusID && k.ShedID == o.ShedID
}

// InventoryRecord representa el conteo actual de aves de un lote en una ubicación
// (granja, núcleo, galpón). Es la única entidad mutable compartida: solo el motor de
// movimientos o un ajuste directo pueden modificar sus cantidades, y cada mutación
// incrementa Version (token de concurrencia optimista).
type InventoryRecord struct {
	ID        string
	CompanyID string
	LoteID    string
	FarmID    string
	NucleusID string // opcional
	ShedID    string // opcional
	Counts    Counts
	Status    string // ACTIVE | INACTIVE
	Version   int64
	Notes     string
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key devuelve la llave natural del registro.
func (r *InventoryRecord) Key() LocationKey {
	return LocationKey{LoteID: r.LoteID, FarmID: r.FarmID, NucleusID: r.NucleusID, ShedID: r.ShedID}
}

// IsActive indica si el registro está activo (no tombstoned).
func (r *InventoryRecord) IsActive() bool {
	return r.Status == RecordStatusActive
}
