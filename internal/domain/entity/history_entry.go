package entity

import "time"

// Tipos de cambio registrados en el historial de un registro de inventario.
const (
	ChangeTypeENTRY       = "ENTRY"
	ChangeTypeEXIT        = "EXIT"
	ChangeTypeTRANSFER    = "TRANSFER"
	ChangeTypeADJUSTMENT  = "ADJUSTMENT"
	ChangeTypeLIQUIDATION = "LIQUIDATION"
)

// HistoryEntry es una foto inmutable antes/después de una mutación de un registro de
// inventario. Es append-only: nunca se actualiza ni se borra. La cadena After(n) == Before(n+1)
// de un registro es el rastro de auditoría autoritativo; el registro vivo es solo la caché
// del último After.
type HistoryEntry struct {
	ID                string
	CompanyID         string
	InventoryRecordID string
	MovementID        string // vacío cuando el cambio no vino de un movimiento
	ChangeType        string
	Before            Counts
	After             Counts
	ActorID           string
	Notes             string
	CreatedAt         time.Time
}
