package repository

import (
	"time"

	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos.
// Un movimiento solo muta por sus dos transiciones terminales (MarkProcessed /
// MarkCancelled), ambas condicionadas al estado PENDING para garantizar at-most-once.
type MovementRepository interface {
	// Create persiste un movimiento PENDING y le asigna ID y folio consecutivo (Number).
	Create(m *entity.Movement) error
	// GetByID devuelve el movimiento, o nil si no existe en esa empresa.
	GetByID(id, companyID string) (*entity.Movement, error)
	// MarkProcessed transiciona PENDING -> PROCESSED. Devuelve false si el movimiento
	// ya no estaba PENDING (otro procesamiento ganó, o fue cancelado).
	MarkProcessed(id, companyID, actorID string, at time.Time) (bool, error)
	// MarkCancelled transiciona PENDING -> CANCELLED. Devuelve false si ya era terminal.
	MarkCancelled(id, companyID, actorID, reason string, at time.Time) (bool, error)
	// ListByLote lista movimientos cuyo origen o destino pertenece al lote, más recientes primero.
	ListByLote(loteID, companyID string, limit, offset int) ([]*entity.Movement, error)
}
