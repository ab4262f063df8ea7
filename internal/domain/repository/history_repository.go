package repository

import "github.com/jhoicas/avicola-api/internal/domain/entity"

// HistoryRepository define el puerto del historial de inventario. Append puro:
// las entradas nunca se actualizan ni se borran, y los errores de almacenamiento
// se propagan sin modificar para que la transacción del caller haga rollback.
type HistoryRepository interface {
	Append(e *entity.HistoryEntry) error
	// ListByRecord devuelve el historial de un registro, más antiguo primero.
	ListByRecord(recordID, companyID string) ([]*entity.HistoryEntry, error)
	// ListByLote devuelve el historial de todos los registros que el lote haya tenido
	// (activos o no), más antiguo primero.
	ListByLote(loteID, companyID string) ([]*entity.HistoryEntry, error)
}
