package repository

import "github.com/jhoicas/avicola-api/internal/domain/entity"

// InventoryRecordRepository define el puerto para consultar/mutar registros de inventario.
// Todas las consultas están acotadas por companyID (multi-tenant); una referencia de otra
// empresa se comporta como inexistente.
type InventoryRecordRepository interface {
	// GetByID devuelve el registro (activo o no), o nil si no existe en esa empresa.
	GetByID(id, companyID string) (*entity.InventoryRecord, error)
	// GetActiveByKey devuelve el registro ACTIVO con esa llave natural, o nil.
	GetActiveByKey(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error)
	// GetByIDForUpdate bloquea la fila para update dentro de la transacción en curso.
	GetByIDForUpdate(id, companyID string) (*entity.InventoryRecord, error)
	// GetActiveByKeyForUpdate bloquea la fila activa con esa llave natural.
	GetActiveByKeyForUpdate(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error)
	// ListActiveByLote devuelve los registros activos de un lote.
	ListActiveByLote(loteID, companyID string) ([]*entity.InventoryRecord, error)
	// Create inserta un registro nuevo. Retorna domain.ErrDuplicateActiveRecord si ya
	// existe un registro activo con la misma llave natural.
	Create(rec *entity.InventoryRecord) error
	// Update persiste cantidades/estado/notas con chequeo de versión: si la fila cambió
	// desde la lectura retorna domain.ErrConcurrentModification. Incrementa rec.Version.
	Update(rec *entity.InventoryRecord) error
}
