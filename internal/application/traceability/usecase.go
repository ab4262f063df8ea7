package traceability

import (
	"context"

	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// UseCase reconstruye la trazabilidad de un lote a partir del historial, con
// independencia del estado vivo de los registros de inventario. Solo lectura,
// consistente "al momento de la consulta" (sin bloqueos).
type UseCase struct {
	histRepo repository.HistoryRepository
	invRepo  repository.InventoryRecordRepository
}

// New construye el lector de trazabilidad con repos atados al pool.
func New(histRepo repository.HistoryRepository, invRepo repository.InventoryRecordRepository) *UseCase {
	return &UseCase{histRepo: histRepo, invRepo: invRepo}
}

// GetTimeline devuelve la secuencia cronológica completa de eventos del lote, del más
// antiguo al más reciente, cruzando todos los registros de inventario que el lote haya
// tenido (incluidos los ya inactivos).
func (uc *UseCase) GetTimeline(ctx context.Context, companyID, loteID string) ([]*entity.HistoryEntry, error) {
	return uc.histRepo.ListByLote(loteID, companyID)
}

// LoteSnapshot es la foto viva del lote: sus ubicaciones activas y el total de aves.
type LoteSnapshot struct {
	Locations []*entity.InventoryRecord
	Total     entity.Counts
}

// GetCurrentLocations devuelve las ubicaciones activas del lote con el total agregado,
// derivado de sumar los registros activos.
func (uc *UseCase) GetCurrentLocations(ctx context.Context, companyID, loteID string) (*LoteSnapshot, error) {
	records, err := uc.invRepo.ListActiveByLote(loteID, companyID)
	if err != nil {
		return nil, err
	}
	snap := &LoteSnapshot{Locations: records}
	for _, r := range records {
		snap.Total = snap.Total.Add(r.Counts)
	}
	return snap, nil
}
