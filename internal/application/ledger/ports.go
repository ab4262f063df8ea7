package ledger

import (
	"context"

	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza la atomicidad del motor de movimientos: mutaciones de
// inventario, entradas de historial y la transición de estado del movimiento se
// confirman como una sola unidad o no se confirman en absoluto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRecordRepository,
		histRepo repository.HistoryRepository,
	) error) error
}
