package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// UseCase es el motor de movimientos de aves: crea, procesa y cancela movimientos
// (traslado, ajuste, liquidación) y mantiene los registros de inventario y su
// historial de forma transaccional.
type UseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	invRepo  repository.InventoryRecordRepository
	histRepo repository.HistoryRepository
}

// New construye el caso de uso. movRepo/invRepo/histRepo van atados al pool
// (lecturas fuera de transacción); txRunner entrega repos atados a la tx.
func New(txRunner TxRunner, movRepo repository.MovementRepository, invRepo repository.InventoryRecordRepository, histRepo repository.HistoryRepository) *UseCase {
	return &UseCase{txRunner: txRunner, movRepo: movRepo, invRepo: invRepo, histRepo: histRepo}
}

// EndpointInput identifica un extremo de movimiento desde la capa HTTP:
// el ID del registro de inventario, o la llave natural (lote + ubicación).
type EndpointInput struct {
	RecordID  string
	LoteID    string
	FarmID    string
	NucleusID string
	ShedID    string
}

func (e EndpointInput) toEndpoint() entity.MovementEndpoint {
	return entity.MovementEndpoint{
		RecordID: e.RecordID,
		Key: entity.LocationKey{
			LoteID:    e.LoteID,
			FarmID:    e.FarmID,
			NucleusID: e.NucleusID,
			ShedID:    e.ShedID,
		},
	}
}

// MovementInput entrada para CreateMovement.
// TRANSFER: Origin y Destination obligatorios y distintos.
// ADJUSTMENT: Target obligatorio, AdjustmentKind ∈ {CORRECTION, ENTRY, EXIT}.
// LIQUIDATION: Target obligatorio, sin cantidades.
type MovementInput struct {
	Type           string
	AdjustmentKind string
	Origin         EndpointInput
	Destination    EndpointInput
	Quantities     entity.Counts
	Reason         string
	Notes          string
}

// CreateMovement registra la intención de movimiento en estado PENDING.
// Solo valida y persiste el movimiento: no toca cantidades de inventario.
func (uc *UseCase) CreateMovement(ctx context.Context, companyID, actorID string, in MovementInput) (*entity.Movement, error) {
	var m *entity.Movement
	var err error
	switch in.Type {
	case entity.MovementTypeTRANSFER:
		m, err = entity.NewTransfer(companyID, actorID, in.Origin.toEndpoint(), in.Destination.toEndpoint(), in.Quantities, in.Reason)
	case entity.MovementTypeADJUSTMENT:
		m, err = entity.NewAdjustment(companyID, actorID, in.AdjustmentKind, in.Destination.toEndpoint(), in.Quantities, in.Reason)
	case entity.MovementTypeLIQUIDATION:
		m, err = entity.NewLiquidation(companyID, actorID, in.Destination.toEndpoint(), in.Reason)
	default:
		return nil, domain.ErrInvalidMovementRequest
	}
	if err != nil {
		return nil, err
	}
	m.Notes = in.Notes

	// Referencias por ID se verifican al crear; las llaves naturales se resuelven
	// al procesar, cuando el stock vigente es el que importa.
	if err := uc.checkEndpointRef(m.Origin, companyID); err != nil {
		return nil, err
	}
	if err := uc.checkEndpointRef(m.Destination, companyID); err != nil {
		return nil, err
	}

	if err := uc.movRepo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkEndpointRef rechaza temprano los IDs de registro inexistentes (o de otra
// empresa, que se reportan igual como no encontrados).
func (uc *UseCase) checkEndpointRef(e entity.MovementEndpoint, companyID string) error {
	if e.RecordID == "" {
		return nil
	}
	rec, err := uc.invRepo.GetByID(e.RecordID, companyID)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	return nil
}

// GetMovement devuelve un movimiento por ID dentro de la empresa.
func (uc *UseCase) GetMovement(ctx context.Context, companyID, movementID string) (*entity.Movement, error) {
	m, err := uc.movRepo.GetByID(movementID, companyID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// ListMovements lista los movimientos de un lote, más recientes primero.
func (uc *UseCase) ListMovements(ctx context.Context, companyID, loteID string, limit, offset int) ([]*entity.Movement, error) {
	return uc.movRepo.ListByLote(loteID, companyID, limit, offset)
}

// CancelMovement transiciona PENDING -> CANCELLED. Sin efectos sobre inventario ni
// historial; un movimiento PROCESSED no es reversible por cancelación (se requiere
// un movimiento compensatorio).
func (uc *UseCase) CancelMovement(ctx context.Context, companyID, actorID, movementID, reason string) (*entity.Movement, error) {
	m, err := uc.GetMovement(ctx, companyID, movementID)
	if err != nil {
		return nil, err
	}
	if !m.IsPending() {
		return nil, domain.ErrInvalidStateTransition
	}
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.InventoryRecordRepository,
		_ repository.HistoryRepository,
	) error {
		ok, err := movRepo.MarkCancelled(movementID, companyID, actorID, reason, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStateTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.GetMovement(ctx, companyID, movementID)
}

// Reintentos acotados solo ante conflicto de escritura concurrente; un rechazo de
// negocio (stock insuficiente, transición inválida) nunca se reintenta.
const (
	conflictRetries = 3
	conflictBackoff = 25 * time.Millisecond
)

func (uc *UseCase) runWithConflictRetry(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRecordRepository,
	histRepo repository.HistoryRepository,
) error) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * conflictBackoff):
			}
		}
		err = uc.txRunner.Run(ctx, fn)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	return err
}
