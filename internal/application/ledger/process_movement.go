package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// ProcessMovement aplica un movimiento PENDING exactamente una vez. Dentro de una sola
// transacción: reclama la transición PENDING -> PROCESSED (update condicional), bloquea
// las filas de inventario, re-valida el stock vigente, aplica las cantidades y escribe
// una entrada de historial por registro tocado. Si cualquier paso falla nada se confirma
// y el movimiento sigue PENDING (reintentable).
func (uc *UseCase) ProcessMovement(ctx context.Context, companyID, actorID, movementID string, autoCreateDestination bool) (*entity.Movement, error) {
	m, err := uc.GetMovement(ctx, companyID, movementID)
	if err != nil {
		return nil, err
	}
	// Rechazo barato antes de abrir la transacción; la garantía real la da el
	// update condicional de MarkProcessed dentro de la tx.
	if !m.IsPending() {
		return nil, domain.ErrInvalidStateTransition
	}

	err = uc.runWithConflictRetry(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRecordRepository,
		histRepo repository.HistoryRepository,
	) error {
		now := time.Now()
		claimed, err := movRepo.MarkProcessed(movementID, companyID, actorID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrInvalidStateTransition
		}
		switch m.Type {
		case entity.MovementTypeTRANSFER:
			return uc.applyTransfer(invRepo, histRepo, m, actorID, autoCreateDestination, now)
		case entity.MovementTypeADJUSTMENT:
			return uc.applyAdjustment(invRepo, histRepo, m, actorID, now)
		case entity.MovementTypeLIQUIDATION:
			return uc.applyLiquidation(invRepo, histRepo, m, actorID, now)
		}
		return domain.ErrInvalidMovementRequest
	})
	if err != nil {
		return nil, err
	}
	return uc.GetMovement(ctx, companyID, movementID)
}

// applyTransfer descuenta del origen y abona al destino en la misma transacción.
// El destino se crea (con la misma llave de lote) si no existe y autoCreate lo permite.
func (uc *UseCase) applyTransfer(
	invRepo repository.InventoryRecordRepository,
	histRepo repository.HistoryRepository,
	m *entity.Movement,
	actorID string,
	autoCreate bool,
	now time.Time,
) error {
	origin, err := resolveForUpdate(invRepo, m.Origin, m.CompanyID)
	if err != nil {
		return err
	}
	if origin == nil || !origin.IsActive() {
		return domain.ErrNotFound
	}
	// Stock vigente al momento de procesar, no al de crear el movimiento.
	if !origin.Counts.Covers(m.Quantities) {
		return domain.ErrInsufficientStock
	}

	destKey := m.Destination.Key
	if destKey.LoteID == "" {
		// El traslado no cambia de lote: el destino hereda el lote del origen.
		destKey.LoteID = origin.LoteID
	}
	dest, err := resolveForUpdateWithKey(invRepo, m.Destination.RecordID, destKey, m.CompanyID)
	if err != nil {
		return err
	}
	// Un destino referenciado por ID debe existir y estar activo: la auto-creación
	// solo aplica cuando el destino venía como llave natural.
	if m.Destination.RecordID != "" && (dest == nil || !dest.IsActive()) {
		return domain.ErrDestinationNotFound
	}

	originBefore := origin.Counts
	origin.Counts = origin.Counts.Sub(m.Quantities)
	origin.UpdatedBy = actorID
	origin.UpdatedAt = now
	if err := invRepo.Update(origin); err != nil {
		return err
	}

	var destBefore entity.Counts
	if dest == nil {
		if !autoCreate {
			return domain.ErrDestinationNotFound
		}
		dest = &entity.InventoryRecord{
			ID:        uuid.New().String(),
			CompanyID: m.CompanyID,
			LoteID:    destKey.LoteID,
			FarmID:    destKey.FarmID,
			NucleusID: destKey.NucleusID,
			ShedID:    destKey.ShedID,
			Counts:    m.Quantities,
			Status:    entity.RecordStatusActive,
			CreatedBy: actorID,
			UpdatedBy: actorID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := invRepo.Create(dest); err != nil {
			return err
		}
	} else {
		destBefore = dest.Counts
		dest.Counts = dest.Counts.Add(m.Quantities)
		dest.UpdatedBy = actorID
		dest.UpdatedAt = now
		if err := invRepo.Update(dest); err != nil {
			return err
		}
	}

	if err := appendHistory(histRepo, m, origin.ID, entity.ChangeTypeTRANSFER, originBefore, origin.Counts, actorID, now); err != nil {
		return err
	}
	return appendHistory(histRepo, m, dest.ID, entity.ChangeTypeTRANSFER, destBefore, dest.Counts, actorID, now)
}

// applyAdjustment aplica el ajuste sobre exactamente un registro. CORRECTION fija
// valores absolutos; ENTRY/EXIT aplican delta con signo.
func (uc *UseCase) applyAdjustment(
	invRepo repository.InventoryRecordRepository,
	histRepo repository.HistoryRepository,
	m *entity.Movement,
	actorID string,
	now time.Time,
) error {
	target, err := resolveForUpdate(invRepo, m.Destination, m.CompanyID)
	if err != nil {
		return err
	}
	if target == nil || !target.IsActive() {
		return domain.ErrNotFound
	}

	before := target.Counts
	var after entity.Counts
	changeType := entity.ChangeTypeADJUSTMENT
	switch m.AdjustmentKind {
	case entity.AdjustmentKindCORRECTION:
		after = m.Quantities
	case entity.AdjustmentKindENTRY:
		after = before.Add(m.Quantities)
		changeType = entity.ChangeTypeENTRY
	case entity.AdjustmentKindEXIT:
		if !before.Covers(m.Quantities) {
			return domain.ErrInsufficientStock
		}
		after = before.Sub(m.Quantities)
		changeType = entity.ChangeTypeEXIT
	default:
		return domain.ErrInvalidMovementRequest
	}
	if after.HasNegative() {
		return domain.ErrNegativeStock
	}

	target.Counts = after
	target.UpdatedBy = actorID
	target.UpdatedAt = now
	if err := invRepo.Update(target); err != nil {
		return err
	}
	return appendHistory(histRepo, m, target.ID, changeType, before, after, actorID, now)
}

// applyLiquidation deja el registro en cero y lo marca INACTIVE.
func (uc *UseCase) applyLiquidation(
	invRepo repository.InventoryRecordRepository,
	histRepo repository.HistoryRepository,
	m *entity.Movement,
	actorID string,
	now time.Time,
) error {
	target, err := resolveForUpdate(invRepo, m.Destination, m.CompanyID)
	if err != nil {
		return err
	}
	if target == nil || !target.IsActive() {
		return domain.ErrNotFound
	}

	before := target.Counts
	target.Counts = entity.Counts{}
	target.Status = entity.RecordStatusInactive
	target.UpdatedBy = actorID
	target.UpdatedAt = now
	if err := invRepo.Update(target); err != nil {
		return err
	}
	return appendHistory(histRepo, m, target.ID, entity.ChangeTypeLIQUIDATION, before, target.Counts, actorID, now)
}

// resolveForUpdate resuelve un extremo y bloquea la fila. El ID del registro manda
// cuando está presente; la llave natural es solo ruta de resolución en su ausencia.
func resolveForUpdate(invRepo repository.InventoryRecordRepository, e entity.MovementEndpoint, companyID string) (*entity.InventoryRecord, error) {
	if e.RecordID != "" {
		return invRepo.GetByIDForUpdate(e.RecordID, companyID)
	}
	return invRepo.GetActiveByKeyForUpdate(e.Key, companyID)
}

func resolveForUpdateWithKey(invRepo repository.InventoryRecordRepository, recordID string, key entity.LocationKey, companyID string) (*entity.InventoryRecord, error) {
	if recordID != "" {
		return invRepo.GetByIDForUpdate(recordID, companyID)
	}
	return invRepo.GetActiveByKeyForUpdate(key, companyID)
}

func appendHistory(histRepo repository.HistoryRepository, m *entity.Movement, recordID, changeType string, before, after entity.Counts, actorID string, now time.Time) error {
	return histRepo.Append(&entity.HistoryEntry{
		ID:                uuid.New().String(),
		CompanyID:         m.CompanyID,
		InventoryRecordID: recordID,
		MovementID:        m.ID,
		ChangeType:        changeType,
		Before:            before,
		After:             after,
		ActorID:           actorID,
		Notes:             m.Reason,
		CreatedAt:         now,
	})
}
