package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// CreateRecordInput entrada para crear un registro de inventario (primera colocación
// de aves en una ubicación).
type CreateRecordInput struct {
	LoteID    string
	FarmID    string
	NucleusID string
	ShedID    string
	Counts    entity.Counts
	Notes     string
}

// CreateRecord crea el registro y, si trae aves iniciales, la entrada de historial
// ENTRY correspondiente, en una sola transacción. Falla con ErrDuplicateActiveRecord
// si ya hay un registro activo con esa llave natural.
func (uc *UseCase) CreateRecord(ctx context.Context, companyID, actorID string, in CreateRecordInput) (*entity.InventoryRecord, error) {
	if companyID == "" || actorID == "" || in.LoteID == "" || in.FarmID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Counts.HasNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	rec := &entity.InventoryRecord{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		LoteID:    in.LoteID,
		FarmID:    in.FarmID,
		NucleusID: in.NucleusID,
		ShedID:    in.ShedID,
		Counts:    in.Counts,
		Status:    entity.RecordStatusActive,
		Notes:     in.Notes,
		CreatedBy: actorID,
		UpdatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		invRepo repository.InventoryRecordRepository,
		histRepo repository.HistoryRepository,
	) error {
		if err := invRepo.Create(rec); err != nil {
			return err
		}
		if rec.Counts.IsZero() {
			return nil
		}
		return histRepo.Append(&entity.HistoryEntry{
			ID:                uuid.New().String(),
			CompanyID:         companyID,
			InventoryRecordID: rec.ID,
			ChangeType:        entity.ChangeTypeENTRY,
			Before:            entity.Counts{},
			After:             rec.Counts,
			ActorID:           actorID,
			Notes:             in.Notes,
			CreatedAt:         now,
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CloseRecord marca el registro como INACTIVE (tombstone, nunca se borra físicamente).
// Falla con ErrNonZeroStock si aún quedan aves; cerrar con existencias exige antes un
// traslado o una liquidación.
func (uc *UseCase) CloseRecord(ctx context.Context, companyID, actorID, recordID string) error {
	return uc.runWithConflictRetry(ctx, func(
		_ repository.MovementRepository,
		invRepo repository.InventoryRecordRepository,
		_ repository.HistoryRepository,
	) error {
		rec, err := invRepo.GetByIDForUpdate(recordID, companyID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if !rec.IsActive() {
			// Ya cerrado: no-op.
			return nil
		}
		if !rec.Counts.IsZero() {
			return domain.ErrNonZeroStock
		}
		rec.Status = entity.RecordStatusInactive
		rec.UpdatedBy = actorID
		rec.UpdatedAt = time.Now()
		return invRepo.Update(rec)
	})
}

// GetRecord devuelve un registro por ID dentro de la empresa.
func (uc *UseCase) GetRecord(ctx context.Context, companyID, recordID string) (*entity.InventoryRecord, error) {
	rec, err := uc.invRepo.GetByID(recordID, companyID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// GetRecordByKey devuelve el registro activo con esa llave natural.
func (uc *UseCase) GetRecordByKey(ctx context.Context, companyID string, key entity.LocationKey) (*entity.InventoryRecord, error) {
	rec, err := uc.invRepo.GetActiveByKey(key, companyID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
