package ledger

import (
	"context"

	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// QuickTransferInput entrada para QuickTransfer: el caso dominante "mover todo de A a B"
// en un solo viaje. Origin es opcional (se resuelve desde el lote); Quantities nil
// significa "todo lo disponible en el origen".
type QuickTransferInput struct {
	LoteID             string
	Origin             EndpointInput
	Destination        EndpointInput
	Quantities         *entity.Counts
	Reason             string
	ProcessImmediately bool
}

// QuickTransfer resuelve el origen del lote, arma el traslado y lo crea
// (+ lo procesa si ProcessImmediately). Si el lote tiene existencias repartidas en
// más de una ubicación activa y no se indicó origen, falla con ErrAmbiguousOrigin.
func (uc *UseCase) QuickTransfer(ctx context.Context, companyID, actorID string, in QuickTransferInput) (*entity.Movement, error) {
	if in.LoteID == "" {
		return nil, domain.ErrInvalidMovementRequest
	}

	origin := in.Origin
	if origin.RecordID == "" && origin.FarmID != "" && origin.LoteID == "" {
		origin.LoteID = in.LoteID
	}
	var originRec *entity.InventoryRecord
	if origin.RecordID == "" && origin.FarmID == "" {
		rec, err := uc.resolveSingleOrigin(in.LoteID, companyID)
		if err != nil {
			return nil, err
		}
		originRec = rec
		origin = EndpointInput{RecordID: rec.ID}
	} else if origin.RecordID != "" {
		rec, err := uc.invRepo.GetByID(origin.RecordID, companyID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, domain.ErrNotFound
		}
		originRec = rec
	}

	qty := entity.Counts{}
	if in.Quantities != nil {
		qty = *in.Quantities
	} else {
		// Todo lo disponible: foto al armar la solicitud. ProcessMovement re-valida
		// contra el stock vigente al procesar.
		if originRec == nil {
			rec, err := uc.invRepo.GetActiveByKey(origin.toEndpoint().Key, companyID)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, domain.ErrNotFound
			}
			originRec = rec
		}
		qty = originRec.Counts
	}

	dest := in.Destination
	if dest.RecordID == "" && dest.LoteID == "" {
		dest.LoteID = in.LoteID
	}

	m, err := uc.CreateMovement(ctx, companyID, actorID, MovementInput{
		Type:        entity.MovementTypeTRANSFER,
		Origin:      origin,
		Destination: dest,
		Quantities:  qty,
		Reason:      in.Reason,
	})
	if err != nil {
		return nil, err
	}
	if !in.ProcessImmediately {
		return m, nil
	}
	return uc.ProcessMovement(ctx, companyID, actorID, m.ID, true)
}

// resolveSingleOrigin devuelve la única ubicación activa con existencias del lote.
func (uc *UseCase) resolveSingleOrigin(loteID, companyID string) (*entity.InventoryRecord, error) {
	records, err := uc.invRepo.ListActiveByLote(loteID, companyID)
	if err != nil {
		return nil, err
	}
	var stocked []*entity.InventoryRecord
	for _, r := range records {
		if !r.Counts.IsZero() {
			stocked = append(stocked, r)
		}
	}
	switch len(stocked) {
	case 1:
		return stocked[0], nil
	case 0:
		if len(records) == 1 {
			// Única ubicación activa pero sin aves: dejar que el procesamiento
			// rechace con stock insuficiente en vez de inventar un origen.
			return records[0], nil
		}
		return nil, domain.ErrNotFound
	default:
		return nil, domain.ErrAmbiguousOrigin
	}
}
