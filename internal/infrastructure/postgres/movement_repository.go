package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, number, company_id, type, adjustment_kind, status,
	origin_record_id, origin_lote_id, origin_farm_id, origin_nucleus_id, origin_shed_id,
	dest_record_id, dest_lote_id, dest_farm_id, dest_nucleus_id, dest_shed_id,
	female_qty, male_qty, mixed_qty, reason, notes,
	created_by, processed_by, cancelled_by, date, created_at, processed_at, cancelled_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Number, &m.CompanyID, &m.Type, &m.AdjustmentKind, &m.Status,
		&m.Origin.RecordID, &m.Origin.Key.LoteID, &m.Origin.Key.FarmID, &m.Origin.Key.NucleusID, &m.Origin.Key.ShedID,
		&m.Destination.RecordID, &m.Destination.Key.LoteID, &m.Destination.Key.FarmID, &m.Destination.Key.NucleusID, &m.Destination.Key.ShedID,
		&m.Quantities.Female, &m.Quantities.Male, &m.Quantities.Mixed, &m.Reason, &m.Notes,
		&m.CreatedBy, &m.ProcessedBy, &m.CancelledBy, &m.Date, &m.CreatedAt, &m.ProcessedAt, &m.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	return &m, nil
}

// Create persiste un movimiento PENDING; el folio sale de la secuencia movement_number_seq.
func (r *MovementRepo) Create(m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, number, company_id, type, adjustment_kind, status,
			origin_record_id, origin_lote_id, origin_farm_id, origin_nucleus_id, origin_shed_id,
			dest_record_id, dest_lote_id, dest_farm_id, dest_nucleus_id, dest_shed_id,
			female_qty, male_qty, mixed_qty, reason, notes,
			created_by, date, created_at)
		VALUES ($1, nextval('movement_number_seq'), $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23)
		RETURNING number`
	err := r.q.QueryRow(context.Background(), query,
		m.ID, m.CompanyID, m.Type, m.AdjustmentKind, m.Status,
		m.Origin.RecordID, m.Origin.Key.LoteID, m.Origin.Key.FarmID, m.Origin.Key.NucleusID, m.Origin.Key.ShedID,
		m.Destination.RecordID, m.Destination.Key.LoteID, m.Destination.Key.FarmID, m.Destination.Key.NucleusID, m.Destination.Key.ShedID,
		m.Quantities.Female, m.Quantities.Male, m.Quantities.Mixed, m.Reason, m.Notes,
		m.CreatedBy, m.Date, m.CreatedAt,
	).Scan(&m.Number)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento acotado por empresa.
func (r *MovementRepo) GetByID(id, companyID string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements WHERE id = $1 AND company_id = $2`
	return scanMovement(r.q.QueryRow(context.Background(), query, id, companyID))
}

// MarkProcessed transiciona PENDING -> PROCESSED con update condicional: dos llamadas
// concurrentes sobre el mismo movimiento producen exactamente un true.
func (r *MovementRepo) MarkProcessed(id, companyID, actorID string, at time.Time) (bool, error) {
	query := `
		UPDATE movements
		SET status = 'PROCESSED', processed_by = $1, processed_at = $2
		WHERE id = $3 AND company_id = $4 AND status = 'PENDING'`
	tag, err := r.q.Exec(context.Background(), query, actorID, at, id, companyID)
	if err != nil {
		return false, fmt.Errorf("mark movement processed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCancelled transiciona PENDING -> CANCELLED con update condicional.
func (r *MovementRepo) MarkCancelled(id, companyID, actorID, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE movements
		SET status = 'CANCELLED', cancelled_by = $1, cancelled_at = $2,
		    reason = CASE WHEN $3 <> '' THEN $3 ELSE reason END
		WHERE id = $4 AND company_id = $5 AND status = 'PENDING'`
	tag, err := r.q.Exec(context.Background(), query, actorID, at, reason, id, companyID)
	if err != nil {
		return false, fmt.Errorf("mark movement cancelled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByLote lista movimientos cuyo origen o destino refiere al lote, por ID de
// registro o por llave natural, más recientes primero.
func (r *MovementRepo) ListByLote(loteID, companyID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements m
		WHERE m.company_id = $1 AND (
			m.origin_lote_id = $2 OR m.dest_lote_id = $2
			OR m.origin_record_id IN (SELECT id FROM inventory_records WHERE lote_id = $2 AND company_id = $1)
			OR m.dest_record_id   IN (SELECT id FROM inventory_records WHERE lote_id = $2 AND company_id = $1)
		)
		ORDER BY m.created_at DESC, m.number DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, loteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by lote: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
