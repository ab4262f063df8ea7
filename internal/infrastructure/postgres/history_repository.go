package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo implementación de HistoryRepository sobre PostgreSQL (usable con pool o tx).
// La tabla history_entries es append-only: no hay UPDATE ni DELETE en este adaptador.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

const historyColumns = `
	id, company_id, inventory_record_id, movement_id, change_type,
	before_female, before_male, before_mixed, after_female, after_male, after_mixed,
	actor_id, notes, created_at`

// Append inserta una entrada de historial. Los errores de almacenamiento se propagan
// sin modificar; la transacción del caller decide el rollback.
func (r *HistoryRepo) Append(e *entity.HistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO history_entries (id, company_id, inventory_record_id, movement_id, change_type,
			before_female, before_male, before_mixed, after_female, after_male, after_mixed,
			actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.CompanyID, e.InventoryRecordID, e.MovementID, e.ChangeType,
		e.Before.Female, e.Before.Male, e.Before.Mixed, e.After.Female, e.After.Male, e.After.Mixed,
		e.ActorID, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// ListByRecord devuelve el historial de un registro, más antiguo primero.
func (r *HistoryRepo) ListByRecord(recordID, companyID string) ([]*entity.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + `
		FROM history_entries
		WHERE inventory_record_id = $1 AND company_id = $2
		ORDER BY created_at, id`
	return r.list(query, recordID, companyID)
}

// ListByLote devuelve el historial de todos los registros que el lote haya tenido,
// activos o no, más antiguo primero.
func (r *HistoryRepo) ListByLote(loteID, companyID string) ([]*entity.HistoryEntry, error) {
	query := `SELECT h.id, h.company_id, h.inventory_record_id, h.movement_id, h.change_type,
			h.before_female, h.before_male, h.before_mixed, h.after_female, h.after_male, h.after_mixed,
			h.actor_id, h.notes, h.created_at
		FROM history_entries h
		JOIN inventory_records r ON r.id = h.inventory_record_id
		WHERE r.lote_id = $1 AND h.company_id = $2
		ORDER BY h.created_at, h.id`
	return r.list(query, loteID, companyID)
}

func (r *HistoryRepo) list(query string, args ...any) ([]*entity.HistoryEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.InventoryRecordID, &e.MovementID, &e.ChangeType,
			&e.Before.Female, &e.Before.Male, &e.Before.Mixed, &e.After.Female, &e.After.Male, &e.After.Mixed,
			&e.ActorID, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
