package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo implementación de InventoryRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const inventoryRecordColumns = `
	id, company_id, lote_id, farm_id, nucleus_id, shed_id,
	female_count, male_count, mixed_count, status, version, notes,
	created_by, updated_by, created_at, updated_at`

func scanInventoryRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var r entity.InventoryRecord
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.LoteID, &r.FarmID, &r.NucleusID, &r.ShedID,
		&r.Counts.Female, &r.Counts.Male, &r.Counts.Mixed, &r.Status, &r.Version, &r.Notes,
		&r.CreatedBy, &r.UpdatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan inventory record: %w", err)
	}
	return &r, nil
}

// GetByID obtiene el registro (activo o no) acotado por empresa.
func (r *InventoryRecordRepo) GetByID(id, companyID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryRecordColumns + `
		FROM inventory_records WHERE id = $1 AND company_id = $2`
	return scanInventoryRecord(r.q.QueryRow(context.Background(), query, id, companyID))
}

// GetActiveByKey obtiene el registro ACTIVO con esa llave natural, o nil.
func (r *InventoryRecordRepo) GetActiveByKey(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryRecordColumns + `
		FROM inventory_records
		WHERE company_id = $1 AND lote_id = $2 AND farm_id = $3 AND nucleus_id = $4 AND shed_id = $5
		  AND status = 'ACTIVE'`
	return scanInventoryRecord(r.q.QueryRow(context.Background(), query,
		companyID, key.LoteID, key.FarmID, key.NucleusID, key.ShedID))
}

// GetByIDForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRecordRepo) GetByIDForUpdate(id, companyID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryRecordColumns + `
		FROM inventory_records WHERE id = $1 AND company_id = $2
		FOR UPDATE`
	return scanInventoryRecord(r.q.QueryRow(context.Background(), query, id, companyID))
}

// GetActiveByKeyForUpdate obtiene el registro activo por llave natural y bloquea la fila.
func (r *InventoryRecordRepo) GetActiveByKeyForUpdate(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryRecordColumns + `
		FROM inventory_records
		WHERE company_id = $1 AND lote_id = $2 AND farm_id = $3 AND nucleus_id = $4 AND shed_id = $5
		  AND status = 'ACTIVE'
		FOR UPDATE`
	return scanInventoryRecord(r.q.QueryRow(context.Background(), query,
		companyID, key.LoteID, key.FarmID, key.NucleusID, key.ShedID))
}

// ListActiveByLote lista los registros activos de un lote.
func (r *InventoryRecordRepo) ListActiveByLote(loteID, companyID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryRecordColumns + `
		FROM inventory_records
		WHERE company_id = $1 AND lote_id = $2 AND status = 'ACTIVE'
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, companyID, loteID)
	if err != nil {
		return nil, fmt.Errorf("list active by lote: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanInventoryRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Create inserta un registro nuevo con versión 1. El índice único parcial sobre filas
// activas convierte el duplicado en ErrDuplicateActiveRecord.
func (r *InventoryRecordRepo) Create(rec *entity.InventoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Version = 1
	query := `
		INSERT INTO inventory_records (id, company_id, lote_id, farm_id, nucleus_id, shed_id,
			female_count, male_count, mixed_count, status, version, notes,
			created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.CompanyID, rec.LoteID, rec.FarmID, rec.NucleusID, rec.ShedID,
		rec.Counts.Female, rec.Counts.Male, rec.Counts.Mixed, rec.Status, rec.Version, rec.Notes,
		rec.CreatedBy, rec.UpdatedBy, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateActiveRecord
		}
		return fmt.Errorf("create inventory record: %w", err)
	}
	return nil
}

// Update persiste cantidades/estado/notas con compare-and-swap sobre version.
// Cero filas afectadas significa que la fila cambió entre lectura y escritura.
func (r *InventoryRecordRepo) Update(rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records
		SET female_count = $1, male_count = $2, mixed_count = $3, status = $4, notes = $5,
		    version = version + 1, updated_by = $6, updated_at = $7
		WHERE id = $8 AND company_id = $9 AND version = $10`
	tag, err := r.q.Exec(context.Background(), query,
		rec.Counts.Female, rec.Counts.Male, rec.Counts.Mixed, rec.Status, rec.Notes,
		rec.UpdatedBy, rec.UpdatedAt, rec.ID, rec.CompanyID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	rec.Version++
	return nil
}
