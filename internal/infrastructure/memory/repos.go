package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/avicola-api/internal/domain"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)
var _ repository.MovementRepository = (*MovementRepo)(nil)
var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// InventoryRecordRepo adaptador en memoria de InventoryRecordRepository.
// locked=true cuando el repo vive dentro de una transacción (el TxRunner ya tiene el lock).
type InventoryRecordRepo struct {
	store  *Store
	locked bool
}

// NewInventoryRecordRepository construye el adaptador atado al store (fuera de tx).
func NewInventoryRecordRepository(store *Store) *InventoryRecordRepo {
	return &InventoryRecordRepo{store: store}
}

func (r *InventoryRecordRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *InventoryRecordRepo) GetByID(id, companyID string) (*entity.InventoryRecord, error) {
	defer r.lock()()
	rec, ok := r.store.records[id]
	if !ok || rec.CompanyID != companyID {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (r *InventoryRecordRepo) GetActiveByKey(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error) {
	defer r.lock()()
	return r.findActiveByKey(key, companyID), nil
}

func (r *InventoryRecordRepo) GetByIDForUpdate(id, companyID string) (*entity.InventoryRecord, error) {
	// En memoria el lock de fila lo suple la serialización de transacciones.
	return r.GetByID(id, companyID)
}

func (r *InventoryRecordRepo) GetActiveByKeyForUpdate(key entity.LocationKey, companyID string) (*entity.InventoryRecord, error) {
	return r.GetActiveByKey(key, companyID)
}

func (r *InventoryRecordRepo) findActiveByKey(key entity.LocationKey, companyID string) *entity.InventoryRecord {
	for _, rec := range r.store.records {
		if rec.CompanyID == companyID && rec.Status == entity.RecordStatusActive && rec.Key().Equals(key) {
			cp := rec
			return &cp
		}
	}
	return nil
}

func (r *InventoryRecordRepo) ListActiveByLote(loteID, companyID string) ([]*entity.InventoryRecord, error) {
	defer r.lock()()
	var out []*entity.InventoryRecord
	for _, rec := range r.store.records {
		if rec.CompanyID == companyID && rec.LoteID == loteID && rec.Status == entity.RecordStatusActive {
			cp := rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InventoryRecordRepo) Create(rec *entity.InventoryRecord) error {
	defer r.lock()()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Status == entity.RecordStatusActive && r.findActiveByKey(rec.Key(), rec.CompanyID) != nil {
		return domain.ErrDuplicateActiveRecord
	}
	rec.Version = 1
	r.store.records[rec.ID] = *rec
	return nil
}

func (r *InventoryRecordRepo) Update(rec *entity.InventoryRecord) error {
	defer r.lock()()
	current, ok := r.store.records[rec.ID]
	if !ok || current.CompanyID != rec.CompanyID {
		return domain.ErrNotFound
	}
	if current.Version != rec.Version {
		return domain.ErrConcurrentModification
	}
	rec.Version++
	r.store.records[rec.ID] = *rec
	return nil
}

// MovementRepo adaptador en memoria de MovementRepository.
type MovementRepo struct {
	store  *Store
	locked bool
}

// NewMovementRepository construye el adaptador atado al store (fuera de tx).
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

func (r *MovementRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *MovementRepo) Create(m *entity.Movement) error {
	defer r.lock()()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.store.nextNumber++
	m.Number = r.store.nextNumber
	r.store.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) GetByID(id, companyID string) (*entity.Movement, error) {
	defer r.lock()()
	m, ok := r.store.movements[id]
	if !ok || m.CompanyID != companyID {
		return nil, nil
	}
	cp := m
	return &cp, nil
}

func (r *MovementRepo) MarkProcessed(id, companyID, actorID string, at time.Time) (bool, error) {
	defer r.lock()()
	m, ok := r.store.movements[id]
	if !ok || m.CompanyID != companyID || m.Status != entity.MovementStatusPENDING {
		return false, nil
	}
	m.Status = entity.MovementStatusPROCESSED
	m.ProcessedBy = actorID
	m.ProcessedAt = &at
	r.store.movements[id] = m
	return true, nil
}

func (r *MovementRepo) MarkCancelled(id, companyID, actorID, reason string, at time.Time) (bool, error) {
	defer r.lock()()
	m, ok := r.store.movements[id]
	if !ok || m.CompanyID != companyID || m.Status != entity.MovementStatusPENDING {
		return false, nil
	}
	m.Status = entity.MovementStatusCANCELLED
	m.CancelledBy = actorID
	m.CancelledAt = &at
	if reason != "" {
		m.Reason = reason
	}
	r.store.movements[id] = m
	return true, nil
}

func (r *MovementRepo) ListByLote(loteID, companyID string, limit, offset int) ([]*entity.Movement, error) {
	defer r.lock()()
	recordLote := func(recordID string) string {
		if rec, ok := r.store.records[recordID]; ok {
			return rec.LoteID
		}
		return ""
	}
	belongs := func(e entity.MovementEndpoint) bool {
		if e.RecordID != "" {
			return recordLote(e.RecordID) == loteID
		}
		return e.Key.LoteID == loteID
	}
	var all []*entity.Movement
	for _, m := range r.store.movements {
		if m.CompanyID != companyID {
			continue
		}
		if belongs(m.Origin) || belongs(m.Destination) {
			cp := m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// HistoryRepo adaptador en memoria de HistoryRepository.
type HistoryRepo struct {
	store  *Store
	locked bool
}

// NewHistoryRepository construye el adaptador atado al store (fuera de tx).
func NewHistoryRepository(store *Store) *HistoryRepo {
	return &HistoryRepo{store: store}
}

func (r *HistoryRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *HistoryRepo) Append(e *entity.HistoryEntry) error {
	defer r.lock()()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.store.history = append(r.store.history, *e)
	return nil
}

func (r *HistoryRepo) ListByRecord(recordID, companyID string) ([]*entity.HistoryEntry, error) {
	defer r.lock()()
	var out []*entity.HistoryEntry
	for i := range r.store.history {
		e := r.store.history[i]
		if e.CompanyID == companyID && e.InventoryRecordID == recordID {
			cp := e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *HistoryRepo) ListByLote(loteID, companyID string) ([]*entity.HistoryEntry, error) {
	defer r.lock()()
	// El historial cruza todos los registros que el lote haya tenido, activos o no.
	recordIDs := make(map[string]bool)
	for id, rec := range r.store.records {
		if rec.CompanyID == companyID && rec.LoteID == loteID {
			recordIDs[id] = true
		}
	}
	var out []*entity.HistoryEntry
	for i := range r.store.history {
		e := r.store.history[i]
		if e.CompanyID == companyID && recordIDs[e.InventoryRecordID] {
			cp := e
			out = append(out, &cp)
		}
	}
	// El orden de inserción ya es cronológico; se conserva estable.
	return out, nil
}
