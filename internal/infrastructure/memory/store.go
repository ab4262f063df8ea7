// Package memory implementa los puertos de persistencia sobre estructuras en memoria.
// Se usa en tests del motor de movimientos y para correr la API sin PostgreSQL
// (APP_STORAGE=memory). Las "transacciones" se serializan con un mutex y el rollback
// restaura una copia del estado, de modo que la atomicidad observable es la misma que
// la de la implementación PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/avicola-api/internal/domain/entity"
	"github.com/jhoicas/avicola-api/internal/domain/repository"
)

// Store es el estado compartido: entidades por valor para que snapshot/restore
// sean copias seguras.
type Store struct {
	mu         sync.Mutex
	records    map[string]entity.InventoryRecord
	movements  map[string]entity.Movement
	history    []entity.HistoryEntry
	nextNumber int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		records:   make(map[string]entity.InventoryRecord),
		movements: make(map[string]entity.Movement),
	}
}

// snapshot copia el estado completo para poder restaurarlo en rollback.
func (s *Store) snapshot() storeState {
	st := storeState{
		records:    make(map[string]entity.InventoryRecord, len(s.records)),
		movements:  make(map[string]entity.Movement, len(s.movements)),
		history:    make([]entity.HistoryEntry, len(s.history)),
		nextNumber: s.nextNumber,
	}
	for k, v := range s.records {
		st.records[k] = v
	}
	for k, v := range s.movements {
		st.movements[k] = v
	}
	copy(st.history, s.history)
	return st
}

func (s *Store) restore(st storeState) {
	s.records = st.records
	s.movements = st.movements
	s.history = st.history
	s.nextNumber = st.nextNumber
}

type storeState struct {
	records    map[string]entity.InventoryRecord
	movements  map[string]entity.Movement
	history    []entity.HistoryEntry
	nextNumber int64
}

// TxRunner serializa las transacciones sobre el store y restaura el estado previo
// si el callback falla: nada parcial queda visible jamás.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn bajo el lock del store con repos atados a él; rollback restaurando
// el snapshot si fn retorna error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRecordRepository,
	histRepo repository.HistoryRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	before := r.store.snapshot()
	err := fn(
		&MovementRepo{store: r.store, locked: true},
		&InventoryRecordRepo{store: r.store, locked: true},
		&HistoryRepo{store: r.store, locked: true},
	)
	if err != nil {
		r.store.restore(before)
		return err
	}
	return nil
}
