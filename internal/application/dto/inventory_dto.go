package dto

import (
	"time"

	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// CreateRecordRequest body para POST /api/inventory (primera colocación de aves).
type CreateRecordRequest struct {
	LoteID    string    `json:"lote_id"`
	FarmID    string    `json:"farm_id"`
	NucleusID string    `json:"nucleus_id,omitempty"`
	ShedID    string    `json:"shed_id,omitempty"`
	Counts    CountsDTO `json:"counts"`
	Notes     string    `json:"notes,omitempty"`
}

// InventoryRecordResponse representación HTTP de un registro de inventario.
type InventoryRecordResponse struct {
	ID        string    `json:"id"`
	LoteID    string    `json:"lote_id"`
	FarmID    string    `json:"farm_id"`
	NucleusID string    `json:"nucleus_id,omitempty"`
	ShedID    string    `json:"shed_id,omitempty"`
	Counts    CountsDTO `json:"counts"`
	Total     int       `json:"total"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInventoryRecordResponse mapea la entidad a su representación HTTP.
func NewInventoryRecordResponse(r *entity.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		ID:        r.ID,
		LoteID:    r.LoteID,
		FarmID:    r.FarmID,
		NucleusID: r.NucleusID,
		ShedID:    r.ShedID,
		Counts:    CountsDTO(r.Counts),
		Total:     r.Counts.Total(),
		Status:    r.Status,
		Notes:     r.Notes,
		UpdatedAt: r.UpdatedAt,
	}
}

// HistoryEntryResponse una entrada del historial/trazabilidad.
type HistoryEntryResponse struct {
	ID                string    `json:"id"`
	InventoryRecordID string    `json:"inventory_record_id"`
	MovementID        string    `json:"movement_id,omitempty"`
	ChangeType        string    `json:"change_type"`
	Before            CountsDTO `json:"before"`
	After             CountsDTO `json:"after"`
	ActorID           string    `json:"actor_id"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewHistoryEntryResponse mapea la entidad a su representación HTTP.
func NewHistoryEntryResponse(e *entity.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:                e.ID,
		InventoryRecordID: e.InventoryRecordID,
		MovementID:        e.MovementID,
		ChangeType:        e.ChangeType,
		Before:            CountsDTO(e.Before),
		After:             CountsDTO(e.After),
		ActorID:           e.ActorID,
		Notes:             e.Notes,
		CreatedAt:         e.CreatedAt,
	}
}

// LoteSnapshotResponse foto viva del lote: ubicaciones activas y total agregado.
type LoteSnapshotResponse struct {
	LoteID    string                    `json:"lote_id"`
	Locations []InventoryRecordResponse `json:"locations"`
	Total     CountsDTO                 `json:"total"`
	TotalAves int                       `json:"total_aves"`
}
