package dto

import (
	"time"

	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// EndpointDTO identifica un extremo de movimiento: por ID de registro de inventario,
// o por llave natural (lote + granja [+ núcleo + galpón]). El ID manda si vienen ambos.
type EndpointDTO struct {
	RecordID  string `json:"record_id,omitempty"`
	LoteID    string `json:"lote_id,omitempty"`
	FarmID    string `json:"farm_id,omitempty"`
	NucleusID string `json:"nucleus_id,omitempty"`
	ShedID    string `json:"shed_id,omitempty"`
}

// CreateMovementRequest body para POST /api/movements.
// TRANSFER exige origin y destination; ADJUSTMENT exige destination y adjustment_kind
// (CORRECTION | ENTRY | EXIT); LIQUIDATION exige solo destination.
type CreateMovementRequest struct {
	Type           string       `json:"type"`
	AdjustmentKind string       `json:"adjustment_kind,omitempty"`
	Origin         *EndpointDTO `json:"origin,omitempty"`
	Destination    *EndpointDTO `json:"destination,omitempty"`
	Quantities     CountsDTO    `json:"quantities"`
	Reason         string       `json:"reason,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// ProcessMovementRequest body para POST /api/movements/:id/process.
type ProcessMovementRequest struct {
	// AutoCreateDestination nil = true (comportamiento por defecto).
	AutoCreateDestination *bool `json:"auto_create_destination,omitempty"`
}

// CancelMovementRequest body para POST /api/movements/:id/cancel.
type CancelMovementRequest struct {
	Reason string `json:"reason,omitempty"`
}

// QuickTransferRequest body para POST /api/movements/quick-transfer: el caso dominante
// "mover todo el lote de A a B" en un solo viaje.
type QuickTransferRequest struct {
	LoteID      string       `json:"lote_id"`
	Origin      *EndpointDTO `json:"origin,omitempty"`
	Destination EndpointDTO  `json:"destination"`
	// Quantities nil = todo lo disponible en el origen.
	Quantities *CountsDTO `json:"quantities,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	// ProcessImmediately nil = true.
	ProcessImmediately *bool `json:"process_immediately,omitempty"`
}

// MovementResponse representación HTTP de un movimiento.
type MovementResponse struct {
	ID             string       `json:"id"`
	Number         int64        `json:"number"`
	Type           string       `json:"type"`
	AdjustmentKind string       `json:"adjustment_kind,omitempty"`
	Status         string       `json:"status"`
	Origin         *EndpointDTO `json:"origin,omitempty"`
	Destination    *EndpointDTO `json:"destination,omitempty"`
	Quantities     CountsDTO    `json:"quantities"`
	Reason         string       `json:"reason,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	CreatedBy      string       `json:"created_by"`
	ProcessedBy    string       `json:"processed_by,omitempty"`
	CancelledBy    string       `json:"cancelled_by,omitempty"`
	Date           time.Time    `json:"date"`
	CreatedAt      time.Time    `json:"created_at"`
	ProcessedAt    *time.Time   `json:"processed_at,omitempty"`
	CancelledAt    *time.Time   `json:"cancelled_at,omitempty"`
}

// NewMovementResponse mapea la entidad a su representación HTTP.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		Number:         m.Number,
		Type:           m.Type,
		AdjustmentKind: m.AdjustmentKind,
		Status:         m.Status,
		Origin:         newEndpointDTO(m.Origin),
		Destination:    newEndpointDTO(m.Destination),
		Quantities:     CountsDTO(m.Quantities),
		Reason:         m.Reason,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		ProcessedBy:    m.ProcessedBy,
		CancelledBy:    m.CancelledBy,
		Date:           m.Date,
		CreatedAt:      m.CreatedAt,
		ProcessedAt:    m.ProcessedAt,
		CancelledAt:    m.CancelledAt,
	}
}

func newEndpointDTO(e entity.MovementEndpoint) *EndpointDTO {
	if e.IsEmpty() {
		return nil
	}
	return &EndpointDTO{
		RecordID:  e.RecordID,
		LoteID:    e.Key.LoteID,
		FarmID:    e.Key.FarmID,
		NucleusID: e.Key.NucleusID,
		ShedID:    e.Key.ShedID,
	}
}
