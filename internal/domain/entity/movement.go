package entity

import (
	"time"

	"github.com/jhoicas/avicola-api/internal/domain"
)

// Tipos de movimiento de aves.
const (
	MovementTypeTRANSFER    = "TRANSFER"    // traslado entre ubicaciones
	MovementTypeADJUSTMENT  = "ADJUSTMENT"  // ajuste sobre una ubicación
	MovementTypeLIQUIDATION = "LIQUIDATION" // liquidación: deja la ubicación en cero y la inactiva
)

// Sub-tipos de ajuste. CORRECTION fija cantidades absolutas; ENTRY/EXIT aplican delta.
const (
	AdjustmentKindCORRECTION = "CORRECTION"
	AdjustmentKindENTRY      = "ENTRY"
	AdjustmentKindEXIT       = "EXIT"
)

// Estados del ciclo de vida de un movimiento. PROCESSED y CANCELLED son terminales.
const (
	MovementStatusPENDING   = "PENDING"
	MovementStatusPROCESSED = "PROCESSED"
	MovementStatusCANCELLED = "CANCELLED"
)

// MovementEndpoint identifica un extremo del movimiento: el ID del registro de inventario
// cuando se conoce, o la llave natural como ruta de resolución cuando no.
// Si ambos están presentes, el ID manda.
type MovementEndpoint struct {
	RecordID string
	Key      LocationKey
}

// IsEmpty indica si el extremo no referencia nada.
func (e MovementEndpoint) IsEmpty() bool {
	return e.RecordID == "" && e.Key == (LocationKey{})
}

// Movement representa la intención registrada de cambiar cantidades de aves
// (traslado, ajuste o liquidación). Se crea en PENDING y transiciona exactamente
// una vez a PROCESSED o CANCELLED; después es inmutable.
type Movement struct {
	ID             string
	Number         int64 // folio consecutivo visible al usuario, asignado al crear
	CompanyID      string
	Type           string
	AdjustmentKind string // solo para ADJUSTMENT
	Status         string
	Origin         MovementEndpoint // traslados: origen
	Destination    MovementEndpoint // traslados: destino; ajuste/liquidación: objetivo
	Quantities     Counts
	Reason         string
	Notes          string
	CreatedBy      string
	ProcessedBy    string
	CancelledBy    string
	Date           time.Time
	CreatedAt      time.Time
	ProcessedAt    *time.Time
	CancelledAt    *time.Time
}

// IsPending indica si el movimiento sigue en estado PENDING.
func (m *Movement) IsPending() bool {
	return m.Status == MovementStatusPENDING
}

// NewTransfer construye un traslado en PENDING. Valida que origen y destino estén
// presentes y sean distintos, y que las cantidades sean no-negativas con al menos
// una positiva. No toca cantidades de inventario.
func NewTransfer(companyID, actorID string, origin, destination MovementEndpoint, qty Counts, reason string) (*Movement, error) {
	if companyID == "" || actorID == "" {
		return nil, domain.ErrInvalidMovementRequest
	}
	if origin.IsEmpty() || destination.IsEmpty() {
		return nil, domain.ErrInvalidMovementRequest
	}
	// Mismo registro o misma llave natural: traslado sin sentido.
	if origin.RecordID != "" && origin.RecordID == destination.RecordID {
		return nil, domain.ErrInvalidMovementRequest
	}
	if origin.RecordID == "" && destination.RecordID == "" && origin.Key.Equals(destination.Key) {
		return nil, domain.ErrInvalidMovementRequest
	}
	if err := validateQuantities(qty); err != nil {
		return nil, err
	}
	m := newPendingMovement(companyID, actorID, MovementTypeTRANSFER, qty, reason)
	m.Origin = origin
	m.Destination = destination
	return m, nil
}

// NewAdjustment construye un ajuste en PENDING sobre exactamente un registro.
// kind CORRECTION interpreta Quantities como valores absolutos; ENTRY/EXIT como delta.
func NewAdjustment(companyID, actorID, kind string, target MovementEndpoint, qty Counts, reason string) (*Movement, error) {
	if companyID == "" || actorID == "" || target.IsEmpty() {
		return nil, domain.ErrInvalidMovementRequest
	}
	switch kind {
	case AdjustmentKindCORRECTION:
		// Una corrección a cero es válida (recuento físico sin aves).
		if qty.HasNegative() {
			return nil, domain.ErrInvalidMovementRequest
		}
	case AdjustmentKindENTRY, AdjustmentKindEXIT:
		if err := validateQuantities(qty); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidMovementRequest
	}
	m := newPendingMovement(companyID, actorID, MovementTypeADJUSTMENT, qty, reason)
	m.AdjustmentKind = kind
	m.Destination = target
	return m, nil
}

// NewLiquidation construye una liquidación en PENDING: al procesarse deja el registro
// en cero y lo marca INACTIVE. No lleva cantidades propias.
func NewLiquidation(companyID, actorID string, target MovementEndpoint, reason string) (*Movement, error) {
	if companyID == "" || actorID == "" || target.IsEmpty() {
		return nil, domain.ErrInvalidMovementRequest
	}
	m := newPendingMovement(companyID, actorID, MovementTypeLIQUIDATION, Counts{}, reason)
	m.Destination = target
	return m, nil
}

func newPendingMovement(companyID, actorID, movType string, qty Counts, reason string) *Movement {
	now := time.Now()
	return &Movement{
		CompanyID:  companyID,
		Type:       movType,
		Status:     MovementStatusPENDING,
		Quantities: qty,
		Reason:     reason,
		CreatedBy:  actorID,
		Date:       now,
		CreatedAt:  now,
	}
}

func validateQuantities(qty Counts) error {
	if qty.HasNegative() || qty.IsZero() {
		return domain.ErrInvalidMovementRequest
	}
	return nil
}
