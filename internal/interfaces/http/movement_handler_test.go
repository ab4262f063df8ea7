package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/avicola-api/internal/application/dto"
	"github.com/jhoicas/avicola-api/internal/application/ledger"
	"github.com/jhoicas/avicola-api/internal/application/traceability"
	"github.com/jhoicas/avicola-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// App de test: router completo sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	invRepo := memory.NewInventoryRecordRepository(store)
	histRepo := memory.NewHistoryRepository(store)
	ledgerUC := ledger.New(memory.NewTxRunner(store), memory.NewMovementRepository(store), invRepo, histRepo)

	app := fiber.New()
	Router(app, RouterDeps{
		LedgerUC:       ledgerUC,
		TraceabilityUC: traceability.New(histRepo, invRepo),
		JWTSecret:      testSecret,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "u1", "c1", role))
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createRecordHTTP(t *testing.T, app *fiber.App, loteID, farmID, shedID string, counts dto.CountsDTO) dto.InventoryRecordResponse {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/inventory/", "admin", dto.CreateRecordRequest{
		LoteID: loteID, FarmID: farmID, ShedID: shedID, Counts: counts,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var rec dto.InventoryRecordResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	return rec
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo y mapeo de errores a HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_FlujoCompletoHTTP(t *testing.T) {
	app := buildTestApp(t)

	origin := createRecordHTTP(t, app, "lote-1", "granja-a", "galpon-1", dto.CountsDTO{Female: 100, Male: 10})

	// Crear traslado PENDING
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/movements/", "galponero", dto.CreateMovementRequest{
		Type:        "TRANSFER",
		Origin:      &dto.EndpointDTO{RecordID: origin.ID},
		Destination: &dto.EndpointDTO{FarmID: "granja-b", ShedID: "galpon-5"},
		Quantities:  dto.CountsDTO{Female: 40},
		Reason:      "traslado a producción",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "PENDING", m.Status)
	assert.Positive(t, m.Number)

	// Procesar
	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/movements/"+m.ID+"/process", "galponero", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "PROCESSED", m.Status)

	// Re-procesar -> 409
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/movements/"+m.ID+"/process", "galponero", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Trazabilidad del lote
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/lotes/lote-1/locations", "tecnico", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var snap dto.LoteSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Len(t, snap.Locations, 2)
	assert.Equal(t, 110, snap.TotalAves)

	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/lotes/lote-1/timeline", "tecnico", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/lotes/lote-1/movements", "tecnico", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMovements_StockInsuficienteEs409(t *testing.T) {
	app := buildTestApp(t)
	origin := createRecordHTTP(t, app, "lote-1", "granja-a", "galpon-1", dto.CountsDTO{Female: 5})

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/movements/", "admin", dto.CreateMovementRequest{
		Type:        "TRANSFER",
		Origin:      &dto.EndpointDTO{RecordID: origin.ID},
		Destination: &dto.EndpointDTO{FarmID: "granja-b"},
		Quantities:  dto.CountsDTO{Female: 50},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/movements/"+m.ID+"/process", "admin", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
}

func TestMovements_TipoInvalidoEs400(t *testing.T) {
	app := buildTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/movements/", "admin", dto.CreateMovementRequest{
		Type: "TELEPORT",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMovements_NoEncontradoEs404(t *testing.T) {
	app := buildTestApp(t)
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/movements/no-existe", "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMovements_RolSinPermisoEs403(t *testing.T) {
	app := buildTestApp(t)
	origin := createRecordHTTP(t, app, "lote-1", "granja-a", "galpon-1", dto.CountsDTO{Female: 10})

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/movements/", "tecnico", dto.CreateMovementRequest{
		Type:        "TRANSFER",
		Origin:      &dto.EndpointDTO{RecordID: origin.ID},
		Destination: &dto.EndpointDTO{FarmID: "granja-b"},
		Quantities:  dto.CountsDTO{Female: 5},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))

	// Un técnico puede crear pero no procesar
	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/movements/"+m.ID+"/process", "tecnico", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Ni cerrar registros de inventario
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/inventory/"+origin.ID, "galponero", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestQuickTransferHTTP(t *testing.T) {
	app := buildTestApp(t)
	createRecordHTTP(t, app, "lote-7", "granja-a", "galpon-1", dto.CountsDTO{Female: 60, Male: 6})

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/movements/quick-transfer", "galponero", dto.QuickTransferRequest{
		LoteID:      "lote-7",
		Destination: dto.EndpointDTO{FarmID: "granja-b", ShedID: "galpon-9"},
		Reason:      "paso a producción",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "PROCESSED", m.Status)
	assert.Equal(t, dto.CountsDTO{Female: 60, Male: 6}, m.Quantities)

	// El destino quedó con todo el lote
	resp, raw = doJSON(t, app, fiber.MethodGet, "/api/lotes/lote-7/locations", "galponero", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var snap dto.LoteSnapshotResponse
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, 66, snap.TotalAves)
	found := false
	for _, loc := range snap.Locations {
		if loc.FarmID == "granja-b" {
			found = true
			assert.Equal(t, 66, loc.Total)
		}
	}
	assert.True(t, found, fmt.Sprintf("ubicaciones: %+v", snap.Locations))
}

func TestInventory_DuplicadoActivoEs409(t *testing.T) {
	app := buildTestApp(t)
	createRecordHTTP(t, app, "lote-1", "granja-a", "galpon-1", dto.CountsDTO{Female: 10})

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/inventory/", "admin", dto.CreateRecordRequest{
		LoteID: "lote-1", FarmID: "granja-a", ShedID: "galpon-1",
		Counts: dto.CountsDTO{Female: 99},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, string(raw))
}
