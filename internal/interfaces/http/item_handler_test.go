package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/application/inventory"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/filestore"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/metrics"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/warehouse-tracker/internal/interfaces/http"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testDocument = "inventario.xlsx"

type testEnv struct {
	app *fiber.App
	dir string
}

// buildTestApp arma la API completa sobre un filestore en un directorio temporal.
// Con seed == nil no se escribe documento (el store falla al descargar).
func buildTestApp(t *testing.T, seed *entity.Table) *testEnv {
	t.Helper()
	dir := t.TempDir()
	codec := xlsx.NewCodec("", "")
	if seed != nil {
		data, err := codec.Encode(entity.NewDocument(seed, nil))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, testDocument), data, 0o644))
	}

	store := filestore.New(dir)
	opts := inventory.Options{
		Ref:     entity.DocumentRef{Path: testDocument},
		Columns: entity.DefaultItemColumns(),
	}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		ListItems: inventory.NewListItemsUseCase(store, codec, opts),
		Adjust:    inventory.NewAdjustQuantityUseCase(store, codec, opts, logger.Nop()),
		ListLogs:  inventory.NewListLogsUseCase(store, codec, opts),
		Metrics:   metrics.New(),
		Log:       logger.Nop(),
	})
	return &testEnv{app: app, dir: dir}
}

func seedItems() *entity.Table {
	t := entity.NewTable("Part Reference", "Description", "Quantity", "Min Level", "Max Level")
	t.Append(map[string]any{"Part Reference": "A1", "Description": "Tornillo", "Quantity": 5.0, "Min Level": 10.0, "Max Level": 20.0})
	t.Append(map[string]any{"Part Reference": "B2", "Description": "Tuerca", "Quantity": 25.0, "Min Level": 1.0, "Max Level": 20.0})
	t.Append(map[string]any{"Part Reference": "C3", "Description": "Arandela", "Quantity": "muchas", "Min Level": 1.0, "Max Level": 20.0})
	return t
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeList(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func scrape(t *testing.T, env *testEnv) string {
	t.Helper()
	_, raw := doRequest(t, env.app, http.MethodGet, "/metrics", "")
	return string(raw)
}

func refsOf(rows []map[string]any) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["Part Reference"].(string))
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /items
// ──────────────────────────────────────────────────────────────────────────────

func TestListItems_SinFiltro(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rows := decodeList(t, raw)
	assert.Equal(t, []string{"A1", "B2", "C3"}, refsOf(rows))
	assert.Equal(t, "Tornillo", rows[0]["Description"])
	assert.EqualValues(t, 5, rows[0]["Quantity"])
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestListItems_Umbrales(t *testing.T) {
	env := buildTestApp(t, seedItems())

	_, raw := doRequest(t, env.app, http.MethodGet, "/items?threshold=low", "")
	assert.Equal(t, []string{"A1"}, refsOf(decodeList(t, raw)))

	_, raw = doRequest(t, env.app, http.MethodGet, "/items?threshold=high", "")
	assert.Equal(t, []string{"B2"}, refsOf(decodeList(t, raw)))

	_, raw = doRequest(t, env.app, http.MethodGet, "/items?q=b", "")
	assert.Equal(t, []string{"B2"}, refsOf(decodeList(t, raw)))
}

func TestListItems_UmbralInvalido(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items?threshold=medium", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), `"code":"VALIDATION"`)
}

func TestListItems_DocumentoAusente(t *testing.T) {
	env := buildTestApp(t, nil)

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(raw), `"code":"STORE_UNAVAILABLE"`)
}

func TestListItems_DocumentoIlegible(t *testing.T) {
	env := buildTestApp(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, testDocument), []byte("no es un xlsx"), 0o644))

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(raw), `"code":"DECODE_FAILURE"`)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /items/:partRef
// ──────────────────────────────────────────────────────────────────────────────

func TestGetItem(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items/B2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var row map[string]any
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.Equal(t, "Tuerca", row["Description"])
}

func TestGetItem_NoEncontrado(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodGet, "/items/a1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Item not found", body["error"])
}

func TestGetItem_ReferenciaCodificada(t *testing.T) {
	items := entity.NewTable("Part Reference", "Quantity")
	items.Append(map[string]any{"Part Reference": "X 9/1", "Quantity": 1.0})
	env := buildTestApp(t, items)

	resp, _ := doRequest(t, env.app, http.MethodGet, "/items/X%209%2F1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /items/:partRef/adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_Exito(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodPost, "/items/A1/adjust", `{"delta": -2, "user": "bob"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"partRef":"A1","quantity":3}`, string(raw))

	// El cambio quedó persistido y auditado.
	_, raw = doRequest(t, env.app, http.MethodGet, "/items/A1", "")
	var row map[string]any
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.EqualValues(t, 3, row["Quantity"])

	_, raw = doRequest(t, env.app, http.MethodGet, "/logs?partRef=A1", "")
	logs := decodeList(t, raw)
	require.Len(t, logs, 1)
	assert.Equal(t, "bob", logs[0]["user"])
	assert.EqualValues(t, -2, logs[0]["delta"])
	assert.EqualValues(t, 5, logs[0]["quantityBefore"])

	assert.Contains(t, scrape(t, env), `warehouse_adjustments_total{result="ok"} 1`)
}

func TestAdjust_CuerpoInvalido(t *testing.T) {
	env := buildTestApp(t, seedItems())

	cases := map[string]string{
		"json roto":       `{"delta":`,
		"sin delta":       `{"user": "bob"}`,
		"delta no entero": `{"delta": "dos"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, raw := doRequest(t, env.app, http.MethodPost, "/items/A1/adjust", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(raw), `"code":"VALIDATION"`)
		})
	}
}

func TestAdjust_NoEncontrado(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodPost, "/items/ZZ/adjust", `{"delta": 1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), `"error":"Item not found"`)
	assert.Contains(t, scrape(t, env), `warehouse_adjustments_total{result="not_found"} 1`)
}

func TestAdjust_CantidadNoNumerica(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodPost, "/items/C3/adjust", `{"delta": 1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(raw), `"code":"INVALID_QUANTITY"`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestRutaInexistente(t *testing.T) {
	env := buildTestApp(t, seedItems())

	resp, raw := doRequest(t, env.app, http.MethodGet, "/nada", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), `"code":"ROUTE_NOT_FOUND"`)
}

func TestMetricsEndpoint(t *testing.T) {
	env := buildTestApp(t, seedItems())
	doRequest(t, env.app, http.MethodGet, "/items", "")
	doRequest(t, env.app, http.MethodGet, "/items/ZZ", "")

	resp, raw := doRequest(t, env.app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `warehouse_http_requests_total{method="GET",route="/items",status="200"} 1`)
	assert.Contains(t, string(raw), `warehouse_http_requests_total{method="GET",route="/items/:partRef",status="404"} 1`)
}
