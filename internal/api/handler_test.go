package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fibermeta/internal/config"
	internaldb "fibermeta/internal/db"
	"fibermeta/internal/db/repository"
	"fibermeta/internal/fiber"
	"fibermeta/internal/service"
	"fibermeta/internal/storage"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	writeDB, readDB, root := internaldb.OpenTestSQLite(t)
	repo := repository.NewCatalogRepo(writeDB, readDB, nil)
	svc := service.NewMetastoreService(repo, storage.LocalFilesystem{}, fiber.NewRegistry(), root, nil)

	cfg := &config.Config{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
	}
	srv := httptest.NewServer(NewRouter(NewHandler(svc), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func createOrdersTable(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables", map[string]any{
		"name": "orders",
		"columns": []map[string]string{
			{"name": "customer", "type": "bigint"},
			{"name": "ts", "type": "timestamp"},
			{"name": "note", "type": "varchar(64)"},
		},
		"fiber_key":      "customer",
		"fiber_function": "function0",
		"time_key":       "ts",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAPI_Databases(t *testing.T) {
	srv := setupServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/databases", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"default"}, body["databases"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/databases", map[string]any{"name": "sales"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "sales", body["name"])
	assert.Equal(t, "db sales", body["comment"])
	assert.Equal(t, "default", body["owner"])
	assert.NotEmpty(t, body["location"])

	// Duplicate name conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/databases", map[string]any{"name": "sales"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/databases", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"default", "sales"}, body["databases"])
}

func TestAPI_CreateTableAndHandle(t *testing.T) {
	srv := setupServer(t)
	createOrdersTable(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "default", body["schema"])
	assert.Equal(t, "orders", body["table"])
	assert.NotEmpty(t, body["location"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListTablesFilters(t *testing.T) {
	srv := setupServer(t)
	createOrdersTable(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/tables", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["tables"], 1)

	// Filters are exact matches, not prefixes.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/tables?schema=defau", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["tables"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/tables?schema=default&table=orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["tables"], 1)
}

func TestAPI_Layout(t *testing.T) {
	srv := setupServer(t)
	createOrdersTable(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/orders/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "function0", body["fiber_function"])
	assert.Equal(t, "parquet", body["format"])

	fc, ok := body["fiber_column"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "customer", fc["name"])
	assert.Equal(t, "bigint", fc["type"])
	assert.Equal(t, "fiber", fc["role"])

	tc, ok := body["time_column"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ts", tc["name"])
	assert.Equal(t, "time", tc["role"])
}

func TestAPI_LayoutUnpartitioned(t *testing.T) {
	srv := setupServer(t)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables", map[string]any{
		"name": "plain",
		"columns": []map[string]string{
			{"name": "id", "type": "bigint"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/plain/layout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["fiber_column"])
	assert.Nil(t, body["time_column"])
	assert.Empty(t, body["fiber_function"])
}

func TestAPI_CreateTableValidation(t *testing.T) {
	srv := setupServer(t)

	// Fiber key must name a declared column.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables", map[string]any{
		"name": "bad",
		"columns": []map[string]string{
			{"name": "id", "type": "bigint"},
		},
		"fiber_key":      "ghost",
		"fiber_function": "function0",
		"time_key":       "id",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["message"])

	// Unknown partition function.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables", map[string]any{
		"name": "bad",
		"columns": []map[string]string{
			{"name": "id", "type": "bigint"},
			{"name": "ts", "type": "timestamp"},
		},
		"fiber_key":      "id",
		"fiber_function": "function9",
		"time_key":       "ts",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing persisted after the failures.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/tables", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["tables"])
}

func TestAPI_Columns(t *testing.T) {
	srv := setupServer(t)
	createOrdersTable(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/orders/columns", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cols, ok := body["columns"].([]any)
	require.True(t, ok)
	require.Len(t, cols, 3)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v1/databases/default/tables/orders/columns/metadata", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metas, ok := body["columns"].([]any)
	require.True(t, ok)
	require.Len(t, metas, 3)
	first := metas[0].(map[string]any)
	assert.Equal(t, "customer", first["name"])
	assert.Equal(t, "bigint", first["type"])
}

func TestAPI_FiberLifecycle(t *testing.T) {
	srv := setupServer(t)
	createOrdersTable(t, srv)

	base := srv.URL + "/v1/databases/default/tables/orders"

	resp, body := doJSON(t, http.MethodPost, base+"/fibers", map[string]any{"value": 42})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(42), body["value"])

	begin := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := begin.Add(24 * time.Hour)
	resp, _ = doJSON(t, http.MethodPost, base+"/fibers/42/ranges", map[string]any{
		"begin": begin.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
		"path":  "/warehouse/default/orders/42/seg-0001.parquet",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate segment path is a conflict.
	resp, _ = doJSON(t, http.MethodPost, base+"/fibers/42/ranges", map[string]any{
		"begin": begin.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
		"path":  "/warehouse/default/orders/42/seg-0001.parquet",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base+"/fibers/42/ranges", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["ranges"], 1)

	// A window that misses the segment prunes it.
	miss := begin.Add(-48 * time.Hour).Format(time.RFC3339)
	missEnd := begin.Add(-24 * time.Hour).Format(time.RFC3339)
	resp, body = doJSON(t, http.MethodGet, base+"/fibers/42/ranges?begin="+miss+"&end="+missEnd, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["ranges"])

	// Registering against an unpartitioned table is rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables", map[string]any{
		"name":    "plain",
		"columns": []map[string]string{{"name": "id", "type": "bigint"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/databases/default/tables/plain/fibers", map[string]any{"value": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Functions(t *testing.T) {
	srv := setupServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/functions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["functions"], "function0")
	assert.Contains(t, body["functions"], "hash")
}

func TestAPI_Healthz(t *testing.T) {
	srv := setupServer(t)
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
