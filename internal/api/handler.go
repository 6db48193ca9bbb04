// Package api provides the HTTP surface the query engine calls for catalog
// metadata: listings, handle and layout resolution, DDL, and fiber
// registration.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fibermeta/internal/domain"
	"fibermeta/internal/service"
)

// Handler exposes the metastore service over HTTP.
type Handler struct {
	store *service.MetastoreService
}

// NewHandler creates a Handler backed by the given metastore service.
func NewHandler(store *service.MetastoreService) *Handler {
	return &Handler{store: store}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	writeJSON(w, status, map[string]any{
		"code":    status,
		"message": err.Error(),
	})
}

func (h *Handler) listDatabases(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListDatabases(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"databases": names})
}

type createDatabaseRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

type databaseResponse struct {
	Name     string `json:"name"`
	Comment  string `json:"comment"`
	Owner    string `json:"owner"`
	Location string `json:"location"`
}

func (h *Handler) createDatabase(w http.ResponseWriter, r *http.Request) {
	var req createDatabaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	d, err := h.store.CreateDatabase(r.Context(), req.Name, req.Comment, req.Owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, databaseResponse{
		Name: d.Name, Comment: d.Comment, Owner: d.Owner, Location: d.Location,
	})
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	var schema, table *string
	if v := r.URL.Query().Get("schema"); v != "" {
		schema = &v
	}
	if v := r.URL.Query().Get("table"); v != "" {
		table = &v
	}
	names, err := h.store.ListTables(r.Context(), schema, table)
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []domain.SchemaTableName{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

type createTableRequest struct {
	Name     string      `json:"name"`
	Columns  []columnDef `json:"columns"`
	Format   string      `json:"format,omitempty"`
	FiberKey string      `json:"fiber_key,omitempty"`
	Function string      `json:"fiber_function,omitempty"`
	TimeKey  string      `json:"time_key,omitempty"`
}

type columnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type tableResponse struct {
	Schema        string `json:"schema"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Format        string `json:"format"`
	FiberKey      string `json:"fiber_key,omitempty"`
	FiberFunction string `json:"fiber_function,omitempty"`
	TimeKey       string `json:"time_key,omitempty"`
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	format, err := domain.ParseStorageFormat(req.Format)
	if err != nil {
		writeError(w, err)
		return
	}
	cols := make([]service.ColumnDef, len(req.Columns))
	for i, c := range req.Columns {
		cols[i] = service.ColumnDef{Name: c.Name, Type: c.Type}
	}

	t, err := h.store.CreateTable(r.Context(), service.CreateTableRequest{
		Schema:   chi.URLParam(r, "database"),
		Name:     req.Name,
		Columns:  cols,
		Format:   format,
		FiberKey: req.FiberKey,
		Function: req.Function,
		TimeKey:  req.TimeKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tableResponse{
		Schema: t.DatabaseName, Name: t.Name, Location: t.Location,
		Format: string(t.Format), FiberKey: t.FiberKey,
		FiberFunction: t.FiberFunction, TimeKey: t.TimeKey,
	})
}

func (h *Handler) getTableHandle(w http.ResponseWriter, r *http.Request) {
	handle, err := h.store.GetTableHandle(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

type layoutColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Role string `json:"role"`
}

type layoutResponse struct {
	Handle      domain.TableHandle `json:"handle"`
	FiberColumn *layoutColumn      `json:"fiber_column,omitempty"`
	TimeColumn  *layoutColumn      `json:"time_column,omitempty"`
	Function    string             `json:"fiber_function,omitempty"`
	Format      string             `json:"format"`
}

func toLayoutColumn(c *domain.Column) *layoutColumn {
	if c == nil {
		return nil
	}
	return &layoutColumn{Name: c.Name, Type: c.DataType.String(), Role: string(c.Role)}
}

func (h *Handler) getTableLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.store.GetTableLayout(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := layoutResponse{
		Handle:      layout.Handle,
		FiberColumn: toLayoutColumn(layout.FiberColumn),
		TimeColumn:  toLayoutColumn(layout.TimeColumn),
		Format:      string(layout.Format),
	}
	if layout.Function != nil {
		resp.Function = layout.Function.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.store.GetColumns(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]layoutColumn, len(cols))
	for i, c := range cols {
		out[i] = *toLayoutColumn(&c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": out})
}

func (h *Handler) listColumnMetadata(w http.ResponseWriter, r *http.Request) {
	metas, err := h.store.GetColumnMetadata(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": metas})
}

type registerFiberRequest struct {
	Value int64 `json:"value"`
}

func (h *Handler) registerFiber(w http.ResponseWriter, r *http.Request) {
	var req registerFiberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	f, err := h.store.RegisterFiber(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

type registerRangeRequest struct {
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
	Path  string    `json:"path"`
}

func fiberValueParam(r *http.Request) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, "value"), 10, 64)
	if err != nil {
		return 0, domain.ErrValidation("invalid fiber value %q", chi.URLParam(r, "value"))
	}
	return v, nil
}

func (h *Handler) registerFiberTimeRange(w http.ResponseWriter, r *http.Request) {
	value, err := fiberValueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req registerRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	tr, err := h.store.RegisterFiberTimeRange(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"),
		value, req.Begin, req.End, req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

func (h *Handler) listFiberTimeRanges(w http.ResponseWriter, r *http.Request) {
	value, err := fiberValueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var begin, end *time.Time
	if v := r.URL.Query().Get("begin"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, domain.ErrValidation("invalid begin %q", v))
			return
		}
		begin = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, domain.ErrValidation("invalid end %q", v))
			return
		}
		end = &t
	}

	ranges, err := h.store.ListFiberTimeRanges(r.Context(),
		chi.URLParam(r, "database"), chi.URLParam(r, "table"), value, begin, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if ranges == nil {
		ranges = []domain.FiberTimeRange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranges": ranges})
}

func (h *Handler) listFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"functions": h.store.Functions().Names()})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
