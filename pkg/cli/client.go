package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response from the metaserver.
type APIError struct {
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.HTTPStatus, e.Message)
}

// Client is a thin HTTP client for the metaserver API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a Client against the given host.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{HTTPStatus: resp.StatusCode, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Database is a database returned by the create endpoint.
type Database struct {
	Name     string `json:"name"`
	Comment  string `json:"comment"`
	Owner    string `json:"owner"`
	Location string `json:"location"`
}

// SchemaTable is a (schema, table) pair from listings.
type SchemaTable struct {
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// TableHandle is a resolved table with its physical path.
type TableHandle struct {
	Schema   string `json:"schema"`
	Table    string `json:"table"`
	Location string `json:"location"`
}

// LayoutColumn is a column as it appears in a table layout.
type LayoutColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Role string `json:"role"`
}

// TableLayout is the partitioning descriptor of a table.
type TableLayout struct {
	Handle      TableHandle   `json:"handle"`
	FiberColumn *LayoutColumn `json:"fiber_column"`
	TimeColumn  *LayoutColumn `json:"time_column"`
	Function    string        `json:"fiber_function"`
	Format      string        `json:"format"`
}

// ColumnDef is one column of a create-table request.
type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateTableRequest is the body of the create-table endpoint.
type CreateTableRequest struct {
	Name     string      `json:"name"`
	Columns  []ColumnDef `json:"columns"`
	Format   string      `json:"format,omitempty"`
	FiberKey string      `json:"fiber_key,omitempty"`
	Function string      `json:"fiber_function,omitempty"`
	TimeKey  string      `json:"time_key,omitempty"`
}

// Table is a table returned by the create endpoint.
type Table struct {
	Schema        string `json:"schema"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Format        string `json:"format"`
	FiberKey      string `json:"fiber_key"`
	FiberFunction string `json:"fiber_function"`
	TimeKey       string `json:"time_key"`
}

// Fiber is a registered partition unit.
type Fiber struct {
	ID      int64 `json:"id"`
	TableID int64 `json:"table_id"`
	Value   int64 `json:"value"`
}

// FiberRange is one physical segment of a fiber with its time window.
type FiberRange struct {
	ID      int64     `json:"id"`
	FiberID int64     `json:"fiber_id"`
	Begin   time.Time `json:"begin"`
	End     time.Time `json:"end"`
	Path    string    `json:"path"`
}

func (c *Client) ListDatabases() ([]string, error) {
	var out struct {
		Databases []string `json:"databases"`
	}
	err := c.do(http.MethodGet, "/v1/databases", nil, &out)
	return out.Databases, err
}

func (c *Client) CreateDatabase(name, comment, owner string) (*Database, error) {
	var out Database
	err := c.do(http.MethodPost, "/v1/databases", map[string]string{
		"name": name, "comment": comment, "owner": owner,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTables(schema, table string) ([]SchemaTable, error) {
	q := url.Values{}
	if schema != "" {
		q.Set("schema", schema)
	}
	if table != "" {
		q.Set("table", table)
	}
	path := "/v1/tables"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Tables []SchemaTable `json:"tables"`
	}
	err := c.do(http.MethodGet, path, nil, &out)
	return out.Tables, err
}

func (c *Client) CreateTable(schema string, req CreateTableRequest) (*Table, error) {
	var out Table
	err := c.do(http.MethodPost, "/v1/databases/"+url.PathEscape(schema)+"/tables", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) tablePath(schema, table string) string {
	return "/v1/databases/" + url.PathEscape(schema) + "/tables/" + url.PathEscape(table)
}

func (c *Client) GetTableHandle(schema, table string) (*TableHandle, error) {
	var out TableHandle
	if err := c.do(http.MethodGet, c.tablePath(schema, table), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTableLayout(schema, table string) (*TableLayout, error) {
	var out TableLayout
	if err := c.do(http.MethodGet, c.tablePath(schema, table)+"/layout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListColumns(schema, table string) ([]LayoutColumn, error) {
	var out struct {
		Columns []LayoutColumn `json:"columns"`
	}
	err := c.do(http.MethodGet, c.tablePath(schema, table)+"/columns", nil, &out)
	return out.Columns, err
}

func (c *Client) RegisterFiber(schema, table string, value int64) (*Fiber, error) {
	var out Fiber
	err := c.do(http.MethodPost, c.tablePath(schema, table)+"/fibers",
		map[string]int64{"value": value}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) rangesPath(schema, table string, value int64) string {
	return c.tablePath(schema, table) + "/fibers/" + strconv.FormatInt(value, 10) + "/ranges"
}

func (c *Client) RegisterFiberRange(schema, table string, value int64, begin, end time.Time, path string) (*FiberRange, error) {
	var out FiberRange
	err := c.do(http.MethodPost, c.rangesPath(schema, table, value), map[string]any{
		"begin": begin.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
		"path":  path,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFiberRanges(schema, table string, value int64, begin, end string) ([]FiberRange, error) {
	q := url.Values{}
	if begin != "" {
		q.Set("begin", begin)
	}
	if end != "" {
		q.Set("end", end)
	}
	path := c.rangesPath(schema, table, value)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Ranges []FiberRange `json:"ranges"`
	}
	err := c.do(http.MethodGet, path, nil, &out)
	return out.Ranges, err
}

func (c *Client) ListFunctions() ([]string, error) {
	var out struct {
		Functions []string `json:"functions"`
	}
	err := c.do(http.MethodGet, "/v1/functions", nil, &out)
	return out.Functions, err
}
