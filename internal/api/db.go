package api

import (
	"context"
	"database/sql"
	"regexp"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/db"
)

// DBHandler serves the style history and ad-hoc queries against it.
type DBHandler struct {
	db      *sql.DB
	history *db.History
}

// NewDBHandler creates a database handler. A nil history disables every
// route with 503.
func NewDBHandler(history *db.History) *DBHandler {
	h := &DBHandler{history: history}
	if history != nil {
		h.db = history.DB()
	}
	return h
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/history", h.ListHistory, huma.OperationTags("history"))
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("history"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("history"))
}

// HistoryInput filters the history listing.
type HistoryInput struct {
	StyleID string `query:"style" doc:"Only entries of this saved style" example:"dark"`
	Limit   int    `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Maximum entries"`
}

// HistoryOutput is the response for the history listing.
type HistoryOutput struct {
	Body struct {
		Entries []db.HistoryEntry `json:"entries" doc:"Entries, newest first"`
	}
}

// ListHistory returns recent style changes.
func (h *DBHandler) ListHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	if h.history == nil {
		return nil, huma.Error503ServiceUnavailable("History not available")
	}
	entries, err := h.history.Recent(ctx, input.StyleID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read history", err)
	}
	out := &HistoryOutput{}
	out.Body.Entries = entries
	return out, nil
}

// TablesBody lists the DuckDB tables.
type TablesBody struct {
	Tables []string `json:"tables" doc:"List of table names"`
}

// ListTables returns the DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*struct{ Body TablesBody }, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}
	return &struct{ Body TablesBody }{Body: TablesBody{Tables: tables}}, nil
}

// QueryInput is a read-only SQL statement.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" minLength:"1" doc:"SELECT, WITH, SHOW, DESCRIBE or SUMMARIZE statement" example:"SELECT action, count(*) FROM style_history GROUP BY action"`
	}
}

// QueryBody is the result of a query.
type QueryBody struct {
	Columns []string         `json:"columns" doc:"Column names"`
	Rows    []map[string]any `json:"rows" doc:"Query results"`
	Count   int              `json:"count" doc:"Number of rows returned"`
}

var readOnlyVerbs = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "SUMMARIZE"}

// writeKeywords may follow a leading WITH or appear in a nested statement.
var writeKeywords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|MERGE|UPSERT|CREATE|DROP|ALTER|TRUNCATE|ATTACH|DETACH|COPY|EXPORT|IMPORT|INSTALL|LOAD|PRAGMA|SET|RESET|CALL|CHECKPOINT|VACUUM)\b`)

// fileFunctions read from the host filesystem or the network.
var fileFunctions = regexp.MustCompile(`(?i)\b(read_\w+|\w+_scan|glob|sniff_csv|parquet_\w+)\s*\(`)

// Query runs a read-only SQL statement against the history database. The
// statement runs in a transaction that is always rolled back.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*struct{ Body QueryBody }, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}
	if !isReadOnly(input.Body.Query) {
		return nil, huma.Error400BadRequest("Only read-only statements are allowed")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to start transaction", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get columns", err)
	}

	out := QueryBody{Columns: columns, Rows: []map[string]any{}}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, huma.Error500InternalServerError("Failed to read row", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	out.Count = len(out.Rows)
	return &struct{ Body QueryBody }{Body: out}, nil
}

// isReadOnly reports whether q is a single statement starting with a
// read-only verb that neither writes nor reads host files.
func isReadOnly(q string) bool {
	q = strings.TrimSuffix(strings.TrimSpace(q), ";")
	if strings.Contains(q, ";") {
		return false
	}
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToUpper(fields[0])
	if !slices.Contains(readOnlyVerbs, verb) {
		return false
	}
	return !writeKeywords.MatchString(q) && !fileFunctions.MatchString(q)
}
