package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/db"
)

func TestDBHandlerUnavailable(t *testing.T) {
	_, api := humatest.New(t, huma.DefaultConfig("test", Version))
	NewDBHandler(nil).RegisterRoutes(api)

	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/api/v1/history").Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/api/v1/tables").Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.Post("/api/v1/query", map[string]any{"query": "SELECT 1"}).Code)
}

func TestDBHandlerHistory(t *testing.T) {
	conn, err := db.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	history, err := db.NewHistory(ctx, conn)
	require.NoError(t, err)
	require.NoError(t, history.Record(ctx, db.HistoryEntry{Action: "applied", StyleID: "dark", Style: "s.t:water|s.e:geometry|p.c:#000000"}))
	require.NoError(t, history.Record(ctx, db.HistoryEntry{Action: "applied", Style: "s.t:poi|s.e:labels|p.v:off"}))

	_, api := humatest.New(t, huma.DefaultConfig("test", Version))
	NewDBHandler(history).RegisterRoutes(api)

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	all := decode[struct {
		Entries []db.HistoryEntry `json:"entries"`
	}](t, resp.Body.Bytes())
	assert.Len(t, all.Entries, 2)

	resp = api.Get("/api/v1/history?style=dark")
	require.Equal(t, http.StatusOK, resp.Code)
	dark := decode[struct {
		Entries []db.HistoryEntry `json:"entries"`
	}](t, resp.Body.Bytes())
	require.Len(t, dark.Entries, 1)
	assert.Equal(t, "dark", dark.Entries[0].StyleID)

	resp = api.Get("/api/v1/tables")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "style_history")

	resp = api.Post("/api/v1/query", map[string]any{"query": "SELECT count(*) AS n FROM style_history"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"count":1`)

	resp = api.Post("/api/v1/query", map[string]any{"query": "SELECT * FROM missing_table"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/v1/query", map[string]any{"query": "DELETE FROM style_history"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDBHandlerQueryCannotEscape(t *testing.T) {
	conn, err := db.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	history, err := db.NewHistory(ctx, conn)
	require.NoError(t, err)
	require.NoError(t, history.Record(ctx, db.HistoryEntry{Action: "applied", Style: "s.t:poi|s.e:labels|p.v:off"}))

	secret := filepath.Join(t.TempDir(), "secret.csv")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	_, api := humatest.New(t, huma.DefaultConfig("test", Version))
	NewDBHandler(history).RegisterRoutes(api)

	tests := []struct {
		name  string
		query string
	}{
		{"delete behind with", "WITH x AS (SELECT 1) DELETE FROM style_history"},
		{"lowercase delete behind with", "with x as (select 1) delete from style_history where true"},
		{"insert behind with", "WITH x AS (SELECT 1) INSERT INTO style_history SELECT * FROM style_history"},
		{"read_text", "SELECT * FROM read_text('" + secret + "')"},
		{"read_csv", "SELECT * FROM READ_CSV ('" + secret + "')"},
		{"glob", "SELECT * FROM glob('" + filepath.Dir(secret) + "/*')"},
		{"file replacement scan", "SELECT * FROM '" + secret + "'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Post("/api/v1/query", map[string]any{"query": tt.query})
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.NotContains(t, resp.Body.String(), "top secret")
		})
	}

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, "SELECT count(*) FROM style_history").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestInfo(t *testing.T) {
	_, api := humatest.New(t, huma.DefaultConfig("test", Version))
	NewInfoHandler("/tmp/data", "", true).RegisterRoutes(api)

	resp := api.Get("/api/v1/info")
	require.Equal(t, http.StatusOK, resp.Code)
	info := decode[InfoBody](t, resp.Body.Bytes())
	assert.Equal(t, "plat-mapstyle", info.Name)
	assert.Equal(t, "/tmp/data", info.DataDir)
	assert.True(t, info.DB)
	assert.Contains(t, info.Features, "history")
}

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  select * from style_history;", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"SHOW TABLES", true},
		{"SELECT\n\t*\nFROM style_history", true},
		{"DELETE FROM style_history", false},
		{"WITH x AS (SELECT 1) DELETE FROM style_history", false},
		{"WITH x AS (SELECT 1) UPDATE style_history SET action = 'x'", false},
		{"SELECT * FROM read_text('/etc/hostname')", false},
		{"SELECT * FROM read_parquet ('data.parquet')", false},
		{"SELECT * FROM parquet_scan('data.parquet')", false},
		{"SELECT updated_at, action FROM style_history", true},
		{"SELECT 1; DROP TABLE style_history", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, isReadOnly(tt.query))
		})
	}
}
