// Package db stores the style history in DuckDB.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const historySchema = `CREATE TABLE IF NOT EXISTS style_history (
	at       TIMESTAMP NOT NULL,
	action   VARCHAR NOT NULL,
	style_id VARCHAR,
	layer    VARCHAR,
	feature  VARCHAR,
	element  VARCHAR,
	style    VARCHAR NOT NULL
)`

// HistoryEntry is one recorded change to a style.
type HistoryEntry struct {
	At      time.Time `json:"at" doc:"When the change happened"`
	Action  string    `json:"action" doc:"What happened: applied, saved, deleted" example:"applied"`
	StyleID string    `json:"styleId,omitempty" doc:"Saved style id, empty for editor sessions" example:"dark"`
	Layer   string    `json:"layer,omitempty" doc:"Base layer" example:"m"`
	Feature string    `json:"feature,omitempty" doc:"Feature of the applied rule" example:"water"`
	Element string    `json:"element,omitempty" doc:"Element of the applied rule" example:"geometry"`
	Style   string    `json:"style" doc:"Resulting style string"`
}

// History records style changes in the style_history table.
type History struct {
	db *sql.DB
}

// NewHistory creates the history table if needed.
func NewHistory(ctx context.Context, conn *sql.DB) (*History, error) {
	if _, err := conn.ExecContext(ctx, historySchema); err != nil {
		return nil, fmt.Errorf("failed to create style_history: %w", err)
	}
	return &History{db: conn}, nil
}

// DB returns the underlying connection.
func (h *History) DB() *sql.DB {
	return h.db
}

// Record appends an entry. A zero At is set to now.
func (h *History) Record(ctx context.Context, e HistoryEntry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO style_history (at, action, style_id, layer, feature, element, style) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.At, e.Action, e.StyleID, e.Layer, e.Feature, e.Element, e.Style)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-empty styleID
// filters to that style.
func (h *History) Recent(ctx context.Context, styleID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT at, action, style_id, layer, feature, element, style FROM style_history`
	args := []any{}
	if styleID != "" {
		query += ` WHERE style_id = ?`
		args = append(args, styleID)
	}
	query += ` ORDER BY at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var styleIDCol, layer, feature, element sql.NullString
		if err := rows.Scan(&e.At, &e.Action, &styleIDCol, &layer, &feature, &element, &e.Style); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.StyleID = styleIDCol.String
		e.Layer = layer.String
		e.Feature = feature.String
		e.Element = element.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
