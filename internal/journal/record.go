package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
)

// Entry represents one recorded dispatch outcome.
type Entry struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic,omitempty"`
	Handler      string    `json:"handler"`
	Result       string    `json:"result"`
	WaitMS       int64     `json:"wait_ms"`
	HandlerError string    `json:"handler_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter controls which journal entries to return.
type Filter struct {
	Topic   string // optional: filter by exact topic
	Handler string // optional: filter by handler name (onMessage, onError)
	Result  string // optional: filter by result (invoked, fallback, timeout, interrupted)
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// DispatchDone implements dispatch.Observer: it records one settled
// dispatch call. Best effort — an insert failure is logged and dropped so
// message flow never depends on the journal.
func (j *Journal) DispatchDone(o dispatch.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	id := o.ID
	if id == "" {
		id = "dsp-" + uuid.NewString()[:8]
	}
	at := o.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var handlerError string
	if o.HandlerErr != nil {
		handlerError = o.HandlerErr.Error()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO dispatch_log (id, topic, handler, result, wait_ms, handler_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nullableString(o.Topic), o.Handler, string(o.Result),
		o.Wait.Milliseconds(), nullableString(handlerError),
		at.Format(time.RFC3339Nano),
	)
	if err != nil {
		if logger := j.getLogger(); logger != nil {
			logger.Error("recording dispatch outcome",
				"dispatch_id", id,
				"error", err,
			)
		}
	}
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns journal entries matching the filter, most recent first.
func (j *Journal) List(ctx context.Context, filter Filter) ([]Entry, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for journal queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any
	if filter.Topic != "" {
		conditions = append(conditions, "topic = ?")
		args = append(args, filter.Topic)
	}
	if filter.Handler != "" {
		conditions = append(conditions, "handler = ?")
		args = append(args, filter.Handler)
	}
	if filter.Result != "" {
		conditions = append(conditions, "result = ?")
		args = append(args, filter.Result)
	}

	query := `SELECT id, topic, handler, result, wait_ms, handler_error, created_at
		FROM dispatch_log`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch log: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			topic        sql.NullString
			handlerError sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&e.ID, &topic, &e.Handler, &e.Result, &e.WaitMS, &handlerError, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dispatch log row: %w", err)
		}
		e.Topic = topic.String
		e.HandlerError = handlerError.String
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading dispatch log rows: %w", err)
	}

	return entries, nil
}
