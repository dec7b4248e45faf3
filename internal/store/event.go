package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out a monotonically increasing sequence number for
// events. Timestamps can collide within a request burst; the sequence
// cannot. The mutex serializes within the process; the RETURNING clause
// makes the increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the llm_request_events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var eventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(llmEventsTable).
		Columns(eventColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, "model")
}

func (r *eventRepo) usage(ctx context.Context, groupBy string) ([]LLMUsage, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			groupBy,
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As("SUM(CASE WHEN success THEN 0 ELSE 1 END)", "failures"),
			entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
			entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
			entsql.As("CAST(AVG(latency_ms) AS INTEGER)", "avg_latency_ms"),
		).
		From(entsql.Table(llmEventsTable)).
		GroupBy(groupBy).
		OrderBy(entsql.Desc("calls")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			key string
			u   LLMUsage
		)
		if err := rows.Scan(&key, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		if groupBy == "purpose" {
			u.Purpose = key
		} else {
			u.Model = key
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*LLMRequestEvent, error) {
	var e LLMRequestEvent
	err := row.Scan(
		&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &e, nil
}
