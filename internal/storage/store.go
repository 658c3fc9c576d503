package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"market_go/internal/event"

	_ "github.com/glebarez/go-sqlite"
)

// TradeStore persists the engine's event stream in SQLite. Every fill and
// day close is appended in sequence order, which makes a finished run
// replayable: the ledger and the close series can be rebuilt from the
// store alone (see backtest.Replayer).
type TradeStore struct {
	db *sql.DB
}

// NewTradeStore opens (or creates) the store at dbPath with WAL mode
// enabled.
func NewTradeStore(dbPath string) (*TradeStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// KV table for run metadata (seed, start price, config digest).
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	// Append-only event log. seq is the engine's emission order; day is
	// denormalized so per-day queries skip the payload.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY,
			type INTEGER NOT NULL,
			day INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &TradeStore{db: db}, nil
}

// SaveEvent appends one engine event to the log.
func (s *TradeStore) SaveEvent(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO events (seq, type, day, payload) VALUES (?, ?, ?, ?)",
		ev.GetSeq(), ev.GetType(), ev.GetTime().Day, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %d: %w", ev.GetSeq(), err)
	}
	return nil
}

// LoadEvents returns all events with seq >= fromSeq in emission order.
func (s *TradeStore) LoadEvents(ctx context.Context, fromSeq uint64) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, type, payload FROM events WHERE seq >= ? ORDER BY seq ASC",
		fromSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var seq uint64
		var typ event.Type
		var payload []byte
		if err := rows.Scan(&seq, &typ, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		ev, err := decodeEvent(typ, payload)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return events, nil
}

func decodeEvent(typ event.Type, payload []byte) (event.Event, error) {
	switch typ {
	case event.EvTrade:
		var ev event.TradeEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case event.EvDayClose:
		var ev event.DayCloseEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event type %d", typ)
	}
}

// LastSeq returns the highest stored sequence number, 0 when empty.
func (s *TradeStore) LastSeq(ctx context.Context) (uint64, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM events").Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last seq: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return uint64(last.Int64), nil
}

// UpsertMetadata saves a key-value pair describing the run.
func (s *TradeStore) UpsertMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
		key, value,
	)
	return err
}

// GetMetadata retrieves a run metadata value, "" when absent.
func (s *TradeStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Close closes the database connection.
func (s *TradeStore) Close() error {
	return s.db.Close()
}
