/*
Package sqlite provides a SQLite-backed CardStore and UsageStore.

INTERFACES IMPLEMENTED:
  benefits.CardStore:  cards and anchors
  benefits.UsageStore: usage records and ignore overrides

KEY TABLES:
  cards:            one row per card, benefit IDs as a JSON array
  usage_records:    one row per (card, benefit, window key)
  ignore_overrides: one row per (card, benefit)

ATOMIC ADD:
  AddUsage is a single UPSERT that increments used_micros in SQL:

    INSERT ... ON CONFLICT(card_id, benefit_id, window_key)
    DO UPDATE SET used_micros = used_micros + excluded.used_micros

  Concurrent writers to the same window are both counted. Amounts are
  stored as integer micro-units (see store.ToMicros).

CONCURRENCY:
  Uses sync.RWMutex on top of SQLite's own locking so a single *Store can
  be shared by HTTP handlers and the reminder scheduler.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  s, err := sqlite.New("./data/benefits.db")
  if err != nil {
      log.Fatal(err)
  }
  defer s.Close()

SEE ALSO:
  - benefits/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
	"github.com/colinjianingxie/walletfreak-sub000/store"
)

// Store implements benefits.CardStore and benefits.UsageStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		anchor_date TEXT NOT NULL DEFAULT '',
		benefit_ids_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cards_user
		ON cards(user_id);

	-- Usage per window. used_micros is only ever changed by increments.
	CREATE TABLE IF NOT EXISTS usage_records (
		card_id TEXT NOT NULL,
		benefit_id TEXT NOT NULL,
		window_key TEXT NOT NULL,
		used_micros INTEGER NOT NULL DEFAULT 0,
		is_full BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (card_id, benefit_id, window_key)
	);

	CREATE TABLE IF NOT EXISTS ignore_overrides (
		card_id TEXT NOT NULL,
		benefit_id TEXT NOT NULL,
		is_ignored BOOLEAN NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (card_id, benefit_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CARD STORE (benefits.CardStore interface)
// =============================================================================

func (s *Store) SaveCard(ctx context.Context, card benefits.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := json.Marshal(card.BenefitIDs)
	if err != nil {
		return fmt.Errorf("encode benefit ids: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, user_id, name, anchor_date, benefit_ids_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		card.ID,
		card.UserID,
		card.Name,
		anchorText(card.Anchor),
		string(ids),
		card.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", benefits.ErrDuplicateCard, card.ID)
	}
	return nil
}

func (s *Store) Card(ctx context.Context, id benefits.CardID) (benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, anchor_date, benefit_ids_json, created_at
		FROM cards WHERE id = ?
	`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return benefits.Card{}, fmt.Errorf("%w: %s", benefits.ErrCardNotFound, id)
	}
	return card, err
}

func (s *Store) CardsByUser(ctx context.Context, userID benefits.UserID) ([]benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCards(ctx, `
		SELECT id, user_id, name, anchor_date, benefit_ids_json, created_at
		FROM cards WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
}

func (s *Store) AllCards(ctx context.Context) ([]benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCards(ctx, `
		SELECT id, user_id, name, anchor_date, benefit_ids_json, created_at
		FROM cards
		ORDER BY created_at, id
	`)
}

func (s *Store) UpdateAnchor(ctx context.Context, id benefits.CardID, anchor engine.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE cards SET anchor_date = ? WHERE id = ?`, anchorText(anchor), id)
	if err != nil {
		return fmt.Errorf("update anchor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", benefits.ErrCardNotFound, id)
	}
	return nil
}

func (s *Store) queryCards(ctx context.Context, query string, args ...any) ([]benefits.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []benefits.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (benefits.Card, error) {
	var card benefits.Card
	var anchorDate, idsJSON, createdAt string
	if err := row.Scan(&card.ID, &card.UserID, &card.Name, &anchorDate, &idsJSON, &createdAt); err != nil {
		return benefits.Card{}, err
	}

	anchor, err := engine.ParseAnchor(anchorDate)
	if err != nil {
		return benefits.Card{}, fmt.Errorf("card %s: %w", card.ID, err)
	}
	card.Anchor = anchor

	if err := json.Unmarshal([]byte(idsJSON), &card.BenefitIDs); err != nil {
		return benefits.Card{}, fmt.Errorf("card %s: decode benefit ids: %w", card.ID, err)
	}
	card.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return card, nil
}

// anchorText stores unknown anchors as the empty string.
func anchorText(a engine.Anchor) string {
	if d, ok := a.Date(); ok {
		return d.Format(engine.AnchorLayout)
	}
	return ""
}

// =============================================================================
// USAGE STORE (benefits.UsageStore interface)
// =============================================================================

func (s *Store) Usage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) (map[engine.Key]engine.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT window_key, used_micros, is_full, updated_at
		FROM usage_records
		WHERE card_id = ? AND benefit_id = ?
	`, card, benefit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[engine.Key]engine.UsageRecord)
	for rows.Next() {
		var (
			key       string
			micros    int64
			full      bool
			updatedAt string
		)
		if err := rows.Scan(&key, &micros, &full, &updatedAt); err != nil {
			return nil, err
		}
		r := engine.UsageRecord{Used: store.FromMicros(micros), IsFull: full}
		r.LastUpdated, _ = time.Parse(time.RFC3339, updatedAt)
		out[engine.Key(key)] = r
	}
	return out, rows.Err()
}

func (s *Store) AddUsage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, delta decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (card_id, benefit_id, window_key, used_micros, is_full, updated_at)
		VALUES (?, ?, ?, ?, FALSE, ?)
		ON CONFLICT(card_id, benefit_id, window_key) DO UPDATE SET
			used_micros = used_micros + excluded.used_micros,
			updated_at = excluded.updated_at
	`, card, benefit, key, store.ToMicros(delta), at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add usage: %w", err)
	}
	return nil
}

func (s *Store) SetFull(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, full bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (card_id, benefit_id, window_key, used_micros, is_full, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT(card_id, benefit_id, window_key) DO UPDATE SET
			is_full = excluded.is_full,
			updated_at = excluded.updated_at
	`, card, benefit, key, full, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set full: %w", err)
	}
	return nil
}

func (s *Store) ResetUsage(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM usage_records WHERE card_id = ? AND benefit_id = ?`, card, benefit)
	if err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}
	return nil
}

// =============================================================================
// IGNORE OVERRIDES
// =============================================================================

func (s *Store) Ignore(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID) (engine.IgnoreOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		o         engine.IgnoreOverride
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT is_ignored, updated_at FROM ignore_overrides
		WHERE card_id = ? AND benefit_id = ?
	`, card, benefit).Scan(&o.IsIgnored, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.IgnoreOverride{}, nil
	}
	if err != nil {
		return engine.IgnoreOverride{}, err
	}
	o.LastUpdated, _ = time.Parse(time.RFC3339, updatedAt)
	return o, nil
}

func (s *Store) SetIgnored(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, ignored bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ignore_overrides (card_id, benefit_id, is_ignored, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(card_id, benefit_id) DO UPDATE SET
			is_ignored = excluded.is_ignored,
			updated_at = excluded.updated_at
	`, card, benefit, ignored, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set ignored: %w", err)
	}
	return nil
}

// ClearIgnoredBefore is a single conditional UPDATE, so an ignore written
// after the caller's read survives.
func (s *Store) ClearIgnoredBefore(ctx context.Context, card benefits.CardID, benefit benefits.BenefitID, before, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE ignore_overrides SET is_ignored = 0, updated_at = ?
		WHERE card_id = ? AND benefit_id = ? AND is_ignored = 1 AND updated_at < ?
	`, at.UTC().Format(time.RFC3339), card, benefit, before.UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("clear ignored: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear ignored: %w", err)
	}
	return n > 0, nil
}

var (
	_ benefits.CardStore  = (*Store)(nil)
	_ benefits.UsageStore = (*Store)(nil)
)
