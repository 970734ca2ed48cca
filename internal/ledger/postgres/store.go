package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stakeLedger/internal/ledger"
	"stakeLedger/internal/model"
)

var ErrInvalidConfig = errors.New("ledger/postgres: invalid config")

const uniqueViolation = "23505"

// Store provides Postgres persistence for the ledger.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// NewStore connects to dsn. Tables are created under schema when it is set.
func NewStore(ctx context.Context, dsn, schema string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: pg dsn is required", ErrInvalidConfig)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, schema: schema}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates every ledger table and index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if _, err := s.pool.Exec(ctx, SchemaSQL(s.schema)); err != nil {
		return fmt.Errorf("ledger/postgres: ensure schema: %w", err)
	}
	return nil
}

// Append writes events in a single transaction. The event_log insert
// enforces (tx_hash, log_index) uniqueness across every table and hands out
// the ingestion sequence.
func (s *Store) Append(ctx context.Context, events []model.Event) (ledger.AppendResult, error) {
	if s == nil || s.pool == nil {
		return ledger.AppendResult{}, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if err := ledger.ValidateBatch(events); err != nil {
		return ledger.AppendResult{}, err
	}
	if len(events) == 0 {
		return ledger.AppendResult{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.AppendResult{}, fmt.Errorf("ledger/postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var res ledger.AppendResult
	stamped := make([]*model.Provenance, 0, len(events))
	fail := func(err error) (ledger.AppendResult, error) {
		for _, meta := range stamped {
			meta.Sequence = 0
		}
		return ledger.AppendResult{}, err
	}

	for _, ev := range events {
		meta := ev.Meta()
		var seq int64
		err := tx.QueryRow(ctx, fmt.Sprintf(`
			INSERT INTO %s (tx_hash, log_index, table_name, block_number)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (tx_hash, log_index) DO NOTHING
			RETURNING sequence
		`, qualify(s.schema, eventLogTable)),
			strings.ToLower(meta.TxHash),
			int32(meta.LogIndex),
			ev.TableName(),
			int64(meta.BlockNumber),
		).Scan(&seq)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				res.Duplicates = append(res.Duplicates, meta.LogKey())
				continue
			}
			return fail(fmt.Errorf("ledger/postgres: register %s: %w", meta.LogKey(), err))
		}

		def, err := model.LookupTable(ev.TableName())
		if err != nil {
			return fail(err)
		}
		meta.Sequence = uint64(seq)
		stamped = append(stamped, meta)
		if _, err := tx.Exec(ctx, insertSQL(s.schema, def), ev.Values()...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fail(fmt.Errorf("%w: %s %s", ledger.ErrKeyConflict, def.Name, ev.Key()))
			}
			return fail(fmt.Errorf("ledger/postgres: insert %s %s: %w", def.Name, ev.Key(), err))
		}
		res.Appended++
		res.LastSequence = uint64(seq)
	}

	if err := tx.Commit(ctx); err != nil {
		return fail(fmt.Errorf("ledger/postgres: commit: %w", err))
	}
	return res, nil
}

// Events returns rows of one table matching an indexed column.
func (s *Store) Events(ctx context.Context, f ledger.Filter) ([]model.Event, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	def, err := f.Validate()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1) ORDER BY block_number, log_index`,
		selectList(def), qualify(s.schema, def.Name), pgx.Identifier{f.Column}.Sanitize())
	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(f.Value))
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: query %s: %w", def.Name, err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		ev := def.New()
		if err := rows.Scan(ev.Fields()...); err != nil {
			return nil, fmt.Errorf("ledger/postgres: scan %s: %w", def.Name, err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger/postgres: rows %s: %w", def.Name, err)
	}
	return out, nil
}

// LoadState returns the saved progress position of a named consumer.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var position int64
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT last_position FROM %s WHERE name=$1`, qualify(s.schema, stateTable)), name)
	if err := row.Scan(&position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(position), true, nil
}

// SaveState upserts the progress position of a named consumer.
func (s *Store) SaveState(ctx context.Context, name string, position uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, last_position, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_position = EXCLUDED.last_position, updated_at = now()
	`, qualify(s.schema, stateTable)), name, int64(position))
	return err
}

func insertSQL(schema string, def model.TableDef) string {
	cols := make([]string, 0, len(def.Columns))
	params := make([]string, 0, len(def.Columns))
	for i, col := range def.Columns {
		cols = append(cols, pgx.Identifier{col.Name}.Sanitize())
		param := fmt.Sprintf("$%d", i+1)
		if col.Type == model.TypeNumeric {
			param += "::numeric"
		}
		params = append(params, param)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qualify(schema, def.Name), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// selectList casts numeric columns to text so amounts scan into strings.
func selectList(def model.TableDef) string {
	cols := make([]string, 0, len(def.Columns))
	for _, col := range def.Columns {
		name := pgx.Identifier{col.Name}.Sanitize()
		if col.Type == model.TypeNumeric {
			name += "::text"
		}
		cols = append(cols, name)
	}
	return strings.Join(cols, ", ")
}
