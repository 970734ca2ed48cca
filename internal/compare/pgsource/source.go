package pgsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"stakeLedger/internal/compare"
)

// Source reads comparison rows from a single Postgres connection.
type Source struct {
	conn *pgx.Conn
}

// Connect opens and pings a connection.
func Connect(ctx context.Context, url string) (*Source, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Source{conn: conn}, nil
}

func (s *Source) Close(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close(ctx)
}

func (s *Source) Count(ctx context.Context, table compare.TableRef) (int64, error) {
	var n int64
	query := "SELECT count(*) FROM " + ident(table)
	if err := s.conn.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Source) BlockRange(ctx context.Context, table compare.TableRef, column string) (compare.BlockRange, error) {
	col := pgx.Identifier{column}.Sanitize()
	query := fmt.Sprintf("SELECT min(%s), max(%s) FROM %s", col, col, ident(table))
	var r compare.BlockRange
	if err := s.conn.QueryRow(ctx, query).Scan(&r.Min, &r.Max); err != nil {
		return compare.BlockRange{}, fmt.Errorf("block range %s: %w", table, err)
	}
	return r, nil
}

func (s *Source) Rows(ctx context.Context, table compare.TableRef, orderBy []string) ([]compare.Row, error) {
	query := "SELECT * FROM " + ident(table)
	if len(orderBy) > 0 {
		cols := make([]string, 0, len(orderBy))
		for _, col := range orderBy {
			cols = append(cols, pgx.Identifier{col}.Sanitize())
		}
		query += " ORDER BY " + strings.Join(cols, ", ")
	}
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return out, nil
}

// Find compares lower(trim(column::text)) so mixed-case hex values written by
// either indexer still match.
func (s *Source) Find(ctx context.Context, table compare.TableRef, criteria []compare.Criterion) (compare.Row, bool, error) {
	query, args := findSQL(table, criteria)
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", table, err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", table, err)
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out[0], true, nil
}

func findSQL(table compare.TableRef, criteria []compare.Criterion) (string, []any) {
	where := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for i, c := range criteria {
		where = append(where, fmt.Sprintf("lower(trim(%s::text)) = $%d", pgx.Identifier{c.Column}.Sanitize(), i+1))
		args = append(args, c.Value)
	}
	query := "SELECT * FROM " + ident(table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " LIMIT 1", args
}

func collect(rows pgx.Rows) ([]compare.Row, error) {
	defer rows.Close()
	fields := rows.FieldDescriptions()
	var out []compare.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(compare.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func ident(table compare.TableRef) string {
	if table.Schema == "" {
		return pgx.Identifier{table.Name}.Sanitize()
	}
	return pgx.Identifier{table.Schema, table.Name}.Sanitize()
}
