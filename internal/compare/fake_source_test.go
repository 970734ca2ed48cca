package compare

import (
	"context"
	"errors"
	"sort"
	"strconv"
)

type memSource struct {
	tables  map[string][]Row
	findErr error
}

func newMemSource() *memSource {
	return &memSource{tables: make(map[string][]Row)}
}

func (m *memSource) add(table string, row Row) {
	m.tables[table] = append(m.tables[table], row)
}

func (m *memSource) Count(_ context.Context, table TableRef) (int64, error) {
	return int64(len(m.tables[table.Name])), nil
}

func (m *memSource) BlockRange(_ context.Context, table TableRef, column string) (BlockRange, error) {
	var r BlockRange
	var lo, hi int64
	for i, row := range m.tables[table.Name] {
		n, err := strconv.ParseInt(Normalize(row[column]), 10, 64)
		if err != nil {
			return BlockRange{}, err
		}
		if i == 0 || n < lo {
			lo = n
		}
		if i == 0 || n > hi {
			hi = n
		}
	}
	if len(m.tables[table.Name]) > 0 {
		r.Min, r.Max = lo, hi
	}
	return r, nil
}

func (m *memSource) Rows(_ context.Context, table TableRef, orderBy []string) ([]Row, error) {
	rows := append([]Row(nil), m.tables[table.Name]...)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, col := range orderBy {
			a, _ := strconv.ParseInt(Normalize(rows[i][col]), 10, 64)
			b, _ := strconv.ParseInt(Normalize(rows[j][col]), 10, 64)
			if a != b {
				return a < b
			}
		}
		return false
	})
	return rows, nil
}

func (m *memSource) Find(_ context.Context, table TableRef, criteria []Criterion) (Row, bool, error) {
	if m.findErr != nil {
		return nil, false, m.findErr
	}
	for _, row := range m.tables[table.Name] {
		ok := true
		for _, c := range criteria {
			if Normalize(row[c.Column]) != c.Value {
				ok = false
				break
			}
		}
		if ok {
			return row, true, nil
		}
	}
	return nil, false, nil
}

var errLookup = errors.New("connection reset")
