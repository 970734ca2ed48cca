package compare

import "context"

// Row is a table row keyed by column name.
type Row map[string]any

// Criterion restricts a lookup to rows whose column normalizes to Value.
type Criterion struct {
	Column string
	Value  string
}

// BlockRange holds the min and max block numbers of a table.
type BlockRange struct {
	Min any
	Max any
}

// Source reads rows from one side of the comparison.
type Source interface {
	Count(ctx context.Context, table TableRef) (int64, error)
	BlockRange(ctx context.Context, table TableRef, column string) (BlockRange, error)
	// Rows returns every row ordered by the given columns.
	Rows(ctx context.Context, table TableRef, orderBy []string) ([]Row, error)
	// Find returns the first row matching every criterion. Criteria values
	// are already normalized; implementations compare against the
	// normalized column text.
	Find(ctx context.Context, table TableRef, criteria []Criterion) (Row, bool, error)
}
