package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stakeLedger/internal/prom"
)

// ErrMismatch is returned when at least one table differs.
var ErrMismatch = errors.New("compare: schemas differ")

// Comparator diffs the old schema against the new one.
type Comparator struct {
	oldSrc Source
	newSrc Source
	logger *zap.Logger
}

func NewComparator(oldSrc, newSrc Source, logger *zap.Logger) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{oldSrc: oldSrc, newSrc: newSrc, logger: logger}
}

// Run compares every planned table. A table that cannot be read is reported
// as a query_error mismatch and the run continues with the next table.
func (c *Comparator) Run(ctx context.Context, plans []TablePlan) (Report, error) {
	var report Report
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result := c.CompareTable(ctx, plan)
		for _, m := range result.Mismatches {
			prom.IncCompareMismatch(plan.Table, string(m.Kind))
		}
		c.logger.Info("table compared",
			zap.String("table", plan.Table),
			zap.Int64("old_rows", result.OldCount),
			zap.Int64("new_rows", result.NewCount),
			zap.Int("mismatches", len(result.Mismatches)),
		)
		report.Tables = append(report.Tables, result)
	}
	if !report.Passed() {
		return report, ErrMismatch
	}
	return report, nil
}

// CompareTable compares one table: row counts, block ranges, then every old
// row against its match in the new table.
func (c *Comparator) CompareTable(ctx context.Context, plan TablePlan) TableResult {
	result := TableResult{Table: plan.Table}
	add := func(kind MismatchKind, format string, args ...any) {
		result.Mismatches = append(result.Mismatches, Mismatch{Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	oldCount, err := c.oldSrc.Count(ctx, plan.Old)
	if err != nil {
		add(KindQueryError, "count %s: %v", plan.Old, err)
		return result
	}
	newCount, err := c.newSrc.Count(ctx, plan.New)
	if err != nil {
		add(KindQueryError, "count %s: %v", plan.New, err)
		return result
	}
	result.OldCount, result.NewCount = oldCount, newCount
	if oldCount != newCount {
		add(KindCount, "row count: old=%d new=%d", oldCount, newCount)
	}

	oldRange, err := c.oldSrc.BlockRange(ctx, plan.Old, plan.Block.Old)
	if err != nil {
		add(KindQueryError, "block range %s: %v", plan.Old, err)
		return result
	}
	newRange, err := c.newSrc.BlockRange(ctx, plan.New, plan.Block.New)
	if err != nil {
		add(KindQueryError, "block range %s: %v", plan.New, err)
		return result
	}
	result.OldRange = formatRange(oldRange)
	result.NewRange = formatRange(newRange)
	if result.OldRange != result.NewRange {
		add(KindRange, "block range: old=%s new=%s", result.OldRange, result.NewRange)
	}

	order := make([]string, 0, len(plan.Order))
	for _, col := range plan.Order {
		order = append(order, col.Old)
	}
	rows, err := c.oldSrc.Rows(ctx, plan.Old, order)
	if err != nil {
		add(KindQueryError, "read %s: %v", plan.Old, err)
		return result
	}

	for _, oldRow := range rows {
		if err := ctx.Err(); err != nil {
			add(KindQueryError, "aborted: %v", err)
			return result
		}
		result.RowsCompared++

		criteria := make([]Criterion, 0, len(plan.Match))
		for _, col := range plan.Match {
			criteria = append(criteria, Criterion{Column: col.New, Value: Normalize(oldRow[col.Old])})
		}
		label := rowLabel(criteria)

		newRow, found, err := c.newSrc.Find(ctx, plan.New, criteria)
		if err != nil {
			add(KindQueryError, "row %s: lookup failed: %v", label, err)
			continue
		}
		if !found {
			add(KindNotFound, "row %s: not found in %s", label, plan.New)
			continue
		}
		for _, col := range plan.Columns {
			oldVal := Normalize(oldRow[col.Old])
			newVal := Normalize(newRow[col.New])
			if oldVal != newVal {
				add(KindField, "row %s: %s -> %s: old=%q new=%q", label, col.Old, col.New, oldVal, newVal)
			}
		}
	}
	return result
}

func formatRange(r BlockRange) string {
	return Normalize(r.Min) + ".." + Normalize(r.Max)
}

func rowLabel(criteria []Criterion) string {
	parts := make([]string, 0, len(criteria))
	for _, c := range criteria {
		parts = append(parts, c.Column+"="+c.Value)
	}
	return strings.Join(parts, " ")
}
