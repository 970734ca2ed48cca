package compare

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// MismatchKind classifies a difference between the two schemas.
type MismatchKind string

const (
	KindCount      MismatchKind = "count"
	KindRange      MismatchKind = "range"
	KindNotFound   MismatchKind = "not_found"
	KindField      MismatchKind = "field"
	KindQueryError MismatchKind = "query_error"
)

// Mismatch is one difference found while comparing a table.
type Mismatch struct {
	Kind    MismatchKind
	Message string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("[%s] %s", m.Kind, m.Message)
}

// TableResult is the outcome of comparing one table.
type TableResult struct {
	Table        string
	OldCount     int64
	NewCount     int64
	OldRange     string
	NewRange     string
	RowsCompared int
	Mismatches   []Mismatch
}

// Passed reports whether the table compared clean.
func (r TableResult) Passed() bool {
	return len(r.Mismatches) == 0
}

// Count returns the number of mismatches of a kind.
func (r TableResult) Count(kind MismatchKind) int {
	n := 0
	for _, m := range r.Mismatches {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// Report is the outcome of a full comparison.
type Report struct {
	Tables []TableResult
}

// Passed reports whether every table compared clean.
func (r Report) Passed() bool {
	for _, t := range r.Tables {
		if !t.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the names of tables with mismatches.
func (r Report) Failed() []string {
	var out []string
	for _, t := range r.Tables {
		if !t.Passed() {
			out = append(out, t.Table)
		}
	}
	return out
}

// Print writes the human-readable report. At most examples mismatches are
// listed per table; the rest are summarized.
func (r Report) Print(w io.Writer, examples int) {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)

	for _, t := range r.Tables {
		if t.Passed() {
			ok.Fprintf(w, "PASS ")
			fmt.Fprintf(w, "%s: %d rows, blocks %s\n", t.Table, t.OldCount, t.OldRange)
			continue
		}
		bad.Fprintf(w, "FAIL ")
		fmt.Fprintf(w, "%s: %d mismatches (old %d rows, new %d rows)\n", t.Table, len(t.Mismatches), t.OldCount, t.NewCount)
		shown := t.Mismatches
		if examples >= 0 && len(shown) > examples {
			shown = shown[:examples]
		}
		for _, m := range shown {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		if rest := len(t.Mismatches) - len(shown); rest > 0 {
			dim.Fprintf(w, "  ...and %d more\n", rest)
		}
	}

	failed := r.Failed()
	fmt.Fprintln(w)
	if len(failed) == 0 {
		ok.Fprintf(w, "all %d tables match\n", len(r.Tables))
		return
	}
	bad.Fprintf(w, "%d of %d tables differ: %v\n", len(failed), len(r.Tables), failed)
}
