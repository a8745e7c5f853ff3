package domain

import "math"

// RecordBatch is a columnar table: one float64 column per variable, all
// columns the same length, NaN marking missing values. Column order is
// insertion order so output attribute order is stable across runs.
type RecordBatch struct {
	names []string
	data  map[string][]float64
}

// NewRecordBatch returns an empty batch.
func NewRecordBatch() *RecordBatch {
	return &RecordBatch{data: make(map[string][]float64)}
}

// SetColumn adds or replaces a column. New columns append to the order.
func (b *RecordBatch) SetColumn(name string, values []float64) {
	if _, ok := b.data[name]; !ok {
		b.names = append(b.names, name)
	}
	b.data[name] = values
}

// Columns returns the column names in insertion order.
func (b *RecordBatch) Columns() []string {
	return b.names
}

// HasColumn reports whether the batch contains the named column.
func (b *RecordBatch) HasColumn(name string) bool {
	_, ok := b.data[name]
	return ok
}

// Column returns the named column, or a MissingColumnError if the batch
// does not contain it.
func (b *RecordBatch) Column(name string) ([]float64, error) {
	col, ok := b.data[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}
	return col, nil
}

// Len returns the number of rows.
func (b *RecordBatch) Len() int {
	if len(b.names) == 0 {
		return 0
	}
	return len(b.data[b.names[0]])
}

// DropIncompleteRows returns a new batch containing only the rows that have
// no NaN in any column. Row order is preserved.
func (b *RecordBatch) DropIncompleteRows() *RecordBatch {
	n := b.Len()
	keep := make([]bool, n)
	kept := 0
	for i := 0; i < n; i++ {
		keep[i] = true
		for _, name := range b.names {
			if math.IsNaN(b.data[name][i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}

	out := NewRecordBatch()
	for _, name := range b.names {
		col := make([]float64, 0, kept)
		src := b.data[name]
		for i := 0; i < n; i++ {
			if keep[i] {
				col = append(col, src[i])
			}
		}
		out.SetColumn(name, col)
	}
	return out
}

// Truncate returns a new batch holding only the first n rows in their
// existing order. A batch shorter than n is returned as-is.
func (b *RecordBatch) Truncate(n int) *RecordBatch {
	if n < 0 || n >= b.Len() {
		return b
	}
	out := NewRecordBatch()
	for _, name := range b.names {
		out.SetColumn(name, b.data[name][:n])
	}
	return out
}
