// Package netcdfio reads CF-compliant NetCDF datasets and flattens them
// into columnar record batches.
package netcdfio

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/nc2geojson/internal/domain"
)

// Reader opens NetCDF files and tabularizes a projection of their
// variables. It implements pipeline.DatasetReader.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a NetCDF dataset reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadBatch opens the dataset at path and flattens the named columns into
// one row per coordinate tuple. The row space is the cartesian product of
// the union of the columns' dimensions; variables are broadcast over the
// dimensions they lack (coordinate variables in a CF grid are 1-D, data
// variables span the full grid). Fill values become NaN.
func (r *Reader) ReadBatch(path string, columns []string) (*domain.RecordBatch, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, &domain.InputReadError{Path: path, Err: err}
	}
	defer nc.Close()

	available := nc.ListVariables()

	vars := make([]gridVariable, 0, len(columns))
	for _, name := range columns {
		if !slices.Contains(available, name) {
			return nil, &domain.MissingColumnError{Column: name}
		}
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, &domain.InputReadError{Path: path, Err: fmt.Errorf("variable %q: %w", name, err)}
		}
		gv, err := newGridVariable(name, v)
		if err != nil {
			return nil, &domain.InputReadError{Path: path, Err: err}
		}
		vars = append(vars, gv)
	}

	batch, err := tabularize(vars)
	if err != nil {
		return nil, &domain.InputReadError{Path: path, Err: err}
	}

	r.logger.Debug("tabularized dataset",
		"input", path, "rows", batch.Len(), "columns", len(columns))
	return batch, nil
}

// gridVariable is one decoded variable: its dimension names, shape, and
// values flattened row-major into float64 with fill values as NaN.
type gridVariable struct {
	name  string
	dims  []string
	shape []int
	flat  []float64
}

func newGridVariable(name string, v *api.Variable) (gridVariable, error) {
	flat, shape, err := flatten(v.Values)
	if err != nil {
		return gridVariable{}, fmt.Errorf("variable %q: %w", name, err)
	}
	if len(shape) != len(v.Dimensions) {
		return gridVariable{}, fmt.Errorf("variable %q: %d dimensions but rank %d values",
			name, len(v.Dimensions), len(shape))
	}

	if fill, ok := fillValue(v.Attributes); ok {
		for i, x := range flat {
			if x == fill {
				flat[i] = math.NaN()
			}
		}
	}

	return gridVariable{name: name, dims: v.Dimensions, shape: shape, flat: flat}, nil
}

// fillValue extracts the CF fill/missing sentinel from a variable's
// attributes, preferring _FillValue over missing_value.
func fillValue(attrs api.AttributeMap) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	for _, key := range []string{"_FillValue", "missing_value"} {
		raw, has := attrs.Get(key)
		if !has {
			continue
		}
		if f, ok := scalarToFloat(raw); ok {
			return f, true
		}
	}
	return 0, false
}

// scalarToFloat widens a numeric attribute value to float64. Attributes may
// arrive as a bare scalar or a length-1 slice.
func scalarToFloat(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() != 1 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// flatten walks arbitrarily nested numeric slices (the decoder returns e.g.
// [][]float32 for a 2-D variable) and produces a row-major float64 slice
// plus the shape. Scalars flatten to a single value with an empty shape.
func flatten(values any) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)

	var shape []int
	for v := rv; v.Kind() == reflect.Slice || v.Kind() == reflect.Array; {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
	}

	size := 1
	for _, s := range shape {
		size *= s
	}
	flat := make([]float64, 0, size)

	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if depth < len(shape) {
			if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
				return fmt.Errorf("ragged value nesting at depth %d", depth)
			}
			if v.Len() != shape[depth] {
				return fmt.Errorf("ragged dimension at depth %d: %d != %d", depth, v.Len(), shape[depth])
			}
			for i := 0; i < v.Len(); i++ {
				if err := walk(v.Index(i), depth+1); err != nil {
					return err
				}
			}
			return nil
		}

		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			flat = append(flat, v.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			flat = append(flat, float64(v.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			flat = append(flat, float64(v.Uint()))
		default:
			return fmt.Errorf("unsupported value type %s", v.Kind())
		}
		return nil
	}

	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return flat, shape, nil
}

// tabularize builds the columnar batch: one row per tuple in the cartesian
// product of the union of the variables' dimensions (in order of first
// appearance), each variable indexed by the dimensions it has and broadcast
// over the rest.
func tabularize(vars []gridVariable) (*domain.RecordBatch, error) {
	var dimOrder []string
	dimSizes := make(map[string]int)
	for _, v := range vars {
		for i, dim := range v.dims {
			size, seen := dimSizes[dim]
			if !seen {
				dimSizes[dim] = v.shape[i]
				dimOrder = append(dimOrder, dim)
				continue
			}
			if size != v.shape[i] {
				return nil, fmt.Errorf("dimension %q has conflicting sizes %d and %d", dim, size, v.shape[i])
			}
		}
	}

	rows := 1
	for _, dim := range dimOrder {
		rows *= dimSizes[dim]
	}

	// Row-major strides over the union dimension order.
	rowStrides := make([]int, len(dimOrder))
	stride := 1
	for i := len(dimOrder) - 1; i >= 0; i-- {
		rowStrides[i] = stride
		stride *= dimSizes[dimOrder[i]]
	}

	batch := domain.NewRecordBatch()
	for _, v := range vars {
		// Per-union-dimension coefficient into the variable's flat values;
		// zero for dimensions the variable lacks (broadcast).
		coeffs := make([]int, len(dimOrder))
		varStride := 1
		for i := len(v.dims) - 1; i >= 0; i-- {
			idx := slices.Index(dimOrder, v.dims[i])
			coeffs[idx] = varStride
			varStride *= v.shape[i]
		}

		col := make([]float64, rows)
		for row := 0; row < rows; row++ {
			idx := 0
			for d := range dimOrder {
				digit := (row / rowStrides[d]) % dimSizes[dimOrder[d]]
				idx += digit * coeffs[d]
			}
			col[row] = v.flat[idx]
		}
		batch.SetColumn(v.name, col)
	}

	return batch, nil
}
