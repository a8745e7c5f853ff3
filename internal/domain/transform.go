package domain

import "log/slog"

// FieldMapping tells TransformRecords which batch columns feed which output
// fields. It is the resolved form of the run configuration: the polar output
// names are already fixed to one naming variant (magnitude/direction or the
// legacy speed/dir).
type FieldMapping struct {
	UVar      string
	VVar      string
	ConvertUV bool

	MagVar        string
	DirVar        string
	ConvertMagDir bool

	// Output names for the polar pair.
	MagName string
	DirName string

	ExtraVars []string
}

// TransformRecords builds the output attribute table for one record batch.
// The branches are independent; a batch may trigger more than one.
//
//   - Polar sources configured: pass magnitude/direction through under the
//     mapped output names, and additionally derive u/v when ConvertMagDir
//     is set.
//   - Cartesian sources configured: derive magnitude/direction when
//     ConvertUV is set, replacing the u/v output (raw components can still
//     be exported via ExtraVars); otherwise pass u/v through.
//   - Every extra variable is copied through under its original name.
//
// Any configured column missing from the batch fails with a
// MissingColumnError.
func TransformRecords(batch *RecordBatch, m FieldMapping, logger *slog.Logger) (*RecordBatch, error) {
	out := NewRecordBatch()

	if m.MagVar != "" && m.DirVar != "" {
		mags, err := batch.Column(m.MagVar)
		if err != nil {
			return nil, err
		}
		dirs, err := batch.Column(m.DirVar)
		if err != nil {
			return nil, err
		}
		if m.ConvertMagDir {
			logger.Info("deriving u and v components",
				"magnitude_column", m.MagVar, "direction_column", m.DirVar)
			out.SetColumn("u", UFromMagDir(mags, dirs))
			out.SetColumn("v", VFromMagDir(mags, dirs))
		}
		logger.Info("using magnitude and direction columns",
			"magnitude_column", m.MagVar, "direction_column", m.DirVar)
		out.SetColumn(m.MagName, mags)
		out.SetColumn(m.DirName, dirs)
	}

	if m.UVar != "" && m.VVar != "" {
		us, err := batch.Column(m.UVar)
		if err != nil {
			return nil, err
		}
		vs, err := batch.Column(m.VVar)
		if err != nil {
			return nil, err
		}
		if m.ConvertUV {
			logger.Info("deriving magnitude and direction",
				"u_column", m.UVar, "v_column", m.VVar)
			out.SetColumn(m.MagName, MagnitudesFromUV(us, vs))
			out.SetColumn(m.DirName, DirectionsFromUV(us, vs))
		} else {
			logger.Info("using u and v columns", "u_column", m.UVar, "v_column", m.VVar)
			out.SetColumn("u", us)
			out.SetColumn("v", vs)
		}
	}

	for _, name := range m.ExtraVars {
		col, err := batch.Column(name)
		if err != nil {
			return nil, err
		}
		logger.Info("including extra variable", "column", name)
		out.SetColumn(name, col)
	}

	return out, nil
}
