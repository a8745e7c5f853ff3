// Package domain models the tabular record batches extracted from
// CF-compliant NetCDF datasets and the vector-field math applied to them.
//
// # Vector Conventions
//
// A record's 2-D vector quantity (wind, ocean current) has two equivalent
// representations:
//
//	Cartesian:  u (west→east component), v (south→north component)
//	Polar:      magnitude, direction
//
// Direction is a meteorological compass bearing: degrees clockwise from
// north, naming where the vector is coming FROM. The conversions are
//
//	magnitude = sqrt(u² + v²)
//	direction = (270 − degrees(atan2(v, u))) mod 360
//	u = −magnitude · sin(direction · π/180)
//	v = −magnitude · cos(direction · π/180)
//
// A northerly wind (blowing from the north, u=0, v<0) therefore has
// direction 0, an easterly (u<0, v=0) has direction 90. The zero vector is
// assigned direction 270 (atan2(0,0) is 0); callers must not treat that as
// an error, it is the fixed degenerate-case value.
//
// # Longitude Normalization
//
// Datasets whose longitude runs 0–360 are remapped into [−180, 180) with
// ((lon + 180) mod 360) − 180. The operation is idempotent: values already
// in range pass through unchanged.
//
// # Missing Values
//
// Missing values are represented as NaN after tabularization. A row with a
// NaN in ANY projected column is dropped whole before transformation; there
// is no per-field treatment.
package domain
