package domain

import "math"

// NormalizeLongitudes remaps each longitude into [-180, 180) via
// ((lon + 180) mod 360) - 180. The double mod keeps the intermediate
// non-negative so values west of Greenwich wrap correctly.
func NormalizeLongitudes(lons []float64) []float64 {
	out := make([]float64, len(lons))
	for i, lon := range lons {
		out[i] = math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
	}
	return out
}

// MagnitudesFromUV computes sqrt(u²+v²) elementwise.
func MagnitudesFromUV(u, v []float64) []float64 {
	out := make([]float64, len(u))
	for i := range u {
		out[i] = math.Hypot(u[i], v[i])
	}
	return out
}

// DirectionsFromUV computes the meteorological bearing (270 − degrees(atan2(v,u))) mod 360
// elementwise. atan2(0,0) is 0, so the zero vector yields 270 by construction.
func DirectionsFromUV(u, v []float64) []float64 {
	out := make([]float64, len(u))
	for i := range u {
		// atan2 ∈ (-180, 180], so 270-deg ∈ [90, 450) and one mod suffices.
		out[i] = math.Mod(270-rad2deg(math.Atan2(v[i], u[i])), 360)
	}
	return out
}

// UFromMagDir computes −magnitude·sin(direction·π/180) elementwise.
func UFromMagDir(magnitude, direction []float64) []float64 {
	out := make([]float64, len(magnitude))
	for i := range magnitude {
		out[i] = -magnitude[i] * math.Sin(deg2rad(direction[i]))
	}
	return out
}

// VFromMagDir computes −magnitude·cos(direction·π/180) elementwise.
func VFromMagDir(magnitude, direction []float64) []float64 {
	out := make([]float64, len(magnitude))
	for i := range magnitude {
		out[i] = -magnitude[i] * math.Cos(deg2rad(direction[i]))
	}
	return out
}

func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
