// Package config loads and validates the declarative transform
// configuration that drives a conversion run.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/nc2geojson/internal/domain"
)

// Model is the typed form of the JSON transform configuration. Optional
// derivations are triggered by presence: a source pair participates only
// when both of its column names are set.
type Model struct {
	LonVar string `json:"lonVar"`
	LatVar string `json:"latVar"`

	// Is360 is a pointer so that an absent key is distinguishable from
	// false; absence is a fatal ConfigError rather than a silent default.
	Is360 *bool `json:"is360"`

	UVar      string `json:"uVar"`
	VVar      string `json:"vVar"`
	ConvertUV bool   `json:"convertUV"`

	MagnitudeVar string `json:"magnitudeVar"`
	DirectionVar string `json:"directionVar"`

	// Legacy key pair; configs using these emit "speed"/"dir" instead of
	// "magnitude"/"direction".
	SpeedVar string `json:"speedVar"`
	DirVar   string `json:"dirVar"`

	ConvertMagDir bool `json:"convertMagDir"`

	ExtraVars StringList `json:"extraVars"`
}

// StringList decodes either a single JSON string or an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Load reads and validates a transform configuration file. All failures are
// ConfigErrors so the caller can classify them.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}

	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &domain.ConfigError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate runs the single fail-fast validation pass. The configuration is
// trusted beyond this; columns are only checked against the dataset at read
// time.
func (m *Model) validate() error {
	if m.LonVar == "" {
		return &domain.ConfigError{Reason: `missing required key "lonVar"`}
	}
	if m.LatVar == "" {
		return &domain.ConfigError{Reason: `missing required key "latVar"`}
	}
	if m.Is360 == nil {
		return &domain.ConfigError{Reason: `missing required key "is360"`}
	}

	if halfSet(m.UVar, m.VVar) {
		return &domain.ConfigError{Reason: `"uVar" and "vVar" must be configured together`}
	}
	if halfSet(m.MagnitudeVar, m.DirectionVar) {
		return &domain.ConfigError{Reason: `"magnitudeVar" and "directionVar" must be configured together`}
	}
	if halfSet(m.SpeedVar, m.DirVar) {
		return &domain.ConfigError{Reason: `"speedVar" and "dirVar" must be configured together`}
	}
	if m.MagnitudeVar != "" && m.SpeedVar != "" {
		return &domain.ConfigError{Reason: `"magnitudeVar"/"directionVar" and "speedVar"/"dirVar" cannot be mixed`}
	}

	if m.ConvertUV && m.UVar == "" {
		return &domain.ConfigError{Reason: `"convertUV" requires "uVar" and "vVar"`}
	}
	if m.ConvertMagDir && m.MagnitudeVar == "" && m.SpeedVar == "" {
		return &domain.ConfigError{Reason: `"convertMagDir" requires a magnitude/direction column pair`}
	}

	return nil
}

func halfSet(a, b string) bool {
	return (a == "") != (b == "")
}

// Mapping resolves the configuration into the transformer's field mapping,
// fixing the polar output names to the configured naming variant.
func (m *Model) Mapping() domain.FieldMapping {
	mapping := domain.FieldMapping{
		UVar:          m.UVar,
		VVar:          m.VVar,
		ConvertUV:     m.ConvertUV,
		MagVar:        m.MagnitudeVar,
		DirVar:        m.DirectionVar,
		ConvertMagDir: m.ConvertMagDir,
		MagName:       "magnitude",
		DirName:       "direction",
		ExtraVars:     m.ExtraVars,
	}
	if m.SpeedVar != "" && m.DirVar != "" {
		mapping.MagVar = m.SpeedVar
		mapping.DirVar = m.DirVar
		mapping.MagName = "speed"
		mapping.DirName = "dir"
	}
	return mapping
}

// Columns lists every dataset column the configuration references, in a
// stable order and without duplicates. This is the projection the reader
// tabularizes.
func (m *Model) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	add(m.LonVar)
	add(m.LatVar)
	add(m.UVar)
	add(m.VVar)
	add(m.MagnitudeVar)
	add(m.DirectionVar)
	add(m.SpeedVar)
	add(m.DirVar)
	for _, name := range m.ExtraVars {
		add(name)
	}
	return out
}
