package fx

import (
	"maps"
	"math"
)

// Settings holds named effect parameters. Numeric values go in Num, string
// values such as reverbType in Str.
type Settings struct {
	Num map[string]float64
	Str map[string]string
}

// GetNum returns the numeric value for key, or def if key is absent or not
// finite. A present zero is returned as zero.
func (s Settings) GetNum(key string, def float64) float64 {
	if s.Num == nil {
		return def
	}

	v, ok := s.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetStr returns the string value for key, or def if key is absent.
func (s Settings) GetStr(key, def string) string {
	if s.Str == nil {
		return def
	}

	v, ok := s.Str[key]
	if !ok {
		return def
	}

	return v
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	return Settings{
		Num: maps.Clone(s.Num),
		Str: maps.Clone(s.Str),
	}
}

// Resolve merges given over defaults. The result holds exactly the keys of
// defaults: keys present in given replace the default, unrecognized keys are
// dropped.
func Resolve(defaults, given Settings) Settings {
	out := Settings{
		Num: make(map[string]float64, len(defaults.Num)),
		Str: make(map[string]string, len(defaults.Str)),
	}

	for k, def := range defaults.Num {
		out.Num[k] = given.GetNum(k, def)
	}

	for k, def := range defaults.Str {
		out.Str[k] = given.GetStr(k, def)
	}

	return out
}
