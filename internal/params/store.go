// Package params implements the host-supplied parameter store:
// a typed, linear-scan lookup over the UserParameter array the host
// passes to Open, plus resolution of the small set of named options the
// driver recognizes.
package params

// RawParameter is a single host-supplied parameter, already decoded from
// the C UserParameter array by cmd/exrdisplay. Exactly one of the value
// slices is populated, selected by Type.
type RawParameter struct {
	Name          string
	Type          byte // 'i' (int32), 'f' (float32), or 's' (string)
	Int32Values   []int32
	Float32Values []float32
	StringValues  []string
}

// Value is a tagged union over the three wire types a parameter can carry,
// always as a slice — a scalar parameter is simply a one-element slice.
type Value struct {
	Type          byte
	Int32Values   []int32
	Float32Values []float32
	StringValues  []string
}

// Store is the parsed, name-indexed parameter table for one Open call.
type Store struct {
	values map[string]Value
}

// Parse builds a Store from the raw host parameter list. A later entry
// with the same name overwrites an earlier one, matching a linear scan
// over the host's array where last-match-wins.
func Parse(raw []RawParameter) *Store {
	s := &Store{values: make(map[string]Value, len(raw))}
	for _, p := range raw {
		s.values[p.Name] = Value{
			Type:          p.Type,
			Int32Values:   p.Int32Values,
			Float32Values: p.Float32Values,
			StringValues:  p.StringValues,
		}
	}
	return s
}

// Float32 returns the named parameter as a scalar float32. ok is false if
// the parameter is absent, has the wrong wire type, or is not length 1 —
// a type or length mismatch is treated as if the parameter were absent.
func (s *Store) Float32(name string) (float32, bool) {
	v, found := s.values[name]
	if !found || v.Type != 'f' || len(v.Float32Values) != 1 {
		return 0, false
	}
	return v.Float32Values[0], true
}

// Float32Array returns the named parameter as a float32 array of exactly
// length n. ok is false on absence, wrong type, or wrong length.
func (s *Store) Float32Array(name string, n int) ([]float32, bool) {
	v, found := s.values[name]
	if !found || v.Type != 'f' || len(v.Float32Values) != n {
		return nil, false
	}
	return v.Float32Values, true
}

// Int32 returns the named parameter as a scalar int32.
func (s *Store) Int32(name string) (int32, bool) {
	v, found := s.values[name]
	if !found || v.Type != 'i' || len(v.Int32Values) != 1 {
		return 0, false
	}
	return v.Int32Values[0], true
}

// Int32Array returns the named parameter as an int32 array of exactly
// length n.
func (s *Store) Int32Array(name string, n int) ([]int32, bool) {
	v, found := s.values[name]
	if !found || v.Type != 'i' || len(v.Int32Values) != n {
		return nil, false
	}
	return v.Int32Values, true
}

// String returns the named parameter as a scalar string.
func (s *Store) String(name string) (string, bool) {
	v, found := s.values[name]
	if !found || v.Type != 's' || len(v.StringValues) != 1 {
		return "", false
	}
	return v.StringValues[0], true
}

// Len reports how many distinct parameter names are stored.
func (s *Store) Len() int {
	return len(s.values)
}
