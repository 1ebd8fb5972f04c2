// internal/models/base.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// StringSet is a JSON column holding distinct strings, used for rosters and
// id lists stored on a document.
type StringSet []string

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan unmarshals a JSON column into the set.
func (s *StringSet) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = StringSet{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("StringSet: expected []byte or string, got %T", src)
	}
	return json.Unmarshal(b, s)
}

func (s StringSet) Contains(v string) bool {
	return slices.Contains(s, v)
}

// Add returns the set with v appended unless it is already present.
func (s StringSet) Add(v string) (StringSet, bool) {
	if s.Contains(v) {
		return s, false
	}
	return append(s, v), true
}

// Remove returns the set without v.
func (s StringSet) Remove(v string) (StringSet, bool) {
	i := slices.Index(s, v)
	if i < 0 {
		return s, false
	}
	out := make(StringSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...), true
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	if s == nil {
		return StringSet{}
	}
	return slices.Clone(s)
}
