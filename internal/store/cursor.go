package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ErrInvalidCursor is returned when a page token cannot be decoded.
var ErrInvalidCursor = errors.New("store: invalid cursor")

// Page selects a window of an ordered listing. After is the opaque token
// returned as Next by the previous page; empty means "from the start".
type Page struct {
	Limit int
	After string
}

// Normalize clamps the limit into [1, MaxPageLimit].
func (p Page) Normalize() Page {
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Cursor is the decoded form of a page token: the sort key and id of the last
// item already returned.
type Cursor struct {
	Key string `json:"k"`
	ID  string `json:"i"`
}

func EncodeCursor(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a page token. An empty token decodes to nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// After reports whether an item with (key, id) sorts strictly after c.
func (c *Cursor) After(key, id string) bool {
	if c == nil {
		return true
	}
	if key != c.Key {
		return key > c.Key
	}
	return id > c.ID
}
