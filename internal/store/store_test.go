package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable sentinel", ErrUnavailable, true},
		{"wrapped unavailable", fmt.Errorf("get profile: %w", ErrUnavailable), true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"insufficient privilege", &pgconn.PgError{Code: "42501"}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"offline message", errors.New("client is offline"), true},
		{"permission denied", ErrPermissionDenied, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsPermissionDenied(t *testing.T) {
	assert.True(t, IsPermissionDenied(ErrPermissionDenied))
	assert.True(t, IsPermissionDenied(fmt.Errorf("read: %w", &pgconn.PgError{Code: "42501"})))
	assert.False(t, IsPermissionDenied(&pgconn.PgError{Code: "08006"}))
	assert.False(t, IsPermissionDenied(nil))
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, DefaultPageLimit, Page{}.Normalize().Limit)
	assert.Equal(t, DefaultPageLimit, Page{Limit: -3}.Normalize().Limit)
	assert.Equal(t, 7, Page{Limit: 7}.Normalize().Limit)
	assert.Equal(t, MaxPageLimit, Page{Limit: 5000}.Normalize().Limit)
	assert.Equal(t, "tok", Page{After: "tok"}.Normalize().After)
}

func TestCursorRoundTrip(t *testing.T) {
	token := EncodeCursor(Cursor{Key: "Lions", ID: "t-2"})
	c, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, &Cursor{Key: "Lions", ID: "t-2"}, c)

	c, err = DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, c)

	for _, bad := range []string{"!!!", "bm90IGpzb24", EncodeCursor(Cursor{Key: "x"})} {
		_, err := DecodeCursor(bad)
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestCursorAfter(t *testing.T) {
	var none *Cursor
	assert.True(t, none.After("anything", "id"))

	c := &Cursor{Key: "Lions", ID: "t-2"}
	assert.True(t, c.After("Tigers", "t-1"))
	assert.True(t, c.After("Lions", "t-3"))
	assert.False(t, c.After("Lions", "t-2"))
	assert.False(t, c.After("Lions", "t-1"))
	assert.False(t, c.After("Bears", "t-9"))
}
