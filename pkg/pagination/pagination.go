// Package pagination pages newest-first listings with opaque keyset cursors.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var errMalformedCursor = errors.New("malformed cursor")

// Params are the limit and cursor a client asked for.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor identifies the last row a client has seen in (At DESC, ID DESC)
// order.
type Cursor struct {
	At time.Time `json:"at"`
	ID uuid.UUID `json:"id"`
}

// Page is one slice of a listing plus the cursor for the next one.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Clamp bounds limit to [1, MaxLimit], using DefaultLimit for zero or less.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// FetchSize is the row count to request: one past the page so a following
// page can be detected.
func FetchSize(limit int) int {
	return Clamp(limit) + 1
}

// Trim cuts rows fetched with FetchSize down to the page and derives the
// next cursor from the last row kept.
func Trim[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	size := Clamp(limit)
	if len(rows) <= size {
		return Page[T]{Items: rows}
	}
	rows = rows[:size]
	return Page[T]{Items: rows, NextCursor: key(rows[size-1]).Encode()}
}

func (c Cursor) Encode() string {
	raw, _ := json.Marshal(Cursor{At: c.At.UTC(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes an opaque cursor. A blank value is the first page and
// yields nil.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	if c.At.IsZero() || c.ID == uuid.Nil {
		return nil, errMalformedCursor
	}
	return &c, nil
}

// After is a gorm scope that orders by (atColumn, id) descending and skips
// everything up to and including c. A nil cursor only applies the ordering.
func After(c *Cursor, atColumn string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if c != nil {
			q = q.Where(
				fmt.Sprintf("(%[1]s < ?) OR (%[1]s = ? AND id < ?)", atColumn),
				c.At, c.At, c.ID,
			)
		}
		return q.Order(atColumn + " DESC").Order("id DESC")
	}
}
