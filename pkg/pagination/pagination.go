package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params are the keyset inputs read from ?limit= and ?cursor=.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last row of a page ordered by (created_at, id) DESC.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

var errMalformed = errors.New("malformed cursor")

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer asks for one extra row so the caller can tell whether a
// next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor produces a URL-safe opaque token.
func EncodeCursor(c Cursor) string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor returns nil for an empty token.
func ParseCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, errMalformed
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", errMalformed, err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", errMalformed, err)
	}
	return &Cursor{CreatedAt: createdAt, ID: parsedID}, nil
}

// After returns the keyset predicate selecting rows strictly after c in
// (created_at, id) DESC order. table qualifies the columns and may be empty.
func (c Cursor) After(table string) (string, []any) {
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	clause := fmt.Sprintf("(%[1]s < ?) OR (%[1]s = ? AND %[2]s < ?)", col("created_at"), col("id"))
	return clause, []any{c.CreatedAt, c.CreatedAt, c.ID}
}

// Page trims a LimitWithBuffer result to limit rows and returns the cursor
// of the next page, or "" on the last page.
func Page[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	return rows, EncodeCursor(key(rows[len(rows)-1]))
}
