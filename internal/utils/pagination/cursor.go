package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxLimit caps a caller-supplied page size.
const MaxLimit = 100

var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor marks the last row of a page ordered by (created_at DESC, id DESC).
// CreatedUnix is in milliseconds.
type Cursor struct {
	ID          string `json:"id"`
	CreatedUnix int64  `json:"ts"`
}

func (c Cursor) IsZero() bool { return c.ID == "" || c.CreatedUnix == 0 }

// Encode returns an opaque, URL-safe token for c.
func Encode(c Cursor) (string, error) {
	if c.IsZero() {
		return "", nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. The empty token is the first page.
func Decode(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if json.Unmarshal(raw, &c) != nil || c.IsZero() {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// ParseLimit reads a "limit" query value. Empty means unpaginated (0);
// values above MaxLimit are clamped.
func ParseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil, n <= 0:
		return 0, errors.New("limit must be a positive integer")
	case n > MaxLimit:
		return MaxLimit, nil
	}
	return n, nil
}
