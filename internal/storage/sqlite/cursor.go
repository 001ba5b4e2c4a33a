package sqlite

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

// pageKey is the keyset position of the last record of a page.
type pageKey struct {
	sentAt int64
	id     string
}

func encodeCursor(k pageKey) string {
	raw := strconv.FormatInt(k.sentAt, 10) + ":" + k.id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (pageKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return pageKey{}, fmt.Errorf("sqlite storage: %w: %v", domain.ErrInvalidCursor, err)
	}
	sentAt, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return pageKey{}, fmt.Errorf("sqlite storage: %w: malformed position", domain.ErrInvalidCursor)
	}
	nanos, err := strconv.ParseInt(sentAt, 10, 64)
	if err != nil {
		return pageKey{}, fmt.Errorf("sqlite storage: %w: %v", domain.ErrInvalidCursor, err)
	}
	return pageKey{sentAt: nanos, id: id}, nil
}
