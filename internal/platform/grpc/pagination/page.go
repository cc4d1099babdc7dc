// Package pagination normalizes list paging parameters and id cursors.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidCursor reports a page token that is not a cursor this package issued.
var ErrInvalidCursor = errors.New("invalid page cursor")

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	return max(pageSize, 1)
}

// FormatCursor encodes the id of the last row of a page as the next token.
func FormatCursor(lastID int64) string {
	return strconv.FormatInt(lastID, 10)
}

// ParseCursor decodes a token from FormatCursor. An empty token is the first
// page and yields zero.
func ParseCursor(token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id < 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}
