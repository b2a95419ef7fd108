// Package pagination normalizes page sizes and opaque page tokens.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Cursor is the keyset position encoded in a page token.
type Cursor struct {
	CreatedAt int64  `json:"c"`
	ID        string `json:"i"`
	// Filter pins the token to the filter it was issued for.
	Filter string `json:"f,omitempty"`
}

// EncodeToken renders cursor as an opaque URL-safe token.
func EncodeToken(cursor Cursor) string {
	payload, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeToken parses a token produced by EncodeToken. An empty token yields a
// zero cursor.
func DecodeToken(token string) (Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Cursor{}, nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid page token: %w", err)
	}
	var cursor Cursor
	if err := json.Unmarshal(payload, &cursor); err != nil {
		return Cursor{}, fmt.Errorf("invalid page token: %w", err)
	}
	if cursor.ID == "" {
		return Cursor{}, fmt.Errorf("invalid page token: missing id")
	}
	return cursor, nil
}
