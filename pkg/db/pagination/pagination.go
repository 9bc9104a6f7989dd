// Package pagination implements opaque cursor paging for list endpoints.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=25" validate:"gte=1,lte=250"`
}

// Cursor is the decoded form of a page token.
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(cursor Cursor) (string, error) {
	b, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// BuildCursorPageInfo derives page info from a result set that was fetched
// with one extra row. The caller trims the extra row when HasMore is set.
func BuildCursorPageInfo[T any](items []*T, pageSize int, extractCursor func(*T) string) *PageInfo {
	if len(items) == 0 {
		return &PageInfo{HasMore: false}
	}

	hasMore := false
	if len(items) > pageSize {
		hasMore = true
		items = items[:pageSize]
	}

	return &PageInfo{
		HasMore:       hasMore,
		NextPageToken: extractCursor(items[len(items)-1]),
	}
}
