// File: pkg/storage/cursor.go
package storage

import (
	"context"
	"sync"
)

// Fetches one provider page starting at token ("" for the first page) and returns the
// token of the following page, or "" once the listing is exhausted
type PageFetcher func(ctx context.Context, token string) (items []ListItem, next string, err error)

type cursorKey struct {
	bucket string
	path   string
	offset int
}

type cursor struct {
	token string
	skip  int
}

// CursorCache maps offset-based pages onto providers that only page with continuation tokens
// Each served window records where the next one starts, so a sequential walk costs one
// provider call per page instead of re-listing from the start
type CursorCache struct {
	mu      sync.Mutex
	cursors map[cursorKey]cursor
}

func NewCursorCache() *CursorCache {
	return &CursorCache{cursors: make(map[cursorKey]cursor)}
}

// Returns the items in [page.Offset, page.Offset+page.Limit) of the listing produced by fetch
func (c *CursorCache) Window(ctx context.Context, bucket, path string, page Page, fetch PageFetcher) ([]ListItem, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageSize
	}

	cur, ok := c.lookup(bucket, path, page.Offset)
	if !ok {
		// Unknown offset: walk from the beginning and skip over the preceding items
		cur = cursor{skip: page.Offset}
	}

	out := make([]ListItem, 0, page.Limit)
	for {
		items, next, err := fetch(ctx, cur.token)
		if err != nil {
			return nil, err
		}

		skip := cur.skip
		for i, item := range items {
			if skip > 0 {
				skip--
				continue
			}
			if len(out) == page.Limit {
				c.store(bucket, path, page.Offset+page.Limit, cursor{token: cur.token, skip: i})
				return out, nil
			}
			out = append(out, item)
		}

		if next == "" {
			if len(out) == page.Limit {
				c.store(bucket, path, page.Offset+page.Limit, cursor{token: cur.token, skip: len(items)})
			}
			return out, nil
		}
		cur = cursor{token: next, skip: skip}
		if len(out) == page.Limit {
			c.store(bucket, path, page.Offset+page.Limit, cur)
			return out, nil
		}
	}
}

func (c *CursorCache) lookup(bucket, path string, offset int) (cursor, bool) {
	if offset == 0 {
		return cursor{}, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.cursors[cursorKey{bucket: bucket, path: path, offset: offset}]
	return cur, ok
}

func (c *CursorCache) store(bucket, path string, offset int, cur cursor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors[cursorKey{bucket: bucket, path: path, offset: offset}] = cur
}
