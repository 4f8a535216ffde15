package ygggo_session

import (
	"container/list"
	"context"
	"database/sql"

	"github.com/hashicorp/go-multierror"
)

// stmtCache is an LRU of prepared statements bound to the live connection.
// Only the actor touches it.
type stmtCache struct {
	cap int
	ll  *list.List // front = most recently used
	m   map[string]*list.Element

	// optional hooks
	onLookup     func(hit bool)
	onEvictError func(err error)
}

type stmtEntry struct {
	key  string
	stmt *sql.Stmt
}

func newStmtCache(capacity int) *stmtCache {
	if capacity < 0 {
		capacity = 0
	}
	return &stmtCache{cap: capacity, ll: list.New(), m: make(map[string]*list.Element)}
}

func (c *stmtCache) enabled() bool { return c != nil && c.cap > 0 }

// get returns the statement for query, preparing it on conn on a miss.
func (c *stmtCache) get(ctx context.Context, conn *sql.Conn, query string) (*sql.Stmt, error) {
	if ele, ok := c.m[query]; ok {
		c.ll.MoveToFront(ele)
		c.lookup(true)
		return ele.Value.(*stmtEntry).stmt, nil
	}
	st, err := conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	c.lookup(false)
	c.m[query] = c.ll.PushFront(&stmtEntry{key: query, stmt: st})
	if c.ll.Len() > c.cap {
		c.evictLRU()
	}
	return st, nil
}

func (c *stmtCache) evictLRU() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	c.ll.Remove(back)
	e := back.Value.(*stmtEntry)
	delete(c.m, e.key)
	if err := e.stmt.Close(); err != nil && c.onEvictError != nil {
		c.onEvictError(err)
	}
}

func (c *stmtCache) lookup(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

func (c *stmtCache) closeAll() error {
	if c == nil {
		return nil
	}
	var result *multierror.Error
	for e := c.ll.Front(); e != nil; e = e.Next() {
		if err := e.Value.(*stmtEntry).stmt.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.ll.Init()
	clear(c.m)
	return result.ErrorOrNil()
}

func (c *stmtCache) len() int {
	if c == nil {
		return 0
	}
	return c.ll.Len()
}
