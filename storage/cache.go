package storage

import (
	"errors"
	"sort"
	"sync"
)

var ErrCacheClosed = errors.New("storage: cache already committed or discarded")

// CacheDB buffers writes on top of a parent Database. Reads fall through to
// the parent for keys the cache has not touched. Nothing reaches the parent
// until Commit.
type CacheDB struct {
	mu     sync.RWMutex
	parent Database
	dirty  map[string][]byte
	closed bool
}

func NewCacheDB(parent Database) *CacheDB {
	return &CacheDB{parent: parent, dirty: make(map[string][]byte)}
}

func (c *CacheDB) Put(key []byte, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	if value == nil {
		value = []byte{}
	}
	c.dirty[string(key)] = append([]byte{}, value...)
	return nil
}

func (c *CacheDB) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	value, ok := c.dirty[string(key)]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrCacheClosed
	}
	if ok {
		if value == nil {
			return nil, ErrNotFound
		}
		return append([]byte(nil), value...), nil
	}
	return c.parent.Get(key)
}

func (c *CacheDB) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	c.dirty[string(key)] = nil
	return nil
}

// Ops returns the buffered mutations in key order.
func (c *CacheDB) Ops() []Op {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ops := make([]Op, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, Op{Key: []byte(k), Value: c.dirty[k]})
	}
	return ops
}

// Commit flushes the buffered writes to the parent, atomically when the
// parent supports batches.
func (c *CacheDB) Commit() error {
	ops := c.Ops()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCacheClosed
	}
	c.closed = true
	c.mu.Unlock()

	if bw, ok := c.parent.(BatchWriter); ok {
		return bw.WriteBatch(ops)
	}
	for _, op := range ops {
		var err error
		if op.Value == nil {
			err = c.parent.Delete(op.Key)
		} else {
			err = c.parent.Put(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every buffered write.
func (c *CacheDB) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = make(map[string][]byte)
	c.closed = true
}

// Close satisfies Database. The parent is owned by the caller.
func (c *CacheDB) Close() {}

// WriteBatch lets a CacheDB act as the parent of another cache.
func (c *CacheDB) WriteBatch(ops []Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for _, op := range ops {
		if op.Value == nil {
			c.dirty[string(op.Key)] = nil
			continue
		}
		c.dirty[string(op.Key)] = append([]byte{}, op.Value...)
	}
	return nil
}
