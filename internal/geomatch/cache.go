package geomatch

import (
	"sync"

	"github.com/paulmach/orb"

	"overlay/internal/graph"
)

// Cache is a concurrent, fixed-capacity LRU of edge polylines, shared across
// refreshes and threads. It avoids repeatedly reconstructing a polyline from
// graph internals; at most one caller per edge id pays the reconstruction
// cost.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[graph.EdgeID]*cacheNode
	head     *cacheNode // most recently used
	tail     *cacheNode // least recently used
}

type cacheNode struct {
	id       graph.EdgeID
	line     orb.LineString
	prev     *cacheNode
	next     *cacheNode
	bound    bbox
	expanded bbox
}

// NewCache builds a Cache with room for capacity edges (capacity <= 0 means
// unbounded).
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[graph.EdgeID]*cacheNode),
	}
}

// Get returns the cached, bounding-box-annotated polyline for id, fetching
// and inserting it from provider on a miss.
func (c *Cache) Get(provider graph.Provider, id graph.EdgeID) (line orb.LineString, box bbox, expanded bbox, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, hit := c.entries[id]; hit {
		c.moveToFront(node)

		return node.line, node.bound, node.expanded, true
	}

	polyline, found := provider.EdgePolyline(id)
	if !found {
		return nil, bbox{}, bbox{}, false
	}

	b := boundOf(polyline)
	node := &cacheNode{id: id, line: polyline, bound: b, expanded: b.expanded()}

	c.insertFront(node)
	c.evictIfNeeded()

	return node.line, node.bound, node.expanded, true
}

// Clear drops all cached entries. Safe to call concurrently with Get; it
// only discards derived data, never graph state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[graph.EdgeID]*cacheNode)
	c.head = nil
	c.tail = nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) moveToFront(node *cacheNode) {
	if c.head == node {
		return
	}

	c.unlink(node)
	c.insertFront(node)
}

func (c *Cache) unlink(node *cacheNode) {
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	if c.head == node {
		c.head = node.next
	}
	if c.tail == node {
		c.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

func (c *Cache) insertFront(node *cacheNode) {
	c.entries[node.id] = node
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *Cache) evictIfNeeded() {
	if c.capacity <= 0 {
		return
	}

	for len(c.entries) > c.capacity && c.tail != nil {
		evict := c.tail
		c.unlink(evict)
		delete(c.entries, evict.id)
	}
}
