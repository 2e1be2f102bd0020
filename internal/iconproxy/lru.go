package iconproxy

import (
	"container/list"
	"sync"
)

type lruItem struct {
	key  string
	icon Icon
}

// memCache is an LRU bounded by both entry count and total body bytes.
type memCache struct {
	maxItems int
	maxBytes int64

	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
	bytes int64
}

func newMemCache(maxItems int, maxBytes int64) *memCache {
	return &memCache{
		maxItems: maxItems,
		maxBytes: maxBytes,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (m *memCache) Get(key string) (Icon, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return Icon{}, false
	}
	m.ll.MoveToFront(el)
	return el.Value.(*lruItem).icon, true
}

func (m *memCache) Put(key string, icon Icon) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		m.bytes -= int64(len(el.Value.(*lruItem).icon.Body))
		el.Value.(*lruItem).icon = icon
		m.ll.MoveToFront(el)
	} else {
		m.items[key] = m.ll.PushFront(&lruItem{key: key, icon: icon})
	}
	m.bytes += int64(len(icon.Body))

	for m.ll.Len() > 0 && (m.ll.Len() > m.maxItems || m.bytes > m.maxBytes) {
		oldest := m.ll.Back()
		it := oldest.Value.(*lruItem)
		m.ll.Remove(oldest)
		delete(m.items, it.key)
		m.bytes -= int64(len(it.icon.Body))
	}
}

func (m *memCache) Len() (int, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ll.Len(), m.bytes
}
