package cache

// lruNode is one entry in an lruList. It remembers its key so the owning
// map entry can be deleted on eviction.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList orders keys by recency: head is the most recently used.
// It is not safe for concurrent use.
type lruList[K comparable] struct {
	head, tail *lruNode[K]
	len        int
}

func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return n
}

func (l *lruList[K]) moveToFront(n *lruNode[K]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	n.next = l.head
	l.head.prev = n
	l.head = n
	l.len++
}

// popBack removes the least recently used node.
func (l *lruList[K]) popBack() (K, bool) {
	n := l.tail
	if n == nil {
		var zero K
		return zero, false
	}
	l.unlink(n)
	return n.key, true
}

func (l *lruList[K]) unlink(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}
