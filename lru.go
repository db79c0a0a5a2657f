package statecache

// lruList is an intrusive doubly linked list of blocks; head is the most
// recently accessed. All methods require Cache.lruMu.
type lruList[V any] struct {
	head *block[V]
	tail *block[V]
	len  int
}

func (l *lruList[V]) pushFront(b *block[V]) {
	b.prev = nil
	b.next = l.head
	if l.head != nil {
		l.head.prev = b
	}
	l.head = b
	if l.tail == nil {
		l.tail = b
	}
	b.listed = true
	l.len++
}

func (l *lruList[V]) remove(b *block[V]) {
	if !b.listed {
		return
	}
	if b.prev != nil {
		b.prev.next = b.next
	} else {
		l.head = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	} else {
		l.tail = b.prev
	}
	b.next = nil
	b.prev = nil
	b.listed = false
	l.len--
}

func (l *lruList[V]) moveToFront(b *block[V]) {
	if l.head == b {
		return
	}
	l.remove(b)
	l.pushFront(b)
}

// oldest returns the least recently accessed block other than skip.
func (l *lruList[V]) oldest(skip *block[V]) *block[V] {
	for b := l.tail; b != nil; b = b.prev {
		if b != skip {
			return b
		}
	}
	return nil
}
