package app

import (
	"sync"
	"time"
)

// idAllocator выдает миллисекундные идентификаторы, строго возрастающие в пределах процесса.
type idAllocator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func newIDAllocator(now func() time.Time) *idAllocator {
	return &idAllocator{now: now}
}

func (a *idAllocator) next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.now().UnixMilli()
	if id <= a.last {
		id = a.last + 1
	}
	a.last = id
	return id
}

// observe учитывает уже существующий идентификатор.
func (a *idAllocator) observe(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id > a.last {
		a.last = id
	}
}
