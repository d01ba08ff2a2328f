package device

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ReentrantLock is a mutex that may be re-acquired by the goroutine that
// already holds it. The device uses it to serialise bus pushes: listener
// callbacks fired during a push may push again without deadlocking.
//
// Goroutine identity comes from the runtime stack header. That costs a
// small stack capture per Lock, acceptable at event-publication rates.
type ReentrantLock struct {
	mu     sync.Mutex
	cond   *sync.Cond
	owner  int64
	depth  int
	inited sync.Once
}

func (l *ReentrantLock) init() {
	l.inited.Do(func() {
		l.cond = sync.NewCond(&l.mu)
	})
}

// Lock acquires the lock, blocking until it is free or already held by
// the calling goroutine.
func (l *ReentrantLock) Lock() {
	l.init()
	gid := goroutineID()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner == gid {
		l.depth++
		return
	}
	for l.depth > 0 {
		l.cond.Wait()
	}
	l.owner = gid
	l.depth = 1
}

// Unlock releases one level of the lock. The lock becomes free when the
// depth returns to zero. Unlocking a lock not held by the calling
// goroutine panics.
func (l *ReentrantLock) Unlock() {
	l.init()
	gid := goroutineID()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner != gid || l.depth == 0 {
		panic("device: unlock of reentrant lock not held by caller")
	}
	l.depth--
	if l.depth == 0 {
		l.owner = 0
		l.cond.Signal()
	}
}

// goroutineID extracts the numeric goroutine id from the stack header
// ("goroutine 123 [running]:").
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, _ := strconv.ParseInt(string(buf), 10, 64)
	return id
}
