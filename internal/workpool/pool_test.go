package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmit_ExecutesTask(t *testing.T) {
	p := New(Config{Workers: 2, QueueSize: 10})
	defer shutdownPool(t, p)

	done := make(chan struct{})
	if err := p.Submit("test", func() { close(done) }); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 1})
	defer shutdownPool(t, p)

	// Block the single worker so queued tasks pile up.
	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Submit("blocker", func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Submit(blocker) error = %v", err)
	}
	<-started

	// Fill the queue.
	if err := p.Submit("queued", func() {}); err != nil {
		t.Fatalf("Submit(queued) error = %v", err)
	}

	// Queue is now at capacity.
	err := p.Submit("overflow", func() {})
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit(overflow) error = %v, want ErrQueueFull", err)
	}

	close(release)
}

func TestSubmit_AfterShutdown(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	err := p.Submit("late", func() {})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit() after shutdown error = %v, want ErrPoolClosed", err)
	}
}

func TestSubmit_Concurrent(t *testing.T) {
	p := New(Config{Workers: 4, QueueSize: 1000})
	defer shutdownPool(t, p)

	var executed atomic.Int64
	var wg sync.WaitGroup
	const tasks = 200

	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Submit("concurrent", func() { executed.Add(1) })
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for executed.Load() < tasks && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := executed.Load(); got != tasks {
		t.Errorf("executed %d tasks, want %d", got, tasks)
	}
}

func TestRunTask_RecoverPanic(t *testing.T) {
	logger := &recordingLogger{}
	p := New(Config{Workers: 1, QueueSize: 10, Logger: logger})
	defer shutdownPool(t, p)

	done := make(chan struct{})
	if err := p.Submit("panics", func() { panic("boom") }); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	// A subsequent task proves the worker survived.
	if err := p.Submit("survivor", func() { close(done) }); err != nil {
		t.Fatalf("Submit(survivor) error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}

	if logger.errorCount() == 0 {
		t.Error("panic was not logged")
	}
}

func TestShutdown_DrainsQueue(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 100})

	var executed atomic.Int64
	for i := 0; i < 20; i++ {
		if err := p.Submit("drain", func() { executed.Add(1) }); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if got := executed.Load(); got != 20 {
		t.Errorf("executed %d tasks after drain, want 20", got)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	p := New(Config{Workers: 1, QueueSize: 10})

	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Submit("stuck", func() {
		close(started)
		<-release
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want DeadlineExceeded", err)
	}

	close(release)
}

func TestShared_SingleInstance(t *testing.T) {
	const goroutines = 16
	pools := make([]*Pool, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			pools[idx] = Shared()
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if pools[i] != pools[0] {
			t.Fatalf("Shared() returned different instances at %d", i)
		}
	}
}

func TestConfigure_AfterStart(t *testing.T) {
	_ = Shared()
	err := Configure(Config{Workers: 8})
	if !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Configure() after start error = %v, want ErrAlreadyStarted", err)
	}
}

func shutdownPool(t *testing.T, p *Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

// recordingLogger counts log calls for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	warns  int
	errors int
}

func (l *recordingLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns++
}

func (l *recordingLogger) Error(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}
