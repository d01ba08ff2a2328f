package workpool

import "sync"

// The process-wide event pool. All devices in the process share one pool;
// it is created lazily on first use and never torn down before exit.
var (
	sharedMu  sync.Mutex
	shared    *Pool
	sharedCfg = DefaultConfig()
)

// Configure sets the sizing used when the shared pool is first created.
//
// It must be called before the first Shared() call; afterwards the pool
// already exists and Configure fails with ErrAlreadyStarted.
func Configure(cfg Config) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return ErrAlreadyStarted
	}
	sharedCfg = cfg
	return nil
}

// Shared returns the process-wide event pool, creating it on first use.
//
// Creation is guarded by a mutex so exactly one pool ever exists per
// process regardless of how many goroutines race the first call.
func Shared() *Pool {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = New(sharedCfg)
	}
	return shared
}
