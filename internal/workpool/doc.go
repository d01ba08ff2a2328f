// Package workpool provides the bounded worker pool that runs deferred
// attribute pushes off the synchronous request path.
//
// # Model
//
//	callers ──Submit──▶ [ bounded queue ]──▶ worker goroutines (fixed count)
//
// Submission never blocks: a full queue fails fast with ErrQueueFull and
// the caller decides whether that matters (the event path logs and drops).
// Exactly one worker runs each task. The pool makes no ordering promise
// across workers - per-device ordering comes from the device lock, not
// from the queue.
//
// # Shared pool
//
// One pool instance is shared by every device in the process. It is
// created lazily on first Shared() call under a mutex; Configure() may
// adjust sizing before that first call. On shutdown the drain is
// best-effort with a deadline - still-running workers are abandoned
// rather than blocking process exit.
package workpool
