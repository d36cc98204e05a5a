package lock

import (
	"context"
	"sync"
	"time"

	"github.com/arefin/diamondledger/internal/domain"
)

// Keyed provides per-key mutual exclusion with bounded acquisition. The
// ledger uses it to serialize read-modify-write cycles per user so that a
// deposit approval racing an order approval cannot lose or double-apply a
// deduction.
//
// Acquisition queues on a buffered channel per key; waiting is bounded by
// the configured timeout (and the caller's context) so a stuck holder can
// never wedge the message-handling loop indefinitely.
type Keyed struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	timeout time.Duration
}

// NewKeyed creates a Keyed lock. A non-positive timeout waits only on the
// caller's context.
func NewKeyed(timeout time.Duration) *Keyed {
	return &Keyed{
		slots:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (k *Keyed) slot(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	ch, ok := k.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[key] = ch
	}
	return ch
}

// Acquire takes the lock for key, waiting up to the configured timeout.
// Returns domain.ErrLockTimeout when the wait expires.
func (k *Keyed) Acquire(ctx context.Context, key string) error {
	ch := k.slot(key)

	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return domain.ErrLockTimeout
	}
}

// Release frees the lock for key. Must follow a successful Acquire.
func (k *Keyed) Release(key string) {
	ch := k.slot(key)
	select {
	case <-ch:
	default:
		// Release without Acquire is a programming error; make it loud in
		// tests rather than corrupting the slot.
		panic("lock: release without acquire for key " + key)
	}
}

// Do runs fn while holding the lock for key.
func (k *Keyed) Do(ctx context.Context, key string, fn func() error) error {
	if err := k.Acquire(ctx, key); err != nil {
		return err
	}
	defer k.Release(key)
	return fn()
}
