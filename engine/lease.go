package engine

import "context"

// Lease grants exclusive access to the underlying instance. The component
// runtime is single-threaded, so a call plus its cleanup must run under one
// continuous hold.
type Lease struct {
	sem chan struct{}
}

// NewLease returns an unheld lease.
func NewLease() *Lease {
	l := &Lease{sem: make(chan struct{}, 1)}
	l.sem <- struct{}{}
	return l
}

// Acquire blocks until the lease is free or ctx is done.
func (l *Lease) Acquire(ctx context.Context) error {
	select {
	case <-l.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns the lease. It must only be called after a successful
// Acquire.
func (l *Lease) Release() {
	l.sem <- struct{}{}
}
