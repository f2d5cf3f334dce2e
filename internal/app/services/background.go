package services

import (
	"context"
	"sync"
	"time"
)

// background runs detached side effects such as notifications and lets shutdown wait for them.
type background struct {
	wg sync.WaitGroup
}

// Go runs fn in a goroutine with a context that survives the request.
func (b *background) Go(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(detached)
	}()
}

// Wait blocks until every pending task finished or timeout elapsed. It reports whether all tasks finished.
func (b *background) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
