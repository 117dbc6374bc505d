package pipeline

import (
	"context"
	"time"
)

// begin reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (p *Pipeline) begin(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(p.maxWait)
	defer timer.Stop()
	select {
	case p.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-p.queueCh
		}
	}()
	// Check for cancellation again before blocking on the gen slot
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	timer2 := time.NewTimer(p.maxWait)
	defer timer2.Stop()
	select {
	case p.genCh <- struct{}{}:
		acquired = true
		return func() { <-p.genCh; <-p.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer2.C:
		return func() {}, tooBusyError{}
	}
}
