package shutdown

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/mqy/chatdump/store"
)

// FlushFunc persists a cursor snapshot.
type FlushFunc func(store.Cursors) error

// Coordinator is the cooperative-cancellation state shared by the dump engine and the signal watcher.
// The engine publishes cursors and polls Stopped(); the watcher only calls Stop(), or Flush() when forced.
type Coordinator struct {
	stopped atomic.Bool
	sig     atomic.Value // os.Signal

	mu       sync.Mutex
	snapshot store.Cursors
	cancels  []context.CancelFunc

	flush     FlushFunc
	flushOnce sync.Once
	flushErr  error
}

func NewCoordinator(flush FlushFunc) *Coordinator {
	return &Coordinator{
		snapshot: make(store.Cursors),
		flush:    flush,
	}
}

// Context returns a child of `parent` that is cancelled on Stop().
func (c *Coordinator) Context(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	c.cancels = append(c.cancels, cancel)
	c.mu.Unlock()
	if c.Stopped() {
		cancel()
	}
	return ctx
}

// Publish records `messageID` as the latest fully written message of `dialogID`.
func (c *Coordinator) Publish(dialogID, messageID int64) {
	c.mu.Lock()
	c.snapshot[dialogID] = messageID
	c.mu.Unlock()
}

// Snapshot returns a copy of the published cursors.
func (c *Coordinator) Snapshot() store.Cursors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Copy()
}

// Stop requests a stop. Only the first call records its signal; it returns false for later calls.
func (c *Coordinator) Stop(sig os.Signal) bool {
	if !c.stopped.CompareAndSwap(false, true) {
		return false
	}
	if sig != nil {
		c.sig.Store(sig)
	}

	c.mu.Lock()
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return true
}

func (c *Coordinator) Stopped() bool {
	return c.stopped.Load()
}

// Signal returns the signal passed to the first Stop(), or nil.
func (c *Coordinator) Signal() os.Signal {
	if v := c.sig.Load(); v != nil {
		return v.(os.Signal)
	}
	return nil
}

// Flush saves the last published snapshot exactly once; later calls return the first result.
// An empty snapshot is not saved, so a run without progress leaves the store untouched.
func (c *Coordinator) Flush() error {
	c.flushOnce.Do(func() {
		snapshot := c.Snapshot()
		if len(snapshot) == 0 || c.flush == nil {
			glog.V(2).Info("shutdown: nothing to flush")
			return
		}
		glog.Infof("shutdown: saving resume cursors %v", snapshot)
		c.flushErr = c.flush(snapshot)
		if c.flushErr != nil {
			glog.Errorf("shutdown: error save resume cursors: %v", c.flushErr)
		}
	})
	return c.flushErr
}
