package ipc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pollSlice bounds a single futex sleep so cancellation is noticed promptly
// even if a wake-up is missed.
const pollSlice = 50 * time.Millisecond

// semaphoreSize is the on-disk size of a semaphore object:
// value uint32 followed by waiters uint32.
const semaphoreSize = 8

var errAborted = errors.New("wait aborted")

// Semaphore is a counting semaphore living in a shared file mapping, usable
// across unrelated processes.
type Semaphore struct {
	path    string
	mem     []byte
	value   *uint32
	waiters *uint32
}

func createSemaphore(path string, initial uint32) (*Semaphore, error) {
	mem, err := mapFile(path, semaphoreSize, unix.O_CREAT|unix.O_EXCL)
	if err != nil {
		return nil, err
	}
	s := newSemaphore(path, mem)
	atomic.StoreUint32(s.waiters, 0)
	atomic.StoreUint32(s.value, initial)
	return s, nil
}

func openSemaphore(path string) (*Semaphore, error) {
	mem, err := mapFile(path, semaphoreSize, 0)
	if err != nil {
		return nil, err
	}
	return newSemaphore(path, mem), nil
}

func newSemaphore(path string, mem []byte) *Semaphore {
	return &Semaphore{
		path:    path,
		mem:     mem,
		value:   (*uint32)(unsafe.Pointer(&mem[0])),
		waiters: (*uint32)(unsafe.Pointer(&mem[4])),
	}
}

// Wait decrements the semaphore, blocking while it is zero. Interrupted or
// timed-out sleeps are retried; the wait only gives up once ctx is done.
func (s *Semaphore) Wait(ctx context.Context) error {
	return s.wait(ctx, nil)
}

// wait is Wait with an extra abort condition checked between sleeps.
func (s *Semaphore) wait(ctx context.Context, abort func() bool) error {
	for {
		if s.TryWait() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if abort != nil && abort() {
			return errAborted
		}

		atomic.AddUint32(s.waiters, 1)
		err := futexWait(s.value, 0, pollSlice)
		atomic.AddUint32(s.waiters, ^uint32(0))

		switch {
		case err == nil,
			errors.Is(err, unix.EAGAIN),
			errors.Is(err, unix.EINTR),
			errors.Is(err, unix.ETIMEDOUT):
		default:
			return fmt.Errorf("futex wait %s: %w", s.path, err)
		}
	}
}

// TryWait decrements the semaphore if it is positive and reports whether it did.
func (s *Semaphore) TryWait() bool {
	for {
		v := atomic.LoadUint32(s.value)
		if v == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(s.value, v, v-1) {
			return true
		}
	}
}

// Post increments the semaphore and wakes one waiter.
func (s *Semaphore) Post() error {
	atomic.AddUint32(s.value, 1)
	if atomic.LoadUint32(s.waiters) == 0 {
		return nil
	}
	if err := futexWake(s.value, 1); err != nil {
		return fmt.Errorf("futex wake %s: %w", s.path, err)
	}
	return nil
}

// Value returns the current count.
func (s *Semaphore) Value() uint32 { return atomic.LoadUint32(s.value) }

func (s *Semaphore) close() error {
	if s.mem == nil {
		return nil
	}
	err := unix.Munmap(s.mem)
	s.mem, s.value, s.waiters = nil, nil, nil
	return err
}
