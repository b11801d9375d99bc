//go:build unix && !linux

package ipc

import "time"

// Without futexes, waiters fall back to short sleeps between polls.
const fallbackPoll = time.Millisecond

func futexWait(_ *uint32, _ uint32, timeout time.Duration) error {
	time.Sleep(min(timeout, fallbackPoll))
	return nil
}

func futexWake(*uint32, int) error { return nil }
