// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// pollInterval is the sleep between completion polls.
const pollInterval = 100 * time.Microsecond

// WaitSubmission blocks until queue reports submission index done or timeout
// elapses. A non-positive timeout waits forever.
func WaitSubmission(queue hal.Queue, index uint64, timeout time.Duration) error {
	if queue.PollCompleted() >= index {
		return nil
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for queue.PollCompleted() < index {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("submission %d after %v: %w", index, timeout, ErrTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}
