// Copyright (C) The Medz Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package medz

import "sync"

// throttle bounds the number of concurrently running workers and
// remembers the first error any of them reports.
type throttle struct {
	slots chan struct{}
	wg    sync.WaitGroup
	mtx   sync.Mutex
	err   error
}

func newThrottle(max int) *throttle {
	if max < 1 {
		max = 1
	}
	return &throttle{slots: make(chan struct{}, max)}
}

func (t *throttle) Acquire() {
	t.wg.Add(1)
	t.slots <- struct{}{}
}

func (t *throttle) Release() {
	<-t.slots
	t.wg.Done()
}

func (t *throttle) Report(err error) {
	if err == nil {
		return
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.err == nil {
		t.err = err
	}
}

func (t *throttle) Err() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.err
}

func (t *throttle) Wait() error {
	t.wg.Wait()
	return t.Err()
}
