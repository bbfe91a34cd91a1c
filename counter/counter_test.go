// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/counter"
)

func TestCounter(t *testing.T) {
	var c counter.Counter

	assert.True(t, c.IsZero(), "not zero at start")

	c.Increment()
	c.Increment()
	assert.Equal(t, uint64(2), c.Uint64(), "wrong count after increment")

	assert.Equal(t, uint64(12), c.Add(10), "wrong count after add")

	assert.Equal(t, uint64(12), c.Reset(), "wrong previous value")
	assert.True(t, c.IsZero(), "not zero after reset")
}

func TestCounterConcurrent(t *testing.T) {
	var c counter.Counter
	var wg sync.WaitGroup

	for i := 0; i < 8; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j += 1 {
				c.Increment()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8000), c.Uint64(), "lost increments")
}
