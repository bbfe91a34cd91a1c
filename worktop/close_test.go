// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worktop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// single field store whose close always fails
type failingClose struct {
	kernel.API
	stored value.Value
	closed int
}

func (f *failingClose) OpenSubstate(identifier.NodeId, uint8, storage.SortKey, kernel.LockFlags) (kernel.Handle, error) {
	return 1, nil
}

func (f *failingClose) ReadSubstate(kernel.Handle) (value.Value, error) {
	return f.stored, nil
}

func (f *failingClose) WriteSubstate(_ kernel.Handle, v value.Value) error {
	f.stored = v
	return nil
}

func (f *failingClose) CloseSubstate(kernel.Handle) error {
	f.closed += 1
	return fault.ErrHandleNotFound
}

func TestCloseErrorIsReturned(t *testing.T) {
	api := &failingClose{stored: contents{}.toValue()}

	_, err := worktopDrain(api, identifier.NodeId{}, value.Tuple{})
	assert.ErrorIs(t, err, fault.ErrHandleNotFound, "drain ignored close error")
	assert.Equal(t, 1, api.closed, "close count")

	_, err = worktopTakeAll(api, identifier.NodeId{}, value.Tuple{value.Reference(identifier.NodeId{})})
	assert.ErrorIs(t, err, fault.ErrInvalidCallData, "resource parameter checked before open")
	assert.Equal(t, 1, api.closed, "close without open")
}

func TestCloseKeepsFirstError(t *testing.T) {
	api := &failingClose{}

	var err error = fault.ErrWorktopNotEmpty
	closeHandle(api, 1, &err)
	assert.ErrorIs(t, err, fault.ErrWorktopNotEmpty, "first error replaced")
	assert.Equal(t, 1, api.closed, "close count")

	err = nil
	closeHandle(api, 1, &err)
	assert.ErrorIs(t, err, fault.ErrHandleNotFound, "close error lost")
}
