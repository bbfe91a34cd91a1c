// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/fault"
)

var (
	ErrExistsOne      = fault.ExistsError("exists one ")
	ErrInvalidOne     = fault.InvalidError("invalid one")
	ErrLengthOne      = fault.LengthError("length one")
	ErrNotFoundOne    = fault.NotFoundError("not found one")
	ErrProcessOne     = fault.ProcessError("process one")
	ErrRecordOne      = fault.RecordError("record one")
	ErrDecodeOne      = fault.DecodeError("decode one")
	ErrKernelOne      = fault.KernelError("kernel one")
	ErrApplicationOne = fault.ApplicationError("application one")
	ErrCostingOne     = fault.CostingError("costing one")
)

// test that the error classes can be told apart, even when wrapped
func TestClasses(t *testing.T) {
	errorList := []struct {
		err         error
		exists      bool
		invalid     bool
		length      bool
		notFound    bool
		process     bool
		record      bool
		decode      bool
		kernel      bool
		application bool
		costing     bool
	}{
		{ErrExistsOne, true, false, false, false, false, false, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false, false, false, false, false, false},
		{ErrLengthOne, false, false, true, false, false, false, false, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false, false, false, false, false},
		{ErrProcessOne, false, false, false, false, true, false, false, false, false, false},
		{ErrRecordOne, false, false, false, false, false, true, false, false, false, false},
		{ErrDecodeOne, false, false, false, false, false, false, true, false, false, false},
		{ErrKernelOne, false, false, false, false, false, false, false, true, false, false},
		{ErrApplicationOne, false, false, false, false, false, false, false, false, true, false},
		{ErrCostingOne, false, false, false, false, false, false, false, false, false, true},
		{fault.BucketNotFound(3), false, false, false, true, false, false, false, false, false, false},
		{fault.Detailf(fault.ErrSubstateLocked, "node %d", 1), false, false, false, false, false, false, false, true, false, false},
		{fmt.Errorf("outer: %w", fault.ErrInsufficientBalance), false, false, false, false, false, false, false, false, true, false},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrRecord(err) != e.record {
			t.Errorf("%d: expected 'record' == %v for err = %v", i, e.record, err)
		}
		if fault.IsErrDecode(err) != e.decode {
			t.Errorf("%d: expected 'decode' == %v for err = %v", i, e.decode, err)
		}
		if fault.IsErrKernel(err) != e.kernel {
			t.Errorf("%d: expected 'kernel' == %v for err = %v", i, e.kernel, err)
		}
		if fault.IsErrApplication(err) != e.application {
			t.Errorf("%d: expected 'application' == %v for err = %v", i, e.application, err)
		}
		if fault.IsErrCosting(err) != e.costing {
			t.Errorf("%d: expected 'costing' == %v for err = %v", i, e.costing, err)
		}
	}
}

func TestIdentifierErrors(t *testing.T) {
	err := fault.BucketNotFound(7)
	assert.True(t, errors.Is(err, fault.ErrBucketNotFound), "wrong sentinel")
	assert.False(t, errors.Is(err, fault.ErrProofNotFound), "proof sentinel matched")

	var idErr *fault.IdentifierError
	assert.True(t, errors.As(err, &idErr), "not an identifier error")
	assert.Equal(t, uint32(7), idErr.Id, "wrong id")
	assert.Equal(t, "bucket not found: 7", err.Error(), "wrong message")

	blob := fault.BlobNotFound("abcd")
	assert.True(t, errors.Is(blob, fault.ErrBlobNotFound), "wrong blob sentinel")
	assert.Equal(t, "blob not found: abcd", blob.Error(), "wrong blob message")
}

func TestRuntimeError(t *testing.T) {
	err := error(&fault.RuntimeError{
		Err:         fault.Detailf(fault.ErrInsufficientBalance, "vault"),
		Intent:      1,
		Instruction: 4,
	})
	assert.True(t, errors.Is(err, fault.ErrInsufficientBalance), "wrong sentinel")
	assert.True(t, fault.IsErrApplication(err), "class lost through wrapping")
	assert.Equal(t, "intent 1 instruction 4: insufficient balance: vault", err.Error(), "wrong message")
}
