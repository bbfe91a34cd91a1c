// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// IdentifierError - a manifest identifier that could not be resolved
type IdentifierError struct {
	Err error
	Id  uint32
}

func (e *IdentifierError) Error() string { return fmt.Sprintf("%s: %d", e.Err, e.Id) }
func (e *IdentifierError) Unwrap() error { return e.Err }

// BucketNotFound - manifest bucket id is unknown or already consumed
func BucketNotFound(id uint32) error {
	return &IdentifierError{Err: ErrBucketNotFound, Id: id}
}

// ProofNotFound - manifest proof id is unknown or already consumed
func ProofNotFound(id uint32) error {
	return &IdentifierError{Err: ErrProofNotFound, Id: id}
}

// AddressReservationNotFound - manifest reservation id is unknown or already consumed
func AddressReservationNotFound(id uint32) error {
	return &IdentifierError{Err: ErrAddressReservationNotFound, Id: id}
}

// AddressNotFound - manifest named address is unknown
func AddressNotFound(id uint32) error {
	return &IdentifierError{Err: ErrAddressNotFound, Id: id}
}

// DetailError - a class error with some context attached
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string { return e.Err.Error() + ": " + e.Detail }
func (e *DetailError) Unwrap() error { return e.Err }

// Detailf - attach formatted context to one of the error instances
func Detailf(err error, format string, arguments ...interface{}) error {
	return &DetailError{
		Err:    err,
		Detail: fmt.Sprintf(format, arguments...),
	}
}

// BlobNotFound - referenced blob hash is not part of the intent
func BlobNotFound(hash string) error {
	return &DetailError{Err: ErrBlobNotFound, Detail: hash}
}

// RuntimeError - a failure inside an intent's instruction stream
//
// Instruction is the index of the failing instruction, or the length
// of the stream when the intent failed while finishing
type RuntimeError struct {
	Err         error
	Intent      int
	Instruction int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("intent %d instruction %d: %s", e.Intent, e.Instruction, e.Err)
}
func (e *RuntimeError) Unwrap() error { return e.Err }
