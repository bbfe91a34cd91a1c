// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// execution error classes
type DecodeError GenericError
type KernelError GenericError
type ApplicationError GenericError
type CostingError GenericError

// common errors - keep in alphabetic order
var (
	ErrAddressNotFound              = NotFoundError("named address not found")
	ErrAddressReservationNotFound   = NotFoundError("address reservation not found")
	ErrAlreadyInitialised           = ExistsError("already initialised")
	ErrAuthZoneIsEmpty              = ApplicationError("auth zone is empty")
	ErrAuthorizationFailed          = ApplicationError("authorization failed")
	ErrBlobNotFound                 = NotFoundError("blob not found")
	ErrBlueprintNotFound            = KernelError("blueprint not found")
	ErrBucketNotFound               = NotFoundError("bucket not found")
	ErrCallDepthExceeded            = KernelError("call depth limit exceeded")
	ErrCannotDecodeAccount          = InvalidError("cannot decode account")
	ErrCannotDecodePrivateKey       = InvalidError("cannot decode private key")
	ErrCannotDropGlobalNode         = KernelError("global nodes cannot be dropped")
	ErrCannotMoveStoredNode         = KernelError("stored node cannot be moved")
	ErrChecksumMismatch             = InvalidError("checksum mismatch")
	ErrConfigurationNotTable        = InvalidError("configuration did not return a table")
	ErrDecimalOverflow              = ApplicationError("decimal overflow")
	ErrDepthLimitExceeded           = DecodeError("value depth limit exceeded")
	ErrDirectAccessDenied           = KernelError("direct access is not permitted")
	ErrDuplicateSigner              = InvalidError("duplicate signer")
	ErrEmptyProof                   = ApplicationError("empty proof is not allowed")
	ErrEpochOutOfRange              = InvalidError("epoch is outside the valid range")
	ErrExportNotFound               = KernelError("blueprint export not found")
	ErrFeeReserveExhausted          = CostingError("fee reserve exhausted")
	ErrHandleNotFound               = KernelError("lock handle not found")
	ErrHandleNotMutable             = KernelError("lock handle is not mutable")
	ErrIdAllocationExhausted        = KernelError("node id allocation exhausted")
	ErrInjectedFailure              = CostingError("injected costing failure")
	ErrInsufficientBalance          = ApplicationError("insufficient balance")
	ErrInsufficientProofEvidence    = ApplicationError("insufficient resources to compose proof")
	ErrIntentAlreadyCommitted       = ExistsError("intent already committed")
	ErrInvalidAmount                = ApplicationError("invalid amount")
	ErrInvalidCallData              = ApplicationError("invalid call data")
	ErrInvalidConsensusConfig       = InvalidError("invalid consensus manager configuration")
	ErrInvalidConstraint            = ApplicationError("constraint is not valid for resource")
	ErrInvalidDecimal               = InvalidError("invalid decimal")
	ErrInvalidDigest                = InvalidError("invalid digest")
	ErrInvalidDivisibility          = ApplicationError("divisibility is out of range")
	ErrInvalidEpochRange            = InvalidError("invalid epoch range")
	ErrInvalidIntentStructure       = InvalidError("intent structure is invalid")
	ErrInvalidKeyLength             = InvalidError("invalid key length")
	ErrInvalidKeyType               = InvalidError("invalid key type")
	ErrInvalidLocalId               = InvalidError("invalid non-fungible local id")
	ErrInvalidLoggerChannel         = InvalidError("invalid logger channel")
	ErrInvalidNodeId                = InvalidError("invalid node id")
	ErrInvalidPrefix                = DecodeError("payload prefix is invalid")
	ErrInvalidReference             = KernelError("reference is invalid")
	ErrInvalidRoundingMode          = InvalidError("invalid rounding mode")
	ErrInvalidSeedHeader            = InvalidError("invalid seed header")
	ErrInvalidSeedLength            = InvalidError("invalid seed length")
	ErrInvalidSignature             = InvalidError("invalid signature")
	ErrInvalidStructPointer         = InvalidError("invalid struct pointer")
	ErrInvalidWasmModule            = InvalidError("invalid wasm module")
	ErrLedgerNotBootstrapped        = NotFoundError("ledger has no consensus state")
	ErrLockNotFound                 = ApplicationError("resource lock not found")
	ErrMissingNotarySignature       = InvalidError("missing notary signature")
	ErrNetworkMismatch              = InvalidError("network mismatch")
	ErrNodeExists                   = KernelError("node already exists")
	ErrNodeLocked                   = KernelError("node has open substate handles")
	ErrNodeNotFound                 = KernelError("node not found")
	ErrNodeNotOwned                 = KernelError("node is not owned by the current frame")
	ErrNodeNotVisible               = KernelError("node is not visible in the current frame")
	ErrNonCanonicalVarint           = DecodeError("varint is not in shortest form")
	ErrNonFungibleExists            = ApplicationError("non-fungible already exists")
	ErrNonFungibleNotFound          = ApplicationError("non-fungible not found")
	ErrNotCommittable               = ProcessError("receipt is not committable")
	ErrNotGlobalAddress             = ApplicationError("not a global address")
	ErrNotPackageAddress            = ApplicationError("not a package address")
	ErrNotPrivateKey                = InvalidError("not a private key")
	ErrNotPublicKey                 = InvalidError("not a public key")
	ErrNotSupportedByResource       = ApplicationError("operation not supported by resource kind")
	ErrOperationNotPermitted        = ApplicationError("operation not permitted by resource")
	ErrOrphanedNodes                = KernelError("nodes left orphaned")
	ErrOutputNotFound               = NotFoundError("instruction output not found")
	ErrParentVerificationFailed     = ApplicationError("parent verification failed")
	ErrPersistenceProhibited        = KernelError("transient node cannot be persisted")
	ErrProofNotFound                = NotFoundError("proof not found")
	ErrReceiptNotFound              = NotFoundError("receipt not found")
	ErrReceiptStoreFailed           = RecordError("receipt store failed")
	ErrReservedPartition            = KernelError("partition is reserved")
	ErrResourceConstraintFailed     = ApplicationError("resource constraint failed")
	ErrResourceLocked               = ApplicationError("container has outstanding locks")
	ErrResourceMismatch             = ApplicationError("resource address mismatch")
	ErrRoundNotIncreasing           = ApplicationError("round number must increase")
	ErrStackNotFound                = KernelError("call stack not found")
	ErrSubstateLocked               = KernelError("substate is locked")
	ErrSubstateNotFound             = KernelError("substate not found")
	ErrTimestampDecreasing          = ApplicationError("proposer timestamp decreasing")
	ErrTooManySigners               = LengthError("too many signers")
	ErrTooManySubintents            = LengthError("too many subintents")
	ErrTotalBlobSizeLimitExceeded   = ApplicationError("total blob size limit exceeded")
	ErrTrailingBytes                = DecodeError("trailing bytes after payload")
	ErrTransientReferencePersisted  = KernelError("transient reference cannot be persisted")
	ErrTruncatedPayload             = DecodeError("payload is truncated")
	ErrTypeMismatch                 = KernelError("receiver type mismatch")
	ErrUnexpectedDiscriminator      = DecodeError("unexpected discriminator")
	ErrUnexpectedKind               = DecodeError("unexpected value kind")
	ErrUnexpectedUnspecifiedBalance = ApplicationError("unexpected balance of unspecified resource")
	ErrUnknownInstruction           = DecodeError("unknown instruction")
	ErrUnsupportedTransaction       = DecodeError("transaction kind is not supported")
	ErrWasmMemoryAccess             = ApplicationError("wasm memory access out of bounds")
	ErrWasmTrap                     = ApplicationError("wasm execution trapped")
	ErrWasmUnavailable              = KernelError("wasm runtime is not configured")
	ErrWorktopAssertionFailed       = ApplicationError("worktop assertion failed")
	ErrWorktopNotEmpty              = ApplicationError("worktop is not empty")
	ErrWrongEntityType              = KernelError("node id has the wrong entity type")
	ErrWrongFieldCount              = DecodeError("wrong number of fields")
	ErrWrongNetworkForPublicKey     = InvalidError("wrong network for public key")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string      { return string(e) }
func (e InvalidError) Error() string     { return string(e) }
func (e LengthError) Error() string      { return string(e) }
func (e NotFoundError) Error() string    { return string(e) }
func (e ProcessError) Error() string     { return string(e) }
func (e RecordError) Error() string      { return string(e) }
func (e DecodeError) Error() string      { return string(e) }
func (e KernelError) Error() string      { return string(e) }
func (e ApplicationError) Error() string { return string(e) }
func (e CostingError) Error() string     { return string(e) }

// determine the class of an error
// wrapped errors are unwrapped until a class is found
func IsErrExists(e error) bool      { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool     { var t InvalidError; return errors.As(e, &t) }
func IsErrLength(e error) bool      { var t LengthError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool    { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool     { var t ProcessError; return errors.As(e, &t) }
func IsErrRecord(e error) bool      { var t RecordError; return errors.As(e, &t) }
func IsErrDecode(e error) bool      { var t DecodeError; return errors.As(e, &t) }
func IsErrKernel(e error) bool      { var t KernelError; return errors.As(e, &t) }
func IsErrApplication(e error) bool { var t ApplicationError; return errors.As(e, &t) }
func IsErrCosting(e error) bool     { var t CostingError; return errors.As(e, &t) }
