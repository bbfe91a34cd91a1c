// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
)

// Kind - tag of each encoded value
type Kind uint8

// value kinds
const (
	KindBool Kind = iota + 1
	KindU8
	KindU32
	KindU64
	KindI64
	KindString
	KindBytes
	KindDecimal
	KindLocalId
	KindTuple
	KindArray
	KindEnum
	KindMap
	KindOwn
	KindReference

	// manifest only kinds
	KindBucket
	KindProof
	KindAddressReservation
	KindNamedAddress
	KindExpression
	KindBlob
)

// IsManifestOnly - kinds that must be resolved before reaching the kernel
func (k Kind) IsManifestOnly() bool {
	return k >= KindBucket && k <= KindBlob
}

// Value - any encodable value
type Value interface {
	Kind() Kind
}

type Bool bool
type U8 uint8
type U32 uint32
type U64 uint64
type I64 int64
type String string
type Bytes []byte

// Decimal - an amount
type Decimal struct {
	decimal.Decimal
}

// LocalId - a non-fungible local id
type LocalId identifier.LocalId

// Tuple - fixed sequence of fields
type Tuple []Value

// Array - homogeneous sequence
type Array struct {
	Element Kind
	Items   []Value
}

// Enum - discriminated fields
type Enum struct {
	Discriminator uint8
	Fields        []Value
}

// Map - homogeneous ordered key/value pairs
type Map struct {
	Key     Kind
	Value   Kind
	Entries []MapEntry
}

// MapEntry - one pair of a map
type MapEntry struct {
	Key   Value
	Value Value
}

// Own - ownership of a node
type Own identifier.NodeId

// Reference - visibility of a node
type Reference identifier.NodeId

// manifest symbolic ids
type Bucket uint32
type Proof uint32
type AddressReservation uint32
type NamedAddress uint32

// Expression - manifest expression
type Expression uint8

// expressions
const (
	EntireWorktop Expression = iota
	EntireAuthZone
)

// Blob - manifest blob reference by hash
type Blob digest.Digest

func (Bool) Kind() Kind               { return KindBool }
func (U8) Kind() Kind                 { return KindU8 }
func (U32) Kind() Kind                { return KindU32 }
func (U64) Kind() Kind                { return KindU64 }
func (I64) Kind() Kind                { return KindI64 }
func (String) Kind() Kind             { return KindString }
func (Bytes) Kind() Kind              { return KindBytes }
func (Decimal) Kind() Kind            { return KindDecimal }
func (LocalId) Kind() Kind            { return KindLocalId }
func (Tuple) Kind() Kind              { return KindTuple }
func (Array) Kind() Kind              { return KindArray }
func (Enum) Kind() Kind               { return KindEnum }
func (Map) Kind() Kind                { return KindMap }
func (Own) Kind() Kind                { return KindOwn }
func (Reference) Kind() Kind          { return KindReference }
func (Bucket) Kind() Kind             { return KindBucket }
func (Proof) Kind() Kind              { return KindProof }
func (AddressReservation) Kind() Kind { return KindAddressReservation }
func (NamedAddress) Kind() Kind       { return KindNamedAddress }
func (Expression) Kind() Kind         { return KindExpression }
func (Blob) Kind() Kind               { return KindBlob }

// Unit - the empty tuple
func Unit() Value { return Tuple{} }

// None - empty option
func None() Value { return Enum{Discriminator: 0} }

// Some - present option
func Some(v Value) Value { return Enum{Discriminator: 1, Fields: []Value{v}} }

// NewDecimal - wrap an amount
func NewDecimal(d decimal.Decimal) Decimal { return Decimal{d} }

// NodeId - id of an Own
func (o Own) NodeId() identifier.NodeId { return identifier.NodeId(o) }

// NodeId - id of a Reference
func (r Reference) NodeId() identifier.NodeId { return identifier.NodeId(r) }
