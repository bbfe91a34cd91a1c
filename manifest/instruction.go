// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manifest

import (
	"fmt"

	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/constraint"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// Opcode - discriminator of an encoded instruction
type Opcode uint8

// instruction opcodes - grouped by what they act on
const (
	// worktop
	OpTakeFromWorktop                   Opcode = 0x00
	OpTakeNonFungiblesFromWorktop       Opcode = 0x01
	OpTakeAllFromWorktop                Opcode = 0x02
	OpReturnToWorktop                   Opcode = 0x03
	OpAssertWorktopContains             Opcode = 0x04
	OpAssertWorktopContainsNonFungibles Opcode = 0x05
	OpAssertWorktopContainsAny          Opcode = 0x06
	OpAssertWorktopIsEmpty              Opcode = 0x07
	OpAssertWorktopResourcesOnly        Opcode = 0x08
	OpAssertWorktopResourcesInclude     Opcode = 0x09
	OpAssertNextCallReturnsOnly         Opcode = 0x0a
	OpAssertNextCallReturnsInclude      Opcode = 0x0b
	OpAssertBucketContents              Opcode = 0x0c

	// auth zone
	OpPopFromAuthZone                       Opcode = 0x10
	OpPushToAuthZone                        Opcode = 0x11
	OpDropAuthZoneProofs                    Opcode = 0x12
	OpDropAuthZoneRegularProofs             Opcode = 0x13
	OpCreateProofFromAuthZoneOfAmount       Opcode = 0x14
	OpCreateProofFromAuthZoneOfNonFungibles Opcode = 0x15
	OpCreateProofFromAuthZoneOfAll          Opcode = 0x16
	OpDropAuthZoneSignatureProofs           Opcode = 0x17

	// named buckets
	OpCreateProofFromBucketOfAmount       Opcode = 0x21
	OpCreateProofFromBucketOfNonFungibles Opcode = 0x22
	OpCreateProofFromBucketOfAll          Opcode = 0x23
	OpBurnResource                        Opcode = 0x24

	// named proofs
	OpCloneProof Opcode = 0x30
	OpDropProof  Opcode = 0x31

	// invocation
	OpCallFunction          Opcode = 0x40
	OpCallMethod            Opcode = 0x41
	OpCallDirectVaultMethod Opcode = 0x45

	// complex
	OpDropAllProofs         Opcode = 0x50
	OpAllocateGlobalAddress Opcode = 0x51
	OpDropNamedProofs       Opcode = 0x52

	// intents
	OpYieldToParent Opcode = 0x60
	OpYieldToChild  Opcode = 0x61
	OpVerifyParent  Opcode = 0x62
)

var opcodeNames = map[Opcode]string{
	OpTakeFromWorktop:                       "TAKE_FROM_WORKTOP",
	OpTakeNonFungiblesFromWorktop:           "TAKE_NON_FUNGIBLES_FROM_WORKTOP",
	OpTakeAllFromWorktop:                    "TAKE_ALL_FROM_WORKTOP",
	OpReturnToWorktop:                       "RETURN_TO_WORKTOP",
	OpAssertWorktopContains:                 "ASSERT_WORKTOP_CONTAINS",
	OpAssertWorktopContainsNonFungibles:     "ASSERT_WORKTOP_CONTAINS_NON_FUNGIBLES",
	OpAssertWorktopContainsAny:              "ASSERT_WORKTOP_CONTAINS_ANY",
	OpAssertWorktopIsEmpty:                  "ASSERT_WORKTOP_IS_EMPTY",
	OpAssertWorktopResourcesOnly:            "ASSERT_WORKTOP_RESOURCES_ONLY",
	OpAssertWorktopResourcesInclude:         "ASSERT_WORKTOP_RESOURCES_INCLUDE",
	OpAssertNextCallReturnsOnly:             "ASSERT_NEXT_CALL_RETURNS_ONLY",
	OpAssertNextCallReturnsInclude:          "ASSERT_NEXT_CALL_RETURNS_INCLUDE",
	OpAssertBucketContents:                  "ASSERT_BUCKET_CONTENTS",
	OpPopFromAuthZone:                       "POP_FROM_AUTH_ZONE",
	OpPushToAuthZone:                        "PUSH_TO_AUTH_ZONE",
	OpDropAuthZoneProofs:                    "DROP_AUTH_ZONE_PROOFS",
	OpDropAuthZoneRegularProofs:             "DROP_AUTH_ZONE_REGULAR_PROOFS",
	OpCreateProofFromAuthZoneOfAmount:       "CREATE_PROOF_FROM_AUTH_ZONE_OF_AMOUNT",
	OpCreateProofFromAuthZoneOfNonFungibles: "CREATE_PROOF_FROM_AUTH_ZONE_OF_NON_FUNGIBLES",
	OpCreateProofFromAuthZoneOfAll:          "CREATE_PROOF_FROM_AUTH_ZONE_OF_ALL",
	OpDropAuthZoneSignatureProofs:           "DROP_AUTH_ZONE_SIGNATURE_PROOFS",
	OpCreateProofFromBucketOfAmount:         "CREATE_PROOF_FROM_BUCKET_OF_AMOUNT",
	OpCreateProofFromBucketOfNonFungibles:   "CREATE_PROOF_FROM_BUCKET_OF_NON_FUNGIBLES",
	OpCreateProofFromBucketOfAll:            "CREATE_PROOF_FROM_BUCKET_OF_ALL",
	OpBurnResource:                          "BURN_RESOURCE",
	OpCloneProof:                            "CLONE_PROOF",
	OpDropProof:                             "DROP_PROOF",
	OpCallFunction:                          "CALL_FUNCTION",
	OpCallMethod:                            "CALL_METHOD",
	OpCallDirectVaultMethod:                 "CALL_DIRECT_VAULT_METHOD",
	OpDropAllProofs:                         "DROP_ALL_PROOFS",
	OpAllocateGlobalAddress:                 "ALLOCATE_GLOBAL_ADDRESS",
	OpDropNamedProofs:                       "DROP_NAMED_PROOFS",
	OpYieldToParent:                         "YIELD_TO_PARENT",
	OpYieldToChild:                          "YIELD_TO_CHILD",
	OpVerifyParent:                          "VERIFY_PARENT",
}

// String - manifest name of the instruction
func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(op))
}

// Instruction - one step of a manifest
type Instruction interface {
	Opcode() Opcode
	fields() []value.Value
}

// Address - a static global address or one named by an earlier
// AllocateGlobalAddress
type Address struct {
	Static  identifier.NodeId
	Named   value.NamedAddress
	IsNamed bool
}

// StaticAddress - an address known when the manifest is built
func StaticAddress(id identifier.NodeId) Address {
	return Address{Static: id}
}

// NamedAddress - an address allocated during execution
func NamedAddress(n uint32) Address {
	return Address{Named: value.NamedAddress(n), IsNamed: true}
}

// Value - encoded form
func (a Address) Value() value.Value {
	if a.IsNamed {
		return a.Named
	}
	return value.Reference(a.Static)
}

// String - for display
func (a Address) String() string {
	if a.IsNamed {
		return fmt.Sprintf("NamedAddress(%d)", uint32(a.Named))
	}
	return a.Static.String()
}

type TakeFromWorktop struct {
	Resource identifier.NodeId
	Amount   decimal.Decimal
}

type TakeNonFungiblesFromWorktop struct {
	Resource identifier.NodeId
	Ids      []identifier.LocalId
}

type TakeAllFromWorktop struct {
	Resource identifier.NodeId
}

type ReturnToWorktop struct {
	Bucket value.Bucket
}

type AssertWorktopContains struct {
	Resource identifier.NodeId
	Amount   decimal.Decimal
}

type AssertWorktopContainsNonFungibles struct {
	Resource identifier.NodeId
	Ids      []identifier.LocalId
}

type AssertWorktopContainsAny struct {
	Resource identifier.NodeId
}

type AssertWorktopIsEmpty struct{}

type AssertWorktopResourcesOnly struct {
	Constraints constraint.Constraints
}

type AssertWorktopResourcesInclude struct {
	Constraints constraint.Constraints
}

// AssertNextCallReturnsOnly - checked against the buckets returned by
// the next invocation
type AssertNextCallReturnsOnly struct {
	Constraints constraint.Constraints
}

type AssertNextCallReturnsInclude struct {
	Constraints constraint.Constraints
}

type AssertBucketContents struct {
	Bucket     value.Bucket
	Constraint constraint.Constraint
}

type PopFromAuthZone struct{}

type PushToAuthZone struct {
	Proof value.Proof
}

type DropAuthZoneProofs struct{}

type DropAuthZoneRegularProofs struct{}

type CreateProofFromAuthZoneOfAmount struct {
	Resource identifier.NodeId
	Amount   decimal.Decimal
}

type CreateProofFromAuthZoneOfNonFungibles struct {
	Resource identifier.NodeId
	Ids      []identifier.LocalId
}

type CreateProofFromAuthZoneOfAll struct {
	Resource identifier.NodeId
}

type DropAuthZoneSignatureProofs struct{}

type CreateProofFromBucketOfAmount struct {
	Bucket value.Bucket
	Amount decimal.Decimal
}

type CreateProofFromBucketOfNonFungibles struct {
	Bucket value.Bucket
	Ids    []identifier.LocalId
}

type CreateProofFromBucketOfAll struct {
	Bucket value.Bucket
}

type BurnResource struct {
	Bucket value.Bucket
}

type CloneProof struct {
	Proof value.Proof
}

type DropProof struct {
	Proof value.Proof
}

// CallFunction - call a blueprint function
type CallFunction struct {
	Package   Address
	Blueprint string
	Function  string
	Args      value.Value
}

// CallMethod - call a method of a global object
type CallMethod struct {
	Address Address
	Method  string
	Args    value.Value
}

// CallDirectVaultMethod - call a direct access method of a stored vault
type CallDirectVaultMethod struct {
	Vault  identifier.NodeId
	Method string
	Args   value.Value
}

// DropAllProofs - named proofs and every proof in the auth zone
type DropAllProofs struct{}

// AllocateGlobalAddress - produces the next address reservation and
// the next named address
type AllocateGlobalAddress struct {
	Package   identifier.NodeId
	Blueprint string
}

type DropNamedProofs struct{}

// YieldToParent - suspend and hand a value to the parent intent
type YieldToParent struct {
	Args value.Value
}

// YieldToChild - suspend and hand a value to a child intent
type YieldToChild struct {
	Child uint32
	Args  value.Value
}

// VerifyParent - the parent's auth zone must satisfy the rule
type VerifyParent struct {
	Rule authzone.Rule
}

func (TakeFromWorktop) Opcode() Opcode                       { return OpTakeFromWorktop }
func (TakeNonFungiblesFromWorktop) Opcode() Opcode           { return OpTakeNonFungiblesFromWorktop }
func (TakeAllFromWorktop) Opcode() Opcode                    { return OpTakeAllFromWorktop }
func (ReturnToWorktop) Opcode() Opcode                       { return OpReturnToWorktop }
func (AssertWorktopContains) Opcode() Opcode                 { return OpAssertWorktopContains }
func (AssertWorktopContainsNonFungibles) Opcode() Opcode     { return OpAssertWorktopContainsNonFungibles }
func (AssertWorktopContainsAny) Opcode() Opcode              { return OpAssertWorktopContainsAny }
func (AssertWorktopIsEmpty) Opcode() Opcode                  { return OpAssertWorktopIsEmpty }
func (AssertWorktopResourcesOnly) Opcode() Opcode            { return OpAssertWorktopResourcesOnly }
func (AssertWorktopResourcesInclude) Opcode() Opcode         { return OpAssertWorktopResourcesInclude }
func (AssertNextCallReturnsOnly) Opcode() Opcode             { return OpAssertNextCallReturnsOnly }
func (AssertNextCallReturnsInclude) Opcode() Opcode          { return OpAssertNextCallReturnsInclude }
func (AssertBucketContents) Opcode() Opcode                  { return OpAssertBucketContents }
func (PopFromAuthZone) Opcode() Opcode                       { return OpPopFromAuthZone }
func (PushToAuthZone) Opcode() Opcode                        { return OpPushToAuthZone }
func (DropAuthZoneProofs) Opcode() Opcode                    { return OpDropAuthZoneProofs }
func (DropAuthZoneRegularProofs) Opcode() Opcode             { return OpDropAuthZoneRegularProofs }
func (CreateProofFromAuthZoneOfAmount) Opcode() Opcode       { return OpCreateProofFromAuthZoneOfAmount }
func (CreateProofFromAuthZoneOfNonFungibles) Opcode() Opcode { return OpCreateProofFromAuthZoneOfNonFungibles }
func (CreateProofFromAuthZoneOfAll) Opcode() Opcode          { return OpCreateProofFromAuthZoneOfAll }
func (DropAuthZoneSignatureProofs) Opcode() Opcode           { return OpDropAuthZoneSignatureProofs }
func (CreateProofFromBucketOfAmount) Opcode() Opcode         { return OpCreateProofFromBucketOfAmount }
func (CreateProofFromBucketOfNonFungibles) Opcode() Opcode   { return OpCreateProofFromBucketOfNonFungibles }
func (CreateProofFromBucketOfAll) Opcode() Opcode            { return OpCreateProofFromBucketOfAll }
func (BurnResource) Opcode() Opcode                          { return OpBurnResource }
func (CloneProof) Opcode() Opcode                            { return OpCloneProof }
func (DropProof) Opcode() Opcode                             { return OpDropProof }
func (CallFunction) Opcode() Opcode                          { return OpCallFunction }
func (CallMethod) Opcode() Opcode                            { return OpCallMethod }
func (CallDirectVaultMethod) Opcode() Opcode                 { return OpCallDirectVaultMethod }
func (DropAllProofs) Opcode() Opcode                         { return OpDropAllProofs }
func (AllocateGlobalAddress) Opcode() Opcode                 { return OpAllocateGlobalAddress }
func (DropNamedProofs) Opcode() Opcode                       { return OpDropNamedProofs }
func (YieldToParent) Opcode() Opcode                         { return OpYieldToParent }
func (YieldToChild) Opcode() Opcode                          { return OpYieldToChild }
func (VerifyParent) Opcode() Opcode                          { return OpVerifyParent }
