// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manifest

import (
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/constraint"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// Manifest - an instruction stream and the blobs it may reference
type Manifest struct {
	Instructions []Instruction
	Blobs        [][]byte
}

// BlobHash - the hash a Blob value refers to
func BlobHash(blob []byte) digest.Digest {
	return digest.NewDigest(blob)
}

// BlobMap - blobs by hash
func (m Manifest) BlobMap() map[digest.Digest][]byte {
	blobs := make(map[digest.Digest][]byte, len(m.Blobs))
	for _, b := range m.Blobs {
		blobs[BlobHash(b)] = b
	}
	return blobs
}

// Value - tuple of the instruction array and the blob array
func (m Manifest) Value() value.Value {
	blobs := value.Array{Element: value.KindBytes, Items: make([]value.Value, 0, len(m.Blobs))}
	for _, b := range m.Blobs {
		blobs.Items = append(blobs.Items, value.Bytes(b))
	}
	return value.Tuple{InstructionsValue(m.Instructions), blobs}
}

// Pack - manifest payload
func (m Manifest) Pack() (value.Packed, error) {
	return value.EncodeManifest(m.Value())
}

// Unpack - manifest from its payload
func Unpack(record value.Packed) (Manifest, error) {
	v, err := value.DecodeManifest(record)
	if nil != err {
		return Manifest{}, err
	}
	return FromValue(v)
}

// FromValue - manifest from its value form
func FromValue(v value.Value) (Manifest, error) {
	t, err := value.AsTuple(v, 2)
	if nil != err {
		return Manifest{}, err
	}
	instructions, err := InstructionsFromValue(t[0])
	if nil != err {
		return Manifest{}, err
	}
	a, ok := t[1].(value.Array)
	if !ok {
		return Manifest{}, fault.ErrUnexpectedKind
	}
	m := Manifest{Instructions: instructions}
	for _, item := range a.Items {
		b, err := value.AsBytes(item)
		if nil != err {
			return Manifest{}, err
		}
		m.Blobs = append(m.Blobs, b)
	}
	return m, nil
}

// InstructionValue - an instruction as an enum of its fields
func InstructionValue(i Instruction) value.Value {
	return value.Enum{Discriminator: uint8(i.Opcode()), Fields: i.fields()}
}

// InstructionsValue - array of instruction enums
func InstructionsValue(instructions []Instruction) value.Array {
	a := value.Array{Element: value.KindEnum, Items: make([]value.Value, 0, len(instructions))}
	for _, i := range instructions {
		a.Items = append(a.Items, InstructionValue(i))
	}
	return a
}

// InstructionsFromValue - decode an array of instruction enums
func InstructionsFromValue(v value.Value) ([]Instruction, error) {
	a, ok := v.(value.Array)
	if !ok || (value.KindEnum != a.Element && 0 != len(a.Items)) {
		return nil, fault.ErrUnexpectedKind
	}
	instructions := make([]Instruction, 0, len(a.Items))
	for n, item := range a.Items {
		i, err := InstructionFromValue(item)
		if nil != err {
			return nil, fault.Detailf(err, "instruction %d", n)
		}
		instructions = append(instructions, i)
	}
	return instructions, nil
}

func args(v value.Value) value.Value {
	if nil == v {
		return value.Unit()
	}
	return v
}

func (i TakeFromWorktop) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.NewDecimal(i.Amount)}
}

func (i TakeNonFungiblesFromWorktop) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.LocalIds(i.Ids)}
}

func (i TakeAllFromWorktop) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource)}
}

func (i ReturnToWorktop) fields() []value.Value {
	return []value.Value{i.Bucket}
}

func (i AssertWorktopContains) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.NewDecimal(i.Amount)}
}

func (i AssertWorktopContainsNonFungibles) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.LocalIds(i.Ids)}
}

func (i AssertWorktopContainsAny) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource)}
}

func (AssertWorktopIsEmpty) fields() []value.Value { return nil }

func (i AssertWorktopResourcesOnly) fields() []value.Value {
	return []value.Value{i.Constraints.Value()}
}

func (i AssertWorktopResourcesInclude) fields() []value.Value {
	return []value.Value{i.Constraints.Value()}
}

func (i AssertNextCallReturnsOnly) fields() []value.Value {
	return []value.Value{i.Constraints.Value()}
}

func (i AssertNextCallReturnsInclude) fields() []value.Value {
	return []value.Value{i.Constraints.Value()}
}

func (i AssertBucketContents) fields() []value.Value {
	return []value.Value{i.Bucket, i.Constraint.Value()}
}

func (PopFromAuthZone) fields() []value.Value { return nil }

func (i PushToAuthZone) fields() []value.Value {
	return []value.Value{i.Proof}
}

func (DropAuthZoneProofs) fields() []value.Value        { return nil }
func (DropAuthZoneRegularProofs) fields() []value.Value { return nil }

func (i CreateProofFromAuthZoneOfAmount) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.NewDecimal(i.Amount)}
}

func (i CreateProofFromAuthZoneOfNonFungibles) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource), value.LocalIds(i.Ids)}
}

func (i CreateProofFromAuthZoneOfAll) fields() []value.Value {
	return []value.Value{value.Reference(i.Resource)}
}

func (DropAuthZoneSignatureProofs) fields() []value.Value { return nil }

func (i CreateProofFromBucketOfAmount) fields() []value.Value {
	return []value.Value{i.Bucket, value.NewDecimal(i.Amount)}
}

func (i CreateProofFromBucketOfNonFungibles) fields() []value.Value {
	return []value.Value{i.Bucket, value.LocalIds(i.Ids)}
}

func (i CreateProofFromBucketOfAll) fields() []value.Value {
	return []value.Value{i.Bucket}
}

func (i BurnResource) fields() []value.Value {
	return []value.Value{i.Bucket}
}

func (i CloneProof) fields() []value.Value {
	return []value.Value{i.Proof}
}

func (i DropProof) fields() []value.Value {
	return []value.Value{i.Proof}
}

func (i CallFunction) fields() []value.Value {
	return []value.Value{
		i.Package.Value(),
		value.String(i.Blueprint),
		value.String(i.Function),
		args(i.Args),
	}
}

func (i CallMethod) fields() []value.Value {
	return []value.Value{i.Address.Value(), value.String(i.Method), args(i.Args)}
}

func (i CallDirectVaultMethod) fields() []value.Value {
	return []value.Value{value.Reference(i.Vault), value.String(i.Method), args(i.Args)}
}

func (DropAllProofs) fields() []value.Value { return nil }

func (i AllocateGlobalAddress) fields() []value.Value {
	return []value.Value{value.Reference(i.Package), value.String(i.Blueprint)}
}

func (DropNamedProofs) fields() []value.Value { return nil }

func (i YieldToParent) fields() []value.Value {
	return []value.Value{args(i.Args)}
}

func (i YieldToChild) fields() []value.Value {
	return []value.Value{value.U32(i.Child), args(i.Args)}
}

func (i VerifyParent) fields() []value.Value {
	return []value.Value{i.Rule.Value()}
}

// reader - consumes the fields of one instruction in order
//
// the first failure sticks and later reads return zero values
type reader struct {
	fields []value.Value
	next   int
	err    error
}

func (r *reader) value() value.Value {
	if nil != r.err {
		return nil
	}
	if r.next >= len(r.fields) {
		r.err = fault.ErrWrongFieldCount
		return nil
	}
	v := r.fields[r.next]
	r.next += 1
	return v
}

func (r *reader) fail(err error) {
	if nil == r.err {
		r.err = err
	}
}

func (r *reader) done() error {
	if nil == r.err && r.next != len(r.fields) {
		r.err = fault.ErrWrongFieldCount
	}
	return r.err
}

func (r *reader) reference() identifier.NodeId {
	id, err := value.AsReference(r.value())
	r.fail(err)
	return id
}

func (r *reader) resource() identifier.NodeId {
	id := r.reference()
	if nil == r.err && !id.EntityType().IsResource() {
		r.fail(fault.Detailf(fault.ErrWrongEntityType, "not a resource: %s", id))
	}
	return id
}

func (r *reader) amount() decimal.Decimal {
	d, err := value.AsDecimal(r.value())
	r.fail(err)
	return d
}

func (r *reader) ids() []identifier.LocalId {
	ids, err := value.AsLocalIds(r.value())
	r.fail(err)
	return ids
}

func (r *reader) str() string {
	s, err := value.AsString(r.value())
	r.fail(err)
	return s
}

func (r *reader) u32() uint32 {
	n, err := value.AsU32(r.value())
	r.fail(err)
	return n
}

func (r *reader) bucket() value.Bucket {
	b, ok := r.value().(value.Bucket)
	if !ok {
		r.fail(fault.ErrUnexpectedKind)
	}
	return b
}

func (r *reader) proof() value.Proof {
	p, ok := r.value().(value.Proof)
	if !ok {
		r.fail(fault.ErrUnexpectedKind)
	}
	return p
}

func (r *reader) address() Address {
	switch a := r.value().(type) {
	case value.Reference:
		return StaticAddress(identifier.NodeId(a))
	case value.NamedAddress:
		return NamedAddress(uint32(a))
	}
	r.fail(fault.ErrUnexpectedKind)
	return Address{}
}

func (r *reader) constraints() constraint.Constraints {
	v := r.value()
	if nil != r.err {
		return nil
	}
	cs, err := constraint.ConstraintsFromValue(v)
	r.fail(err)
	return cs
}

func (r *reader) constraint() constraint.Constraint {
	v := r.value()
	if nil != r.err {
		return constraint.Constraint{}
	}
	c, err := constraint.FromValue(v)
	r.fail(err)
	return c
}

func (r *reader) rule() authzone.Rule {
	v := r.value()
	if nil != r.err {
		return authzone.Rule{}
	}
	rule, err := authzone.RuleFromValue(v)
	r.fail(err)
	return rule
}

// InstructionFromValue - decode one instruction enum
func InstructionFromValue(v value.Value) (Instruction, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return nil, err
	}
	r := &reader{fields: e.Fields}

	var i Instruction
	switch Opcode(e.Discriminator) {
	case OpTakeFromWorktop:
		i = TakeFromWorktop{Resource: r.resource(), Amount: r.amount()}
	case OpTakeNonFungiblesFromWorktop:
		i = TakeNonFungiblesFromWorktop{Resource: r.resource(), Ids: r.ids()}
	case OpTakeAllFromWorktop:
		i = TakeAllFromWorktop{Resource: r.resource()}
	case OpReturnToWorktop:
		i = ReturnToWorktop{Bucket: r.bucket()}
	case OpAssertWorktopContains:
		i = AssertWorktopContains{Resource: r.resource(), Amount: r.amount()}
	case OpAssertWorktopContainsNonFungibles:
		i = AssertWorktopContainsNonFungibles{Resource: r.resource(), Ids: r.ids()}
	case OpAssertWorktopContainsAny:
		i = AssertWorktopContainsAny{Resource: r.resource()}
	case OpAssertWorktopIsEmpty:
		i = AssertWorktopIsEmpty{}
	case OpAssertWorktopResourcesOnly:
		i = AssertWorktopResourcesOnly{Constraints: r.constraints()}
	case OpAssertWorktopResourcesInclude:
		i = AssertWorktopResourcesInclude{Constraints: r.constraints()}
	case OpAssertNextCallReturnsOnly:
		i = AssertNextCallReturnsOnly{Constraints: r.constraints()}
	case OpAssertNextCallReturnsInclude:
		i = AssertNextCallReturnsInclude{Constraints: r.constraints()}
	case OpAssertBucketContents:
		i = AssertBucketContents{Bucket: r.bucket(), Constraint: r.constraint()}
	case OpPopFromAuthZone:
		i = PopFromAuthZone{}
	case OpPushToAuthZone:
		i = PushToAuthZone{Proof: r.proof()}
	case OpDropAuthZoneProofs:
		i = DropAuthZoneProofs{}
	case OpDropAuthZoneRegularProofs:
		i = DropAuthZoneRegularProofs{}
	case OpCreateProofFromAuthZoneOfAmount:
		i = CreateProofFromAuthZoneOfAmount{Resource: r.resource(), Amount: r.amount()}
	case OpCreateProofFromAuthZoneOfNonFungibles:
		i = CreateProofFromAuthZoneOfNonFungibles{Resource: r.resource(), Ids: r.ids()}
	case OpCreateProofFromAuthZoneOfAll:
		i = CreateProofFromAuthZoneOfAll{Resource: r.resource()}
	case OpDropAuthZoneSignatureProofs:
		i = DropAuthZoneSignatureProofs{}
	case OpCreateProofFromBucketOfAmount:
		i = CreateProofFromBucketOfAmount{Bucket: r.bucket(), Amount: r.amount()}
	case OpCreateProofFromBucketOfNonFungibles:
		i = CreateProofFromBucketOfNonFungibles{Bucket: r.bucket(), Ids: r.ids()}
	case OpCreateProofFromBucketOfAll:
		i = CreateProofFromBucketOfAll{Bucket: r.bucket()}
	case OpBurnResource:
		i = BurnResource{Bucket: r.bucket()}
	case OpCloneProof:
		i = CloneProof{Proof: r.proof()}
	case OpDropProof:
		i = DropProof{Proof: r.proof()}
	case OpCallFunction:
		i = CallFunction{Package: r.address(), Blueprint: r.str(), Function: r.str(), Args: r.value()}
	case OpCallMethod:
		i = CallMethod{Address: r.address(), Method: r.str(), Args: r.value()}
	case OpCallDirectVaultMethod:
		i = CallDirectVaultMethod{Vault: r.reference(), Method: r.str(), Args: r.value()}
	case OpDropAllProofs:
		i = DropAllProofs{}
	case OpAllocateGlobalAddress:
		i = AllocateGlobalAddress{Package: r.reference(), Blueprint: r.str()}
	case OpDropNamedProofs:
		i = DropNamedProofs{}
	case OpYieldToParent:
		i = YieldToParent{Args: r.value()}
	case OpYieldToChild:
		i = YieldToChild{Child: r.u32(), Args: r.value()}
	case OpVerifyParent:
		i = VerifyParent{Rule: r.rule()}
	default:
		return nil, fault.Detailf(fault.ErrUnknownInstruction, "opcode: 0x%02x", e.Discriminator)
	}
	if err := r.done(); nil != err {
		return nil, fault.Detailf(err, "%s", Opcode(e.Discriminator))
	}
	return i, nil
}
