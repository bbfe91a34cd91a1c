// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/constraint"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
	"github.com/bitmark-inc/substated/worktop"
)

// DefaultMaxTotalBlobSize - bytes of blobs one intent may pass to calls
const DefaultMaxTotalBlobSize = 1024 * 1024

// Config - per intent settings
type Config struct {
	// cumulative size of blobs resolved into call arguments
	MaxTotalBlobSize int

	// reservation nodes already owned by the frame, numbered from zero
	// ahead of any the manifest allocates
	Reservations []identifier.NodeId
}

// Status - why Resume returned
type Status uint8

// resume outcomes
const (
	Done Status = iota
	DoneAndYieldToParent
	YieldToChild
	YieldToParent
	VerifyParent
)

var statusNames = map[Status]string{
	Done:                 "Done",
	DoneAndYieldToParent: "DoneAndYieldToParent",
	YieldToChild:         "YieldToChild",
	YieldToParent:        "YieldToParent",
	VerifyParent:         "VerifyParent",
}

// String - for logging
func (s Status) String() string {
	return statusNames[s]
}

// ResumeResult - where the intent stopped
//
// Value is sent with a yield, Child selects the child intent and Rule
// is the requirement on the parent's auth zone
type ResumeResult struct {
	Status Status
	Child  uint32
	Value  value.Value
	Rule   authzone.Rule
}

// IsDone - the intent has nothing left to run
func (r ResumeResult) IsDone() bool {
	return Done == r.Status || DoneAndYieldToParent == r.Status
}

// next call assertion waiting for an invocation to return
type nextCall struct {
	only        bool
	constraints constraint.Constraints
}

// IntentProcessor - runs one intent's instructions in the current frame
// of the kernel, stopping at each yield
type IntentProcessor struct {
	log          *logger.L
	api          kernel.API
	instructions []manifest.Instruction
	cursor       int
	worktop      identifier.NodeId
	objects      *objects
	blobs        map[digest.Digest][]byte
	blobBudget   int
	next         *nextCall
	outputs      []value.Value
	finished     bool
}

// Init - create the worktop and the identifier mapping
func Init(api kernel.API, m manifest.Manifest, config Config) (*IntentProcessor, error) {
	if config.MaxTotalBlobSize <= 0 {
		config.MaxTotalBlobSize = DefaultMaxTotalBlobSize
	}
	w, err := worktop.New(api)
	if nil != err {
		return nil, err
	}
	p := &IntentProcessor{
		log:          logger.New("processor"),
		api:          api,
		instructions: m.Instructions,
		worktop:      w,
		objects:      newObjects(),
		blobs:        m.BlobMap(),
		blobBudget:   config.MaxTotalBlobSize,
		outputs:      make([]value.Value, 0, len(m.Instructions)),
	}
	for _, reservation := range config.Reservations {
		p.objects.reservations.add(reservation)
	}
	p.log.Debugf("intent: %d instructions, %d blobs", len(m.Instructions), len(m.Blobs))
	return p, nil
}

// Cursor - index of the next instruction, or of the one that failed
func (p *IntentProcessor) Cursor() int {
	return p.cursor
}

// Outputs - per instruction results so far; nil for instructions that
// do not return a value
func (p *IntentProcessor) Outputs() []value.Value {
	return p.outputs
}

// Worktop - the intent's worktop node
func (p *IntentProcessor) Worktop() identifier.NodeId {
	return p.worktop
}

// Resume - run until the next yield or the end
//
// received is the value a child or parent yielded back, already moved
// into the current frame; nil when nothing was received
func (p *IntentProcessor) Resume(received value.Value) (ResumeResult, error) {
	if p.finished {
		return ResumeResult{}, fault.Detailf(fault.ErrInvalidIntentStructure, "intent already finished")
	}
	if nil != received {
		if err := p.handleReturn(received); nil != err {
			return ResumeResult{}, err
		}
	}

	for p.cursor < len(p.instructions) {
		instruction := p.instructions[p.cursor]
		p.log.Debugf("%d: %s", p.cursor, instruction.Opcode())

		output, yield, err := p.execute(instruction)
		if nil != err {
			p.log.Debugf("%d: %s failed: %s", p.cursor, instruction.Opcode(), err)
			return ResumeResult{}, err
		}
		p.outputs = append(p.outputs, output)
		p.cursor += 1

		if nil == yield {
			continue
		}
		if YieldToParent == yield.Status && p.cursor == len(p.instructions) {
			if err := p.finish(); nil != err {
				return ResumeResult{}, err
			}
			yield.Status = DoneAndYieldToParent
		}
		return *yield, nil
	}

	if err := p.finish(); nil != err {
		return ResumeResult{}, err
	}
	return ResumeResult{Status: Done}, nil
}

// finish - the worktop must be empty and no assertion left pending
func (p *IntentProcessor) finish() error {
	if nil != p.next {
		return fault.Detailf(fault.ErrResourceConstraintFailed, "no call followed the next call assertion")
	}
	if err := worktop.Drop(p.api, p.worktop); nil != err {
		return err
	}
	p.finished = true
	return nil
}

// handleReturn - buckets go to the worktop and proofs to the auth zone
//
// a pending next call assertion is checked against the returned buckets
func (p *IntentProcessor) handleReturn(v value.Value) error {
	next := p.next
	p.next = nil

	balances := make(map[identifier.NodeId]constraint.Balance)
	for _, id := range value.OwnedNodes(v) {
		info, err := p.api.GetTypeInfo(id)
		if nil != err {
			return err
		}
		switch {
		case resource.IsBucket(info):
			if nil != next {
				if err := addBalance(p.api, balances, info.Outer, id); nil != err {
					return err
				}
			}
			if err := worktop.Put(p.api, p.worktop, id); nil != err {
				return err
			}
		case resource.IsProof(info):
			if err := authzone.Push(p.api, id); nil != err {
				return err
			}
		}
	}

	if nil == next {
		return nil
	}
	if next.only {
		return next.constraints.CheckOnly(balances)
	}
	return next.constraints.CheckInclude(balances)
}

// the balance of a bucket
func bucketBalance(api kernel.API, address identifier.NodeId, bucket identifier.NodeId) (constraint.Balance, error) {
	b := constraint.Balance{}
	var err error
	b.Amount, err = resource.Amount(api, bucket)
	if nil != err {
		return b, err
	}
	if !address.EntityType().IsFungibleResource() {
		b.Ids, err = resource.LocalIds(api, bucket)
	}
	return b, err
}

func addBalance(api kernel.API, balances map[identifier.NodeId]constraint.Balance, address identifier.NodeId, bucket identifier.NodeId) error {
	b, err := bucketBalance(api, address, bucket)
	if nil != err {
		return err
	}
	total, ok := balances[address]
	if !ok {
		balances[address] = b
		return nil
	}
	total.Amount, err = total.Amount.Add(b.Amount)
	if nil != err {
		return err
	}
	total.Ids = append(total.Ids, b.Ids...)
	balances[address] = total
	return nil
}

// transform - resolve manifest values into runtime values
//
// buckets, proofs and reservations are consumed; expressions drain the
// worktop or the auth zone; blobs count against the size limit
func (p *IntentProcessor) transform(v value.Value) (value.Value, error) {
	return value.Replace(v, func(item value.Value) (value.Value, bool, error) {
		switch x := item.(type) {
		case value.Bucket:
			id, err := p.objects.takeBucket(uint32(x))
			return value.Own(id), true, err
		case value.Proof:
			id, err := p.objects.takeProof(uint32(x))
			return value.Own(id), true, err
		case value.AddressReservation:
			id, err := p.objects.takeReservation(uint32(x))
			return value.Own(id), true, err
		case value.NamedAddress:
			id, err := p.objects.address(uint32(x))
			return value.Reference(id), true, err
		case value.Expression:
			var ids []identifier.NodeId
			var err error
			switch x {
			case value.EntireWorktop:
				ids, err = worktop.Drain(p.api, p.worktop)
			case value.EntireAuthZone:
				ids, err = authzone.Drain(p.api)
			default:
				err = fault.ErrUnexpectedKind
			}
			return value.Owns(ids), true, err
		case value.Blob:
			hash := digest.Digest(x)
			blob, ok := p.blobs[hash]
			if !ok {
				return nil, true, fault.BlobNotFound(hash.String())
			}
			p.blobBudget -= len(blob)
			if p.blobBudget < 0 {
				return nil, true, fault.ErrTotalBlobSizeLimitExceeded
			}
			return value.Bytes(blob), true, nil
		}
		return nil, false, nil
	})
}

// resolve - the node behind a static or named address
func (p *IntentProcessor) resolve(a manifest.Address) (identifier.NodeId, error) {
	if a.IsNamed {
		return p.objects.address(uint32(a.Named))
	}
	return a.Static, nil
}

// entity type of a new global object of a blueprint
func entityFor(blueprint kernel.BlueprintId) identifier.EntityType {
	if identifier.ResourcePackage == blueprint.Package {
		switch blueprint.Name {
		case resource.FungibleResourceManager:
			return identifier.EntityGlobalFungibleResource
		case resource.NonFungibleResourceManager:
			return identifier.EntityGlobalNonFungibleResource
		}
	}
	return identifier.EntityGlobalComponent
}
