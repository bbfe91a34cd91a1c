// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/consensus"
	"github.com/bitmark-inc/substated/costing"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/processor"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
	"github.com/bitmark-inc/substated/worktop"
)

// Package - adds blueprints to the executor's registry
type Package func(registry *kernel.Registry) error

// Config - executor settings shared by every transaction
//
// InjectFailure, when non-zero, fails each transaction after that many
// kernel checkpoints
type Config struct {
	Network          uint8
	CostUnitLimit    uint64
	FeeTable         costing.FeeTable
	MaxCallDepth     int
	MaxTotalBlobSize int
	InjectFailure    uint64
	Wasm             kernel.WasmEngine
}

// Executor - runs prepared transactions against a store
type Executor struct {
	log      *logger.L
	config   Config
	registry *kernel.Registry
}

// system packages every ledger carries
var systemPackages = []Package{
	resource.Register,
	worktop.Register,
	authzone.Register,
	account.Register,
	consensus.Register,
}

// well known nodes visible to every root frame
var wellKnown = []identifier.NodeId{
	identifier.ConsensusManager,
	identifier.Ed25519SignatureResource,
	identifier.SystemExecutionResource,
}

// New - executor with the system packages and any extra ones
func New(config Config, packages ...Package) (*Executor, error) {
	if 0 == config.CostUnitLimit {
		config.CostUnitLimit = costing.DefaultCostUnitLimit
	}
	if 0 == config.MaxTotalBlobSize {
		config.MaxTotalBlobSize = processor.DefaultMaxTotalBlobSize
	}
	registry := kernel.NewRegistry()
	for _, register := range append(append([]Package{}, systemPackages...), packages...) {
		if err := register(registry); nil != err {
			return nil, err
		}
	}
	return &Executor{
		log:      logger.New("engine"),
		config:   config,
		registry: registry,
	}, nil
}

// Network - the network transactions are validated for
func (x *Executor) Network() uint8 {
	return x.config.Network
}

// ExecutePayload - prepare and execute a payload
//
// payloads that fail preparation give a Rejected receipt
func (x *Executor) ExecutePayload(db storage.Database, record transaction.Packed) *Receipt {
	e, err := transaction.Prepare(record, x.config.Network)
	if nil != err {
		r := &Receipt{}
		if kind, kindErr := record.Kind(); nil == kindErr {
			r.Kind = kind
		}
		x.log.Debugf("payload rejected: %s", err)
		return r.reject(err)
	}
	return x.Execute(db, e)
}

// Execute - run a prepared transaction against a store
//
// the store is only read; a successful receipt carries the updates
// for Commit
func (x *Executor) Execute(db storage.Database, e *transaction.Executable) *Receipt {
	r := &Receipt{
		Hash:       e.Hash,
		IntentHash: e.IntentHash,
		Kind:       e.Kind,
	}

	if err := x.admit(db, e); nil != err {
		x.log.Infof("%s %s: rejected: %s", e.Kind, e.Hash, err)
		return r.reject(err)
	}

	switch {
	case nil != e.Flash:
		x.flash(e.Flash, r)
	default:
		x.run(db, e, r)
	}

	if r.IsSuccess() && !e.IntentHash.IsZero() {
		track(r.Updates, e)
	}
	if r.IsSuccess() {
		r.SubstateCount = r.Updates.SubstateCount()
	}
	x.log.Infof("%s %s: %s  cost: %d  substates: %d", e.Kind, e.Hash, r.Status, r.CostConsumed, r.SubstateCount)
	return r
}

// admit - checks against committed state made before execution
func (x *Executor) admit(db storage.Database, e *transaction.Executable) error {
	if e.System {
		return nil
	}
	for _, h := range intentHashes(e) {
		if committed(db, h) {
			return fault.Detailf(fault.ErrIntentAlreadyCommitted, "%s", h)
		}
	}
	state, found, err := consensus.ReadState(db)
	if nil != err {
		return err
	}
	if !found {
		return fault.ErrLedgerNotBootstrapped
	}
	if state.Epoch < e.StartEpoch || state.Epoch >= e.EndEpoch {
		return fault.Detailf(fault.ErrEpochOutOfRange, "epoch: %d  valid: [%d, %d)", state.Epoch, e.StartEpoch, e.EndEpoch)
	}
	return nil
}

// flash - updates written without a kernel
func (x *Executor) flash(flash *transaction.FlashV1, r *Receipt) {
	updates := storage.NewDatabaseUpdates()
	for _, s := range flash.Substates {
		key := storage.NewPartitionKey(s.Node, s.Partition)
		if nil == s.Value {
			updates.Delete(key, s.SortKey)
		} else {
			updates.Set(key, s.SortKey, s.Value)
		}
	}
	r.Status = Succeeded
	r.Updates = updates
}

func (x *Executor) newKernel(db storage.Database, e *transaction.Executable) (*kernel.Kernel, *costing.FeeReserve) {
	fees := costing.NewFeeReserve(x.config.CostUnitLimit, x.config.FeeTable)
	modules := []kernel.Module{fees}
	if 0 != x.config.InjectFailure {
		modules = append(modules, costing.NewInjectFailure(x.config.InjectFailure))
	}
	config := kernel.Config{
		MaxCallDepth: x.config.MaxCallDepth,
		Modules:      modules,
		Hooks:        authzone.Hooks{},
		Wasm:         x.config.Wasm,
		WellKnown:    wellKnown,
	}
	k := kernel.New(kernel.NewTrack(db), x.registry, identifier.NewAllocator(e.Hash), config)
	return k, fees
}

// run - execute the intents or the system call in a kernel
func (x *Executor) run(db storage.Database, e *transaction.Executable, r *Receipt) {
	k, fees := x.newKernel(db, e)
	defer func() {
		r.CostConsumed = fees.Consumed()
		r.CostBreakdown = fees.Breakdown()
	}()

	var outputs [][]value.Packed
	var err error
	if nil != e.RoundUpdate {
		outputs, err = roundUpdate(k, e.RoundUpdate)
	} else {
		t := newThreads(k, e, x.config.MaxTotalBlobSize)
		if err := t.setup(); nil != err {
			r.reject(err)
			return
		}
		outputs, err = t.run()
	}
	if nil != err {
		r.fail(err)
		return
	}

	updates, err := k.Track().Updates()
	if nil != err {
		r.fail(err)
		return
	}
	r.Status = Succeeded
	r.Outputs = outputs
	r.NewGlobalNodes = k.Track().NewGlobalNodes()
	r.Updates = updates
}

// Commit - apply a successful receipt's updates
func Commit(db storage.Committable, r *Receipt) error {
	if !r.IsSuccess() {
		return fault.Detailf(fault.ErrNotCommittable, "%s", r.Status)
	}
	return db.Commit(r.Updates)
}
