// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
)

// BlueprintName - the consensus manager component
const BlueprintName = "ConsensusManager"

// exports
const (
	FunctionCreate  = "create"
	MethodNextRound = "next_round"
	MethodGetState  = "get_state"
)

// fields
const (
	stateField  uint8 = 0
	configField uint8 = 1
)

// State - the ledger clock
//
// Timestamp is the proposer's clock in milliseconds
type State struct {
	Epoch     uint64 `json:"epoch"`
	Round     uint64 `json:"round"`
	Timestamp int64  `json:"timestamp"`
}

// Config - fixed at genesis
type Config struct {
	RoundsPerEpoch uint64 `json:"roundsPerEpoch"`
}

// Value - the state as it is stored and returned by next_round
func (s State) Value() value.Value {
	return value.Tuple{value.U64(s.Epoch), value.U64(s.Round), value.I64(s.Timestamp)}
}

func stateFromValue(v value.Value) (State, error) {
	t, err := value.AsTuple(v, 3)
	if nil != err {
		return State{}, err
	}
	epoch, err := value.AsU64(t[0])
	if nil != err {
		return State{}, err
	}
	round, err := value.AsU64(t[1])
	if nil != err {
		return State{}, err
	}
	timestamp, err := value.AsI64(t[2])
	if nil != err {
		return State{}, err
	}
	return State{Epoch: epoch, Round: round, Timestamp: timestamp}, nil
}

func (c Config) toValue() value.Value {
	return value.Tuple{value.U64(c.RoundsPerEpoch)}
}

func configFromValue(v value.Value) (Config, error) {
	t, err := value.AsTuple(v, 1)
	if nil != err {
		return Config{}, err
	}
	rounds, err := value.AsU64(t[0])
	if nil != err {
		return Config{}, err
	}
	return Config{RoundsPerEpoch: rounds}, nil
}

// Blueprint - id of the consensus manager blueprint
func Blueprint() kernel.BlueprintId {
	return kernel.BlueprintId{
		Package: identifier.ConsensusManagerPackage,
		Name:    BlueprintName,
	}
}

// Register - add the consensus manager package to a registry
func Register(registry *kernel.Registry) error {
	return registry.Register(identifier.ConsensusManagerPackage, &kernel.Blueprint{
		Name:      BlueprintName,
		CodeType:  kernel.NativeCode,
		Functions: map[string]kernel.NativeFunction{FunctionCreate: create},
		Methods: map[string]kernel.NativeFunction{
			MethodNextRound: nextRound,
			MethodGetState:  getState,
		},
	})
}

// Create - the consensus manager at its well known address
func Create(api kernel.API, state State, config Config) error {
	_, err := api.CallFunction(Blueprint(), FunctionCreate, value.Tuple{state.Value(), config.toValue()})
	return err
}

// NextRound - advance the clock, returning the new state
func NextRound(api kernel.API, round uint64, timestamp int64) (State, error) {
	v, err := api.CallMethod(identifier.ConsensusManager, MethodNextRound, value.Tuple{value.U64(round), value.I64(timestamp)})
	if nil != err {
		return State{}, err
	}
	return stateFromValue(v)
}

// GetState - the current clock
func GetState(api kernel.API) (State, error) {
	v, err := api.CallMethod(identifier.ConsensusManager, MethodGetState, value.Tuple{})
	if nil != err {
		return State{}, err
	}
	return stateFromValue(v)
}

// ReadState - the committed clock straight from a store
//
// found is false before genesis
func ReadState(db storage.Database) (State, bool, error) {
	data, found := db.Get(storage.NewPartitionKey(identifier.ConsensusManager, kernel.MainPartition), kernel.Field(stateField))
	if !found {
		return State{}, false, nil
	}
	v, err := value.Decode(data)
	if nil != err {
		return State{}, false, err
	}
	state, err := stateFromValue(v)
	return state, nil == err, err
}

func params(args value.Value, n int) (value.Tuple, error) {
	t, err := value.AsTuple(args, n)
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "expected %d parameters", n)
	}
	return t, nil
}

func create(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	state, err := stateFromValue(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "state: %v", err)
	}
	config, err := configFromValue(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "config: %v", err)
	}
	if 0 == config.RoundsPerEpoch || state.Round >= config.RoundsPerEpoch {
		return nil, fault.ErrInvalidConsensusConfig
	}
	if err := authzone.CheckCaller(api, authzone.RequireSystem()); nil != err {
		return nil, err
	}

	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: Blueprint(),
	}
	return nil, api.CreateNode(identifier.ConsensusManager, info, kernel.Fields(state.Value(), config.toValue()))
}

// close a handle on return, keeping the first error
func closeHandle(api kernel.API, h kernel.Handle, err *error) {
	if e := api.CloseSubstate(h); nil == *err {
		*err = e
	}
}

func readField(api kernel.API, receiver identifier.NodeId, n uint8, flags kernel.LockFlags) (kernel.Handle, value.Value, error) {
	h, err := api.OpenSubstate(receiver, kernel.MainPartition, kernel.Field(n), flags)
	if nil != err {
		return 0, nil, err
	}
	v, err := api.ReadSubstate(h)
	if nil != err {
		_ = api.CloseSubstate(h)
		return 0, nil, err
	}
	return h, v, nil
}

// nextRound - rounds increase within an epoch; reaching the epoch
// length starts the next epoch at round zero
func nextRound(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	round, err := value.AsU64(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "round: %v", err)
	}
	timestamp, err := value.AsI64(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "timestamp: %v", err)
	}
	if err := authzone.CheckCaller(api, authzone.RequireSystem()); nil != err {
		return nil, err
	}

	ch, cv, err := readField(api, receiver, configField, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	if err := api.CloseSubstate(ch); nil != err {
		return nil, err
	}
	config, err := configFromValue(cv)
	if nil != err {
		return nil, err
	}

	h, v, err := readField(api, receiver, stateField, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer closeHandle(api, h, &err)

	state, err := stateFromValue(v)
	if nil != err {
		return nil, err
	}
	if round <= state.Round {
		return nil, fault.Detailf(fault.ErrRoundNotIncreasing, "current: %d  proposed: %d", state.Round, round)
	}
	if timestamp < state.Timestamp {
		return nil, fault.Detailf(fault.ErrTimestampDecreasing, "current: %d  proposed: %d", state.Timestamp, timestamp)
	}

	state.Round = round
	state.Timestamp = timestamp
	if state.Round >= config.RoundsPerEpoch {
		state.Epoch += 1
		state.Round = 0
	}
	next := state.Value()
	if err := api.WriteSubstate(h, next); nil != err {
		return nil, err
	}
	return next, nil
}

func getState(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	h, v, err := readField(api, receiver, stateField, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	if err := api.CloseSubstate(h); nil != err {
		return nil, err
	}
	return v, nil
}
