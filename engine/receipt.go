// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"errors"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

// Status - outcome of one transaction
type Status uint8

// outcomes
//
// only Succeeded receipts carry state updates; Rejected transactions
// never started executing
const (
	Succeeded Status = iota
	Failed
	Rejected
)

// String - for logging
func (s Status) String() string {
	switch s {
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	case Rejected:
		return "Rejected"
	default:
		return "*Unknown*"
	}
}

// MarshalText - status name in JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText - status from its name
func (s *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{Succeeded, Failed, Rejected} {
		if status.String() == string(text) {
			*s = status
			return nil
		}
	}
	return fault.Detailf(fault.ErrUnexpectedDiscriminator, "status: %q", text)
}

// Failure - where and why a transaction stopped
//
// Intent and Instruction are -1 when the failure was outside any
// instruction stream
type Failure struct {
	Intent      int    `json:"intent"`
	Instruction int    `json:"instruction"`
	Message     string `json:"message"`
}

// Receipt - result of executing one transaction
//
// Outputs holds the encoded output of each instruction per intent,
// nil for instructions without an output
type Receipt struct {
	Hash           digest.Digest            `json:"hash"`
	IntentHash     digest.Digest            `json:"intentHash"`
	Kind           transaction.Kind         `json:"kind"`
	Status         Status                   `json:"status"`
	Outputs        [][]value.Packed         `json:"outputs,omitempty"`
	NewGlobalNodes []identifier.NodeId      `json:"newGlobalNodes,omitempty"`
	SubstateCount  int                      `json:"substateCount"`
	CostConsumed   uint64                   `json:"costConsumed"`
	CostBreakdown  map[string]uint64        `json:"costBreakdown,omitempty"`
	Failure        *Failure                 `json:"failure,omitempty"`
	Updates        *storage.DatabaseUpdates `json:"-"`

	err error
}

// Err - the failure or rejection cause, nil on success
func (r *Receipt) Err() error {
	return r.err
}

// IsSuccess - the updates may be committed
func (r *Receipt) IsSuccess() bool {
	return Succeeded == r.Status
}

func (r *Receipt) reject(err error) *Receipt {
	r.Status = Rejected
	r.Updates = nil
	r.setError(err)
	return r
}

func (r *Receipt) fail(err error) *Receipt {
	r.Status = Failed
	r.Updates = nil
	r.NewGlobalNodes = nil
	r.SubstateCount = 0
	r.setError(err)
	return r
}

func (r *Receipt) setError(err error) {
	r.err = err
	r.Failure = &Failure{Intent: -1, Instruction: -1, Message: err.Error()}
	var runtime *fault.RuntimeError
	if errors.As(err, &runtime) {
		r.Failure.Intent = runtime.Intent
		r.Failure.Instruction = runtime.Instruction
	}
}

// encodeOutputs - nil outputs stay nil
func encodeOutputs(outputs []value.Value) ([]value.Packed, error) {
	encoded := make([]value.Packed, len(outputs))
	for i, output := range outputs {
		if nil == output {
			continue
		}
		p, err := value.Encode(output)
		if nil != err {
			return nil, err
		}
		encoded[i] = p
	}
	return encoded, nil
}

// Output - decoded output of one instruction
func (r *Receipt) Output(intent int, instruction int) (value.Value, error) {
	if intent < 0 || intent >= len(r.Outputs) || instruction < 0 || instruction >= len(r.Outputs[intent]) {
		return nil, fault.Detailf(fault.ErrOutputNotFound, "intent %d instruction %d", intent, instruction)
	}
	p := r.Outputs[intent][instruction]
	if nil == p {
		return nil, nil
	}
	return value.Decode(p)
}
