// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/consensus"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/processor"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

// threads - one kernel stack and one processor per intent
//
// intent i runs on stack i
type threads struct {
	k          *kernel.Kernel
	e          *transaction.Executable
	blobLimit  int
	processors []*processor.IntentProcessor
	done       []bool
}

func newThreads(k *kernel.Kernel, e *transaction.Executable, blobLimit int) *threads {
	return &threads{
		k:          k,
		e:          e,
		blobLimit:  blobLimit,
		processors: make([]*processor.IntentProcessor, len(e.Intents)),
		done:       make([]bool, len(e.Intents)),
	}
}

// setup - root frames with their proofs and references
func (t *threads) setup() error {
	for i, intent := range t.e.Intents {
		if 0 != i {
			t.k.AddStack()
		}
		if err := t.k.SwitchStack(i); nil != err {
			return err
		}
		if err := t.k.InitializeRoot(); nil != err {
			return err
		}
		if t.e.System {
			if err := authzone.AddSystemProof(t.k); nil != err {
				return err
			}
		} else if err := authzone.AddSignatureProofs(t.k, intent.Signers); nil != err {
			return err
		}
		if 0 == i && nil != t.e.Genesis {
			if err := bootstrap(t.k, t.e.Genesis); nil != err {
				return err
			}
		}

		refs := manifest.StaticReferences(intent.Manifest.Instructions)
		for _, id := range refs.Global {
			if err := t.k.AddReference(id); nil != err {
				return fault.Detailf(err, "intent %d", i)
			}
		}
		for _, id := range refs.DirectAccess {
			if err := t.k.AddDirectAccessReference(id); nil != err {
				return fault.Detailf(err, "intent %d", i)
			}
		}

		p, err := processor.Init(t.k, intent.Manifest, processor.Config{MaxTotalBlobSize: t.blobLimit})
		if nil != err {
			return err
		}
		t.processors[i] = p
	}
	return t.k.SwitchStack(0)
}

// bootstrap - the system nodes every ledger starts with
func bootstrap(k *kernel.Kernel, genesis *transaction.GenesisSystem) error {
	if err := resource.CreateSignatureResource(k); nil != err {
		return err
	}
	state := consensus.State{Epoch: genesis.Epoch, Timestamp: genesis.Timestamp}
	config := consensus.Config{RoundsPerEpoch: genesis.RoundsPerEpoch}
	return consensus.Create(k, state, config)
}

func (t *threads) runtimeError(intent int, err error) error {
	return &fault.RuntimeError{
		Err:         err,
		Intent:      intent,
		Instruction: t.processors[intent].Cursor(),
	}
}

// yieldError - the yielding instruction is the one before the cursor
func (t *threads) yieldError(intent int, err error) error {
	return &fault.RuntimeError{
		Err:         err,
		Intent:      intent,
		Instruction: t.processors[intent].Cursor() - 1,
	}
}

// run - resume intents until the root is done
//
// a yield moves the yielded value to the receiving intent's root frame
// and resumes it with that value
func (t *threads) run() ([][]value.Packed, error) {
	current := 0
	var received value.Value

	for {
		if err := t.k.SwitchStack(current); nil != err {
			return nil, err
		}
		result, err := t.processors[current].Resume(received)
		received = nil
		if nil != err {
			return nil, t.runtimeError(current, err)
		}
		intent := t.e.Intents[current]

		switch result.Status {
		case processor.Done:
			if transaction.NoParent != intent.Parent {
				return nil, t.runtimeError(current, fault.Detailf(fault.ErrInvalidIntentStructure, "subintent finished without yielding"))
			}
			t.done[current] = true
			return t.finish()

		case processor.YieldToChild:
			child := intent.Children[result.Child]
			if t.done[child] {
				return nil, t.yieldError(current, fault.Detailf(fault.ErrInvalidIntentStructure, "child %d already finished", result.Child))
			}
			if err := t.k.SendToStack(child, result.Value); nil != err {
				return nil, t.yieldError(current, err)
			}
			received = result.Value
			current = child

		case processor.YieldToParent, processor.DoneAndYieldToParent:
			if err := t.k.SendToStack(intent.Parent, result.Value); nil != err {
				return nil, t.yieldError(current, err)
			}
			if processor.DoneAndYieldToParent == result.Status {
				t.done[current] = true
				if err := t.k.FinalizeRoot(); nil != err {
					return nil, t.yieldError(current, err)
				}
			}
			received = result.Value
			current = intent.Parent

		case processor.VerifyParent:
			if err := t.verifyParent(intent.Parent, result.Rule); nil != err {
				return nil, t.yieldError(current, err)
			}
		}
	}
}

// verifyParent - the rule against the parent's root auth zone, checked
// from the parent's stack where the zone is visible
func (t *threads) verifyParent(parent int, rule authzone.Rule) error {
	current := t.k.CurrentStack()
	if err := t.k.SwitchStack(parent); nil != err {
		return err
	}
	zone, ok := t.k.AuthZone()
	if !ok {
		return fault.Detailf(fault.ErrParentVerificationFailed, "parent has no auth zone")
	}
	if err := authzone.Check(t.k, zone, rule); nil != err {
		return fault.Detailf(fault.ErrParentVerificationFailed, "%s", err)
	}
	return t.k.SwitchStack(current)
}

// finish - every subintent ran to its end; close the root frame
func (t *threads) finish() ([][]value.Packed, error) {
	for i, done := range t.done {
		if !done {
			return nil, t.runtimeError(i, fault.Detailf(fault.ErrInvalidIntentStructure, "subintent did not finish"))
		}
	}
	if err := t.k.SwitchStack(0); nil != err {
		return nil, err
	}
	if err := t.k.FinalizeRoot(); nil != err {
		return nil, t.runtimeError(0, err)
	}
	outputs := make([][]value.Packed, len(t.processors))
	for i, p := range t.processors {
		encoded, err := encodeOutputs(p.Outputs())
		if nil != err {
			return nil, err
		}
		outputs[i] = encoded
	}
	return outputs, nil
}
