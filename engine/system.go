// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/consensus"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

// roundUpdate - advance the consensus manager under the system proof
//
// the single output is the new state
func roundUpdate(k *kernel.Kernel, ru *transaction.RoundUpdateV1) ([][]value.Packed, error) {
	if err := k.InitializeRoot(); nil != err {
		return nil, err
	}
	if err := authzone.AddSystemProof(k); nil != err {
		return nil, err
	}
	state, err := consensus.NextRound(k, ru.Round, ru.Timestamp)
	if nil != err {
		return nil, err
	}
	if err := k.FinalizeRoot(); nil != err {
		return nil, err
	}
	outputs, err := encodeOutputs([]value.Value{state.Value()})
	if nil != err {
		return nil, err
	}
	return [][]value.Packed{outputs}, nil
}
