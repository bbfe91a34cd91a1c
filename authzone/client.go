// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authzone

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
)

// operations on the current frame's auth zone

func current(api kernel.API) (identifier.NodeId, error) {
	zone, ok := api.AuthZone()
	if !ok {
		return identifier.NodeId{}, fault.Detailf(fault.ErrNodeNotFound, "no auth zone in %s", api.Actor())
	}
	return zone, nil
}

func call(api kernel.API, method string, args value.Value) (value.Value, error) {
	zone, err := current(api)
	if nil != err {
		return nil, err
	}
	return api.CallMethod(zone, method, args)
}

func proofResult(v value.Value, err error) (identifier.NodeId, error) {
	if nil != err {
		return identifier.NodeId{}, err
	}
	return value.AsOwn(v)
}

// Push - add a proof
func Push(api kernel.API, proof identifier.NodeId) error {
	_, err := call(api, methodPush, value.Tuple{value.Own(proof)})
	return err
}

// Pop - remove the most recently pushed proof
func Pop(api kernel.API) (identifier.NodeId, error) {
	return proofResult(call(api, methodPop, value.Tuple{}))
}

// CreateProofOfAmount - composed proof of an amount
func CreateProofOfAmount(api kernel.API, address identifier.NodeId, amount decimal.Decimal) (identifier.NodeId, error) {
	args := value.Tuple{value.Reference(address), value.NewDecimal(amount)}
	return proofResult(call(api, methodCreateProofOfAmount, args))
}

// CreateProofOfNonFungibles - composed proof of specific ids
func CreateProofOfNonFungibles(api kernel.API, address identifier.NodeId, ids []identifier.LocalId) (identifier.NodeId, error) {
	args := value.Tuple{value.Reference(address), value.LocalIds(ids)}
	return proofResult(call(api, methodCreateProofOfNonFungibles, args))
}

// CreateProofOfAll - composed proof of everything the zone can show
func CreateProofOfAll(api kernel.API, address identifier.NodeId) (identifier.NodeId, error) {
	return proofResult(call(api, methodCreateProofOfAll, value.Tuple{value.Reference(address)}))
}

// DropProofs - drop regular proofs and clear signature proofs
func DropProofs(api kernel.API) error {
	_, err := call(api, methodDropProofs, value.Tuple{})
	return err
}

// DropRegularProofs - drop the pushed proofs only
func DropRegularProofs(api kernel.API) error {
	_, err := call(api, methodDropRegularProofs, value.Tuple{})
	return err
}

// DropSignatureProofs - clear the virtual signature proofs only
func DropSignatureProofs(api kernel.API) error {
	_, err := call(api, methodDropSignatureProofs, value.Tuple{})
	return err
}

// Drain - take every pushed proof back into the frame
func Drain(api kernel.API) ([]identifier.NodeId, error) {
	v, err := call(api, methodDrain, value.Tuple{})
	if nil != err {
		return nil, err
	}
	return value.AsOwnArray(v)
}

// Evidence - what the proofs in a zone owned by the current frame show,
// signature proofs last
func Evidence(api kernel.API, zone identifier.NodeId) (_ []resource.Summary, err error) {
	f, proofs, err := openProofs(api, zone, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	defer f.closeInto(&err)

	result := make([]resource.Summary, 0, len(proofs)+1)
	for _, proof := range proofs {
		s, err := resource.Inspect(api, proof)
		if nil != err {
			return nil, err
		}
		result = append(result, s)
	}

	sf, ids, err := openSignatures(api, zone, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	if err := sf.close(); nil != err {
		return nil, err
	}
	if 0 != len(ids) {
		result = append(result, resource.Summary{
			Resource: identifier.Ed25519SignatureResource,
			Amount:   decimal.New(int64(len(ids))),
			Ids:      ids,
		})
	}

	yf, system, err := openSystem(api, zone, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	if err := yf.close(); nil != err {
		return nil, err
	}
	if system {
		result = append(result, resource.Summary{
			Resource: identifier.SystemExecutionResource,
			Amount:   decimal.New(1),
		})
	}
	return result, nil
}
