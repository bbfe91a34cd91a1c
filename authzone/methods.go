// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authzone

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/value"
)

func params(args value.Value, n int) (value.Tuple, error) {
	t, err := value.AsTuple(args, n)
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "expected %d parameters", n)
	}
	return t, nil
}

func resourceParam(p value.Tuple) (identifier.NodeId, error) {
	id, err := value.AsReference(p[0])
	if nil != err || !id.EntityType().IsResource() {
		return identifier.NodeId{}, fault.Detailf(fault.ErrInvalidCallData, "resource: %v", p[0])
	}
	return id, nil
}

func zonePush(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	proof, err := value.AsOwn(p[0])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "proof: %v", err)
	}
	info, err := api.GetTypeInfo(proof)
	if nil != err {
		return nil, err
	}
	if !resource.IsProof(info) {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s is not a proof", proof)
	}

	f, proofs, err := openProofs(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer f.closeInto(&err)
	return nil, f.write(value.Owns(append(proofs, proof)))
}

func zonePop(api kernel.API, receiver identifier.NodeId, args value.Value) (_ value.Value, err error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	f, proofs, err := openProofs(api, receiver, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	defer f.closeInto(&err)

	if 0 == len(proofs) {
		return nil, fault.ErrAuthZoneIsEmpty
	}
	last := proofs[len(proofs)-1]
	if err := f.write(value.Owns(proofs[:len(proofs)-1])); nil != err {
		return nil, err
	}
	return value.Own(last), nil
}

// compose a proof over the zone's proofs and, for the signature
// resource, its virtual signature proofs
func compose(api kernel.API, zone identifier.NodeId, address identifier.NodeId, request resource.Request) (_ value.Value, err error) {
	f, proofs, err := openProofs(api, zone, kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	defer f.closeInto(&err)

	var virtual []identifier.LocalId
	if identifier.Ed25519SignatureResource == address {
		s, ids, err := openSignatures(api, zone, kernel.ReadOnly)
		if nil != err {
			return nil, err
		}
		virtual = ids
		if err := s.close(); nil != err {
			return nil, err
		}
	}

	proof, err := resource.Compose(api, address, proofs, virtual, request)
	if nil != err {
		return nil, err
	}
	return value.Own(proof), nil
}

func zoneCreateProofOfAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	amount, err := value.AsDecimal(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
	}
	return compose(api, receiver, address, resource.Request{Kind: resource.RequestAmount, Amount: amount})
}

func zoneCreateProofOfNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	ids, err := value.AsLocalIds(p[1])
	if nil != err {
		return nil, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
	}
	return compose(api, receiver, address, resource.Request{Kind: resource.RequestNonFungibles, Ids: ids})
}

func zoneCreateProofOfAll(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, err := params(args, 1)
	if nil != err {
		return nil, err
	}
	address, err := resourceParam(p)
	if nil != err {
		return nil, err
	}
	return compose(api, receiver, address, resource.Request{Kind: resource.RequestAll})
}

// remove every regular proof from the zone, returning them to the frame
func takeProofs(api kernel.API, zone identifier.NodeId) ([]identifier.NodeId, error) {
	f, proofs, err := openProofs(api, zone, kernel.Mutable)
	if nil != err {
		return nil, err
	}
	err = f.write(value.Owns(nil))
	if e := f.close(); nil == err {
		err = e
	}
	if nil != err {
		return nil, err
	}
	return proofs, nil
}

func dropRegular(api kernel.API, zone identifier.NodeId) error {
	proofs, err := takeProofs(api, zone)
	if nil != err {
		return err
	}
	for _, proof := range proofs {
		if err := resource.DropProof(api, proof); nil != err {
			return err
		}
	}
	return nil
}

func dropSignatures(api kernel.API, zone identifier.NodeId) error {
	f, _, err := openSignatures(api, zone, kernel.Mutable)
	if nil != err {
		return err
	}
	err = f.write(value.LocalIds(nil))
	if e := f.close(); nil == err {
		err = e
	}
	if nil != err {
		return err
	}

	sf, _, err := openSystem(api, zone, kernel.Mutable)
	if nil != err {
		return err
	}
	err = sf.write(value.Bool(false))
	if e := sf.close(); nil == err {
		err = e
	}
	return err
}

func zoneDropProofs(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	if err := dropRegular(api, receiver); nil != err {
		return nil, err
	}
	return nil, dropSignatures(api, receiver)
}

func zoneDropRegularProofs(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	return nil, dropRegular(api, receiver)
}

func zoneDropSignatureProofs(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	return nil, dropSignatures(api, receiver)
}

func zoneDrain(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if _, err := params(args, 0); nil != err {
		return nil, err
	}
	proofs, err := takeProofs(api, receiver)
	if nil != err {
		return nil, err
	}
	return value.Owns(proofs), nil
}
