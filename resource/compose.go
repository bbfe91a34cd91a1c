// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// RequestKind - what a composed proof must cover
type RequestKind uint8

// request kinds
const (
	RequestAll RequestKind = iota
	RequestAmount
	RequestNonFungibles
)

// Request - quantity for a composed proof
type Request struct {
	Kind   RequestKind
	Amount decimal.Decimal
	Ids    []identifier.LocalId
}

// Summary - what a proof shows
type Summary struct {
	Resource identifier.NodeId
	Amount   decimal.Decimal
	Ids      []identifier.LocalId
}

// Inspect - read a visible proof
func Inspect(api kernel.API, proof identifier.NodeId) (Summary, error) {
	info, err := api.GetTypeInfo(proof)
	if nil != err {
		return Summary{}, err
	}
	if !IsProof(info) {
		return Summary{}, fault.Detailf(fault.ErrTypeMismatch, "%s is not a proof", proof)
	}
	p, h, err := openProof(api, proof, info.Outer)
	if nil != err {
		return Summary{}, err
	}
	if err := h.close(api); nil != err {
		return Summary{}, err
	}
	s := Summary{
		Resource: info.Outer,
		Amount:   p.amount,
		Ids:      p.ids,
	}
	if !p.fungible() {
		s.Amount = decimal.New(int64(len(p.ids)))
	}
	return s, nil
}

// Compose - a new proof of a resource backed by the containers behind
// the given proofs
//
// the proofs must be visible to the caller and proofs of other
// resources are ignored; virtual ids count towards non-fungible
// requests without any container behind them
func Compose(api kernel.API, resource identifier.NodeId, proofs []identifier.NodeId, virtual []identifier.LocalId, request Request) (identifier.NodeId, error) {
	if RequestAmount == request.Kind && isFungible(resource) {
		m, err := readManager(api, resource)
		if nil != err {
			return identifier.NodeId{}, err
		}
		if err := checkAmount(request.Amount, m.divisibility); nil != err {
			return identifier.NodeId{}, err
		}
	}

	available := newProofState(resource)
	handles := make([]proofHandles, 0, len(proofs))
	defer func() {
		for _, h := range handles {
			_ = h.close(api)
		}
	}()

	for _, proof := range proofs {
		info, err := api.GetTypeInfo(proof)
		if nil != err {
			return identifier.NodeId{}, err
		}
		if !IsProof(info) || info.Outer != resource {
			continue
		}
		p, h, err := openProof(api, proof, resource)
		if nil != err {
			return identifier.NodeId{}, err
		}
		handles = append(handles, h)
		available.merge(p)
	}

	var composed *proofState
	var err error
	if isFungible(resource) {
		composed, err = available.selectAmount(request)
	} else {
		composed, err = available.selectIds(virtual, request)
	}
	if nil != err {
		return identifier.NodeId{}, err
	}
	if err := composed.lock(api); nil != err {
		return identifier.NodeId{}, err
	}
	return newProof(api, composed)
}

// per container, the largest amount or the union of ids over all proofs
func (p *proofState) merge(other *proofState) {
	for _, c := range other.containers {
		if p.fungible() {
			amount := other.amounts[c]
			if current, ok := p.amounts[c]; !ok || amount.Cmp(current) > 0 {
				p.addAmount(c, amount)
			}
			continue
		}
		set := make(map[identifier.LocalId]struct{})
		for _, id := range p.idsOf[c] {
			set[id] = struct{}{}
		}
		for _, id := range other.idsOf[c] {
			set[id] = struct{}{}
		}
		p.addIds(c, sortedIds(set))
	}
}

func (p *proofState) selectAmount(request Request) (*proofState, error) {
	total := decimal.Zero
	for _, c := range p.containers {
		var err error
		if total, err = total.Add(p.amounts[c]); nil != err {
			return nil, err
		}
	}

	requested := total
	switch request.Kind {
	case RequestAll:
	case RequestAmount:
		if request.Amount.IsNegative() {
			return nil, fault.Detailf(fault.ErrInvalidAmount, "%s", request.Amount)
		}
		if request.Amount.Cmp(total) > 0 {
			return nil, fault.Detailf(fault.ErrInsufficientProofEvidence, "requested: %s  available: %s", request.Amount, total)
		}
		requested = request.Amount
	default:
		return nil, fault.ErrNotSupportedByResource
	}
	if requested.IsZero() {
		return nil, fault.ErrEmptyProof
	}

	composed := newProofState(p.resource)
	composed.amount = requested
	remaining := requested
	for _, c := range p.containers {
		if !remaining.IsPositive() {
			break
		}
		quota := p.amounts[c]
		if remaining.Cmp(quota) < 0 {
			quota = remaining
		}
		composed.addAmount(c, quota)
		var err error
		if remaining, err = remaining.Sub(quota); nil != err {
			return nil, err
		}
	}
	return composed, nil
}

func (p *proofState) selectIds(virtual []identifier.LocalId, request Request) (*proofState, error) {
	all := make(map[identifier.LocalId]struct{})
	for _, c := range p.containers {
		for _, id := range p.idsOf[c] {
			all[id] = struct{}{}
		}
	}
	for _, id := range virtual {
		all[id] = struct{}{}
	}
	ordered := sortedIds(all)

	var requested []identifier.LocalId
	switch request.Kind {
	case RequestAll:
		requested = ordered
	case RequestAmount:
		n, err := request.Amount.Int64()
		if nil != err || n < 0 {
			return nil, fault.Detailf(fault.ErrInvalidAmount, "%s", request.Amount)
		}
		if n > int64(len(ordered)) {
			return nil, fault.Detailf(fault.ErrInsufficientProofEvidence, "requested: %d  available: %d", n, len(ordered))
		}
		requested = ordered[:n]
	case RequestNonFungibles:
		if err := uniqueIds(request.Ids); nil != err {
			return nil, err
		}
		for _, id := range request.Ids {
			if _, ok := all[id]; !ok {
				return nil, fault.Detailf(fault.ErrInsufficientProofEvidence, "%s", id)
			}
		}
		requested = append([]identifier.LocalId{}, request.Ids...)
		identifier.SortLocalIds(requested)
	}
	if 0 == len(requested) {
		return nil, fault.ErrEmptyProof
	}

	composed := newProofState(p.resource)
	composed.ids = requested
	assigned := make(map[identifier.LocalId]struct{}, len(requested))
	wanted := make(map[identifier.LocalId]struct{}, len(requested))
	for _, id := range requested {
		wanted[id] = struct{}{}
	}
	for _, c := range p.containers {
		ids := []identifier.LocalId{}
		for _, id := range p.idsOf[c] {
			if _, ok := wanted[id]; !ok {
				continue
			}
			if _, ok := assigned[id]; ok {
				continue
			}
			assigned[id] = struct{}{}
			ids = append(ids, id)
		}
		if 0 != len(ids) {
			composed.addIds(c, ids)
		}
	}
	return composed, nil
}

// Value - enum form for passing through calls
func (r Request) Value() value.Value {
	switch r.Kind {
	case RequestAmount:
		return value.Enum{Discriminator: 1, Fields: []value.Value{value.NewDecimal(r.Amount)}}
	case RequestNonFungibles:
		return value.Enum{Discriminator: 2, Fields: []value.Value{value.LocalIds(r.Ids)}}
	default:
		return value.Enum{Discriminator: 0}
	}
}

// RequestFromValue - decode a request
func RequestFromValue(v value.Value) (Request, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return Request{}, fault.Detailf(fault.ErrInvalidCallData, "request: %v", err)
	}
	switch {
	case 0 == e.Discriminator && 0 == len(e.Fields):
		return Request{Kind: RequestAll}, nil
	case 1 == e.Discriminator && 1 == len(e.Fields):
		amount, err := value.AsDecimal(e.Fields[0])
		if nil != err {
			return Request{}, fault.Detailf(fault.ErrInvalidCallData, "amount: %v", err)
		}
		return Request{Kind: RequestAmount, Amount: amount}, nil
	case 2 == e.Discriminator && 1 == len(e.Fields):
		ids, err := value.AsLocalIds(e.Fields[0])
		if nil != err {
			return Request{}, fault.Detailf(fault.ErrInvalidCallData, "ids: %v", err)
		}
		return Request{Kind: RequestNonFungibles, Ids: ids}, nil
	}
	return Request{}, fault.Detailf(fault.ErrInvalidCallData, "request discriminator: %d", e.Discriminator)
}
