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

// proof export names
const (
	functionDrop = "drop"
	methodClone  = "clone"
)

// what a proof shows and the containers backing it
//
// ids may include virtual ids that no container holds
type proofState struct {
	resource   identifier.NodeId
	amount     decimal.Decimal
	ids        []identifier.LocalId
	containers []identifier.NodeId
	amounts    map[identifier.NodeId]decimal.Decimal
	idsOf      map[identifier.NodeId][]identifier.LocalId
}

func newProofState(resource identifier.NodeId) *proofState {
	return &proofState{
		resource: resource,
		amounts:  make(map[identifier.NodeId]decimal.Decimal),
		idsOf:    make(map[identifier.NodeId][]identifier.LocalId),
	}
}

func (p *proofState) fungible() bool {
	return isFungible(p.resource)
}

func (p *proofState) addAmount(container identifier.NodeId, amount decimal.Decimal) {
	if _, ok := p.amounts[container]; !ok {
		p.containers = append(p.containers, container)
	}
	p.amounts[container] = amount
}

func (p *proofState) addIds(container identifier.NodeId, ids []identifier.LocalId) {
	if _, ok := p.idsOf[container]; !ok {
		p.containers = append(p.containers, container)
	}
	p.idsOf[container] = ids
}

func (p *proofState) totalValue() value.Value {
	if p.fungible() {
		return value.NewDecimal(p.amount)
	}
	return value.LocalIds(p.ids)
}

func (p *proofState) evidenceValue() value.Value {
	if p.fungible() {
		m := value.Map{Key: value.KindReference, Value: value.KindDecimal}
		for _, c := range p.containers {
			m.Entries = append(m.Entries, value.MapEntry{
				Key:   value.Reference(c),
				Value: value.NewDecimal(p.amounts[c]),
			})
		}
		return m
	}
	m := value.Map{Key: value.KindReference, Value: value.KindArray}
	for _, c := range p.containers {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.Reference(c),
			Value: value.LocalIds(p.idsOf[c]),
		})
	}
	return m
}

func proofStateFromValues(resource identifier.NodeId, total value.Value, evidence value.Value) (*proofState, error) {
	p := newProofState(resource)
	m, ok := evidence.(value.Map)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	var err error
	if p.fungible() {
		if p.amount, err = value.AsDecimal(total); nil != err {
			return nil, err
		}
	} else if p.ids, err = value.AsLocalIds(total); nil != err {
		return nil, err
	}
	for _, e := range m.Entries {
		container, err := value.AsReference(e.Key)
		if nil != err {
			return nil, err
		}
		if p.fungible() {
			amount, err := value.AsDecimal(e.Value)
			if nil != err {
				return nil, err
			}
			p.addAmount(container, amount)
			continue
		}
		ids, err := value.AsLocalIds(e.Value)
		if nil != err {
			return nil, err
		}
		p.addIds(container, ids)
	}
	return p, nil
}

// open handles on a proof; the backing containers stay visible until closed
type proofHandles struct {
	total    kernel.Handle
	evidence kernel.Handle
}

func (h proofHandles) close(api kernel.API) error {
	err := api.CloseSubstate(h.evidence)
	if e := api.CloseSubstate(h.total); nil == err {
		err = e
	}
	return err
}

func openProof(api kernel.API, proof identifier.NodeId, resource identifier.NodeId) (*proofState, proofHandles, error) {
	h := proofHandles{}
	var err error
	h.total, err = api.OpenSubstate(proof, kernel.MainPartition, kernel.Field(proofTotalField), kernel.ReadOnly)
	if nil != err {
		return nil, h, err
	}
	h.evidence, err = api.OpenSubstate(proof, kernel.MainPartition, kernel.Field(proofEvidenceField), kernel.ReadOnly)
	if nil != err {
		_ = api.CloseSubstate(h.total)
		return nil, h, err
	}
	total, err := api.ReadSubstate(h.total)
	if nil != err {
		h.close(api)
		return nil, h, err
	}
	evidence, err := api.ReadSubstate(h.evidence)
	if nil != err {
		h.close(api)
		return nil, h, err
	}
	p, err := proofStateFromValues(resource, total, evidence)
	if nil != err {
		h.close(api)
		return nil, h, err
	}
	return p, h, nil
}

// create the proof node; the containers must already be locked
func newProof(api kernel.API, p *proofState) (identifier.NodeId, error) {
	id, err := api.AllocateNodeId(identifier.EntityInternalComponent)
	if nil != err {
		return id, err
	}
	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: proofBlueprint(p.resource),
		Outer:     p.resource,
	}
	return id, api.CreateNode(id, info, kernel.Fields(p.totalValue(), p.evidenceValue()))
}

// take one more lock on every backing container
func (p *proofState) lock(api kernel.API) error {
	for _, c := range p.containers {
		var err error
		if p.fungible() {
			_, err = api.CallMethod(c, methodLockAmount, value.Tuple{value.NewDecimal(p.amounts[c])})
		} else {
			_, err = api.CallMethod(c, methodLockNonFungibles, value.Tuple{value.LocalIds(p.idsOf[c])})
		}
		if nil != err {
			return err
		}
	}
	return nil
}

func (p *proofState) unlock(api kernel.API) error {
	for _, c := range p.containers {
		var err error
		if p.fungible() {
			_, err = api.CallMethod(c, methodUnlockAmount, value.Tuple{value.NewDecimal(p.amounts[c])})
		} else {
			_, err = api.CallMethod(c, methodUnlockNonFungibles, value.Tuple{value.LocalIds(p.idsOf[c])})
		}
		if nil != err {
			return err
		}
	}
	return nil
}

// container methods creating proofs

func containerProofOfAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	amount, err := decimalParam(args)
	if nil != err {
		return nil, err
	}
	if amount.IsZero() {
		return nil, fault.ErrEmptyProof
	}
	resource := containerResource(api)
	if isFungible(resource) {
		m, err := readManager(api, resource)
		if nil != err {
			return nil, err
		}
		if err := checkAmount(amount, m.divisibility); nil != err {
			return nil, err
		}
		return lockFungibleProof(api, receiver, resource, amount)
	}
	if err := checkAmount(amount, 0); nil != err {
		return nil, err
	}
	s, err := readNonFungible(api, receiver)
	if nil != err {
		return nil, err
	}
	all := s.ids()
	n, err := amount.Int64()
	if nil != err || n > int64(len(all)) {
		return nil, fault.Detailf(fault.ErrInsufficientBalance, "requested: %s  available: %d", amount, len(all))
	}
	return lockNonFungibleProof(api, receiver, resource, all[:n])
}

func containerProofOfNonFungibles(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	ids, err := localIdsParam(args)
	if nil != err {
		return nil, err
	}
	resource := containerResource(api)
	if isFungible(resource) {
		return nil, fault.ErrNotSupportedByResource
	}
	if 0 == len(ids) {
		return nil, fault.ErrEmptyProof
	}
	if err := uniqueIds(ids); nil != err {
		return nil, err
	}
	sorted := append([]identifier.LocalId{}, ids...)
	identifier.SortLocalIds(sorted)
	return lockNonFungibleProof(api, receiver, resource, sorted)
}

func containerProofOfAll(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	resource := containerResource(api)
	if isFungible(resource) {
		s, err := readFungible(api, receiver)
		if nil != err {
			return nil, err
		}
		amount, err := s.amount()
		if nil != err {
			return nil, err
		}
		if amount.IsZero() {
			return nil, fault.ErrEmptyProof
		}
		return lockFungibleProof(api, receiver, resource, amount)
	}
	s, err := readNonFungible(api, receiver)
	if nil != err {
		return nil, err
	}
	ids := s.ids()
	if 0 == len(ids) {
		return nil, fault.ErrEmptyProof
	}
	return lockNonFungibleProof(api, receiver, resource, ids)
}

func lockFungibleProof(api kernel.API, container identifier.NodeId, resource identifier.NodeId, amount decimal.Decimal) (value.Value, error) {
	err := modifyFungible(api, container, func(s *fungibleState) error {
		return s.lock(amount)
	})
	if nil != err {
		return nil, err
	}
	p := newProofState(resource)
	p.amount = amount
	p.addAmount(container, amount)
	proof, err := newProof(api, p)
	if nil != err {
		return nil, err
	}
	return value.Own(proof), nil
}

func lockNonFungibleProof(api kernel.API, container identifier.NodeId, resource identifier.NodeId, ids []identifier.LocalId) (value.Value, error) {
	err := modifyNonFungible(api, container, func(s *nonFungibleState) error {
		return s.lock(ids)
	})
	if nil != err {
		return nil, err
	}
	p := newProofState(resource)
	p.ids = ids
	p.addIds(container, ids)
	proof, err := newProof(api, p)
	if nil != err {
		return nil, err
	}
	return value.Own(proof), nil
}

// proof exports

func proofAmount(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, h, err := openProof(api, receiver, api.Actor().Outer)
	if nil != err {
		return nil, err
	}
	if err := h.close(api); nil != err {
		return nil, err
	}
	if p.fungible() {
		return value.NewDecimal(p.amount), nil
	}
	return value.NewDecimal(decimal.New(int64(len(p.ids)))), nil
}

func proofLocalIds(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	if isFungible(api.Actor().Outer) {
		return nil, fault.ErrNotSupportedByResource
	}
	p, h, err := openProof(api, receiver, api.Actor().Outer)
	if nil != err {
		return nil, err
	}
	if err := h.close(api); nil != err {
		return nil, err
	}
	return value.LocalIds(p.ids), nil
}

// clone() -> Own; the copy holds its own locks
func proofClone(api kernel.API, receiver identifier.NodeId, args value.Value) (value.Value, error) {
	p, h, err := openProof(api, receiver, api.Actor().Outer)
	if nil != err {
		return nil, err
	}
	if err := p.lock(api); nil != err {
		return nil, err
	}
	clone, err := newProof(api, p)
	if nil != err {
		return nil, err
	}
	if err := h.close(api); nil != err {
		return nil, err
	}
	return value.Own(clone), nil
}

// drop(Own proof) releases the locks and destroys the proof
func proofDrop(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	proof, err := ownParam(args)
	if nil != err {
		return nil, err
	}
	info, err := api.GetTypeInfo(proof)
	if nil != err {
		return nil, err
	}
	if !IsProof(info) {
		return nil, fault.Detailf(fault.ErrTypeMismatch, "%s is not a proof", proof)
	}
	p, h, err := openProof(api, proof, info.Outer)
	if nil != err {
		return nil, err
	}
	if err := p.unlock(api); nil != err {
		return nil, err
	}
	if err := h.close(api); nil != err {
		return nil, err
	}
	_, err = api.DropNode(proof)
	return nil, err
}
