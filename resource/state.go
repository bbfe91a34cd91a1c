// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package resource

import (
	"sort"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/value"
)

// one distinct locked amount and the number of proofs holding it
type amountLock struct {
	amount decimal.Decimal
	count  uint32
}

// fungible container state
type fungibleState struct {
	liquid decimal.Decimal
	locked []amountLock // ascending amount
}

func newFungibleState(amount decimal.Decimal) *fungibleState {
	return &fungibleState{
		liquid: amount,
	}
}

// largest locked amount, zero when unlocked
func (s *fungibleState) maxLocked() decimal.Decimal {
	if 0 == len(s.locked) {
		return decimal.Zero
	}
	return s.locked[len(s.locked)-1].amount
}

// liquid plus locked
func (s *fungibleState) amount() (decimal.Decimal, error) {
	return s.liquid.Add(s.maxLocked())
}

func (s *fungibleState) isLocked() bool {
	return 0 != len(s.locked)
}

func (s *fungibleState) take(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fault.Detailf(fault.ErrInvalidAmount, "%s", amount)
	}
	if s.liquid.Cmp(amount) < 0 {
		return fault.Detailf(fault.ErrInsufficientBalance, "requested: %s  available: %s", amount, s.liquid)
	}
	liquid, err := s.liquid.Sub(amount)
	if nil != err {
		return err
	}
	s.liquid = liquid
	return nil
}

func (s *fungibleState) put(amount decimal.Decimal) error {
	liquid, err := s.liquid.Add(amount)
	if nil != err {
		return err
	}
	s.liquid = liquid
	return nil
}

// lock an amount; only the part above the current maximum leaves liquid
func (s *fungibleState) lock(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fault.Detailf(fault.ErrInvalidAmount, "%s", amount)
	}
	max := s.maxLocked()
	if amount.Cmp(max) > 0 {
		delta, err := amount.Sub(max)
		if nil != err {
			return err
		}
		if err := s.take(delta); nil != err {
			return err
		}
	}
	for i := range s.locked {
		if s.locked[i].amount.Equal(amount) {
			s.locked[i].count += 1
			return nil
		}
	}
	s.locked = append(s.locked, amountLock{amount: amount, count: 1})
	sort.Slice(s.locked, func(i, j int) bool {
		return s.locked[i].amount.Cmp(s.locked[j].amount) < 0
	})
	return nil
}

// release one lock of an amount returning any excess to liquid
func (s *fungibleState) unlock(amount decimal.Decimal) error {
	oldMax := s.maxLocked()
	found := false
	for i := range s.locked {
		if !s.locked[i].amount.Equal(amount) {
			continue
		}
		found = true
		s.locked[i].count -= 1
		if 0 == s.locked[i].count {
			s.locked = append(s.locked[:i], s.locked[i+1:]...)
		}
		break
	}
	if !found {
		return fault.Detailf(fault.ErrLockNotFound, "%s", amount)
	}
	delta, err := oldMax.Sub(s.maxLocked())
	if nil != err {
		return err
	}
	return s.put(delta)
}

func (s *fungibleState) liquidValue() value.Value {
	return value.NewDecimal(s.liquid)
}

func (s *fungibleState) lockedValue() value.Value {
	m := value.Map{Key: value.KindDecimal, Value: value.KindU32}
	for _, l := range s.locked {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.NewDecimal(l.amount),
			Value: value.U32(l.count),
		})
	}
	return m
}

func fungibleStateFromValues(liquid value.Value, locked value.Value) (*fungibleState, error) {
	amount, err := value.AsDecimal(liquid)
	if nil != err {
		return nil, err
	}
	m, ok := locked.(value.Map)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	s := newFungibleState(amount)
	for _, e := range m.Entries {
		a, err := value.AsDecimal(e.Key)
		if nil != err {
			return nil, err
		}
		n, err := value.AsU32(e.Value)
		if nil != err {
			return nil, err
		}
		s.locked = append(s.locked, amountLock{amount: a, count: n})
	}
	return s, nil
}

// non-fungible container state
type nonFungibleState struct {
	liquid map[identifier.LocalId]struct{}
	locked map[identifier.LocalId]uint32
}

func newNonFungibleState(ids []identifier.LocalId) *nonFungibleState {
	s := &nonFungibleState{
		liquid: make(map[identifier.LocalId]struct{}, len(ids)),
		locked: make(map[identifier.LocalId]uint32),
	}
	for _, id := range ids {
		s.liquid[id] = struct{}{}
	}
	return s
}

func sortedIds(set map[identifier.LocalId]struct{}) []identifier.LocalId {
	ids := make([]identifier.LocalId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	identifier.SortLocalIds(ids)
	return ids
}

// all ids, liquid and locked, in order
func (s *nonFungibleState) ids() []identifier.LocalId {
	all := make(map[identifier.LocalId]struct{}, len(s.liquid)+len(s.locked))
	for id := range s.liquid {
		all[id] = struct{}{}
	}
	for id := range s.locked {
		all[id] = struct{}{}
	}
	return sortedIds(all)
}

func (s *nonFungibleState) amount() decimal.Decimal {
	return decimal.New(int64(len(s.liquid) + len(s.locked)))
}

func (s *nonFungibleState) isLocked() bool {
	return 0 != len(s.locked)
}

// uniqueIds - a list naming an id twice is not an amount
func uniqueIds(ids []identifier.LocalId) error {
	seen := make(map[identifier.LocalId]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fault.Detailf(fault.ErrInvalidAmount, "duplicate id: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// remove the given ids from liquid; all or nothing
func (s *nonFungibleState) takeIds(ids []identifier.LocalId) error {
	if err := uniqueIds(ids); nil != err {
		return err
	}
	for _, id := range ids {
		if _, ok := s.liquid[id]; !ok {
			return fault.Detailf(fault.ErrNonFungibleNotFound, "%s", id)
		}
	}
	for _, id := range ids {
		delete(s.liquid, id)
	}
	return nil
}

// first n liquid ids in order
func (s *nonFungibleState) takeCount(n int64) ([]identifier.LocalId, error) {
	if n < 0 {
		return nil, fault.Detailf(fault.ErrInvalidAmount, "%d", n)
	}
	if int64(len(s.liquid)) < n {
		return nil, fault.Detailf(fault.ErrInsufficientBalance, "requested: %d  available: %d", n, len(s.liquid))
	}
	ids := sortedIds(s.liquid)[:n]
	for _, id := range ids {
		delete(s.liquid, id)
	}
	return ids, nil
}

func (s *nonFungibleState) put(ids []identifier.LocalId) error {
	for _, id := range ids {
		if _, ok := s.liquid[id]; ok {
			return fault.Detailf(fault.ErrNonFungibleExists, "%s", id)
		}
		if _, ok := s.locked[id]; ok {
			return fault.Detailf(fault.ErrNonFungibleExists, "%s", id)
		}
	}
	for _, id := range ids {
		s.liquid[id] = struct{}{}
	}
	return nil
}

// lock ids that are either liquid or already locked
func (s *nonFungibleState) lock(ids []identifier.LocalId) error {
	if err := uniqueIds(ids); nil != err {
		return err
	}
	for _, id := range ids {
		_, liquid := s.liquid[id]
		_, locked := s.locked[id]
		if !liquid && !locked {
			return fault.Detailf(fault.ErrNonFungibleNotFound, "%s", id)
		}
	}
	for _, id := range ids {
		delete(s.liquid, id)
		s.locked[id] += 1
	}
	return nil
}

func (s *nonFungibleState) unlock(ids []identifier.LocalId) error {
	for _, id := range ids {
		if _, ok := s.locked[id]; !ok {
			return fault.Detailf(fault.ErrLockNotFound, "%s", id)
		}
	}
	for _, id := range ids {
		s.locked[id] -= 1
		if 0 == s.locked[id] {
			delete(s.locked, id)
			s.liquid[id] = struct{}{}
		}
	}
	return nil
}

func (s *nonFungibleState) liquidValue() value.Value {
	return value.LocalIds(sortedIds(s.liquid))
}

func (s *nonFungibleState) lockedValue() value.Value {
	ids := make([]identifier.LocalId, 0, len(s.locked))
	for id := range s.locked {
		ids = append(ids, id)
	}
	identifier.SortLocalIds(ids)
	m := value.Map{Key: value.KindLocalId, Value: value.KindU32}
	for _, id := range ids {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.LocalId(id),
			Value: value.U32(s.locked[id]),
		})
	}
	return m
}

func nonFungibleStateFromValues(liquid value.Value, locked value.Value) (*nonFungibleState, error) {
	ids, err := value.AsLocalIds(liquid)
	if nil != err {
		return nil, err
	}
	m, ok := locked.(value.Map)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	s := newNonFungibleState(ids)
	for _, e := range m.Entries {
		id, err := value.AsLocalId(e.Key)
		if nil != err {
			return nil, err
		}
		n, err := value.AsU32(e.Value)
		if nil != err {
			return nil, err
		}
		s.locked[id] = n
	}
	return s, nil
}
