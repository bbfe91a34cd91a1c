// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package constraint checks resource balances against the constraints
// a manifest declares for the worktop, a bucket or a call's return
package constraint

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
)

// Kind - form of a constraint
type Kind uint8

// constraint kinds
const (
	NonZeroAmount Kind = iota
	ExactAmount
	AtLeastAmount
	ExactNonFungibles
	AtLeastNonFungibles
	General
)

// LowerBound - minimum amount of a general constraint
type LowerBound struct {
	NonZero bool
	Amount  decimal.Decimal
}

// UpperBound - maximum amount of a general constraint
type UpperBound struct {
	Unbounded bool
	Amount    decimal.Decimal
}

// GeneralConstraint - every part must hold
//
// a nil Allowed means any id is allowed
type GeneralConstraint struct {
	Required []identifier.LocalId
	Lower    LowerBound
	Upper    UpperBound
	Allowed  []identifier.LocalId
}

// Constraint - requirement on the balance of one resource
type Constraint struct {
	Kind    Kind
	Amount  decimal.Decimal
	Ids     []identifier.LocalId
	General GeneralConstraint
}

// Balance - quantity of one resource
type Balance struct {
	Amount decimal.Decimal
	Ids    []identifier.LocalId
}

// Validate - the constraint makes sense for a resource kind
func (c Constraint) Validate(fungible bool) error {
	switch c.Kind {
	case NonZeroAmount:
		return nil
	case ExactAmount, AtLeastAmount:
		return checkAmount(c.Amount, fungible)
	case ExactNonFungibles, AtLeastNonFungibles:
		if fungible {
			return fault.Detailf(fault.ErrInvalidConstraint, "ids for a fungible resource")
		}
		return nil
	case General:
		g := c.General
		if fungible && (0 != len(g.Required) || nil != g.Allowed) {
			return fault.Detailf(fault.ErrInvalidConstraint, "ids for a fungible resource")
		}
		if !g.Lower.NonZero {
			if err := checkAmount(g.Lower.Amount, fungible); nil != err {
				return err
			}
		}
		if !g.Upper.Unbounded {
			if err := checkAmount(g.Upper.Amount, fungible); nil != err {
				return err
			}
			if !g.Lower.NonZero && g.Upper.Amount.Cmp(g.Lower.Amount) < 0 {
				return fault.Detailf(fault.ErrInvalidConstraint, "upper bound below lower bound")
			}
		}
		if nil != g.Allowed {
			allowed := set(g.Allowed)
			for _, id := range g.Required {
				if _, ok := allowed[id]; !ok {
					return fault.Detailf(fault.ErrInvalidConstraint, "required id %s is not allowed", id)
				}
			}
		}
		return nil
	}
	return fault.Detailf(fault.ErrInvalidConstraint, "kind: %d", c.Kind)
}

func checkAmount(amount decimal.Decimal, fungible bool) error {
	if amount.IsNegative() {
		return fault.Detailf(fault.ErrInvalidConstraint, "negative amount: %s", amount)
	}
	if !fungible && !amount.IsInteger() {
		return fault.Detailf(fault.ErrInvalidConstraint, "fractional amount: %s", amount)
	}
	return nil
}

func set(ids []identifier.LocalId) map[identifier.LocalId]struct{} {
	s := make(map[identifier.LocalId]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func containsAll(s map[identifier.LocalId]struct{}, ids []identifier.LocalId) bool {
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// Check - the balance satisfies the constraint
func (c Constraint) Check(balance Balance) error {
	held := set(balance.Ids)
	ok := false
	switch c.Kind {
	case NonZeroAmount:
		ok = balance.Amount.IsPositive()
	case ExactAmount:
		ok = balance.Amount.Equal(c.Amount)
	case AtLeastAmount:
		ok = balance.Amount.Cmp(c.Amount) >= 0
	case ExactNonFungibles:
		ok = len(held) == len(set(c.Ids)) && containsAll(held, c.Ids)
	case AtLeastNonFungibles:
		ok = containsAll(held, c.Ids)
	case General:
		ok = c.General.check(balance, held)
	}
	if !ok {
		return fault.Detailf(fault.ErrResourceConstraintFailed, "amount: %s", balance.Amount)
	}
	return nil
}

func (g GeneralConstraint) check(balance Balance, held map[identifier.LocalId]struct{}) bool {
	if !containsAll(held, g.Required) {
		return false
	}
	if g.Lower.NonZero {
		if !balance.Amount.IsPositive() {
			return false
		}
	} else if balance.Amount.Cmp(g.Lower.Amount) < 0 {
		return false
	}
	if !g.Upper.Unbounded && balance.Amount.Cmp(g.Upper.Amount) > 0 {
		return false
	}
	if nil != g.Allowed && !containsAll(set(g.Allowed), balance.Ids) {
		return false
	}
	return true
}

// Entry - constraint on one resource
type Entry struct {
	Resource   identifier.NodeId
	Constraint Constraint
}

// Constraints - per resource constraints in declaration order
type Constraints []Entry

// Validate - resources are unique and each constraint fits its resource
func (cs Constraints) Validate() error {
	seen := make(map[identifier.NodeId]struct{}, len(cs))
	for _, e := range cs {
		if _, ok := seen[e.Resource]; ok {
			return fault.Detailf(fault.ErrInvalidConstraint, "duplicate resource: %s", e.Resource)
		}
		seen[e.Resource] = struct{}{}
		if !e.Resource.EntityType().IsResource() {
			return fault.Detailf(fault.ErrInvalidConstraint, "not a resource: %s", e.Resource)
		}
		if err := e.Constraint.Validate(e.Resource.EntityType().IsFungibleResource()); nil != err {
			return err
		}
	}
	return nil
}

// CheckInclude - every constrained resource satisfies its constraint;
// absent resources have a zero balance
func (cs Constraints) CheckInclude(balances map[identifier.NodeId]Balance) error {
	for _, e := range cs {
		if err := e.Constraint.Check(balances[e.Resource]); nil != err {
			return fault.Detailf(err, "resource: %s", e.Resource)
		}
	}
	return nil
}

// CheckOnly - as CheckInclude and no other resource has a non-zero balance
func (cs Constraints) CheckOnly(balances map[identifier.NodeId]Balance) error {
	if err := cs.CheckInclude(balances); nil != err {
		return err
	}
	constrained := make(map[identifier.NodeId]struct{}, len(cs))
	for _, e := range cs {
		constrained[e.Resource] = struct{}{}
	}
	for resource, balance := range balances {
		if _, ok := constrained[resource]; ok {
			continue
		}
		if !balance.Amount.IsZero() {
			return fault.Detailf(fault.ErrUnexpectedUnspecifiedBalance, "resource: %s", resource)
		}
	}
	return nil
}
