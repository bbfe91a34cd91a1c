// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/value"
)

// Value - enum form of a constraint
func (c Constraint) Value() value.Value {
	e := value.Enum{Discriminator: uint8(c.Kind)}
	switch c.Kind {
	case ExactAmount, AtLeastAmount:
		e.Fields = []value.Value{value.NewDecimal(c.Amount)}
	case ExactNonFungibles, AtLeastNonFungibles:
		e.Fields = []value.Value{value.LocalIds(c.Ids)}
	case General:
		g := c.General
		lower := value.Enum{Discriminator: 0}
		if !g.Lower.NonZero {
			lower = value.Enum{Discriminator: 1, Fields: []value.Value{value.NewDecimal(g.Lower.Amount)}}
		}
		upper := value.Enum{Discriminator: 1}
		if !g.Upper.Unbounded {
			upper = value.Enum{Discriminator: 0, Fields: []value.Value{value.NewDecimal(g.Upper.Amount)}}
		}
		allowed := value.Enum{Discriminator: 1}
		if nil != g.Allowed {
			allowed = value.Enum{Discriminator: 0, Fields: []value.Value{value.LocalIds(g.Allowed)}}
		}
		e.Fields = []value.Value{
			value.Tuple{value.LocalIds(g.Required), lower, upper, allowed},
		}
	}
	return e
}

// FromValue - constraint from its enum form
func FromValue(v value.Value) (Constraint, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return Constraint{}, err
	}
	c := Constraint{Kind: Kind(e.Discriminator)}
	switch c.Kind {
	case NonZeroAmount:
		if 0 != len(e.Fields) {
			return Constraint{}, fault.ErrWrongFieldCount
		}
		return c, nil
	case ExactAmount, AtLeastAmount:
		if 1 != len(e.Fields) {
			return Constraint{}, fault.ErrWrongFieldCount
		}
		c.Amount, err = value.AsDecimal(e.Fields[0])
		return c, err
	case ExactNonFungibles, AtLeastNonFungibles:
		if 1 != len(e.Fields) {
			return Constraint{}, fault.ErrWrongFieldCount
		}
		c.Ids, err = value.AsLocalIds(e.Fields[0])
		return c, err
	case General:
		if 1 != len(e.Fields) {
			return Constraint{}, fault.ErrWrongFieldCount
		}
		c.General, err = generalFromValue(e.Fields[0])
		return c, err
	}
	return Constraint{}, fault.Detailf(fault.ErrUnexpectedDiscriminator, "constraint: %d", e.Discriminator)
}

func generalFromValue(v value.Value) (GeneralConstraint, error) {
	g := GeneralConstraint{}
	t, err := value.AsTuple(v, 4)
	if nil != err {
		return g, err
	}
	g.Required, err = value.AsLocalIds(t[0])
	if nil != err {
		return g, err
	}

	lower, err := value.AsEnum(t[1])
	if nil != err {
		return g, err
	}
	switch {
	case 0 == lower.Discriminator && 0 == len(lower.Fields):
		g.Lower.NonZero = true
	case 1 == lower.Discriminator && 1 == len(lower.Fields):
		if g.Lower.Amount, err = value.AsDecimal(lower.Fields[0]); nil != err {
			return g, err
		}
	default:
		return g, fault.Detailf(fault.ErrUnexpectedDiscriminator, "lower bound: %d", lower.Discriminator)
	}

	upper, err := value.AsEnum(t[2])
	if nil != err {
		return g, err
	}
	switch {
	case 0 == upper.Discriminator && 1 == len(upper.Fields):
		if g.Upper.Amount, err = value.AsDecimal(upper.Fields[0]); nil != err {
			return g, err
		}
	case 1 == upper.Discriminator && 0 == len(upper.Fields):
		g.Upper.Unbounded = true
	default:
		return g, fault.Detailf(fault.ErrUnexpectedDiscriminator, "upper bound: %d", upper.Discriminator)
	}

	allowed, err := value.AsEnum(t[3])
	if nil != err {
		return g, err
	}
	switch {
	case 0 == allowed.Discriminator && 1 == len(allowed.Fields):
		if g.Allowed, err = value.AsLocalIds(allowed.Fields[0]); nil != err {
			return g, err
		}
	case 1 == allowed.Discriminator && 0 == len(allowed.Fields):
	default:
		return g, fault.Detailf(fault.ErrUnexpectedDiscriminator, "allowed ids: %d", allowed.Discriminator)
	}
	return g, nil
}

// Value - map of resource reference to constraint
func (cs Constraints) Value() value.Value {
	m := value.Map{Key: value.KindReference, Value: value.KindEnum}
	for _, e := range cs {
		m.Entries = append(m.Entries, value.MapEntry{
			Key:   value.Reference(e.Resource),
			Value: e.Constraint.Value(),
		})
	}
	return m
}

// ConstraintsFromValue - constraints from their map form
func ConstraintsFromValue(v value.Value) (Constraints, error) {
	m, ok := v.(value.Map)
	if !ok {
		return nil, fault.ErrUnexpectedKind
	}
	cs := make(Constraints, 0, len(m.Entries))
	for _, entry := range m.Entries {
		resource, err := value.AsReference(entry.Key)
		if nil != err {
			return nil, err
		}
		c, err := FromValue(entry.Value)
		if nil != err {
			return nil, err
		}
		cs = append(cs, Entry{Resource: resource, Constraint: c})
	}
	return cs, nil
}
