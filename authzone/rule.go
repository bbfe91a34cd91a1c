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

// RuleKind - form of an access rule
type RuleKind uint8

// rule kinds
const (
	AllowAll RuleKind = iota
	DenyAll
	Require
	AmountOf
	CountOf
	AllOf
	AnyOf
)

// Requirement - any amount of a resource, or one non-fungible of it
// when Id is set
type Requirement struct {
	Resource identifier.NodeId
	Id       identifier.LocalId
}

// Rule - an access rule evaluated against the proofs in an auth zone
//
//   Require   one requirement
//   AmountOf  a single proof of at least Amount of Requirement.Resource
//   CountOf   at least Count of the Of requirements
//   AllOf     every one of Rules
//   AnyOf     at least one of Rules
type Rule struct {
	Kind        RuleKind
	Requirement Requirement
	Amount      decimal.Decimal
	Count       uint8
	Of          []Requirement
	Rules       []Rule
}

// satisfied - some evidence meets the requirement
func (r Requirement) satisfied(evidence []resource.Summary) bool {
	for _, s := range evidence {
		if s.Resource != r.Resource {
			continue
		}
		if "" == r.Id {
			if s.Amount.IsPositive() {
				return true
			}
			continue
		}
		for _, id := range s.Ids {
			if id == r.Id {
				return true
			}
		}
	}
	return false
}

// Allows - the evidence satisfies the rule
func (r Rule) Allows(evidence []resource.Summary) bool {
	switch r.Kind {
	case AllowAll:
		return true
	case Require:
		return r.Requirement.satisfied(evidence)
	case AmountOf:
		for _, s := range evidence {
			if s.Resource == r.Requirement.Resource && s.Amount.Cmp(r.Amount) >= 0 {
				return true
			}
		}
		return false
	case CountOf:
		n := 0
		for _, q := range r.Of {
			if q.satisfied(evidence) {
				n += 1
			}
		}
		return n >= int(r.Count)
	case AllOf:
		for _, sub := range r.Rules {
			if !sub.Allows(evidence) {
				return false
			}
		}
		return true
	case AnyOf:
		for _, sub := range r.Rules {
			if sub.Allows(evidence) {
				return true
			}
		}
		return false
	}
	return false
}

// Check - the zone's evidence satisfies the rule
func Check(api kernel.API, zone identifier.NodeId, rule Rule) error {
	evidence, err := Evidence(api, zone)
	if nil != err {
		return err
	}
	if !rule.Allows(evidence) {
		return fault.ErrAuthorizationFailed
	}
	return nil
}

// CheckCaller - the calling frame's auth zone satisfies the rule
func CheckCaller(api kernel.API, rule Rule) error {
	if AllowAll == rule.Kind {
		return nil
	}
	zone, ok := api.CallerAuthZone()
	if !ok {
		return fault.Detailf(fault.ErrAuthorizationFailed, "no caller auth zone")
	}
	return Check(api, zone, rule)
}

// RequireSigner - rule satisfied by one signature
func RequireSigner(id identifier.LocalId) Rule {
	return Rule{
		Kind:        Require,
		Requirement: Requirement{Resource: identifier.Ed25519SignatureResource, Id: id},
	}
}

func (r Requirement) toValue() value.Value {
	id := value.None()
	if "" != r.Id {
		id = value.Some(value.LocalId(r.Id))
	}
	return value.Tuple{value.Reference(r.Resource), id}
}

func requirementFromValue(v value.Value) (Requirement, error) {
	t, err := value.AsTuple(v, 2)
	if nil != err {
		return Requirement{}, err
	}
	r := Requirement{}
	r.Resource, err = value.AsReference(t[0])
	if nil != err {
		return Requirement{}, err
	}
	id, ok, err := value.AsOption(t[1])
	if nil != err {
		return Requirement{}, err
	}
	if ok {
		r.Id, err = value.AsLocalId(id)
	}
	return r, err
}

// Value - enum form of a rule
func (r Rule) Value() value.Value {
	e := value.Enum{Discriminator: uint8(r.Kind)}
	switch r.Kind {
	case Require:
		e.Fields = []value.Value{r.Requirement.toValue()}
	case AmountOf:
		e.Fields = []value.Value{value.NewDecimal(r.Amount), value.Reference(r.Requirement.Resource)}
	case CountOf:
		of := value.Array{Element: value.KindTuple}
		for _, q := range r.Of {
			of.Items = append(of.Items, q.toValue())
		}
		e.Fields = []value.Value{value.U8(r.Count), of}
	case AllOf, AnyOf:
		rules := value.Array{Element: value.KindEnum}
		for _, sub := range r.Rules {
			rules.Items = append(rules.Items, sub.Value())
		}
		e.Fields = []value.Value{rules}
	}
	return e
}

// RuleFromValue - rule from its enum form
func RuleFromValue(v value.Value) (Rule, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return Rule{}, err
	}
	r := Rule{Kind: RuleKind(e.Discriminator)}
	fields := map[RuleKind]int{
		AllowAll: 0,
		DenyAll:  0,
		Require:  1,
		AmountOf: 2,
		CountOf:  2,
		AllOf:    1,
		AnyOf:    1,
	}
	n, ok := fields[r.Kind]
	if !ok {
		return Rule{}, fault.Detailf(fault.ErrUnexpectedDiscriminator, "access rule: %d", e.Discriminator)
	}
	if n != len(e.Fields) {
		return Rule{}, fault.ErrWrongFieldCount
	}

	switch r.Kind {
	case Require:
		r.Requirement, err = requirementFromValue(e.Fields[0])
	case AmountOf:
		if r.Amount, err = value.AsDecimal(e.Fields[0]); nil == err {
			r.Requirement.Resource, err = value.AsReference(e.Fields[1])
		}
	case CountOf:
		if r.Count, err = value.AsU8(e.Fields[0]); nil != err {
			return Rule{}, err
		}
		of, ok := e.Fields[1].(value.Array)
		if !ok {
			return Rule{}, fault.ErrUnexpectedKind
		}
		for _, item := range of.Items {
			q, err := requirementFromValue(item)
			if nil != err {
				return Rule{}, err
			}
			r.Of = append(r.Of, q)
		}
	case AllOf, AnyOf:
		rules, ok := e.Fields[0].(value.Array)
		if !ok {
			return Rule{}, fault.ErrUnexpectedKind
		}
		for _, item := range rules.Items {
			sub, err := RuleFromValue(item)
			if nil != err {
				return Rule{}, err
			}
			r.Rules = append(r.Rules, sub)
		}
	}
	if nil != err {
		return Rule{}, err
	}
	return r, nil
}
