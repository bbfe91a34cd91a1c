// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"github.com/bitmark-inc/substated/identifier"
)

// Walk - visit every value depth first, parents before children
func Walk(v Value, visit func(Value) error) error {
	if nil == v {
		return nil
	}
	if err := visit(v); nil != err {
		return err
	}
	switch tv := v.(type) {
	case Tuple:
		for _, item := range tv {
			if err := Walk(item, visit); nil != err {
				return err
			}
		}
	case Array:
		for _, item := range tv.Items {
			if err := Walk(item, visit); nil != err {
				return err
			}
		}
	case Enum:
		for _, item := range tv.Fields {
			if err := Walk(item, visit); nil != err {
				return err
			}
		}
	case Map:
		for _, entry := range tv.Entries {
			if err := Walk(entry.Key, visit); nil != err {
				return err
			}
			if err := Walk(entry.Value, visit); nil != err {
				return err
			}
		}
	}
	return nil
}

// OwnedNodes - every Own in encounter order
func OwnedNodes(v Value) []identifier.NodeId {
	owned := []identifier.NodeId{}
	Walk(v, func(item Value) error {
		if o, ok := item.(Own); ok {
			owned = append(owned, identifier.NodeId(o))
		}
		return nil
	})
	return owned
}

// References - every Reference in encounter order
func References(v Value) []identifier.NodeId {
	refs := []identifier.NodeId{}
	Walk(v, func(item Value) error {
		if r, ok := item.(Reference); ok {
			refs = append(refs, identifier.NodeId(r))
		}
		return nil
	})
	return refs
}

// Replace - rebuild a value, substituting any value the function
// chooses to replace; replaced values are not descended into
func Replace(v Value, replace func(Value) (Value, bool, error)) (Value, error) {
	if nil == v {
		return nil, nil
	}
	r, ok, err := replace(v)
	if nil != err {
		return nil, err
	}
	if ok {
		return r, nil
	}
	switch tv := v.(type) {
	case Tuple:
		t := make(Tuple, len(tv))
		for i, item := range tv {
			t[i], err = Replace(item, replace)
			if nil != err {
				return nil, err
			}
		}
		return t, nil
	case Array:
		a := Array{Element: tv.Element, Items: make([]Value, len(tv.Items))}
		for i, item := range tv.Items {
			a.Items[i], err = Replace(item, replace)
			if nil != err {
				return nil, err
			}
			a.Element = a.Items[i].Kind()
		}
		if 0 == len(a.Items) {
			a.Element = RuntimeKind(a.Element)
		}
		return a, nil
	case Enum:
		e := Enum{Discriminator: tv.Discriminator}
		for _, item := range tv.Fields {
			f, err := Replace(item, replace)
			if nil != err {
				return nil, err
			}
			e.Fields = append(e.Fields, f)
		}
		return e, nil
	case Map:
		m := Map{Key: RuntimeKind(tv.Key), Value: RuntimeKind(tv.Value)}
		for _, entry := range tv.Entries {
			k, err := Replace(entry.Key, replace)
			if nil != err {
				return nil, err
			}
			x, err := Replace(entry.Value, replace)
			if nil != err {
				return nil, err
			}
			m.Key = k.Kind()
			m.Value = x.Kind()
			m.Entries = append(m.Entries, MapEntry{Key: k, Value: x})
		}
		return m, nil
	}
	return v, nil
}

// RuntimeKind - the kind a manifest kind resolves to
func RuntimeKind(k Kind) Kind {
	switch k {
	case KindBucket, KindProof, KindAddressReservation:
		return KindOwn
	case KindNamedAddress:
		return KindReference
	case KindExpression:
		return KindArray
	case KindBlob:
		return KindBytes
	}
	return k
}
