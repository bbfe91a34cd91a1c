// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/util"
)

// maximum length of any single string, byte or collection field
const maxFieldLength = 1 << 24

// Decode - runtime payload
func Decode(record Packed) (Value, error) {
	return unpack(RuntimePrefix, record)
}

// DecodeManifest - manifest payload
func DecodeManifest(record Packed) (Value, error) {
	return unpack(ManifestPrefix, record)
}

type unpacker struct {
	prefix byte
	record []byte
	n      int
}

func unpack(prefix byte, record Packed) (v Value, e error) {

	// slicing past the end of a truncated record panics
	defer func() {
		if r := recover(); nil != r {
			v = nil
			e = fault.ErrTruncatedPayload
		}
	}()

	if 0 == len(record) || prefix != record[0] {
		return nil, fault.ErrInvalidPrefix
	}
	u := &unpacker{prefix: prefix, record: record, n: 1}
	v, err := u.value(0)
	if nil != err {
		return nil, err
	}
	if u.n != len(record) {
		return nil, fault.ErrTrailingBytes
	}
	return v, nil
}

func (u *unpacker) value(depth int) (Value, error) {
	k := Kind(u.record[u.n])
	u.n += 1
	return u.body(k, depth)
}

func (u *unpacker) uint64() (uint64, error) {
	value, count, err := util.ReadVarint64(u.record[u.n:])
	if nil != err {
		return 0, err
	}
	u.n += count
	return value, nil
}

func (u *unpacker) length() (int, error) {
	l, err := u.uint64()
	if nil != err {
		return 0, err
	}
	if l > maxFieldLength {
		return 0, fault.ErrTruncatedPayload
	}
	return int(l), nil
}

func (u *unpacker) bytes() ([]byte, error) {
	l, err := u.length()
	if nil != err {
		return nil, err
	}
	b := make([]byte, l)
	copy(b, u.record[u.n:u.n+l])
	u.n += l
	return b, nil
}

func (u *unpacker) nodeId() (identifier.NodeId, error) {
	id, err := identifier.NewNodeId(u.record[u.n : u.n+identifier.NodeIdLength])
	if nil != err {
		return id, err
	}
	u.n += identifier.NodeIdLength
	return id, nil
}

func (u *unpacker) body(k Kind, depth int) (Value, error) {
	if depth > MaxDepth {
		return nil, fault.ErrDepthLimitExceeded
	}
	if !allowed(u.prefix, k) {
		return nil, fault.ErrUnexpectedKind
	}

unpack_switch:
	switch k {

	case KindBool:
		b := u.record[u.n]
		u.n += 1
		switch b {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		}
		break unpack_switch

	case KindU8:
		b := u.record[u.n]
		u.n += 1
		return U8(b), nil

	case KindU32:
		x, err := u.uint64()
		if nil != err {
			return nil, err
		}
		if x > uint64(^uint32(0)) {
			break unpack_switch
		}
		return U32(x), nil

	case KindU64:
		x, err := u.uint64()
		if nil != err {
			return nil, err
		}
		return U64(x), nil

	case KindI64:
		x, err := u.uint64()
		if nil != err {
			return nil, err
		}
		return I64(int64(x>>1) ^ -int64(x&1)), nil

	case KindString:
		b, err := u.bytes()
		if nil != err {
			return nil, err
		}
		return String(b), nil

	case KindBytes:
		b, err := u.bytes()
		if nil != err {
			return nil, err
		}
		return Bytes(b), nil

	case KindDecimal:
		b, err := u.bytes()
		if nil != err {
			return nil, err
		}
		d, err := decimal.FromString(string(b))
		if nil != err || d.String() != string(b) {
			break unpack_switch
		}
		return Decimal{d}, nil

	case KindLocalId:
		b, err := u.bytes()
		if nil != err {
			return nil, err
		}
		id, err := identifier.ParseLocalId(string(b))
		if nil != err {
			return nil, err
		}
		return LocalId(id), nil

	case KindTuple:
		count, err := u.length()
		if nil != err {
			return nil, err
		}
		t := make(Tuple, 0, count)
		for i := 0; i < count; i += 1 {
			item, err := u.value(depth + 1)
			if nil != err {
				return nil, err
			}
			t = append(t, item)
		}
		return t, nil

	case KindArray:
		element := Kind(u.record[u.n])
		u.n += 1
		count, err := u.length()
		if nil != err {
			return nil, err
		}
		a := Array{Element: element, Items: make([]Value, 0, count)}
		for i := 0; i < count; i += 1 {
			item, err := u.body(element, depth+1)
			if nil != err {
				return nil, err
			}
			a.Items = append(a.Items, item)
		}
		return a, nil

	case KindEnum:
		discriminator := u.record[u.n]
		u.n += 1
		count, err := u.length()
		if nil != err {
			return nil, err
		}
		e := Enum{Discriminator: discriminator}
		for i := 0; i < count; i += 1 {
			item, err := u.value(depth + 1)
			if nil != err {
				return nil, err
			}
			e.Fields = append(e.Fields, item)
		}
		return e, nil

	case KindMap:
		m := Map{Key: Kind(u.record[u.n]), Value: Kind(u.record[u.n+1])}
		u.n += 2
		count, err := u.length()
		if nil != err {
			return nil, err
		}
		for i := 0; i < count; i += 1 {
			key, err := u.body(m.Key, depth+1)
			if nil != err {
				return nil, err
			}
			item, err := u.body(m.Value, depth+1)
			if nil != err {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: key, Value: item})
		}
		return m, nil

	case KindOwn:
		id, err := u.nodeId()
		if nil != err {
			return nil, err
		}
		return Own(id), nil

	case KindReference:
		id, err := u.nodeId()
		if nil != err {
			return nil, err
		}
		return Reference(id), nil

	case KindBucket, KindProof, KindAddressReservation, KindNamedAddress:
		x, err := u.uint64()
		if nil != err {
			return nil, err
		}
		if x > uint64(^uint32(0)) {
			break unpack_switch
		}
		switch k {
		case KindBucket:
			return Bucket(x), nil
		case KindProof:
			return Proof(x), nil
		case KindAddressReservation:
			return AddressReservation(x), nil
		default:
			return NamedAddress(x), nil
		}

	case KindExpression:
		b := u.record[u.n]
		u.n += 1
		if Expression(b) > EntireAuthZone {
			break unpack_switch
		}
		return Expression(b), nil

	case KindBlob:
		var h Blob
		copy(h[:], u.record[u.n:u.n+len(h)])
		u.n += len(h)
		return h, nil
	}

	return nil, fault.ErrUnexpectedKind
}
