// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package value

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/util"
)

// payload prefixes
const (
	RuntimePrefix  = 0x5c
	ManifestPrefix = 0x4d
)

// MaxDepth - nesting limit for encode and decode
const MaxDepth = 64

// Packed - an encoded value including its prefix
type Packed []byte

// Encode - runtime payload: manifest kinds are rejected
func Encode(v Value) (Packed, error) {
	return pack(RuntimePrefix, v)
}

// EncodeManifest - manifest payload: runtime ownership is rejected
func EncodeManifest(v Value) (Packed, error) {
	return pack(ManifestPrefix, v)
}

// MustEncode - for values constructed by the engine itself
func MustEncode(v Value) Packed {
	p, err := Encode(v)
	if nil != err {
		panic(err)
	}
	return p
}

func pack(prefix byte, v Value) (Packed, error) {
	buffer := Packed{prefix}
	return appendValue(buffer, prefix, v, 0)
}

func allowed(prefix byte, k Kind) bool {
	switch prefix {
	case RuntimePrefix:
		return !k.IsManifestOnly()
	case ManifestPrefix:
		return KindOwn != k
	}
	return false
}

func appendValue(buffer Packed, prefix byte, v Value, depth int) (Packed, error) {
	if depth > MaxDepth {
		return nil, fault.ErrDepthLimitExceeded
	}
	if nil == v || !allowed(prefix, v.Kind()) {
		return nil, fault.ErrUnexpectedKind
	}
	buffer = append(buffer, byte(v.Kind()))
	return appendBody(buffer, prefix, v, depth)
}

func appendBody(buffer Packed, prefix byte, v Value, depth int) (Packed, error) {
	var err error
	switch tv := v.(type) {
	case Bool:
		if tv {
			buffer = append(buffer, 1)
		} else {
			buffer = append(buffer, 0)
		}
	case U8:
		buffer = append(buffer, byte(tv))
	case U32:
		buffer = appendUint64(buffer, uint64(tv))
	case U64:
		buffer = appendUint64(buffer, uint64(tv))
	case I64:
		buffer = appendUint64(buffer, uint64(tv<<1)^uint64(tv>>63))
	case String:
		buffer = appendBytes(buffer, []byte(tv))
	case Bytes:
		buffer = appendBytes(buffer, tv)
	case Decimal:
		buffer = appendBytes(buffer, []byte(tv.String()))
	case LocalId:
		buffer = appendBytes(buffer, []byte(tv))
	case Tuple:
		buffer = appendUint64(buffer, uint64(len(tv)))
		for _, item := range tv {
			buffer, err = appendValue(buffer, prefix, item, depth+1)
			if nil != err {
				return nil, err
			}
		}
	case Array:
		buffer = append(buffer, byte(tv.Element))
		buffer = appendUint64(buffer, uint64(len(tv.Items)))
		for _, item := range tv.Items {
			if nil == item || item.Kind() != tv.Element || !allowed(prefix, item.Kind()) {
				return nil, fault.ErrUnexpectedKind
			}
			buffer, err = appendBody(buffer, prefix, item, depth+1)
			if nil != err {
				return nil, err
			}
		}
	case Enum:
		buffer = append(buffer, tv.Discriminator)
		buffer = appendUint64(buffer, uint64(len(tv.Fields)))
		for _, item := range tv.Fields {
			buffer, err = appendValue(buffer, prefix, item, depth+1)
			if nil != err {
				return nil, err
			}
		}
	case Map:
		buffer = append(buffer, byte(tv.Key), byte(tv.Value))
		buffer = appendUint64(buffer, uint64(len(tv.Entries)))
		for _, entry := range tv.Entries {
			if nil == entry.Key || nil == entry.Value || entry.Key.Kind() != tv.Key || entry.Value.Kind() != tv.Value {
				return nil, fault.ErrUnexpectedKind
			}
			if !allowed(prefix, tv.Key) || !allowed(prefix, tv.Value) {
				return nil, fault.ErrUnexpectedKind
			}
			buffer, err = appendBody(buffer, prefix, entry.Key, depth+1)
			if nil != err {
				return nil, err
			}
			buffer, err = appendBody(buffer, prefix, entry.Value, depth+1)
			if nil != err {
				return nil, err
			}
		}
	case Own:
		buffer = append(buffer, tv[:]...)
	case Reference:
		buffer = append(buffer, tv[:]...)
	case Bucket:
		buffer = appendUint64(buffer, uint64(tv))
	case Proof:
		buffer = appendUint64(buffer, uint64(tv))
	case AddressReservation:
		buffer = appendUint64(buffer, uint64(tv))
	case NamedAddress:
		buffer = appendUint64(buffer, uint64(tv))
	case Expression:
		buffer = append(buffer, byte(tv))
	case Blob:
		buffer = append(buffer, tv[:]...)
	default:
		return nil, fault.ErrUnexpectedKind
	}
	return buffer, nil
}

// append a length prefixed byte string
func appendBytes(buffer Packed, data []byte) Packed {
	buffer = util.AppendVarint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	return util.AppendVarint64(buffer, value)
}
