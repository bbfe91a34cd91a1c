// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier

import (
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/bitmark-inc/substated/fault"
)

// LocalId - non-fungible local id in canonical text form
//
//   #123#      integer
//   <name_1>   string
//   [00ff]     bytes
//   {a-b-c-d}  ruid, four groups of 16 hex digits
type LocalId string

const (
	maxStringIdLength = 64
	maxBytesIdLength  = 64
)

// IntegerId - integer local id
func IntegerId(n uint64) LocalId {
	return LocalId("#" + strconv.FormatUint(n, 10) + "#")
}

// StringId - string local id
func StringId(s string) (LocalId, error) {
	return ParseLocalId("<" + s + ">")
}

// BytesId - bytes local id
func BytesId(b []byte) (LocalId, error) {
	return ParseLocalId("[" + hex.EncodeToString(b) + "]")
}

// ParseLocalId - validate the canonical text form
func ParseLocalId(s string) (LocalId, error) {
	if len(s) < 3 {
		return "", fault.ErrInvalidLocalId
	}
	inner := s[1 : len(s)-1]
	switch {
	case '#' == s[0] && '#' == s[len(s)-1]:
		n, err := strconv.ParseUint(inner, 10, 64)
		if nil != err || strconv.FormatUint(n, 10) != inner {
			return "", fault.ErrInvalidLocalId
		}
	case '<' == s[0] && '>' == s[len(s)-1]:
		if len(inner) > maxStringIdLength {
			return "", fault.ErrInvalidLocalId
		}
		for _, c := range inner {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || '_' == c) {
				return "", fault.ErrInvalidLocalId
			}
		}
	case '[' == s[0] && ']' == s[len(s)-1]:
		b, err := hex.DecodeString(inner)
		if nil != err || len(b) > maxBytesIdLength || hex.EncodeToString(b) != inner {
			return "", fault.ErrInvalidLocalId
		}
	case '{' == s[0] && '}' == s[len(s)-1]:
		if 67 != len(inner) {
			return "", fault.ErrInvalidLocalId
		}
		for i := 0; i < 4; i += 1 {
			group := inner[i*17 : i*17+16]
			if _, err := hex.DecodeString(group); nil != err {
				return "", fault.ErrInvalidLocalId
			}
			if i < 3 && '-' != inner[i*17+16] {
				return "", fault.ErrInvalidLocalId
			}
		}
	default:
		return "", fault.ErrInvalidLocalId
	}
	return LocalId(s), nil
}

// LocalIdKind - the form of a local id
type LocalIdKind uint8

// local id kinds
const (
	IntegerLocalId LocalIdKind = iota
	StringLocalId
	BytesLocalId
	RUIDLocalId
)

// IsValid - one of the known kinds
func (k LocalIdKind) IsValid() bool {
	return k <= RUIDLocalId
}

// Kind - form of a valid id from its opening bracket
func (l LocalId) Kind() LocalIdKind {
	if 0 == len(l) {
		return IntegerLocalId
	}
	switch l[0] {
	case '<':
		return StringLocalId
	case '[':
		return BytesLocalId
	case '{':
		return RUIDLocalId
	default:
		return IntegerLocalId
	}
}

// String - canonical text
func (l LocalId) String() string {
	return string(l)
}

// SortLocalIds - canonical ordering for id sets
func SortLocalIds(ids []LocalId) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// NonFungibleGlobalId - resource address plus local id
type NonFungibleGlobalId struct {
	Resource NodeId
	Local    LocalId
}

// String - resource:local
func (g NonFungibleGlobalId) String() string {
	return g.Resource.String() + ":" + string(g.Local)
}
