// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/bitmark-inc/substated/fault"
)

// Varint64MaximumBytes - maximum possible number of bytes in Varint64
const Varint64MaximumBytes = 9

// AppendVarint64 - append the Varint64 form of a 64 bit unsigned integer
//
// Structure of the result
// byte 1:  ext | B06 | B05 | B04 | B03 | B02 | B01 | B00
// byte 2:  ext | B13 | B12 | B11 | B10 | B09 | B08 | B07
// byte 3:  ext | B20 | B19 | B18 | B17 | B16 | B15 | B14
// byte 4:  ext | B27 | B26 | B25 | B24 | B23 | B22 | B21
// byte 5:  ext | B34 | B33 | B32 | B31 | B30 | B29 | B28
// byte 6:  ext | B41 | B40 | B39 | B38 | B37 | B36 | B35
// byte 7:  ext | B48 | B47 | B46 | B45 | B44 | B43 | B42
// byte 8:  ext | B55 | B54 | B53 | B52 | B51 | B50 | B49
// byte 9:  B63 | B62 | B61 | B60 | B59 | B58 | B57 | B56
func AppendVarint64(buffer []byte, value uint64) []byte {
	for i := 1; i < Varint64MaximumBytes; i += 1 {
		if value < 0x80 {
			return append(buffer, byte(value))
		}
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

// ReadVarint64 - decode a Varint64 from the start of a buffer
//
// also return the number of bytes used; the encoding must be the
// shortest one so every value has exactly one form
func ReadVarint64(buffer []byte) (uint64, int, error) {
	result := uint64(0)
	shift := uint(0)

	for count := 1; count <= len(buffer); count += 1 {
		b := buffer[count-1]
		if Varint64MaximumBytes == count {
			if 0 == b {
				return 0, 0, fault.ErrNonCanonicalVarint
			}
			return result | uint64(b)<<shift, count, nil
		}
		result |= uint64(b&0x7f) << shift
		if 0 == b&0x80 {
			if 0 == b && count > 1 {
				return 0, 0, fault.ErrNonCanonicalVarint
			}
			return result, count, nil
		}
		shift += 7
	}
	return 0, 0, fault.ErrTruncatedPayload
}
