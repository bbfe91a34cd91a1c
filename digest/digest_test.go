// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/fault"
)

func TestScanFmt(t *testing.T) {
	d := digest.NewDigest([]byte("substate"))
	s := fmt.Sprintf("%s", d)

	var scanned digest.Digest
	n, err := fmt.Sscan(s, &scanned)
	if nil != err {
		t.Fatalf("hex to digest error: %v", err)
	}
	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}
	assert.Equal(t, d, scanned, "scan mismatch")

	gs := fmt.Sprintf("%#v", d)
	assert.Equal(t, "<Blake2b-256:"+s+">", gs, "wrong go string")
}

func TestJSON(t *testing.T) {
	d := digest.NewDigest([]byte{1, 2, 3})
	buffer, err := json.Marshal(d)
	assert.Nil(t, err, "marshal error")

	var back digest.Digest
	err = json.Unmarshal(buffer, &back)
	assert.Nil(t, err, "unmarshal error")
	assert.Equal(t, d, back, "json round trip mismatch")

	err = json.Unmarshal([]byte(`"abcd"`), &back)
	assert.True(t, fault.IsErrInvalid(err), "short digest accepted")
}

func TestAccumulatorSeparatesDiscriminators(t *testing.T) {
	sub := digest.NewDigest([]byte("instructions"))

	a := digest.NewAccumulator(0x54, 2).Digest(sub).Sum()
	b := digest.NewAccumulator(0x54, 1).Digest(sub).Sum()
	c := digest.NewAccumulator(0x54, 2).Digest(sub).Sum()

	assert.NotEqual(t, a, b, "discriminator not folded")
	assert.Equal(t, a, c, "accumulator not deterministic")
	assert.False(t, a.IsZero(), "zero digest")
}
