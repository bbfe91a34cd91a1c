// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction_test

import (
	"crypto/rand"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/transaction"
	"github.com/bitmark-inc/substated/value"
)

const (
	testingDirName = "testing"
)

func setupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func teardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

func TestMain(m *testing.M) {
	setupTestLogger()
	rc := m.Run()
	teardownTestLogger()
	os.Exit(rc)
}

const testNetwork = chain.TestingNetwork

func newKey(t *testing.T) *account.PrivateKey {
	key, err := account.NewPrivateKey(chain.IsTesting(testNetwork), rand.Reader)
	require.Nil(t, err, "new key error")
	return key
}

func header(notary *account.PrivateKey, nonce uint64) transaction.Header {
	h := transaction.Header{
		Network:    testNetwork,
		StartEpoch: 10,
		EndEpoch:   20,
		Nonce:      nonce,
	}
	if nil != notary {
		h.NotaryKey = notary.Account()
	}
	return h
}

func callManifest(method string) manifest.Manifest {
	return manifest.NewBuilder().
		Add(manifest.CallMethod{
			Address: manifest.StaticAddress(identifier.ConsensusManager),
			Method:  method,
			Args:    value.Tuple{value.U64(1)},
		}).
		Add(manifest.DropAllProofs{}).
		Build()
}

// signed and notarized single intent transaction
func newUserV1(t *testing.T, notary *account.PrivateKey, signers ...*account.PrivateKey) *transaction.UserV1 {
	tx := &transaction.UserV1{
		Signed: transaction.SignedIntent{
			Intent: transaction.Intent{
				Header:   header(notary, 1),
				Manifest: callManifest("get_state"),
			},
		},
	}
	require.Nil(t, tx.Sign(signers...), "sign error")
	require.Nil(t, tx.Notarize(notary), "notarize error")
	return tx
}

func yieldToParent() manifest.Instruction {
	return manifest.YieldToParent{Args: value.Unit()}
}

func yieldToChild(n uint32) manifest.Instruction {
	return manifest.YieldToChild{Child: n, Args: value.Unit()}
}

func subintent(children []uint32, instructions ...manifest.Instruction) transaction.SignedIntent {
	b := manifest.NewBuilder()
	for _, i := range instructions {
		b.Add(i)
	}
	return transaction.SignedIntent{
		Intent: transaction.Intent{
			Header:   header(nil, 2),
			Manifest: b.Build(),
			Children: children,
		},
	}
}
