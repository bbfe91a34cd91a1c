// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/storage"
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

// kernel with the account package and an initialised root frame
func newTestKernel(t *testing.T) *kernel.Kernel {
	registry := kernel.NewRegistry()
	require.Nil(t, resource.Register(registry), "register resources error")
	require.Nil(t, authzone.Register(registry), "register auth zone error")
	require.Nil(t, account.Register(registry), "register account error")

	allocator := identifier.NewAllocator(digest.NewDigest([]byte(t.Name())))
	config := kernel.Config{
		Hooks: authzone.Hooks{},
	}
	k := kernel.New(kernel.NewTrack(storage.NewMemoryDatabase()), registry, allocator, config)
	require.Nil(t, k.InitializeRoot(), "initialise root error")
	return k
}

func amount(s string) decimal.Decimal {
	return decimal.MustFromString(s)
}

// account owned by a fresh signer, a mintable resource and the signer
func newFundedAccount(t *testing.T, k *kernel.Kernel, initial string) (identifier.NodeId, identifier.NodeId, *account.Account) {
	prv, err := account.PrivateKeyFromBase58(testPrivateKey)
	require.Nil(t, err, "private key error")
	signer := prv.Account()

	address, err := account.Create(k, authzone.RequireSigner(signer.SignatureId()))
	require.Nil(t, err, "create account error")

	supply := amount(initial)
	flags := resource.Flags{Mintable: true, Burnable: true}
	resourceAddress, bucket, err := resource.CreateFungibleResource(k, 18, flags, &supply)
	require.Nil(t, err, "create resource error")
	require.Nil(t, account.Deposit(k, address, bucket), "deposit error")
	return address, resourceAddress, signer
}
