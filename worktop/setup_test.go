// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worktop_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/worktop"
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

// kernel with a new worktop owned by the root frame
func newTestWorktop(t *testing.T) (*kernel.Kernel, identifier.NodeId) {
	registry := kernel.NewRegistry()
	require.Nil(t, resource.Register(registry), "register resources error")
	require.Nil(t, worktop.Register(registry), "register worktop error")
	allocator := identifier.NewAllocator(digest.NewDigest([]byte(t.Name())))
	k := kernel.New(kernel.NewTrack(storage.NewMemoryDatabase()), registry, allocator, kernel.Config{})

	w, err := worktop.New(k)
	require.Nil(t, err, "new worktop error")
	return k, w
}

func amount(s string) decimal.Decimal {
	return decimal.MustFromString(s)
}

var flags = resource.Flags{Mintable: true, Burnable: true}

func newFungible(t *testing.T, k *kernel.Kernel, initial string) (identifier.NodeId, identifier.NodeId) {
	supply := amount(initial)
	address, bucket, err := resource.CreateFungibleResource(k, 18, flags, &supply)
	require.Nil(t, err, "create resource error")
	return address, bucket
}

func newNonFungible(t *testing.T, k *kernel.Kernel, n ...uint64) (identifier.NodeId, identifier.NodeId) {
	items := make([]resource.NonFungible, 0, len(n))
	for _, i := range n {
		items = append(items, resource.NonFungible{Id: identifier.IntegerId(i)})
	}
	address, bucket, err := resource.CreateNonFungibleResource(k, identifier.IntegerLocalId, flags, items)
	require.Nil(t, err, "create resource error")
	return address, bucket
}
