// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package processor_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/processor"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/value"
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

var testPackage = func() identifier.NodeId {
	id := identifier.NodeId{}
	id[0] = byte(identifier.EntityGlobalPackage)
	id[identifier.NodeIdLength-1] = 0x71
	return id
}()

var (
	faucet  = manifest.StaticAddress(testPackage)
	counter = kernel.BlueprintId{Package: testPackage, Name: "Counter"}
)

// free - mint an amount of a resource
func free(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	t, err := value.AsTuple(args, 2)
	if nil != err {
		return nil, err
	}
	address, err := value.AsReference(t[0])
	if nil != err {
		return nil, err
	}
	amount, err := value.AsDecimal(t[1])
	if nil != err {
		return nil, err
	}
	bucket, err := resource.Mint(api, address, amount)
	if nil != err {
		return nil, err
	}
	return value.Own(bucket), nil
}

// swallow - burn every bucket passed in
func swallow(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	for _, bucket := range value.OwnedNodes(args) {
		if err := resource.Burn(api, bucket); nil != err {
			return nil, err
		}
	}
	return nil, nil
}

// size - length of a byte argument
func size(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	t, err := value.AsTuple(args, 1)
	if nil != err {
		return nil, err
	}
	b, err := value.AsBytes(t[0])
	if nil != err {
		return nil, err
	}
	return value.U32(len(b)), nil
}

func instantiate(api kernel.API, _ identifier.NodeId, args value.Value) (value.Value, error) {
	t, err := value.AsTuple(args, 2)
	if nil != err {
		return nil, err
	}
	reservation, err := value.AsOwn(t[0])
	if nil != err {
		return nil, err
	}
	_, err = api.Globalize(reservation, kernel.Fields(t[1]))
	return nil, err
}

func get(api kernel.API, receiver identifier.NodeId, _ value.Value) (value.Value, error) {
	h, err := api.OpenSubstate(receiver, kernel.MainPartition, kernel.Field(0), kernel.ReadOnly)
	if nil != err {
		return nil, err
	}
	v, err := api.ReadSubstate(h)
	if nil != err {
		return nil, err
	}
	return v, api.CloseSubstate(h)
}

type testKernel struct {
	*kernel.Kernel
	resource identifier.NodeId
	other    identifier.NodeId
}

// kernel with an initialised root frame and two mintable resources
func newTestKernel(t *testing.T) testKernel {
	registry := kernel.NewRegistry()
	require.Nil(t, resource.Register(registry), "register resources error")
	require.Nil(t, worktop.Register(registry), "register worktop error")
	require.Nil(t, authzone.Register(registry), "register auth zone error")
	require.Nil(t, registry.Register(testPackage, &kernel.Blueprint{
		Name:     "Faucet",
		CodeType: kernel.NativeCode,
		Functions: map[string]kernel.NativeFunction{
			"free":    free,
			"swallow": swallow,
			"size":    size,
		},
	}), "register faucet error")
	require.Nil(t, registry.Register(testPackage, &kernel.Blueprint{
		Name:      "Counter",
		CodeType:  kernel.NativeCode,
		Functions: map[string]kernel.NativeFunction{"instantiate": instantiate},
		Methods:   map[string]kernel.NativeFunction{"get": get},
	}), "register counter error")

	allocator := identifier.NewAllocator(digest.NewDigest([]byte(t.Name())))
	k := kernel.New(kernel.NewTrack(storage.NewMemoryDatabase()), registry, allocator, kernel.Config{
		Hooks: authzone.Hooks{},
	})
	require.Nil(t, k.InitializeRoot(), "initialise root error")

	flags := resource.Flags{Mintable: true, Burnable: true}
	r, _, err := resource.CreateFungibleResource(k, 18, flags, nil)
	require.Nil(t, err, "create resource error")
	o, _, err := resource.CreateFungibleResource(k, 18, flags, nil)
	require.Nil(t, err, "create resource error")

	return testKernel{Kernel: k, resource: r, other: o}
}

func amount(s string) decimal.Decimal {
	return decimal.MustFromString(s)
}

// instruction minting onto the worktop
func mint(address identifier.NodeId, n string) manifest.Instruction {
	return manifest.CallFunction{
		Package:   faucet,
		Blueprint: "Faucet",
		Function:  "free",
		Args:      value.Tuple{value.Reference(address), value.NewDecimal(amount(n))},
	}
}

// instruction burning the whole worktop
func burnWorktop() manifest.Instruction {
	return manifest.CallFunction{
		Package:   faucet,
		Blueprint: "Faucet",
		Function:  "swallow",
		Args:      value.Tuple{value.Expression(value.EntireWorktop)},
	}
}

func run(t *testing.T, k testKernel, m manifest.Manifest, config processor.Config) (*processor.IntentProcessor, processor.ResumeResult, error) {
	p, err := processor.Init(k, m, config)
	require.Nil(t, err, "init error")
	result, err := p.Resume(nil)
	return p, result, err
}
