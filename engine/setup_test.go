// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine_test

import (
	"crypto/rand"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/authzone"
	"github.com/bitmark-inc/substated/chain"
	"github.com/bitmark-inc/substated/decimal"
	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/resource"
	"github.com/bitmark-inc/substated/storage"
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

const (
	testNetwork    = chain.TestingNetwork
	genesisEpoch   = 10
	roundsPerEpoch = 100
)

func newKey(t *testing.T) *account.PrivateKey {
	key, err := account.NewPrivateKey(chain.IsTesting(testNetwork), rand.Reader)
	require.Nil(t, err, "new key error")
	return key
}

func amount(s string) decimal.Decimal {
	return decimal.MustFromString(s)
}

// ledger - an executor over a memory store that has seen genesis
type ledger struct {
	t      *testing.T
	x      *engine.Executor
	db     *storage.MemoryDatabase
	notary *account.PrivateKey
	nonce  uint64
}

func newExecutor(t *testing.T, config engine.Config) *engine.Executor {
	config.Network = testNetwork
	x, err := engine.New(config)
	require.Nil(t, err, "new executor error")
	return x
}

func newLedger(t *testing.T, config engine.Config) *ledger {
	l := &ledger{
		t:      t,
		x:      newExecutor(t, config),
		db:     storage.NewMemoryDatabase(),
		notary: newKey(t),
	}
	genesis := &transaction.Genesis{
		System: &transaction.GenesisSystem{
			Network:        testNetwork,
			Epoch:          genesisEpoch,
			Timestamp:      1000,
			RoundsPerEpoch: roundsPerEpoch,
			Manifest:       manifest.NewBuilder().Build(),
		},
	}
	l.commit(l.submit(genesis))
	return l
}

// submit - pack and execute without committing
func (l *ledger) submit(tx transaction.Transaction) *engine.Receipt {
	record, err := transaction.Pack(tx)
	require.Nil(l.t, err, "pack error")
	return l.x.ExecutePayload(l.db, record)
}

func (l *ledger) commit(r *engine.Receipt) *engine.Receipt {
	require.True(l.t, r.IsSuccess(), "%s: %v", r.Status, r.Err())
	require.Nil(l.t, engine.Commit(l.db, r), "commit error")
	return r
}

func (l *ledger) header() transaction.Header {
	l.nonce += 1
	return transaction.Header{
		Network:    testNetwork,
		StartEpoch: genesisEpoch,
		EndEpoch:   genesisEpoch + 10,
		Nonce:      l.nonce,
		NotaryKey:  l.notary.Account(),
	}
}

// userV1 - signed and notarized
func (l *ledger) userV1(m manifest.Manifest, signers ...*account.PrivateKey) *transaction.UserV1 {
	tx := &transaction.UserV1{
		Signed: transaction.SignedIntent{
			Intent: transaction.Intent{
				Header:   l.header(),
				Manifest: m,
			},
		},
	}
	require.Nil(l.t, tx.Sign(signers...), "sign error")
	require.Nil(l.t, tx.Notarize(l.notary), "notarize error")
	return tx
}

func (l *ledger) run(m manifest.Manifest, signers ...*account.PrivateKey) *engine.Receipt {
	return l.submit(l.userV1(m, signers...))
}

// createAccount - committed account owned by a key
func (l *ledger) createAccount(owner *account.PrivateKey) identifier.NodeId {
	rule := authzone.RequireSigner(owner.Account().SignatureId())
	m := manifest.NewBuilder().
		Add(manifest.CallFunction{
			Package:   manifest.StaticAddress(identifier.AccountPackage),
			Blueprint: account.BlueprintName,
			Function:  account.FunctionCreate,
			Args:      value.Tuple{rule.Value()},
		}).
		Build()
	r := l.commit(l.run(m))
	v, err := r.Output(0, 0)
	require.Nil(l.t, err, "output error")
	address, err := value.AsReference(v)
	require.Nil(l.t, err, "account address error")
	return address
}

// createToken - committed fungible resource with its supply deposited
// into an account
func (l *ledger) createToken(to identifier.NodeId, supply string) identifier.NodeId {
	m := manifest.NewBuilder().
		Add(manifest.CallFunction{
			Package:   manifest.StaticAddress(identifier.ResourcePackage),
			Blueprint: resource.FungibleResourceManager,
			Function:  "create",
			Args:      value.Tuple{value.U8(18), resource.Flags{}.Value(), value.Some(value.NewDecimal(amount(supply)))},
		}).
		Add(depositAll(to)).
		Build()
	r := l.commit(l.run(m))
	v, err := r.Output(0, 0)
	require.Nil(l.t, err, "output error")
	t, err := value.AsTuple(v, 2)
	require.Nil(l.t, err, "create output error")
	address, err := value.AsReference(t[0])
	require.Nil(l.t, err, "resource address error")
	return address
}

// balance - read through an uncommitted transaction
func (l *ledger) balance(address identifier.NodeId, resourceAddress identifier.NodeId) string {
	m := manifest.NewBuilder().
		Add(manifest.CallMethod{
			Address: manifest.StaticAddress(address),
			Method:  account.MethodBalance,
			Args:    value.Tuple{value.Reference(resourceAddress)},
		}).
		Build()
	r := l.run(m)
	require.True(l.t, r.IsSuccess(), "balance: %v", r.Err())
	v, err := r.Output(0, 0)
	require.Nil(l.t, err, "output error")
	d, err := value.AsDecimal(v)
	require.Nil(l.t, err, "balance output error")
	return d.String()
}

func withdraw(from identifier.NodeId, resourceAddress identifier.NodeId, n string) manifest.Instruction {
	return manifest.CallMethod{
		Address: manifest.StaticAddress(from),
		Method:  account.MethodWithdraw,
		Args:    value.Tuple{value.Reference(resourceAddress), value.NewDecimal(amount(n))},
	}
}

func depositAll(to identifier.NodeId) manifest.Instruction {
	return manifest.CallMethod{
		Address: manifest.StaticAddress(to),
		Method:  account.MethodDepositBatch,
		Args:    value.Tuple{value.Expression(value.EntireWorktop)},
	}
}
