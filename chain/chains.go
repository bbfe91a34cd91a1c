// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of all chains
const (
	Substate = "substate"
	Testing  = "testing"
	Local    = "local"
)

// network ids carried in transaction headers
const (
	SubstateNetwork uint8 = 0x01
	TestingNetwork  uint8 = 0x02
	LocalNetwork    uint8 = 0xf0
)

var networks = map[string]uint8{
	Substate: SubstateNetwork,
	Testing:  TestingNetwork,
	Local:    LocalNetwork,
}

// Valid - validate a chain name
func Valid(name string) bool {
	_, ok := networks[name]
	return ok
}

// Network - the network id of a chain name
func Network(name string) (uint8, bool) {
	id, ok := networks[name]
	return id, ok
}

// IsTesting - keys of this network carry the test flag
func IsTesting(network uint8) bool {
	return SubstateNetwork != network
}
