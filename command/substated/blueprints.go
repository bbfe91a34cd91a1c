// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"

	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/wasm"
)

// wasmPackages - one executor package per configured blueprint
//
// code is read and checked here so a bad file stops start up before
// any payload is processed
func wasmPackages(w *wasm.Engine, blueprints []BlueprintType) ([]engine.Package, error) {
	packages := make([]engine.Package, 0, len(blueprints))
	for _, b := range blueprints {
		address, err := identifier.ParseNodeId(b.Package)
		if nil != err {
			return nil, fault.Detailf(err, "blueprint %s package: %q", b.Name, b.Package)
		}
		if identifier.EntityGlobalPackage != address.EntityType() {
			return nil, fault.Detailf(fault.ErrWrongEntityType, "blueprint %s package: %s", b.Name, address)
		}
		code, err := ioutil.ReadFile(b.File)
		if nil != err {
			return nil, err
		}

		id := kernel.BlueprintId{Package: address, Name: b.Name}
		functions := b.Functions
		methods := b.Methods
		packages = append(packages, func(registry *kernel.Registry) error {
			return w.Deploy(registry, id, code, functions, methods)
		})
	}
	return packages, nil
}
