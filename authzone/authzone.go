// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authzone keeps the proofs a call frame presents for
// authorization
//
// every frame outside the resource package gets its own auth zone on
// entry; the root zone of a transaction also carries the virtual
// signature proofs of its signers
package authzone

import (
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/value"
)

// BlueprintName - the auth zone blueprint in the resource package
const BlueprintName = "AuthZone"

// exports
const (
	methodPush                      = "push"
	methodPop                       = "pop"
	methodCreateProofOfAmount       = "create_proof_of_amount"
	methodCreateProofOfNonFungibles = "create_proof_of_non_fungibles"
	methodCreateProofOfAll          = "create_proof_of_all"
	methodDropProofs                = "drop_proofs"
	methodDropRegularProofs         = "drop_regular_proofs"
	methodDropSignatureProofs       = "drop_signature_proofs"
	methodDrain                     = "drain"
)

// fields
const (
	proofsField     uint8 = 0
	signaturesField uint8 = 1
	systemField     uint8 = 2
)

// Blueprint - id of the auth zone blueprint
func Blueprint() kernel.BlueprintId {
	return kernel.BlueprintId{
		Package: identifier.ResourcePackage,
		Name:    BlueprintName,
	}
}

// Register - add the auth zone blueprint to a registry
func Register(registry *kernel.Registry) error {
	return registry.Register(identifier.ResourcePackage, &kernel.Blueprint{
		Name:      BlueprintName,
		CodeType:  kernel.NativeCode,
		Transient: true,
		Methods: map[string]kernel.NativeFunction{
			methodPush:                      zonePush,
			methodPop:                       zonePop,
			methodCreateProofOfAmount:       zoneCreateProofOfAmount,
			methodCreateProofOfNonFungibles: zoneCreateProofOfNonFungibles,
			methodCreateProofOfAll:          zoneCreateProofOfAll,
			methodDropProofs:                zoneDropProofs,
			methodDropRegularProofs:         zoneDropRegularProofs,
			methodDropSignatureProofs:       zoneDropSignatureProofs,
			methodDrain:                     zoneDrain,
		},
	})
}

// IsAuthZone - an auth zone node
func IsAuthZone(info kernel.TypeInfo) bool {
	return info.Is(Blueprint())
}

// create an empty zone owned by the current frame and attach it
func create(api kernel.API) (identifier.NodeId, error) {
	id, err := api.AllocateNodeId(identifier.EntityInternalComponent)
	if nil != err {
		return identifier.NodeId{}, err
	}
	info := kernel.TypeInfo{
		Kind:      kernel.ObjectNode,
		Blueprint: Blueprint(),
	}
	substates := kernel.Fields(
		value.Owns(nil),
		value.LocalIds(nil),
		value.Bool(false),
	)
	if err := api.CreateNode(id, info, substates); nil != err {
		return identifier.NodeId{}, err
	}
	if err := api.AttachAuthZone(id); nil != err {
		return identifier.NodeId{}, err
	}
	return id, nil
}

// an open field of a zone
type field struct {
	api    kernel.API
	handle kernel.Handle
}

func openField(api kernel.API, zone identifier.NodeId, n uint8, flags kernel.LockFlags) (field, value.Value, error) {
	h, err := api.OpenSubstate(zone, kernel.MainPartition, kernel.Field(n), flags)
	if nil != err {
		return field{}, nil, err
	}
	v, err := api.ReadSubstate(h)
	if nil != err {
		_ = api.CloseSubstate(h)
		return field{}, nil, err
	}
	return field{api: api, handle: h}, v, nil
}

func (f field) write(v value.Value) error {
	return f.api.WriteSubstate(f.handle, v)
}

func (f field) close() error {
	return f.api.CloseSubstate(f.handle)
}

// deferred close that keeps the first error
func (f field) closeInto(err *error) {
	if e := f.close(); nil == *err {
		*err = e
	}
}

// proofs in push order
func openProofs(api kernel.API, zone identifier.NodeId, flags kernel.LockFlags) (field, []identifier.NodeId, error) {
	f, v, err := openField(api, zone, proofsField, flags)
	if nil != err {
		return f, nil, err
	}
	proofs, err := value.AsOwnArray(v)
	if nil != err {
		_ = f.close()
		return f, nil, err
	}
	return f, proofs, nil
}

func openSignatures(api kernel.API, zone identifier.NodeId, flags kernel.LockFlags) (field, []identifier.LocalId, error) {
	f, v, err := openField(api, zone, signaturesField, flags)
	if nil != err {
		return f, nil, err
	}
	ids, err := value.AsLocalIds(v)
	if nil != err {
		_ = f.close()
		return f, nil, err
	}
	return f, ids, nil
}

// AddSignatureProofs - virtual proofs of the signers in the root zone
//
// only the root frame may add them
func AddSignatureProofs(api kernel.API, ids []identifier.LocalId) error {
	if !api.Actor().Root {
		return fault.Detailf(fault.ErrOperationNotPermitted, "signature proofs outside the root frame")
	}
	zone, ok := api.AuthZone()
	if !ok {
		return fault.Detailf(fault.ErrNodeNotFound, "no auth zone")
	}
	for _, id := range ids {
		if identifier.BytesLocalId != id.Kind() {
			return fault.Detailf(fault.ErrInvalidLocalId, "signature id: %s", id)
		}
	}
	f, existing, err := openSignatures(api, zone, kernel.Mutable)
	if nil != err {
		return err
	}
	err = f.write(value.LocalIds(append(existing, ids...)))
	if e := f.close(); nil == err {
		err = e
	}
	return err
}

func openSystem(api kernel.API, zone identifier.NodeId, flags kernel.LockFlags) (field, bool, error) {
	f, v, err := openField(api, zone, systemField, flags)
	if nil != err {
		return f, false, err
	}
	system, err := value.AsBool(v)
	if nil != err {
		_ = f.close()
		return f, false, err
	}
	return f, system, nil
}

// AddSystemProof - the virtual proof of system execution in the root
// zone; only the executor adds it, for round updates and genesis
func AddSystemProof(api kernel.API) error {
	if !api.Actor().Root {
		return fault.Detailf(fault.ErrOperationNotPermitted, "system proof outside the root frame")
	}
	zone, ok := api.AuthZone()
	if !ok {
		return fault.Detailf(fault.ErrNodeNotFound, "no auth zone")
	}
	f, _, err := openSystem(api, zone, kernel.Mutable)
	if nil != err {
		return err
	}
	err = f.write(value.Bool(true))
	if e := f.close(); nil == err {
		err = e
	}
	return err
}

// RequireSystem - rule satisfied only by system execution
func RequireSystem() Rule {
	return Rule{
		Kind:        Require,
		Requirement: Requirement{Resource: identifier.SystemExecutionResource},
	}
}
