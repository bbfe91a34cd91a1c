// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authzone

import (
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/kernel"
	"github.com/bitmark-inc/substated/resource"
)

// Hooks - auth zone lifecycle and leftover clean up at frame boundaries
type Hooks struct{}

// OnCallFrameEnter - attach a new auth zone to the frame
//
// frames running resource package code have none
func (Hooks) OnCallFrameEnter(api kernel.API) error {
	actor := api.Actor()
	if !actor.Root && identifier.ResourcePackage == actor.Blueprint.Package {
		return nil
	}
	_, err := create(api)
	return err
}

// OnCallFrameExit - drop the auth zone, leftover proofs and empty
// buckets; anything else stays for the kernel to report
func (Hooks) OnCallFrameExit(api kernel.API, leftovers []identifier.NodeId) error {
	zone, hasZone := api.AuthZone()
	if hasZone {
		if err := dropRegular(api, zone); nil != err {
			return err
		}
	}

	buckets := make([]identifier.NodeId, 0, len(leftovers))
	for _, id := range leftovers {
		if hasZone && id == zone {
			continue
		}
		info, err := api.GetTypeInfo(id)
		if nil != err {
			return err
		}
		switch {
		case resource.IsProof(info):
			if err := resource.DropProof(api, id); nil != err {
				return err
			}
		case resource.IsBucket(info):
			buckets = append(buckets, id)
		}
	}

	for _, bucket := range buckets {
		amount, err := resource.Amount(api, bucket)
		if nil != err {
			return err
		}
		if !amount.IsZero() {
			continue
		}
		if err := resource.DropEmptyBucket(api, bucket); nil != err {
			return err
		}
	}

	if hasZone {
		if _, err := api.DropNode(zone); nil != err {
			return err
		}
	}
	return nil
}
