// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/bitmark-inc/substated/account"
	"github.com/bitmark-inc/substated/fault"
	"github.com/bitmark-inc/substated/identifier"
	"github.com/bitmark-inc/substated/manifest"
	"github.com/bitmark-inc/substated/value"
)

// genesis variants
const (
	genesisFlash  uint8 = 0
	genesisSystem uint8 = 1
)

// Pack - a transaction to its payload
//
// prefix byte, kind byte, then the manifest encoding of the body
func Pack(tx Transaction) (Packed, error) {
	body, err := toValue(tx)
	if nil != err {
		return nil, err
	}
	encoded, err := value.EncodeManifest(body)
	if nil != err {
		return nil, err
	}
	buffer := make(Packed, 0, 2+len(encoded))
	buffer = append(buffer, Prefix, byte(tx.Kind()))
	return append(buffer, encoded...), nil
}

// Kind - the kind byte of a payload
func (record Packed) Kind() (Kind, error) {
	if len(record) < 2 {
		return invalidKind, fault.ErrTruncatedPayload
	}
	if Prefix != record[0] {
		return invalidKind, fault.ErrInvalidPrefix
	}
	kind := Kind(record[1])
	if kind >= invalidKind {
		return invalidKind, fault.Detailf(fault.ErrUnsupportedTransaction, "kind: %d", record[1])
	}
	return kind, nil
}

// Unpack - a payload to its transaction
func (record Packed) Unpack() (Transaction, error) {
	kind, err := record.Kind()
	if nil != err {
		return nil, err
	}
	body, err := value.DecodeManifest(value.Packed(record[2:]))
	if nil != err {
		return nil, err
	}

	switch kind {
	case GenesisKind:
		return genesisFromValue(body)
	case UserV1Kind:
		return userV1FromValue(body)
	case RoundUpdateV1Kind:
		return roundUpdateFromValue(body)
	case FlashV1Kind:
		return flashFromValue(body)
	case UserV2Kind:
		return userV2FromValue(body)
	}
	return nil, fault.ErrUnsupportedTransaction
}

func toValue(tx Transaction) (value.Value, error) {
	switch tx := tx.(type) {
	case *Genesis:
		return tx.value()
	case Genesis:
		return tx.value()
	case *UserV1:
		return tx.value(), nil
	case UserV1:
		return tx.value(), nil
	case *RoundUpdateV1:
		return tx.value(), nil
	case RoundUpdateV1:
		return tx.value(), nil
	case *FlashV1:
		return tx.value(), nil
	case FlashV1:
		return tx.value(), nil
	case *UserV2:
		return tx.value(), nil
	case UserV2:
		return tx.value(), nil
	}
	return nil, fault.ErrUnsupportedTransaction
}

func optionalKey(key *account.Account) value.Value {
	if nil == key {
		return value.None()
	}
	return value.Some(value.Bytes(key.Bytes()))
}

func (h Header) value() value.Value {
	return value.Tuple{
		value.U8(h.Network),
		value.U64(h.StartEpoch),
		value.U64(h.EndEpoch),
		value.U64(h.Nonce),
		optionalKey(h.NotaryKey),
		value.Bool(h.NotaryIsSignatory),
	}
}

func childrenValue(children []uint32) value.Array {
	a := value.Array{Element: value.KindU32, Items: make([]value.Value, 0, len(children))}
	for _, c := range children {
		a.Items = append(a.Items, value.U32(c))
	}
	return a
}

func (i Intent) value() value.Value {
	return value.Tuple{i.Header.value(), i.Manifest.Value(), childrenValue(i.Children)}
}

func signaturesValue(signatures []IntentSignature) value.Array {
	a := value.Array{Element: value.KindTuple, Items: make([]value.Value, 0, len(signatures))}
	for _, s := range signatures {
		var signer []byte
		if nil != s.Signer {
			signer = s.Signer.Bytes()
		}
		a.Items = append(a.Items, value.Tuple{value.Bytes(signer), value.Bytes(s.Signature)})
	}
	return a
}

func (s SignedIntent) value() value.Value {
	return value.Tuple{s.Intent.value(), signaturesValue(s.Signatures)}
}

func (tx UserV1) value() value.Value {
	return value.Tuple{tx.Signed.value(), value.Bytes(tx.NotarySignature)}
}

func (tx UserV2) value() value.Value {
	subintents := value.Array{Element: value.KindTuple, Items: make([]value.Value, 0, len(tx.Subintents))}
	for _, s := range tx.Subintents {
		subintents.Items = append(subintents.Items, s.value())
	}
	return value.Tuple{tx.Root.value(), subintents, value.Bytes(tx.NotarySignature)}
}

func (tx RoundUpdateV1) value() value.Value {
	return value.Tuple{value.U64(tx.Round), value.I64(tx.Timestamp)}
}

func (s FlashSubstate) value() value.Value {
	v := value.None()
	if nil != s.Value {
		v = value.Some(value.Bytes(s.Value))
	}
	return value.Tuple{
		value.Bytes(s.Node.Bytes()),
		value.U8(s.Partition),
		value.Bytes(s.SortKey),
		v,
	}
}

func (tx FlashV1) value() value.Value {
	substates := value.Array{Element: value.KindTuple, Items: make([]value.Value, 0, len(tx.Substates))}
	for _, s := range tx.Substates {
		substates.Items = append(substates.Items, s.value())
	}
	return value.Tuple{value.String(tx.Name), substates}
}

func (g GenesisSystem) value() value.Value {
	return value.Tuple{
		value.U8(g.Network),
		value.U64(g.Epoch),
		value.I64(g.Timestamp),
		value.U64(g.RoundsPerEpoch),
		g.Manifest.Value(),
	}
}

func (tx Genesis) value() (value.Value, error) {
	switch {
	case nil != tx.Flash && nil == tx.System:
		return value.Enum{Discriminator: genesisFlash, Fields: []value.Value{tx.Flash.value()}}, nil
	case nil == tx.Flash && nil != tx.System:
		return value.Enum{Discriminator: genesisSystem, Fields: []value.Value{tx.System.value()}}, nil
	}
	return nil, fault.Detailf(fault.ErrInvalidIntentStructure, "genesis needs exactly one of flash or system")
}

// decoding

func tuple(v value.Value, n int, what string) (value.Tuple, error) {
	t, err := value.AsTuple(v, n)
	if nil != err {
		return nil, fault.Detailf(err, "%s", what)
	}
	return t, nil
}

func array(v value.Value, what string) ([]value.Value, error) {
	a, ok := v.(value.Array)
	if !ok {
		return nil, fault.Detailf(fault.ErrUnexpectedKind, "%s", what)
	}
	return a.Items, nil
}

func keyFromValue(v value.Value) (*account.Account, error) {
	b, err := value.AsBytes(v)
	if nil != err {
		return nil, err
	}
	return account.AccountFromBytes(b)
}

func headerFromValue(v value.Value) (Header, error) {
	t, err := tuple(v, 6, "header")
	if nil != err {
		return Header{}, err
	}
	h := Header{}
	if h.Network, err = value.AsU8(t[0]); nil != err {
		return Header{}, err
	}
	if h.StartEpoch, err = value.AsU64(t[1]); nil != err {
		return Header{}, err
	}
	if h.EndEpoch, err = value.AsU64(t[2]); nil != err {
		return Header{}, err
	}
	if h.Nonce, err = value.AsU64(t[3]); nil != err {
		return Header{}, err
	}
	notary, present, err := value.AsOption(t[4])
	if nil != err {
		return Header{}, err
	}
	if present {
		if h.NotaryKey, err = keyFromValue(notary); nil != err {
			return Header{}, err
		}
	}
	if h.NotaryIsSignatory, err = value.AsBool(t[5]); nil != err {
		return Header{}, err
	}
	return h, nil
}

func intentFromValue(v value.Value) (Intent, error) {
	t, err := tuple(v, 3, "intent")
	if nil != err {
		return Intent{}, err
	}
	header, err := headerFromValue(t[0])
	if nil != err {
		return Intent{}, err
	}
	m, err := manifest.FromValue(t[1])
	if nil != err {
		return Intent{}, err
	}
	items, err := array(t[2], "children")
	if nil != err {
		return Intent{}, err
	}
	intent := Intent{Header: header, Manifest: m}
	for _, item := range items {
		c, err := value.AsU32(item)
		if nil != err {
			return Intent{}, err
		}
		intent.Children = append(intent.Children, c)
	}
	return intent, nil
}

func signedIntentFromValue(v value.Value) (SignedIntent, error) {
	t, err := tuple(v, 2, "signed intent")
	if nil != err {
		return SignedIntent{}, err
	}
	intent, err := intentFromValue(t[0])
	if nil != err {
		return SignedIntent{}, err
	}
	items, err := array(t[1], "signatures")
	if nil != err {
		return SignedIntent{}, err
	}
	signed := SignedIntent{Intent: intent}
	for _, item := range items {
		s, err := tuple(item, 2, "signature")
		if nil != err {
			return SignedIntent{}, err
		}
		signer, err := keyFromValue(s[0])
		if nil != err {
			return SignedIntent{}, err
		}
		signature, err := value.AsBytes(s[1])
		if nil != err {
			return SignedIntent{}, err
		}
		signed.Signatures = append(signed.Signatures, IntentSignature{Signer: signer, Signature: signature})
	}
	return signed, nil
}

func userV1FromValue(v value.Value) (*UserV1, error) {
	t, err := tuple(v, 2, "user v1")
	if nil != err {
		return nil, err
	}
	signed, err := signedIntentFromValue(t[0])
	if nil != err {
		return nil, err
	}
	notary, err := value.AsBytes(t[1])
	if nil != err {
		return nil, err
	}
	return &UserV1{Signed: signed, NotarySignature: notary}, nil
}

func userV2FromValue(v value.Value) (*UserV2, error) {
	t, err := tuple(v, 3, "user v2")
	if nil != err {
		return nil, err
	}
	root, err := signedIntentFromValue(t[0])
	if nil != err {
		return nil, err
	}
	items, err := array(t[1], "subintents")
	if nil != err {
		return nil, err
	}
	tx := &UserV2{Root: root}
	for _, item := range items {
		s, err := signedIntentFromValue(item)
		if nil != err {
			return nil, err
		}
		tx.Subintents = append(tx.Subintents, s)
	}
	if tx.NotarySignature, err = value.AsBytes(t[2]); nil != err {
		return nil, err
	}
	return tx, nil
}

func roundUpdateFromValue(v value.Value) (*RoundUpdateV1, error) {
	t, err := tuple(v, 2, "round update")
	if nil != err {
		return nil, err
	}
	round, err := value.AsU64(t[0])
	if nil != err {
		return nil, err
	}
	timestamp, err := value.AsI64(t[1])
	if nil != err {
		return nil, err
	}
	return &RoundUpdateV1{Round: round, Timestamp: timestamp}, nil
}

func flashSubstateFromValue(v value.Value) (FlashSubstate, error) {
	t, err := tuple(v, 4, "flash substate")
	if nil != err {
		return FlashSubstate{}, err
	}
	b, err := value.AsBytes(t[0])
	if nil != err {
		return FlashSubstate{}, err
	}
	node, err := identifier.NewNodeId(b)
	if nil != err {
		return FlashSubstate{}, err
	}
	partition, err := value.AsU8(t[1])
	if nil != err {
		return FlashSubstate{}, err
	}
	key, err := value.AsBytes(t[2])
	if nil != err {
		return FlashSubstate{}, err
	}
	s := FlashSubstate{Node: node, Partition: partition, SortKey: key}
	data, present, err := value.AsOption(t[3])
	if nil != err {
		return FlashSubstate{}, err
	}
	if present {
		if s.Value, err = value.AsBytes(data); nil != err {
			return FlashSubstate{}, err
		}
		if nil == s.Value {
			s.Value = []byte{}
		}
	}
	return s, nil
}

func flashFromValue(v value.Value) (*FlashV1, error) {
	t, err := tuple(v, 2, "flash")
	if nil != err {
		return nil, err
	}
	name, err := value.AsString(t[0])
	if nil != err {
		return nil, err
	}
	items, err := array(t[1], "substates")
	if nil != err {
		return nil, err
	}
	tx := &FlashV1{Name: name}
	for _, item := range items {
		s, err := flashSubstateFromValue(item)
		if nil != err {
			return nil, err
		}
		tx.Substates = append(tx.Substates, s)
	}
	return tx, nil
}

func genesisSystemFromValue(v value.Value) (*GenesisSystem, error) {
	t, err := tuple(v, 5, "genesis system")
	if nil != err {
		return nil, err
	}
	g := &GenesisSystem{}
	if g.Network, err = value.AsU8(t[0]); nil != err {
		return nil, err
	}
	if g.Epoch, err = value.AsU64(t[1]); nil != err {
		return nil, err
	}
	if g.Timestamp, err = value.AsI64(t[2]); nil != err {
		return nil, err
	}
	if g.RoundsPerEpoch, err = value.AsU64(t[3]); nil != err {
		return nil, err
	}
	if g.Manifest, err = manifest.FromValue(t[4]); nil != err {
		return nil, err
	}
	return g, nil
}

func genesisFromValue(v value.Value) (*Genesis, error) {
	e, err := value.AsEnum(v)
	if nil != err {
		return nil, err
	}
	if 1 != len(e.Fields) {
		return nil, fault.ErrWrongFieldCount
	}
	switch e.Discriminator {
	case genesisFlash:
		flash, err := flashFromValue(e.Fields[0])
		if nil != err {
			return nil, err
		}
		return &Genesis{Flash: flash}, nil
	case genesisSystem:
		system, err := genesisSystemFromValue(e.Fields[0])
		if nil != err {
			return nil, err
		}
		return &Genesis{System: system}, nil
	}
	return nil, fault.Detailf(fault.ErrUnexpectedDiscriminator, "genesis: %d", e.Discriminator)
}
