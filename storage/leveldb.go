// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/substated/fault"
)

// key prefixes
const (
	substatePrefix = 'S'
)

var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// database access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// LevelDB - persistent substate store
//
// key layout: 'S' | len(node key) | node key | partition | sort key
type LevelDB struct {
	sync.RWMutex
	log   *logger.L
	db    *leveldb.DB
	cache Cache
}

// OpenLevelDB - open or create a store
func OpenLevelDB(name string, readOnly bool) (*LevelDB, error) {
	log := logger.New("storage")

	db, version, err := getDB(name, readOnly)
	if nil != err {
		return nil, err
	}

	if version > currentDBVersion {
		db.Close()
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion)
	}

	if 0 == version && !readOnly {
		err = putVersion(db, currentDBVersion)
		if nil != err {
			db.Close()
			return nil, err
		}
	}

	log.Infof("opened: %q  version: %d", name, currentDBVersion)

	return &LevelDB{
		log:   log,
		db:    db,
		cache: newCache(),
	}, nil
}

// Close - close the database connection
func (l *LevelDB) Close() {
	l.Lock()
	defer l.Unlock()

	if nil != l.db {
		l.db.Close()
		l.db = nil
	}
	l.log.Flush()
}

func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}

func partitionPrefix(partition PartitionKey) []byte {
	key := make([]byte, 0, 3+len(partition.NodeKey))
	key = append(key, substatePrefix, byte(len(partition.NodeKey)))
	key = append(key, partition.NodeKey...)
	return append(key, partition.Partition)
}

func substateKey(partition PartitionKey, sortKey SortKey) []byte {
	return append(partitionPrefix(partition), sortKey...)
}

// Get - cached read of a substate
func (l *LevelDB) Get(partition PartitionKey, sortKey SortKey) ([]byte, bool) {
	l.RLock()
	defer l.RUnlock()

	key := substateKey(partition, sortKey)
	if value, found := l.cache.Get(string(key)); found {
		return value, true
	}

	value, err := l.db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return nil, false
	}
	fault.PanicIfError("storage get", err)

	l.cache.Set(dbPut, string(key), value)
	return value, true
}

// List - iterate a partition from a sort key
func (l *LevelDB) List(partition PartitionKey, from SortKey) Iterator {
	l.RLock()
	defer l.RUnlock()

	prefix := partitionPrefix(partition)
	r := ldb_util.BytesPrefix(prefix)
	r.Start = append(prefix, from...)

	return &levelIterator{
		it:    l.db.NewIterator(r, nil),
		strip: len(prefix),
	}
}

// Commit - apply updates in one batch
func (l *LevelDB) Commit(updates *DatabaseUpdates) error {
	l.Lock()
	defer l.Unlock()

	batch := new(leveldb.Batch)
	reset := false

	for nodeKey, node := range updates.Nodes {
		for partition, p := range node.Partitions {
			key := PartitionKey{NodeKey: []byte(nodeKey), Partition: partition}

			if Reset == p.Kind {
				reset = true
				it := l.db.NewIterator(ldb_util.BytesPrefix(partitionPrefix(key)), nil)
				for it.Next() {
					batch.Delete(append([]byte{}, it.Key()...))
				}
				it.Release()
				if err := it.Error(); nil != err {
					return err
				}
			}

			for k, entry := range p.Entries {
				dbKey := substateKey(key, SortKey(k))
				if entry.Delete {
					batch.Delete(dbKey)
					l.cache.Set(dbDelete, string(dbKey), nil)
				} else {
					batch.Put(dbKey, entry.Value)
					l.cache.Set(dbPut, string(dbKey), entry.Value)
				}
			}
		}
	}

	if reset {
		l.cache.Clear()
	}

	err := l.db.Write(batch, nil)
	if nil != err {
		l.cache.Clear()
		return err
	}
	l.log.Debugf("committed: %d substate updates", updates.SubstateCount())
	return nil
}

type levelIterator struct {
	it    iterator.Iterator
	strip int
}

func (i *levelIterator) Next() bool { return i.it.Next() }

func (i *levelIterator) Key() SortKey {
	k := i.it.Key()
	if len(k) < i.strip {
		return nil
	}
	return SortKey(k[i.strip:])
}

func (i *levelIterator) Value() []byte { return i.it.Value() }
func (i *levelIterator) Release()      { i.it.Release() }
func (i *levelIterator) Error() error  { return i.it.Error() }
