// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package receipts

import (
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/bitmark-inc/logger"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bitmark-inc/substated/digest"
	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/fault"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
  sequence INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
  hash BLOB NOT NULL,
  intent_hash BLOB,
  kind INTEGER NOT NULL,
  status TEXT NOT NULL,
  cost INTEGER NOT NULL,
  committed INTEGER NOT NULL DEFAULT 0,
  source TEXT NOT NULL DEFAULT '',
  body BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS receipts_hash ON receipts (hash);
`

// Entry - one journalled receipt
type Entry struct {
	Sequence  uint64          `json:"sequence"`
	Committed bool            `json:"committed"`
	Source    string          `json:"source,omitempty"`
	Receipt   *engine.Receipt `json:"receipt"`
}

// Store - receipts journal in an sqlite file
type Store struct {
	sync.Mutex
	log *logger.L
	db  *sql.DB
}

// Open - open or create a journal; ":memory:" gives a private one
func Open(filename string) (*Store, error) {
	db, err := sql.Open("sqlite3", filename)
	if nil != err {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, fault.Detailf(fault.ErrReceiptStoreFailed, "creating receipts schema: %s", err)
	}
	return &Store{
		log: logger.New("receipts"),
		db:  db,
	}, nil
}

// Close - release the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Append - journal a receipt, returning its sequence number
func (s *Store) Append(r *engine.Receipt, committed bool, source string) (uint64, error) {
	body, err := json.Marshal(r)
	if nil != err {
		return 0, err
	}
	var intent []byte
	if !r.IntentHash.IsZero() {
		intent = r.IntentHash[:]
	}

	s.Lock()
	defer s.Unlock()

	result, err := s.db.Exec(
		"INSERT INTO receipts (hash, intent_hash, kind, status, cost, committed, source, body) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.Hash[:], intent, int(r.Kind), r.Status.String(), int64(r.CostConsumed), committed, source, body,
	)
	if nil != err {
		return 0, fault.Detailf(fault.ErrReceiptStoreFailed, "writing receipt: %s", err)
	}
	sequence, err := result.LastInsertId()
	if nil != err {
		return 0, fault.Detailf(fault.ErrReceiptStoreFailed, "receipt sequence: %s", err)
	}
	s.log.Debugf("%d: %s %s", sequence, r.Hash, r.Status)
	return uint64(sequence), nil
}

func scanEntry(row interface{ Scan(...interface{}) error }) (*Entry, error) {
	var (
		sequence  int64
		committed bool
		source    string
		body      []byte
	)
	if err := row.Scan(&sequence, &committed, &source, &body); nil != err {
		return nil, err
	}
	r := &engine.Receipt{}
	if err := json.Unmarshal(body, r); nil != err {
		return nil, fault.Detailf(fault.ErrReceiptStoreFailed, "receipt %d: %s", sequence, err)
	}
	return &Entry{
		Sequence:  uint64(sequence),
		Committed: committed,
		Source:    source,
		Receipt:   r,
	}, nil
}

// Get - the latest entry for a ledger hash
func (s *Store) Get(hash digest.Digest) (*Entry, error) {
	s.Lock()
	defer s.Unlock()

	row := s.db.QueryRow("SELECT sequence, committed, source, body FROM receipts WHERE hash = ? ORDER BY sequence DESC LIMIT 1", hash[:])
	entry, err := scanEntry(row)
	if sql.ErrNoRows == err {
		return nil, fault.Detailf(fault.ErrReceiptNotFound, "%s", hash)
	}
	return entry, err
}

// List - up to count entries from a sequence number onward
func (s *Store) List(from uint64, count int) ([]*Entry, error) {
	s.Lock()
	defer s.Unlock()

	rows, err := s.db.Query("SELECT sequence, committed, source, body FROM receipts WHERE sequence >= ? ORDER BY sequence LIMIT ?", int64(from), count)
	if nil != err {
		return nil, fault.Detailf(fault.ErrReceiptStoreFailed, "listing receipts: %s", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0, count)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if nil != err {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count - entries by status
func (s *Store) Count() (map[engine.Status]uint64, error) {
	s.Lock()
	defer s.Unlock()

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM receipts GROUP BY status")
	if nil != err {
		return nil, fault.Detailf(fault.ErrReceiptStoreFailed, "counting receipts: %s", err)
	}
	defer rows.Close()

	counts := make(map[engine.Status]uint64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); nil != err {
			return nil, err
		}
		var status engine.Status
		if err := status.UnmarshalText([]byte(name)); nil != err {
			return nil, err
		}
		counts[status] = uint64(n)
	}
	return counts, rows.Err()
}
