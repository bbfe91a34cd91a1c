// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/substated/engine"
	"github.com/bitmark-inc/substated/receipts"
	"github.com/bitmark-inc/substated/storage"
	"github.com/bitmark-inc/substated/transaction"
)

const (
	receiptSuffix = ".receipt.json"
	tempSuffix    = ".tmp"
)

// spool - executes payload files dropped into an inbox
//
// writers must create the file under a hidden or ".tmp" name and
// rename it into place, otherwise a partial payload may be read
type spool struct {
	log      *logger.L
	executor *engine.Executor
	db       storage.CommittableDatabase
	journal  *receipts.Store
	limiter  *rate.Limiter
	inbox    string
	done     string
	failed   string
}

func newSpool(config *SpoolType, executor *engine.Executor, db storage.CommittableDatabase, journal *receipts.Store) *spool {
	return &spool{
		log:      logger.New("spool"),
		executor: executor,
		db:       db,
		journal:  journal,
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		inbox:    config.Inbox,
		done:     config.Done,
		failed:   config.Failed,
	}
}

// Run - background process: drain the inbox then follow its events
func (s *spool) Run(args interface{}, shutdown <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		s.log.Criticalf("new watcher error: %s", err)
		logger.Panicf("spool: new watcher error: %s", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.inbox); nil != err {
		s.log.Criticalf("watch: %q  error: %s", s.inbox, err)
		logger.Panicf("spool: watch: %q  error: %s", s.inbox, err)
	}
	s.log.Infof("watching: %q", s.inbox)

	// files that arrived while stopped
	s.drain(shutdown)

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			s.log.Debugf("event: %v", event)
			if 0 != event.Op&(fsnotify.Create|fsnotify.Write) {
				s.drain(shutdown)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				break loop
			}
			s.log.Errorf("watcher error: %s", err)
		}
	}
	s.log.Info("shutting down…")
	s.log.Flush()
}

// drain - process every ready file in name order
func (s *spool) drain(shutdown <-chan struct{}) {
	for _, name := range s.pending() {
		if !s.wait(shutdown) {
			return
		}
		s.process(name)
	}
}

// pending - ready files in the inbox
func (s *spool) pending() []string {
	entries, err := ioutil.ReadDir(s.inbox)
	if nil != err {
		s.log.Errorf("read inbox: %q  error: %s", s.inbox, err)
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Mode().IsRegular() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, tempSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wait - rate limit; false if shutdown arrived first
func (s *spool) wait(shutdown <-chan struct{}) bool {
	r := s.limiter.Reserve()
	if !r.OK() {
		return false
	}
	delay := r.Delay()
	if 0 == delay {
		return true
	}
	select {
	case <-shutdown:
		r.Cancel()
		return false
	case <-time.After(delay):
		return true
	}
}

// process - execute one payload and file it with its receipt
func (s *spool) process(name string) *engine.Receipt {
	source := filepath.Join(s.inbox, name)
	data, err := ioutil.ReadFile(source)
	if nil != err {
		// another process may have claimed it
		s.log.Warnf("read: %q  error: %s", source, err)
		return nil
	}

	r := s.executor.ExecutePayload(s.db, transaction.Packed(data))
	committed := false
	if r.IsSuccess() {
		if err := engine.Commit(s.db, r); nil != err {
			s.log.Errorf("%s: commit error: %s", name, err)
		} else {
			committed = true
		}
	}
	if committed {
		s.log.Infof("%s: %s  hash: %s  cost: %d", name, r.Status, r.Hash, r.CostConsumed)
	} else {
		s.log.Warnf("%s: %s  hash: %s  error: %v", name, r.Status, r.Hash, r.Err())
	}

	directory := s.failed
	if committed {
		directory = s.done
	}
	if err := os.Rename(source, filepath.Join(directory, name)); nil != err {
		s.log.Errorf("%s: move to: %q  error: %s", name, directory, err)
		_ = os.Remove(source)
	}

	text, err := json.MarshalIndent(r, "", "  ")
	if nil != err {
		s.log.Errorf("%s: receipt marshal error: %s", name, err)
	} else if err := ioutil.WriteFile(filepath.Join(directory, name+receiptSuffix), text, 0600); nil != err {
		s.log.Errorf("%s: receipt write error: %s", name, err)
	}

	if nil != s.journal {
		if _, err := s.journal.Append(r, committed, name); nil != err {
			s.log.Errorf("%s: journal error: %s", name, err)
		}
	}
	return r
}
