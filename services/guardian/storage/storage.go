// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage persists guardian records in an embedded BadgerDB.
//
// Records are stored as JSON values under typed key prefixes:
//
//	target/<id>              registered assessment targets
//	assessment/<id>          assessment lifecycle records and reports
//	carbon/measurement/<id>  completed carbon tracking sessions
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
// This package follows Apache 2.0 guidelines for attribution and usage.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Config holds configuration for the guardian store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger

	// GCInterval is how often to run value log garbage collection.
	// Default via DefaultConfig: 5 minutes. Zero disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before GC.
	GCDiscardRatio float64
}

// DefaultConfig returns production defaults: synchronous writes and a
// 5-minute GC cycle at a 50% discard ratio.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// Store is the guardian persistence layer. Safe for concurrent use.
type Store struct {
	db *badger.DB
	gc *gcRunner
}

// Open opens the store with the given configuration, creating the database
// directory if needed. Caller must call Close when done.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	s := &Store{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		s.gc.start()
	}
	return s, nil
}

// OpenInMemory opens a throwaway in-memory store for testing. Data is lost
// when closed.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close stops garbage collection and closes the database.
func (s *Store) Close() error {
	if s.gc != nil {
		s.gc.stop()
	}
	return s.db.Close()
}

// putJSON marshals v and writes it under key.
func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// getJSON reads key and unmarshals into v. Returns ErrNotFound for
// missing keys.
func (s *Store) getJSON(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	return nil
}

// listJSON iterates every value under prefix, calling fn with the raw
// JSON of each.
func (s *Store) listJSON(prefix string, fn func(val []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", prefix, err)
	}
	return nil
}

// deleteKey removes key. Deleting a missing key is not an error; exists
// reports whether the key was present.
func (s *Store) deleteKey(key string) (exists bool, err error) {
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		exists = true
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return exists, nil
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// gcRunner runs periodic value log garbage collection.
type gcRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   *slog.Logger
}

func newGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) *gcRunner {
	return &gcRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (r *gcRunner) start() {
	go r.run()
}

func (r *gcRunner) stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *gcRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			// RunValueLogGC returns ErrNoRewrite when no GC was needed.
			err := r.db.RunValueLogGC(r.ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && r.logger != nil {
				r.logger.Warn("badger value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}
