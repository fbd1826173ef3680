// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists converged occupations in an embedded BadgerDB.
//
// Results are keyed by job ID under the "result/" prefix and stored as the
// same JSON wire form the run reports use, so a stored result can always be
// resolved back into a configuration. The Recording decorator wraps any
// batch submitter and persists every successful record as it comes back.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNotFound indicates no result is stored under the job ID.
	ErrNotFound = errors.New("result not found")

	// ErrEmptyJobID indicates a result operation without a job ID.
	ErrEmptyJobID = errors.New("empty job ID")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config holds configuration for the result store.
type Config struct {
	// Dir is the directory for database files.
	// Required unless InMemory is true.
	Dir string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives store log output and, when set, the database's
	// internal logging. If nil, the database's internal logging is
	// disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: durable synchronous writes.
func DefaultConfig() Config {
	return Config{SyncWrites: true}
}

// InMemoryConfig returns a configuration for testing: no disk I/O.
func InMemoryConfig() Config {
	return Config{InMemory: true}
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

// -----------------------------------------------------------------------------
// Store
// -----------------------------------------------------------------------------

// resultPrefix namespaces result values, leaving room for other record
// kinds in the same database.
const resultPrefix = "result/"

// Store is a BadgerDB-backed result store.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates and opens a result store.
//
// Description:
//
//	Opens a BadgerDB database at the configured directory, or in memory
//	if InMemory is true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Store configuration. Dir is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if the directory is invalid or the database cannot
//	  be opened.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("dir is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func resultKey(jobID string) []byte {
	return []byte(resultPrefix + jobID)
}

// Put stores the converged occupation for a job.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing.
//	jobID - The job this result belongs to. Must not be empty.
//	occ - The converged configuration. Must validate.
//
// Outputs:
//
//	error - ErrEmptyJobID, an invalid occupation, or a write failure.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Put(ctx context.Context, jobID string, occ datatypes.Occupation) error {
	if jobID == "" {
		return ErrEmptyJobID
	}
	if err := occ.Validate(); err != nil {
		return fmt.Errorf("occupation: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, span := otel.Tracer("occsearch").Start(ctx, "store.Store.Put",
		trace.WithAttributes(attribute.String("job.id", jobID)))
	defer span.End()

	data, err := json.Marshal(occ)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("marshal occupation: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(resultKey(jobID), data)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return fmt.Errorf("write result %s: %w", jobID, err)
	}

	span.SetAttributes(attribute.Int("result.bytes", len(data)))
	return nil
}

// Get resolves the stored occupation for a job.
//
// Outputs:
//
//	datatypes.Occupation - The stored configuration.
//	error - ErrNotFound if nothing is stored under the job ID.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Get(ctx context.Context, jobID string) (datatypes.Occupation, error) {
	if jobID == "" {
		return nil, ErrEmptyJobID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, span := otel.Tracer("occsearch").Start(ctx, "store.Store.Get",
		trace.WithAttributes(attribute.String("job.id", jobID)))
	defer span.End()

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(jobID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("read result %s: %w", jobID, err)
	}

	var occ datatypes.Occupation
	if err := json.Unmarshal(data, &occ); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, fmt.Errorf("decode result %s: %w", jobID, err)
	}
	return occ, nil
}

// Jobs lists every stored job ID in key order.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Jobs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(resultPrefix)
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return ids, nil
}
