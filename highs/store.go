// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package highs

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	_ "github.com/mattn/go-sqlite3"

	"github.com/high-watch/hwdata/db"
)

// Store is the append-only snapshot database. One process writes at a time;
// reads may come from any goroutine. All dates cross the Store boundary as
// YYYY-MM-DD strings.
type Store struct {
	Path string

	conn *sql.DB

	// generation increments on every committed ingest; it keys the summary
	// cache so stale results are never served after new data lands.
	generation atomic.Uint64
	summaries  *haxmap.Map[string, []*CompanySummary]
}

// Open opens (creating if necessary) the snapshot database at path and brings
// its schema up to date. Use ":memory:" for a throwaway in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// A single connection keeps in-memory databases coherent and matches the
	// one-writer model; WAL plus the busy timeout covers everything else.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	store := &Store{
		Path:      path,
		conn:      conn,
		summaries: haxmap.New[string, []*CompanySummary](),
	}

	return store, nil
}

// Close closes the underlying database.
func (store *Store) Close() error {
	return store.conn.Close()
}

// invalidateSummaries drops every cached summary. Called after each
// successful ingest so time-dependent metrics are recomputed against the new
// contents.
func (store *Store) invalidateSummaries() {
	store.generation.Add(1)
	store.summaries.ForEach(func(key string, _ []*CompanySummary) bool {
		store.summaries.Del(key)
		return true
	})
}

// TotalRows returns the number of snapshot rows in the store.
func (store *Store) TotalRows(ctx context.Context) (int, error) {
	count := 0
	err := store.conn.QueryRowContext(ctx, "SELECT count(*) FROM highs").Scan(&count)
	return count, err
}

// TotalCompanies returns the number of distinct company names in the store.
func (store *Store) TotalCompanies(ctx context.Context) (int, error) {
	count := 0
	err := store.conn.QueryRowContext(ctx, "SELECT count(DISTINCT name) FROM highs").Scan(&count)
	return count, err
}

// DuplicatePairs counts (date, name) combinations recorded more than once.
// Re-ingesting an extract accumulates rows rather than deduplicating; this
// makes the effect visible to operators.
func (store *Store) DuplicatePairs(ctx context.Context) (int, error) {
	count := 0
	err := store.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM (SELECT 1 FROM highs GROUP BY date, name HAVING count(*) > 1)`).Scan(&count)
	return count, err
}

// LastObservation returns the most recent observation date in the store, or
// the zero time when the store is empty.
func (store *Store) LastObservation(ctx context.Context) (time.Time, error) {
	last := ""
	err := store.conn.QueryRowContext(ctx, "SELECT coalesce(max(date), '') FROM highs").Scan(&last)
	if err != nil {
		return time.Time{}, err
	}

	if last == "" {
		return time.Time{}, nil
	}

	return time.Parse(DateLayout, last)
}

// TopIndustry returns the industry with the most snapshot rows and its count.
func (store *Store) TopIndustry(ctx context.Context) (string, int, error) {
	industry := ""
	count := 0
	err := store.conn.QueryRowContext(ctx,
		`SELECT industry, count(*) AS cnt FROM highs WHERE industry <> ''
		 GROUP BY industry ORDER BY cnt DESC, industry ASC LIMIT 1`).Scan(&industry, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}

	return industry, count, err
}

// SizeOnDisk reports the database file size in bytes; in-memory stores
// report zero.
func (store *Store) SizeOnDisk() int64 {
	info, err := os.Stat(store.Path)
	if err != nil {
		return 0
	}

	return info.Size()
}
