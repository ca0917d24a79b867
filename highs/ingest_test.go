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
	"errors"
	"testing"
)

func TestIngestSkipsUnusableRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	data := `Name,Industry,Market Capitalization
Acme Industries,Chemicals,100
,Textiles,200
Beta Mills,Textiles,--
Gamma Power,Power,300
`
	inserted := mustIngest(t, store, data, "2024-01-01")
	if inserted != 2 {
		t.Errorf("Ingest inserted %d rows, want 2", inserted)
	}

	rows, err := store.RowsForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Name != "Acme Industries" || rows[1].Name != "Gamma Power" {
		t.Errorf("stored names = %q, %q; want Acme Industries, Gamma Power",
			rows[0].Name, rows[1].Name)
	}
}

func TestIngestRejectsBadSchema(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	extract := mustExtract(t, "Name,Industry\nAcme Industries,Chemicals\n")
	_, err := store.Ingest(ctx, extract, day(t, "2024-01-01"))
	if err == nil {
		t.Fatal("Ingest accepted an extract without a market cap column")
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Ingest error = %v, want ErrSchemaMismatch", err)
	}

	total, err := store.TotalRows(ctx)
	if err != nil {
		t.Fatalf("TotalRows returned error: %v", err)
	}
	if total != 0 {
		t.Errorf("TotalRows after rejected ingest = %d, want 0", total)
	}
}

func TestIngestStampsFirstSeen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mustIngest(t, store, "Name,Market Capitalization\nAcme Industries,100\n", "2024-01-01")
	mustIngest(t, store, "Name,Market Capitalization\nAcme Industries,120\n", "2024-01-08")

	rows, err := store.RowsForDate(ctx, "2024-01-08")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.FirstSeenDate != "2024-01-01" {
		t.Errorf("FirstSeenDate = %q, want 2024-01-01", row.FirstSeenDate)
	}
	if !row.FirstMarketCap.Valid || row.FirstMarketCap.Float64 != 100 {
		t.Errorf("FirstMarketCap = %+v, want {100 true}", row.FirstMarketCap)
	}
	if !row.MarketCap.Valid || row.MarketCap.Float64 != 120 {
		t.Errorf("MarketCap = %+v, want {120 true}", row.MarketCap)
	}
}

func TestIngestFirstSightingStampsOwnDate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mustIngest(t, store, "Name,Market Capitalization\nAcme Industries,250.5\n", "2024-03-15")

	rows, err := store.RowsForDate(ctx, "2024-03-15")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.FirstSeenDate != "2024-03-15" {
		t.Errorf("FirstSeenDate = %q, want 2024-03-15", row.FirstSeenDate)
	}
	if !row.FirstMarketCap.Valid || row.FirstMarketCap.Float64 != 250.5 {
		t.Errorf("FirstMarketCap = %+v, want {250.5 true}", row.FirstMarketCap)
	}
}

func TestIngestDuplicateInOneExtract(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	data := `Name,Market Capitalization
Acme Industries,100
Acme Industries,999
`
	inserted := mustIngest(t, store, data, "2024-01-01")
	if inserted != 2 {
		t.Errorf("Ingest inserted %d rows, want 2", inserted)
	}

	rows, err := store.RowsForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	// the second sighting inherits the first row's baseline, even within
	// a single batch
	for i, row := range rows {
		if row.FirstSeenDate != "2024-01-01" {
			t.Errorf("rows[%d].FirstSeenDate = %q, want 2024-01-01", i, row.FirstSeenDate)
		}
		if !row.FirstMarketCap.Valid || row.FirstMarketCap.Float64 != 100 {
			t.Errorf("rows[%d].FirstMarketCap = %+v, want {100 true}", i, row.FirstMarketCap)
		}
	}
}

func TestIngestTrimsCompanyNames(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mustIngest(t, store, "Name,Market Capitalization\n  Acme Industries  ,100\n", "2024-01-01")

	rows, err := store.RowsForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Acme Industries" {
		t.Errorf("stored rows = %+v, want one trimmed Acme Industries row", rows)
	}
}

func TestIngestZeroMarketCapIsStored(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	inserted := mustIngest(t, store, "Name,Market Capitalization\nAcme Industries,0\n", "2024-01-01")
	if inserted != 1 {
		t.Errorf("Ingest inserted %d rows, want 1", inserted)
	}

	rows, err := store.RowsForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("RowsForDate returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if !rows[0].MarketCap.Valid || rows[0].MarketCap.Float64 != 0 {
		t.Errorf("MarketCap = %+v, want {0 true}", rows[0].MarketCap)
	}
}
