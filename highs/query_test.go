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
	"reflect"
	"testing"
)

func TestDistinctDates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	extract := "Name,Market Capitalization\nAcme Industries,100\n"
	mustIngest(t, store, extract, "2024-01-01")
	mustIngest(t, store, extract, "2024-01-03")
	mustIngest(t, store, extract, "2024-01-03")
	mustIngest(t, store, extract, "2024-01-05")

	dates, err := store.DistinctDates(ctx)
	if err != nil {
		t.Fatalf("DistinctDates returned error: %v", err)
	}

	want := []string{"2024-01-01", "2024-01-03", "2024-01-05"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("DistinctDates = %v, want %v", dates, want)
	}
}

func TestRowsForDateRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	mustIngest(t, store,
		"Name,Market Capitalization\nAcme Industries,100\nBeta Mills,200\n",
		"2024-01-01")
	mustIngest(t, store,
		"Name,Market Capitalization\nAcme Industries,110\nGamma Power,300\n",
		"2024-01-02")

	rows, err := store.RowsForDateRange(ctx, "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("RowsForDateRange returned error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	// each company appears once, keeping its earliest row in the range
	if rows[0].Name != "Acme Industries" || rows[0].Date != "2024-01-01" {
		t.Errorf("rows[0] = %s on %s, want Acme Industries on 2024-01-01", rows[0].Name, rows[0].Date)
	}
	if rows[1].Name != "Beta Mills" {
		t.Errorf("rows[1].Name = %q, want Beta Mills", rows[1].Name)
	}
	if rows[2].Name != "Gamma Power" || rows[2].Date != "2024-01-02" {
		t.Errorf("rows[2] = %s on %s, want Gamma Power on 2024-01-02", rows[2].Name, rows[2].Date)
	}
}

func TestHistoryKeepsEveryAppearance(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	extract := "Name,Market Capitalization\nAcme Industries,100\n"
	mustIngest(t, store, extract, "2024-01-01")
	mustIngest(t, store, extract, "2024-01-02")
	mustIngest(t, store, extract, "2024-01-05")

	rows, err := store.History(ctx, "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Date != "2024-01-01" || rows[1].Date != "2024-01-02" {
		t.Errorf("History dates = %s, %s; want 2024-01-01, 2024-01-02",
			rows[0].Date, rows[1].Date)
	}
}

func TestFilterThresholds(t *testing.T) {
	summaries := []*CompanySummary{
		{Snapshot: Snapshot{Name: "Acme"}, PercentGain: NewReal(25), Hits30: 5},
		{Snapshot: Snapshot{Name: "Beta"}, PercentGain: NewReal(5), Hits30: 5},
		{Snapshot: Snapshot{Name: "Gamma"}, PercentGain: NewReal(50), Hits30: 1},
		{Snapshot: Snapshot{Name: "Delta"}, Hits30: 9},
	}

	kept := FilterThresholds(summaries, 3, 10)
	if len(kept) != 1 || kept[0].Name != "Acme" {
		t.Errorf("FilterThresholds(3, 10) kept %d entries, want just Acme", len(kept))
	}

	// an unknown gain never clears a threshold, even a negative one
	kept = FilterThresholds(summaries, 0, -100)
	for _, summary := range kept {
		if summary.Name == "Delta" {
			t.Error("FilterThresholds kept a summary with an unknown gain")
		}
	}
	if len(kept) != 3 {
		t.Errorf("FilterThresholds(0, -100) kept %d entries, want 3", len(kept))
	}
}

func TestTopByGain(t *testing.T) {
	summaries := []*CompanySummary{
		{Snapshot: Snapshot{Name: "Acme"}, PercentGain: NewReal(10)},
		{Snapshot: Snapshot{Name: "Beta"}},
		{Snapshot: Snapshot{Name: "Gamma"}, PercentGain: NewReal(50)},
	}

	ranked := TopByGain(summaries, 0)
	if len(ranked) != 3 {
		t.Fatalf("TopByGain(0) returned %d entries, want 3", len(ranked))
	}
	wantOrder := []string{"Gamma", "Acme", "Beta"}
	for i, want := range wantOrder {
		if ranked[i].Name != want {
			t.Errorf("ranked[%d].Name = %q, want %q", i, ranked[i].Name, want)
		}
	}

	top := TopByGain(summaries, 2)
	if len(top) != 2 || top[0].Name != "Gamma" || top[1].Name != "Acme" {
		t.Errorf("TopByGain(2) = %v entries, want Gamma then Acme", len(top))
	}

	// input order is untouched
	if summaries[0].Name != "Acme" || summaries[2].Name != "Gamma" {
		t.Error("TopByGain reordered its input slice")
	}
}

func TestGroupSummaries(t *testing.T) {
	summaries := []*CompanySummary{
		{Snapshot: Snapshot{Name: "Acme", Industry: "Chemicals"}, PercentGain: NewReal(10)},
		{Snapshot: Snapshot{Name: "Beta", Industry: "Textiles"}, PercentGain: NewReal(5)},
		{Snapshot: Snapshot{Name: "Gamma", Industry: "Chemicals"}, PercentGain: NewReal(30)},
		{Snapshot: Snapshot{Name: "Delta", Industry: "Chemicals"}},
	}

	groups := GroupSummaries(summaries,
		func(s *CompanySummary) string { return s.Industry },
		func(s *CompanySummary) Real { return s.PercentGain })

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Key != "Chemicals" || groups[1].Key != "Textiles" {
		t.Errorf("group keys = %q, %q; want Chemicals, Textiles", groups[0].Key, groups[1].Key)
	}

	chem := groups[0].Entries
	if len(chem) != 3 {
		t.Fatalf("len(Chemicals entries) = %d, want 3", len(chem))
	}
	wantOrder := []string{"Gamma", "Acme", "Delta"}
	for i, want := range wantOrder {
		if chem[i].Name != want {
			t.Errorf("Chemicals[%d].Name = %q, want %q", i, chem[i].Name, want)
		}
	}
}

func TestGroupSnapshots(t *testing.T) {
	rows := []*Snapshot{
		{Name: "Acme", Industry: "Chemicals", MarketCap: NewReal(100)},
		{Name: "Beta", Industry: "Textiles", MarketCap: NewReal(500)},
		{Name: "Gamma", Industry: "Chemicals", MarketCap: NewReal(900)},
		{Name: "Delta", Industry: "Chemicals"},
	}

	groups := GroupSnapshots(rows,
		func(s *Snapshot) string { return s.Industry },
		func(s *Snapshot) Real { return s.MarketCap })

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Key != "Chemicals" || groups[1].Key != "Textiles" {
		t.Errorf("group keys = %q, %q; want Chemicals, Textiles", groups[0].Key, groups[1].Key)
	}

	chem := groups[0].Rows
	if len(chem) != 3 {
		t.Fatalf("len(Chemicals rows) = %d, want 3", len(chem))
	}

	// ranked by market cap descending, unknown cap last
	wantOrder := []string{"Gamma", "Acme", "Delta"}
	for i, want := range wantOrder {
		if chem[i].Name != want {
			t.Errorf("Chemicals[%d].Name = %q, want %q", i, chem[i].Name, want)
		}
	}
}

func TestRankLess(t *testing.T) {
	if !rankLess(NewReal(1), NewReal(2)) {
		t.Error("rankLess(1, 2) = false, want true")
	}
	if rankLess(NewReal(2), NewReal(1)) {
		t.Error("rankLess(2, 1) = true, want false")
	}
	if !rankLess(Real{}, NewReal(-100)) {
		t.Error("rankLess(unknown, -100) = false, want true")
	}
	if rankLess(NewReal(-100), Real{}) {
		t.Error("rankLess(-100, unknown) = true, want false")
	}
	if rankLess(Real{}, Real{}) {
		t.Error("rankLess(unknown, unknown) = true, want false")
	}
}
