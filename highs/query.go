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
	"sort"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// DistinctDates returns every observation date present in the store in
// ascending order.
func (store *Store) DistinctDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := sqlscan.Select(ctx, store.conn, &dates,
		"SELECT DISTINCT date FROM highs ORDER BY date ASC")
	return dates, err
}

// RowsForDate returns all snapshot rows recorded for one observation date in
// insertion order.
func (store *Store) RowsForDate(ctx context.Context, date string) ([]*Snapshot, error) {
	var rows []*Snapshot
	err := sqlscan.Select(ctx, store.conn, &rows,
		"SELECT * FROM highs WHERE date = ? ORDER BY id ASC", date)
	return rows, err
}

// RowsForDateRange returns one representative snapshot per company across the
// inclusive date range. When a company recurs the first row encountered
// iterating dates ascending (insertion order within a date) is kept.
func (store *Store) RowsForDateRange(ctx context.Context, start, end string) ([]*Snapshot, error) {
	rows, err := store.History(ctx, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	deduped := make([]*Snapshot, 0, len(rows))
	for _, row := range rows {
		if seen[row.Name] {
			continue
		}
		seen[row.Name] = true
		deduped = append(deduped, row)
	}

	return deduped, nil
}

// History returns every snapshot row in the inclusive date range, ordered by
// date then insertion. Unlike RowsForDateRange no deduplication happens, so
// the result suits trend series where each appearance matters.
func (store *Store) History(ctx context.Context, start, end string) ([]*Snapshot, error) {
	var rows []*Snapshot
	err := sqlscan.Select(ctx, store.conn, &rows,
		"SELECT * FROM highs WHERE date >= ? AND date <= ? ORDER BY date ASC, id ASC", start, end)
	return rows, err
}

// FilterThresholds keeps summaries whose 30-day hit count and percent gain
// both clear the supplied minimums. An unknown gain never clears a gain
// threshold.
func FilterThresholds(summaries []*CompanySummary, minHits30 int, minGain float64) []*CompanySummary {
	kept := make([]*CompanySummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Hits30 < minHits30 {
			continue
		}
		if !summary.PercentGain.Valid || summary.PercentGain.Float64 < minGain {
			continue
		}
		kept = append(kept, summary)
	}

	return kept
}

// TopByGain returns the n best summaries by percent gain, unknown gains last.
// n <= 0 keeps everything. The input slice is not modified.
func TopByGain(summaries []*CompanySummary, n int) []*CompanySummary {
	ranked := make([]*CompanySummary, len(summaries))
	copy(ranked, summaries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankLess(ranked[j].PercentGain, ranked[i].PercentGain)
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}

	return ranked
}

// SummaryGroup is one partition of a summary result set.
type SummaryGroup struct {
	Key     string
	Entries []*CompanySummary
}

// GroupSummaries partitions summaries by the supplied categorical key and
// orders groups by key ascending; entries within a group are ordered by the
// supplied rank descending. Entries ranking as unknown sort last within
// their group.
func GroupSummaries(summaries []*CompanySummary, keyFn func(*CompanySummary) string, rankFn func(*CompanySummary) Real) []SummaryGroup {
	byKey := make(map[string][]*CompanySummary)
	for _, summary := range summaries {
		key := keyFn(summary)
		byKey[key] = append(byKey[key], summary)
	}

	groups := make([]SummaryGroup, 0, len(byKey))
	for key, entries := range byKey {
		sort.SliceStable(entries, func(i, j int) bool {
			return rankLess(rankFn(entries[j]), rankFn(entries[i]))
		})
		groups = append(groups, SummaryGroup{Key: key, Entries: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// SnapshotGroup is one partition of a snapshot result set.
type SnapshotGroup struct {
	Key  string
	Rows []*Snapshot
}

// GroupSnapshots partitions snapshot rows the same way GroupSummaries
// partitions summaries.
func GroupSnapshots(rows []*Snapshot, keyFn func(*Snapshot) string, rankFn func(*Snapshot) Real) []SnapshotGroup {
	byKey := make(map[string][]*Snapshot)
	for _, row := range rows {
		key := keyFn(row)
		byKey[key] = append(byKey[key], row)
	}

	groups := make([]SnapshotGroup, 0, len(byKey))
	for key, entries := range byKey {
		sort.SliceStable(entries, func(i, j int) bool {
			return rankLess(rankFn(entries[j]), rankFn(entries[i]))
		})
		groups = append(groups, SnapshotGroup{Key: key, Rows: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	return groups
}

// rankLess orders two nullable ranks with unknown values sorting below any
// known value.
func rankLess(a, b Real) bool {
	if !a.Valid {
		return b.Valid
	}
	if !b.Valid {
		return false
	}

	return a.Float64 < b.Float64
}
