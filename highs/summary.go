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
	"fmt"
	"sort"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// hit-count windows in trailing days
var hitWindows = [3]int{7, 30, 60}

// Summarize computes one CompanySummary per distinct company: the latest
// snapshot (largest date, ties broken by the most recently inserted row),
// the percent market-cap gain since first seen, and hit counts over the
// trailing 7/30/60 day windows ending at asOf (both window ends inclusive).
//
// The full store is re-read on every cache miss. Results are cached per
// (asOf day, store generation); any ingest invalidates the cache, and asOf
// moving to a new day naturally misses.
func (store *Store) Summarize(ctx context.Context, asOf time.Time) ([]*CompanySummary, error) {
	cacheKey := fmt.Sprintf("%s:%d", asOf.Format(DateLayout), store.generation.Load())
	if cached, ok := store.summaries.Get(cacheKey); ok {
		return cached, nil
	}

	var rows []*Snapshot
	err := sqlscan.Select(ctx, store.conn, &rows,
		"SELECT * FROM highs ORDER BY date ASC, id ASC")
	if err != nil {
		return nil, err
	}

	summaries := summarizeRows(rows, asOf)

	// keep at most one cached result; older asOf keys are worthless
	store.summaries.ForEach(func(key string, _ []*CompanySummary) bool {
		store.summaries.Del(key)
		return true
	})
	store.summaries.Set(cacheKey, summaries)

	return summaries, nil
}

// summarizeRows folds date-ordered snapshot rows into per-company summaries.
func summarizeRows(rows []*Snapshot, asOf time.Time) []*CompanySummary {
	asOfStr := asOf.Format(DateLayout)
	cutoffs := [3]string{}
	for i, window := range hitWindows {
		cutoffs[i] = asOf.AddDate(0, 0, -window).Format(DateLayout)
	}

	byName := make(map[string]*CompanySummary)

	for _, row := range rows {
		summary, ok := byName[row.Name]
		if !ok {
			summary = &CompanySummary{}
			byName[row.Name] = summary
		}

		// rows arrive ordered by (date, id) so a later row is always at
		// least as new; taking every row keeps the largest-id tie winner
		summary.Snapshot = *row

		// ISO dates compare correctly as strings
		if row.Date <= asOfStr {
			if row.Date >= cutoffs[0] {
				summary.Hits7++
			}
			if row.Date >= cutoffs[1] {
				summary.Hits30++
			}
			if row.Date >= cutoffs[2] {
				summary.Hits60++
			}
		}
	}

	summaries := make([]*CompanySummary, 0, len(byName))
	for _, summary := range byName {
		summary.PercentGain = percentGain(summary.MarketCap, summary.FirstMarketCap)
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries
}

// percentGain computes the relative market-cap change against the first-seen
// baseline. A zero or unknown baseline, or an unknown latest cap, yields an
// unknown gain; there is no divide-by-zero fallback value.
func percentGain(latest, baseline Real) Real {
	if !latest.Valid || !baseline.Valid || baseline.Float64 == 0 {
		return Real{}
	}

	return NewReal(100 * (latest.Float64 - baseline.Float64) / baseline.Float64)
}
