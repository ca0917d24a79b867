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
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a markdown description of the snapshot store.
func (store *Store) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# 52-week-high tracker\n## Details\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", store.Path)); err != nil {
		return "", err
	}

	totalRows, err := store.TotalRows(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Snapshot Rows: %d\n", totalRows)); err != nil {
		return "", err
	}

	totalCompanies, err := store.TotalCompanies(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Companies Tracked: %d\n", totalCompanies)); err != nil {
		return "", err
	}

	duplicates, err := store.DuplicatePairs(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Duplicate (date, company) Pairs: %d\n", duplicates)); err != nil {
		return "", err
	}

	industry, industryCount, err := store.TopIndustry(ctx)
	if err != nil {
		return "", err
	}

	if industry != "" {
		if _, err := builder.WriteString(p.Sprintf("  * Top Industry: %s (%d rows)\n", industry, industryCount)); err != nil {
			return "", err
		}
	}

	if _, err := builder.WriteString(p.Sprintf("  * Size On Disk: %d bytes\n\n", store.SizeOnDisk())); err != nil {
		return "", err
	}

	lastObs, err := store.LastObservation(ctx)
	if err != nil {
		return "", err
	}

	if lastObs.Equal(time.Time{}) {
		if _, err := builder.WriteString("Last Observation: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(lastObs)
		if _, err := builder.WriteString(fmt.Sprintf("Last Observation: %s (%s)\n\n", age, lastObs.Format(DateLayout))); err != nil {
			return "", err
		}
	}

	dates, err := store.DistinctDates(ctx)
	if err != nil {
		return "", err
	}

	if len(dates) > 0 {
		if _, err := builder.WriteString(p.Sprintf("Coverage: %s - %s (%d observation days)\n", dates[0], dates[len(dates)-1], len(dates))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}

// ScreenerLink returns the screener.in company page for a snapshot, built
// from the NSE code when present, the BSE code otherwise. Companies without
// either code get no link.
func ScreenerLink(snapshot *Snapshot) string {
	code := snapshot.NSECode
	if code == "" {
		code = snapshot.BSECode
	}
	if code == "" {
		return ""
	}

	return fmt.Sprintf("https://www.screener.in/company/%s/", code)
}

// MomentumReport renders company summaries as a markdown table, one section
// per group. Company names link to their screener.in pages.
func MomentumReport(groups []SummaryGroup, asOf time.Time) string {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# Momentum summary as of %s\n\n", asOf.Format(DateLayout)))

	for _, group := range groups {
		if group.Key != "" {
			builder.WriteString(fmt.Sprintf("## %s\n\n", group.Key))
		}

		builder.WriteString("| Company | NSE | BSE | Mkt Cap | Gain % | 7d | 30d | 60d | First Seen |\n")
		builder.WriteString("| --- | --- | --- | ---: | ---: | ---: | ---: | ---: | --- |\n")

		for _, summary := range group.Entries {
			name := summary.Name
			if link := ScreenerLink(&summary.Snapshot); link != "" {
				name = fmt.Sprintf("[%s](%s)", summary.Name, link)
			}

			builder.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %d | %d | %s |\n",
				name, summary.NSECode, summary.BSECode, summary.MarketCap,
				summary.PercentGain, summary.Hits7, summary.Hits30, summary.Hits60,
				summary.FirstSeenDate))
		}

		builder.WriteString("\n")
	}

	return builder.String()
}

// SnapshotReport renders snapshot rows as a markdown table, one section per
// group. Groups without a key render as a single table under the title.
func SnapshotReport(title string, groups []SnapshotGroup) string {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, group := range groups {
		if group.Key != "" {
			builder.WriteString(fmt.Sprintf("## %s\n\n", group.Key))
		}

		builder.WriteString("| Date | Company | NSE | BSE | Industry | Price | Mkt Cap | Down From 52w High |\n")
		builder.WriteString("| --- | --- | --- | --- | --- | ---: | ---: | ---: |\n")

		for _, row := range group.Rows {
			builder.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				row.Date, row.Name, row.NSECode, row.BSECode, row.Industry,
				row.CurrentPrice, row.MarketCap, row.DownFrom52wHigh))
		}

		builder.WriteString("\n")
	}

	return builder.String()
}
