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
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/gocarina/gocsv"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/highs"
)

var (
	summaryMinHits int
	summaryMinGain float64
	summaryGroupBy string
	summaryAsOf    string
	summaryTop     int
	summaryCSV     string
	summaryJSON    string
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report companies repeatedly hitting 52-week highs",
	Long: `The summary sub-command folds the whole highs history into one row per
company: the latest recorded fundamentals, how often the company hit the
screen in the trailing 7, 30 and 60 days, and the market-cap gain since its
first appearance. Thresholds cut the list down to companies with real
momentum; the result renders as markdown in the terminal and optionally
exports to CSV or JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		asOf := highs.ObservationDate()
		if summaryAsOf != "" {
			var err error
			asOf, err = time.Parse(highs.DateLayout, summaryAsOf)
			if err != nil {
				log.Fatal().Err(err).Str("AsOf", summaryAsOf).Msg("as-of must be formatted YYYY-MM-DD")
			}
		}

		store, err := highs.Open(ctx, viper.GetString("db.path"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open highs database")
		}
		defer store.Close()

		summaries, err := store.Summarize(ctx, asOf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not summarize highs history")
		}

		summaries = highs.FilterThresholds(summaries, summaryMinHits, summaryMinGain)
		summaries = highs.TopByGain(summaries, summaryTop)

		if summaryCSV != "" {
			writeSummaryCSV(summaries, summaryCSV)
		}

		if summaryJSON != "" {
			writeSummaryJSON(summaries, summaryJSON)
		}

		var groups []highs.SummaryGroup
		switch summaryGroupBy {
		case "industry":
			groups = highs.GroupSummaries(summaries,
				func(s *highs.CompanySummary) string {
					if s.Industry == "" {
						return "Unclassified"
					}
					return s.Industry
				},
				func(s *highs.CompanySummary) highs.Real { return s.PercentGain })
		case "none":
			groups = []highs.SummaryGroup{{Key: "All Companies", Entries: summaries}}
		default:
			log.Fatal().Str("GroupBy", summaryGroupBy).Msg("group-by must be one of: industry, none")
		}

		report := highs.MomentumReport(groups, asOf)

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)

		out, err := r.Render(report)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render momentum report")
		}

		fmt.Print(out)
	},
}

func writeSummaryCSV(summaries []*highs.CompanySummary, fn string) {
	fh, err := os.Create(fn)
	if err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not create CSV export")
	}
	defer fh.Close()

	if err := gocsv.Marshal(summaries, fh); err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not write CSV export")
	}

	log.Info().Str("FileName", fn).Int("NumRows", len(summaries)).Msg("wrote CSV export")
}

func writeSummaryJSON(summaries []*highs.CompanySummary, fn string) {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("could not marshal summaries")
	}

	if err := os.WriteFile(fn, data, 0644); err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not write JSON export")
	}

	log.Info().Str("FileName", fn).Int("NumRows", len(summaries)).Msg("wrote JSON export")
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVar(&summaryMinHits, "min-hits", 1, "minimum 30-day hit count")
	summaryCmd.Flags().Float64Var(&summaryMinGain, "min-gain", 0, "minimum percent gain since first seen")
	summaryCmd.Flags().StringVar(&summaryGroupBy, "group-by", "industry", "group results by: industry, none")
	summaryCmd.Flags().StringVar(&summaryAsOf, "as-of", "", "evaluate trailing windows as of this date (YYYY-MM-DD)")
	summaryCmd.Flags().IntVar(&summaryTop, "top", 0, "keep only the N highest gainers (0 keeps all)")
	summaryCmd.Flags().StringVar(&summaryCSV, "csv", "", "export the summary to a CSV file")
	summaryCmd.Flags().StringVar(&summaryJSON, "json", "", "export the summary to a JSON file")
}
