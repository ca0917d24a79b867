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
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/highs"
)

var (
	snapshotsDate    string
	snapshotsFrom    string
	snapshotsTo      string
	snapshotsCSV     string
	snapshotsGroupBy string
)

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Show recorded screen rows for a date or date range",
	Long: `The snapshots sub-command prints the rows recorded on a single observation
date, or across a date range. Over a range each company appears once, on the
first date it was encountered. Without flags the most recent observation date
is shown. Grouping by industry renders one table per industry, largest
companies first.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if snapshotsDate != "" && (snapshotsFrom != "" || snapshotsTo != "") {
			log.Fatal().Msg("use either --date or --from/--to, not both")
		}
		if (snapshotsFrom == "") != (snapshotsTo == "") {
			log.Fatal().Msg("--from and --to must be given together")
		}

		store, err := highs.Open(ctx, viper.GetString("db.path"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open highs database")
		}
		defer store.Close()

		var (
			rows  []*highs.Snapshot
			title string
		)

		switch {
		case snapshotsFrom != "":
			validateDateFlag("from", snapshotsFrom)
			validateDateFlag("to", snapshotsTo)

			rows, err = store.RowsForDateRange(ctx, snapshotsFrom, snapshotsTo)
			title = fmt.Sprintf("New Highs %s to %s", snapshotsFrom, snapshotsTo)
		case snapshotsDate != "":
			validateDateFlag("date", snapshotsDate)

			rows, err = store.RowsForDate(ctx, snapshotsDate)
			title = fmt.Sprintf("New Highs on %s", snapshotsDate)
		default:
			var last time.Time
			last, err = store.LastObservation(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("could not determine last observation date")
			}
			if last.IsZero() {
				log.Info().Msg("the highs database is empty")
				return
			}

			date := last.Format(highs.DateLayout)
			rows, err = store.RowsForDate(ctx, date)
			title = fmt.Sprintf("New Highs on %s", date)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("could not load snapshots")
		}

		if snapshotsCSV != "" {
			fh, err := os.Create(snapshotsCSV)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", snapshotsCSV).Msg("could not create CSV export")
			}
			defer fh.Close()

			if err := gocsv.Marshal(rows, fh); err != nil {
				log.Fatal().Err(err).Str("FileName", snapshotsCSV).Msg("could not write CSV export")
			}

			log.Info().Str("FileName", snapshotsCSV).Int("NumRows", len(rows)).Msg("wrote CSV export")
		}

		var groups []highs.SnapshotGroup
		switch snapshotsGroupBy {
		case "industry":
			groups = highs.GroupSnapshots(rows,
				func(s *highs.Snapshot) string {
					if s.Industry == "" {
						return "Unclassified"
					}
					return s.Industry
				},
				func(s *highs.Snapshot) highs.Real { return s.MarketCap })
		case "none":
			groups = []highs.SnapshotGroup{{Rows: rows}}
		default:
			log.Fatal().Str("GroupBy", snapshotsGroupBy).Msg("group-by must be one of: industry, none")
		}

		report := highs.SnapshotReport(title, groups)

		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)

		out, err := r.Render(report)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render snapshot report")
		}

		fmt.Print(out)
	},
}

func validateDateFlag(name, value string) {
	if _, err := time.Parse(highs.DateLayout, value); err != nil {
		log.Fatal().Str(name, value).Msg("date flags must be formatted YYYY-MM-DD")
	}
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)

	snapshotsCmd.Flags().StringVar(&snapshotsDate, "date", "", "observation date to show (YYYY-MM-DD)")
	snapshotsCmd.Flags().StringVar(&snapshotsFrom, "from", "", "start of the date range (YYYY-MM-DD)")
	snapshotsCmd.Flags().StringVar(&snapshotsTo, "to", "", "end of the date range (YYYY-MM-DD)")
	snapshotsCmd.Flags().StringVar(&snapshotsCSV, "csv", "", "export the rows to a CSV file")
	snapshotsCmd.Flags().StringVar(&snapshotsGroupBy, "group-by", "none", "group results by: industry, none")
}
