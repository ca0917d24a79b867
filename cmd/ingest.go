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
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/archive"
	"github.com/high-watch/hwdata/highs"
	"github.com/high-watch/hwdata/screener"
)

var keepExtracts bool

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [extract...]",
	Short: "Record downloaded screen extracts in the highs database",
	Long: `The ingest sub-command records screen extracts. With no arguments it scans
the download directory for extracts named screener_YYYY-MM-DD.csv and ingests
them oldest first; pass file paths to ingest specific extracts instead.
Ingested extracts move to the archive directory unless --keep is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		paths := args
		if len(paths) == 0 {
			var err error
			paths, err = filepath.Glob(filepath.Join(viper.GetString("download.dir"), "screener_*.csv"))
			if err != nil {
				log.Fatal().Err(err).Msg("could not scan download directory")
			}
		}

		if len(paths) == 0 {
			log.Info().Str("Dir", viper.GetString("download.dir")).Msg("no extracts to ingest")
			return
		}

		// filenames embed ISO dates, so lexicographic order is chronological
		sort.Strings(paths)

		store, err := highs.Open(ctx, viper.GetString("db.path"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open highs database")
		}
		defer store.Close()

		ingested := 0
		failed := 0

		for _, path := range paths {
			date, err := screener.ParseExtractDate(path)
			if err != nil {
				log.Warn().Err(err).Str("Path", path).Msg("skipping file without an extract date")
				failed++
				continue
			}

			extract, err := highs.ParseExtract(path)
			if err != nil {
				log.Error().Err(err).Str("Path", path).Msg("could not parse extract")
				failed++
				continue
			}

			inserted, err := store.Ingest(ctx, extract, date)
			if err != nil {
				log.Error().Err(err).Str("Path", path).Msg("ingest failed")
				failed++
				continue
			}

			if !keepExtracts {
				stored, err := store.RowsForDate(ctx, date.Format(highs.DateLayout))
				if err != nil {
					log.Error().Err(err).Str("Path", path).Msg("could not read back ingested rows")
					failed++
					continue
				}

				if _, err := archive.Archive(path, date, stored); err != nil {
					log.Error().Err(err).Str("Path", path).Msg("archive failed")
					failed++
					continue
				}
			}

			log.Info().Str("Path", path).Int("Inserted", inserted).Msg("extract ingested")
			ingested++
		}

		if failed > 0 {
			log.Warn().Int("Ingested", ingested).Int("Failed", failed).Msg("ingest finished with errors")
			return
		}

		log.Info().Int("Ingested", ingested).Msg("ingest finished")
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&keepExtracts, "keep", false, "leave ingested extracts in the download directory")
}
