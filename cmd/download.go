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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/high-watch/hwdata/screener"
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download today's screen extract without ingesting it",
	Long: `The download sub-command fetches the day's 52-week-high screen extract and
saves it in the download directory. Use ingest to record it afterwards; the
run sub-command does both in one pass.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		path, err := screener.Download(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("download failed")
		}

		log.Info().Str("Path", path).Msg("extract downloaded")
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
