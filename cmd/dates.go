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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/highs"
)

// datesCmd represents the dates command
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List every observation date in the highs database",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		store, err := highs.Open(ctx, viper.GetString("db.path"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open highs database")
		}
		defer store.Close()

		dates, err := store.DistinctDates(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list observation dates")
		}

		for _, date := range dates {
			fmt.Println(date)
		}
	},
}

func init() {
	rootCmd.AddCommand(datesCmd)
}
