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
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/api"
	"github.com/high-watch/hwdata/highs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the highs database over a JSON API",
	Long: `The serve sub-command starts a read-only HTTP API over the highs database:
observation dates, per-date snapshots, momentum summaries and raw history.
The server drains in-flight requests on SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := highs.Open(ctx, viper.GetString("db.path"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open highs database")
		}
		defer store.Close()

		server := api.NewServer(viper.GetString("server.address"), api.NewHandlers(store))

		if err := server.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("api server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
