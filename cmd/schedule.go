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
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/healthcheck"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily pipeline on a cron schedule",
	Long: `The schedule sub-command runs as a daemon and executes the full pipeline at
the configured cron schedule. The schedule is interpreted in the exchange
timezone; the default fires shortly after the market closes on weekdays.

When a health monitor is configured it is resumed while the daemon runs and
paused again on shutdown, so planned downtime does not raise alerts.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		spec := viper.GetString("schedule.cron")

		ist, err := time.LoadLocation("Asia/Kolkata")
		if err != nil {
			log.Fatal().Err(err).Msg("could not load timezone")
		}

		scheduler := cron.New(cron.WithLocation(ist))

		entryID, err := scheduler.AddFunc(spec, func() {
			if err := runPipeline(ctx); err != nil {
				log.Error().Err(err).Msg("scheduled pipeline run failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("Schedule", spec).Msg("invalid cron schedule")
		}

		scheduler.Start()
		log.Info().Str("Schedule", spec).Time("NextRun", scheduler.Entry(entryID).Next).Msg("scheduler started")

		if checkID := viper.GetString("healthcheck.uuid"); checkID != "" {
			if err := healthcheck.Resume(checkID); err != nil {
				log.Warn().Err(err).Msg("could not resume healthcheck monitoring")
			}
		}

		<-ctx.Done()

		log.Info().Msg("shutting down scheduler")
		<-scheduler.Stop().Done()

		if checkID := viper.GetString("healthcheck.uuid"); checkID != "" {
			if err := healthcheck.Pause(checkID); err != nil {
				log.Warn().Err(err).Msg("could not pause healthcheck monitoring")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
