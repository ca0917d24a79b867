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
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/archive"
	"github.com/high-watch/hwdata/healthcheck"
	"github.com/high-watch/hwdata/highs"
	"github.com/high-watch/hwdata/screener"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily pipeline: download, ingest, archive",
	Long: `The run sub-command executes one complete pipeline pass. The day's screen
extract is downloaded, its rows are recorded in the highs database, and the
extract is retired to the archive directory. Progress is reported to
healthchecks.io when a monitor is configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPipeline(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("pipeline run failed")
		}
	},
}

type runReport struct {
	RunID           uuid.UUID
	StartTime       time.Time
	EndTime         time.Time
	ObservationDate string
	ExtractPath     string
	ArchivePath     string
	NumRows         int
	NumInserted     int
}

// runPipeline executes a full pipeline pass under a fresh run id, reporting
// start, success and failure to the configured health monitor.
func runPipeline(ctx context.Context) error {
	runID := uuid.New()

	logger := log.With().Str("RunID", runID.String()).Logger()
	ctx = logger.WithContext(ctx)

	if err := healthcheck.PingStart(runID); err != nil {
		logger.Warn().Err(err).Msg("healthcheck start ping failed")
	}

	report, err := executePipeline(ctx, runID)
	if err != nil {
		if pingErr := healthcheck.PingFail(runID); pingErr != nil {
			logger.Warn().Err(pingErr).Msg("healthcheck fail ping failed")
		}
		return err
	}

	if err := healthcheck.PingSuccess(runID); err != nil {
		logger.Warn().Err(err).Msg("healthcheck success ping failed")
	}

	printRunReport(report)

	return nil
}

func executePipeline(ctx context.Context, runID uuid.UUID) (*runReport, error) {
	logger := log.Ctx(ctx)
	report := &runReport{RunID: runID, StartTime: time.Now()}

	extractPath, err := screener.Download(ctx)
	if err != nil {
		return nil, err
	}
	report.ExtractPath = extractPath

	date, err := screener.ParseExtractDate(extractPath)
	if err != nil {
		return nil, err
	}
	report.ObservationDate = date.Format(highs.DateLayout)

	extract, err := highs.ParseExtract(extractPath)
	if err != nil {
		return nil, err
	}
	report.NumRows = len(extract.Rows)

	store, err := highs.Open(ctx, viper.GetString("db.path"))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing store")
		}
	}()

	inserted, err := store.Ingest(ctx, extract, date)
	if err != nil {
		return nil, err
	}
	report.NumInserted = inserted

	// archive what the store actually recorded for the day
	stored, err := store.RowsForDate(ctx, report.ObservationDate)
	if err != nil {
		return nil, err
	}

	archivedPath, err := archive.Archive(extractPath, date, stored)
	if err != nil {
		return nil, err
	}
	report.ArchivePath = archivedPath

	report.EndTime = time.Now()

	return report, nil
}

func printRunReport(report *runReport) {
	var sb strings.Builder

	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}

	fmt.Fprintf(&sb,
		"%s\n\nRun ID: %s\nObservation Date: %s\nExtract Rows: %s\nRows Recorded: %s\nArchived To: %s\nElapsed: %s\n",
		lipgloss.NewStyle().Bold(true).Render("PIPELINE RUN COMPLETE"),
		keyword(report.RunID.String()),
		keyword(report.ObservationDate),
		keyword(fmt.Sprintf("%d", report.NumRows)),
		keyword(fmt.Sprintf("%d", report.NumInserted)),
		keyword(report.ArchivePath),
		keyword(report.EndTime.Sub(report.StartTime).Round(time.Millisecond).String()),
	)

	fmt.Println(
		lipgloss.NewStyle().
			Width(72).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Render(sb.String()),
	)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
