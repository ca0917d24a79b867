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
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/gosimple/slug"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/healthcheck"
	"github.com/high-watch/hwdata/highs"
)

type settings struct {
	DB struct {
		Path string `toml:"path"`
	} `toml:"db"`
	Download struct {
		Dir string `toml:"dir"`
	} `toml:"download"`
	Archive struct {
		Dir     string `toml:"dir"`
		Parquet bool   `toml:"parquet"`
	} `toml:"archive"`
	Screener struct {
		URL      string `toml:"url"`
		Username string `toml:"username"`
		Password string `toml:"password"`
	} `toml:"screener"`
	Schedule struct {
		Cron string `toml:"cron"`
	} `toml:"schedule"`
	Server struct {
		Address string `toml:"address"`
	} `toml:"server"`
	Healthcheck struct {
		APIKey string `toml:"apikey"`
		UUID   string `toml:"uuid"`
	} `toml:"healthcheck"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration, create the database and write the config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var (
			cfg       settings
			monitored bool
			confirmed bool
		)

		cfg.DB.Path = viper.GetString("db.path")
		cfg.Download.Dir = viper.GetString("download.dir")
		cfg.Archive.Dir = viper.GetString("archive.dir")
		cfg.Archive.Parquet = viper.GetBool("archive.parquet")
		cfg.Screener.URL = viper.GetString("screener.url")
		cfg.Screener.Username = viper.GetString("screener.username")
		cfg.Screener.Password = viper.GetString("screener.password")
		cfg.Schedule.Cron = viper.GetString("schedule.cron")
		cfg.Server.Address = viper.GetString("server.address")
		cfg.Healthcheck.APIKey = viper.GetString("healthcheck.apikey")
		cfg.Healthcheck.UUID = viper.GetString("healthcheck.uuid")

		form := huh.NewForm(
			// where data lives
			huh.NewGroup(
				huh.NewInput().
					Title("Where should the highs database be stored?").
					Value(&cfg.DB.Path).
					Validate(func(path string) error {
						if strings.TrimSpace(path) == "" {
							return fmt.Errorf("a database path is required")
						}
						return nil
					}),

				huh.NewInput().
					Title("Directory for downloaded screen extracts:").
					Value(&cfg.Download.Dir),

				huh.NewInput().
					Title("Directory for archived extracts:").
					Value(&cfg.Archive.Dir),
			),

			// details of the screen to track
			huh.NewGroup(
				huh.NewInput().
					Title("URL of the 52-week-high screen:").
					Value(&cfg.Screener.URL).
					Validate(func(url string) error {
						if !strings.HasPrefix(url, "https://") {
							return fmt.Errorf("screen URL must start with https://")
						}
						return nil
					}),

				huh.NewInput().
					Title("Screener username (leave blank for anonymous access):").
					Value(&cfg.Screener.Username),

				huh.NewInput().
					Title("Screener password:").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.Screener.Password),
			),

			// scheduling and monitoring
			huh.NewGroup(
				huh.NewInput().
					Title("Cron schedule for the daily pipeline:").
					Value(&cfg.Schedule.Cron).
					Validate(func(spec string) error {
						_, err := cron.ParseStandard(spec)
						return err
					}),

				huh.NewInput().
					Title("healthchecks.io API key (leave blank to skip monitoring):").
					Value(&cfg.Healthcheck.APIKey),

				huh.NewConfirm().
					Title("Should a healthcheck.io monitor be created for the pipeline?").
					Value(&monitored),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		// Print settings summary
		{
			var sb strings.Builder
			keyword := func(s string) string {
				return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
			}

			isMonitored := "no"
			if monitored {
				isMonitored = "yes"
			}

			fmt.Fprintf(&sb,
				"%s\n\nDatabase: %s\nDownloads: %s\nArchive: %s\nScreen: %s\nSchedule: %s\nMonitored: %s\n",
				lipgloss.NewStyle().Bold(true).Render("HWDATA SETTINGS"),
				keyword(cfg.DB.Path),
				keyword(cfg.Download.Dir),
				keyword(cfg.Archive.Dir),
				keyword(cfg.Screener.URL),
				keyword(cfg.Schedule.Cron),
				keyword(isMonitored),
			)

			fmt.Println(
				lipgloss.NewStyle().
					Width(60).
					BorderStyle(lipgloss.RoundedBorder()).
					BorderForeground(lipgloss.Color("63")).
					Padding(1, 2).
					Render(sb.String()),
			)
		}

		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Save settings?").
					Value(&confirmed),
			),
		)

		err = confirmForm.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create wizard")
		}

		if !confirmed {
			log.Info().Msg("Not saving settings")
			return
		}

		viper.Set("healthcheck.apikey", cfg.Healthcheck.APIKey)

		switch {
		case monitored:
			// a monitor from an earlier init carries that init's cron
			// schedule; replace it rather than keep the stale one
			if cfg.Healthcheck.UUID != "" {
				if err := healthcheck.Delete(cfg.Healthcheck.UUID); err != nil {
					log.Warn().Err(err).Str("CheckID", cfg.Healthcheck.UUID).Msg("could not delete previous healthcheck")
				}
				cfg.Healthcheck.UUID = ""
			}

			checkID, err := healthcheck.Create(
				"hwdata daily screen",
				slug.Make("hwdata daily screen"),
				[]string{"hwdata"},
				cfg.Schedule.Cron,
			)
			if err != nil {
				log.Fatal().Err(err).Msg("creating healthcheck failed")
			}
			cfg.Healthcheck.UUID = checkID
		case cfg.Healthcheck.UUID != "":
			// monitoring was turned off; retire the corresponding check
			if err := healthcheck.Delete(cfg.Healthcheck.UUID); err != nil {
				log.Warn().Err(err).Str("CheckID", cfg.Healthcheck.UUID).Msg("could not delete healthcheck")
			}
			cfg.Healthcheck.UUID = ""
		}

		log.Info().Msg("creating database tables")

		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0755); err != nil {
			log.Fatal().Err(err).Msg("could not create database directory")
		}

		// opening the store runs any pending migrations
		store, err := highs.Open(ctx, cfg.DB.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating database")
		}
		if err := store.Close(); err != nil {
			log.Fatal().Err(err).Msg("error closing database")
		}

		log.Info().Msg("database tables created")

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".hwdata.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("hwdata has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// initCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// initCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}
