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
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hwdata",
	Short: "hwdata tracks companies hitting their 52-week highs",
	Long: `hwdata is a command line utility for building and maintaining a history
of companies appearing on a 52-week-high stock screen. Each day the screen's
result set is downloaded, recorded, and retired to an archive; the accumulated
history drives momentum reports that surface companies which keep making new
highs.

A company that repeatedly prints new 52-week highs over several weeks is often
riding a durable earnings or re-rating trend. A single appearance means very
little. hwdata separates the two by remembering every appearance: how many
times a company hit the screen in the trailing 7, 30 and 60 days, and how far
its market capitalization has moved since the day it first showed up.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hwdata.toml)")
	rootCmd.PersistentFlags().String("db", "", "path to the highs database")
	if err := viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory with name ".hwdata" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".hwdata")
	}

	viper.SetDefault("db.path", filepath.Join(home, "hwdata.db"))
	viper.SetDefault("download.dir", filepath.Join(home, "hwdata", "downloads"))
	viper.SetDefault("archive.dir", filepath.Join(home, "hwdata", "archive"))
	viper.SetDefault("archive.parquet", true)
	viper.SetDefault("screener.url", "https://www.screener.in/screens/71064/52-week-high/")
	viper.SetDefault("playwright.headless", true)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("schedule.cron", "30 18 * * 1-5")
	viper.SetDefault("healthcheck.api_url", "https://healthchecks.io/api/v3/checks")
	viper.SetDefault("healthcheck.ping_url", "https://hc-ping.com")

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
