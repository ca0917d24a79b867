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

// Package healthcheck reports pipeline liveness to healthchecks.io. Runs ping
// start, success and failure with a shared run id so overlapping executions
// stay distinguishable in the monitor's event log.
package healthcheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

var (
	ErrStatus      = errors.New("status code is invalid")
	ErrBadResponse = errors.New("malformed healthcheck response")
)

func apiBase() string { return viper.GetString("healthcheck.api_url") }

func pingBase() string { return viper.GetString("healthcheck.ping_url") }

type createReq struct {
	APIKey      string `json:"api_key"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
	Grace       int    `json:"grace"`
	Schedule    string `json:"schedule"`
	Slug        string `json:"slug"`
	Tags        string `json:"tags"`
	Timezone    string `json:"tz"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

// PingStart signals the beginning of a pipeline run.
func PingStart(runID uuid.UUID) error {
	return ping(runID, "/start")
}

// PingSuccess signals a completed pipeline run.
func PingSuccess(runID uuid.UUID) error {
	return ping(runID, "")
}

// PingFail signals an aborted pipeline run.
func PingFail(runID uuid.UUID) error {
	return ping(runID, "/fail")
}

func ping(runID uuid.UUID, suffix string) error {
	checkID := viper.GetString("healthcheck.uuid")
	if checkID == "" {
		log.Debug().Msg("healthcheck not configured, skipping ping")
		return nil
	}

	client := resty.New()
	resp, err := client.R().
		SetQueryParam("rid", runID.String()).
		Get(fmt.Sprintf("%s/%s%s", pingBase(), checkID, suffix))

	if err != nil {
		return err
	}

	if resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

// Status returns the monitor's current state ("up", "down", "grace", ...).
func Status() (string, error) {
	checkID := viper.GetString("healthcheck.uuid")

	client := resty.New()
	resp, err := client.R().
		SetHeader("X-Api-Key", viper.GetString("healthcheck.apikey")).
		Get(fmt.Sprintf("%s/%s", apiBase(), checkID))

	if err != nil {
		return "", err
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	status := gjson.GetBytes(resp.Body(), "status")
	if !status.Exists() {
		return "", fmt.Errorf("%w: missing status field", ErrBadResponse)
	}

	return status.String(), nil
}

// Create a new healthchecks.io check and return the id
func Create(name string, slug string, tags []string, schedule string) (string, error) {
	command := createReq{
		APIKey:   viper.GetString("healthcheck.apikey"),
		Name:     name,
		Slug:     slug,
		Tags:     strings.Join(tags, " "),
		Grace:    3600,
		Schedule: schedule,
		Timezone: "Asia/Kolkata",
	}

	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(apiBase() + "/")

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// Delete removes a health check entirely
func Delete(id string) error {
	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", viper.GetString("healthcheck.apikey")).
		SetResult(&result).
		Delete(fmt.Sprintf("%s/%s", apiBase(), id))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

// Pause monitoring of a health check
func Pause(id string) error {
	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", viper.GetString("healthcheck.apikey")).
		SetResult(&result).
		Post(fmt.Sprintf("%s/%s/pause", apiBase(), id))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

// Resume monitoring of a health check
func Resume(id string) error {
	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", viper.GetString("healthcheck.apikey")).
		SetResult(&result).
		Post(fmt.Sprintf("%s/%s/resume", apiBase(), id))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
