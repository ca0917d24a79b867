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

// Package browser wraps the playwright lifecycle for screen downloads:
// a stealth chromium page with ad and tracker routes blocked and the
// headless marker stripped from the user agent.
package browser

import (
	"strings"

	"github.com/go-rod/stealth"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// domains that only ever serve ads, trackers or consent walls; blocking them
// speeds page loads considerably
var blockedHosts = []string{
	"googletagservices.com",
	"googlesyndication.com",
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"facebook.com",
	"facebook.net",
	"adsystem.com",
	"amazon-adsystem.com",
	"adnxs.com",
	"pubmatic.com",
	"rubiconproject.com",
	"taboola.com",
	"outbrain.com",
	"hotjar.com",
	"clarity.ms",
}

// Session is a running playwright browser with one stealth page.
type Session struct {
	Page    playwright.Page
	Context playwright.BrowserContext
	Browser playwright.Browser

	pw *playwright.Playwright
}

// Start launches chromium and prepares a stealth page with tracker blocking
// installed. The user agent comes from playwright.user_agent when set,
// otherwise from the browser itself with the Headless marker stripped.
func Start(headless bool) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}

	chromium, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		stopErr := pw.Stop()
		if stopErr != nil {
			log.Error().Err(stopErr).Msg("error stopping playwright after failed launch")
		}
		return nil, err
	}

	log.Info().Bool("Headless", headless).Str("BrowserVersion", chromium.Version()).Msg("started chromium")

	userAgent := viper.GetString("playwright.user_agent")
	if userAgent == "" {
		userAgent = detectUserAgent(chromium)
	}
	log.Debug().Str("UserAgent", userAgent).Msg("using user-agent")

	cleanup := func() {
		if err := chromium.Close(); err != nil {
			log.Error().Err(err).Msg("error closing chromium after failed start")
		}
		if err := pw.Stop(); err != nil {
			log.Error().Err(err).Msg("error stopping playwright after failed start")
		}
	}

	context, err := chromium.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:       playwright.String(userAgent),
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	page, err := stealthPage(context)
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := blockTrackers(page); err != nil {
		cleanup()
		return nil, err
	}

	return &Session{Page: page, Context: context, Browser: chromium, pw: pw}, nil
}

// Close shuts the browser down and stops the playwright driver.
func (session *Session) Close() {
	if err := session.Browser.Close(); err != nil {
		log.Error().Err(err).Msg("error closing browser")
	}

	if err := session.pw.Stop(); err != nil {
		log.Error().Err(err).Msg("error stopping playwright")
	}
}

// stealthPage opens a page with the stealth script installed so headless
// chromium is not trivially fingerprinted.
func stealthPage(context playwright.BrowserContext) (playwright.Page, error) {
	page, err := context.NewPage()
	if err != nil {
		return nil, err
	}

	if err := page.AddInitScript(playwright.Script{
		Content: playwright.String(stealth.JS),
	}); err != nil {
		return nil, err
	}

	return page, nil
}

// detectUserAgent asks the browser for its default user agent and removes the
// Headless marker.
func detectUserAgent(chromium playwright.Browser) string {
	context, err := chromium.NewContext()
	if err != nil {
		log.Error().Err(err).Msg("could not create context for user agent detection")
		return ""
	}
	defer context.Close()

	page, err := context.NewPage()
	if err != nil {
		log.Error().Err(err).Msg("could not create page for user agent detection")
		return ""
	}

	result, err := page.Evaluate("() => navigator.userAgent")
	if err != nil {
		log.Error().Err(err).Msg("could not read navigator.userAgent")
		return ""
	}

	userAgent, ok := result.(string)
	if !ok {
		return ""
	}

	return strings.ReplaceAll(userAgent, "Headless", "")
}

// blockTrackers aborts requests to ad and analytics hosts.
func blockTrackers(page playwright.Page) error {
	return page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		for _, host := range blockedHosts {
			if strings.Contains(url, host) {
				if err := route.Abort("failed"); err != nil {
					log.Error().Err(err).Msg("failed blocking route")
				}
				return
			}
		}

		if err := route.Continue(); err != nil {
			log.Error().Err(err).Msg("failed continuing route")
		}
	})
}
