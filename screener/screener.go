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

// Package screener downloads the daily 52-week-high screen extract. The
// primary path drives a stealth browser through the site's CSV export; when
// the export is unavailable the screen's result table is scraped page by
// page into the same CSV shape.
package screener

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/high-watch/hwdata/browser"
	"github.com/high-watch/hwdata/highs"
)

const (
	loginURL       = "https://www.screener.in/login/"
	exportSelector = "a:has-text('Export'), button:has-text('Export')"

	// the screen shows 25 companies per page; stop paging well past any
	// plausible screen size
	maxScrapePages = 50
)

var (
	ErrLoginFailed = errors.New("screen login failed")
	ErrNoExport    = errors.New("screen export unavailable")
	ErrNoRows      = errors.New("screen returned no rows")
	ErrNotExtract  = errors.New("not a screen extract filename")
	ErrStatus      = errors.New("invalid HTTP response from screen page")
)

var extractRe = regexp.MustCompile(`^screener_(\d{4}-\d{2}-\d{2})\.csv$`)

// the site throttles aggressive clients; one request every couple of seconds
// stays well inside its limits
var navLimiter = rate.NewLimiter(rate.Every(2*time.Second), 1)

// ExtractPath returns where the extract for the given date is saved.
func ExtractPath(date time.Time) string {
	fn := fmt.Sprintf("screener_%s.csv", date.Format("2006-01-02"))
	return filepath.Join(viper.GetString("download.dir"), fn)
}

// ParseExtractDate recovers the observation date embedded in an extract
// filename.
func ParseExtractDate(fn string) (time.Time, error) {
	base := filepath.Base(fn)

	match := extractRe.FindStringSubmatch(base)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotExtract, base)
	}

	date, err := time.Parse("2006-01-02", match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotExtract, base)
	}

	return date, nil
}

// Download fetches today's screen extract and saves it in the download
// directory, returning the saved path.
func Download(ctx context.Context) (string, error) {
	date := highs.ObservationDate()
	outPath := ExtractPath(date)

	if err := os.MkdirAll(viper.GetString("download.dir"), 0755); err != nil {
		return "", err
	}

	fileData, err := downloadWithBrowser(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("browser export failed, falling back to page scrape")

		fileData, err = scrapeScreen(ctx)
		if err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(outPath, fileData, 0644); err != nil {
		return "", err
	}

	log.Info().Str("Path", outPath).Int("Bytes", len(fileData)).Msg("saved screen extract")

	return outPath, nil
}

// downloadWithBrowser authenticates with the screen website and downloads the
// CSV export, returning the downloaded bytes.
func downloadWithBrowser(ctx context.Context) ([]byte, error) {
	session, err := browser.Start(viper.GetBool("playwright.headless"))
	if err != nil {
		return nil, err
	}
	defer session.Close()

	page := session.Page

	if err := ensureLoggedIn(ctx, page); err != nil {
		return nil, err
	}

	screenURL := viper.GetString("screener.url")

	if err := navLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("URL", screenURL).Msg("loading screen page")

	if _, err := page.Goto(screenURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return nil, err
	}

	download, err := page.ExpectDownload(func() error {
		return page.Locator(exportSelector).First().Click()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoExport, err)
	}

	path, err := download.Path()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoExport, err)
	}

	log.Debug().Str("SuggestedFilename", download.SuggestedFilename()).Msg("export downloaded")

	return os.ReadFile(path)
}

// ensureLoggedIn signs in with configured credentials. Without credentials the
// screen is fetched anonymously, which works for public screens.
func ensureLoggedIn(ctx context.Context, page playwright.Page) error {
	username := viper.GetString("screener.username")
	password := viper.GetString("screener.password")

	if username == "" {
		log.Info().Msg("no screen credentials configured, continuing anonymously")
		return nil
	}

	if err := navLimiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(15000),
	}); err != nil {
		return err
	}

	// the login URL redirects home when a valid session cookie exists
	if !strings.Contains(page.URL(), "/login") {
		log.Info().Msg("user is already logged in")
		return nil
	}

	if err := page.Locator("#id_username").Fill(username); err != nil {
		return err
	}

	if err := page.Locator("#id_password").Fill(password); err != nil {
		return err
	}

	if err := page.Locator("form button[type=submit]").Click(); err != nil {
		return err
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return err
	}

	if strings.Contains(page.URL(), "/login") {
		return fmt.Errorf("%w: still on login page after submit", ErrLoginFailed)
	}

	log.Info().Str("Username", username).Msg("logged in")

	return nil
}

// scrapeScreen rebuilds the extract by walking the screen's paginated result
// table. Column layout follows whatever columns the screen is configured to
// display.
func scrapeScreen(ctx context.Context) ([]byte, error) {
	screenURL := viper.GetString("screener.url")
	client := resty.New().SetHeader("User-Agent", browserUserAgent())

	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)

	var header []string

	for pageNum := 1; pageNum <= maxScrapePages; pageNum++ {
		if err := navLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := client.R().
			SetContext(ctx).
			SetQueryParam("page", strconv.Itoa(pageNum)).
			Get(screenURL)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() >= 300 {
			return nil, fmt.Errorf("%w: status %d on page %d", ErrStatus, resp.StatusCode(), pageNum)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return nil, err
		}

		pageHeader, rows := parseResultsTable(doc)
		if len(rows) == 0 {
			break
		}

		if header == nil {
			header = pageHeader
			if err := csvWriter.Write(header); err != nil {
				return nil, err
			}
		}

		for _, row := range rows {
			if err := csvWriter.Write(row); err != nil {
				return nil, err
			}
		}

		log.Debug().Int("Page", pageNum).Int("Rows", len(rows)).Msg("scraped screen page")

		if !hasNextPage(doc, pageNum) {
			break
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, err
	}

	if header == nil {
		return nil, ErrNoRows
	}

	return buf.Bytes(), nil
}

// parseResultsTable extracts header and data rows from the screen's result
// table, dropping the serial number column the site prepends.
func parseResultsTable(doc *goquery.Document) ([]string, [][]string) {
	table := doc.Find("table.data-table").First()

	var header []string
	table.Find("thead th").Each(func(_ int, cell *goquery.Selection) {
		header = append(header, normalizeCell(cell.Text()))
	})

	var rows [][]string
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		// sub-header bands repeat the column names in th cells
		if row.Find("td").Length() == 0 {
			return
		}

		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeCell(cell.Text()))
		})

		if len(cells) != len(header) {
			log.Debug().Int("Cells", len(cells)).Int("Header", len(header)).Msg("skipping malformed table row")
			return
		}

		rows = append(rows, cells)
	})

	if len(header) > 0 && strings.EqualFold(header[0], "S.No.") {
		header = header[1:]
		for i := range rows {
			rows[i] = rows[i][1:]
		}
	}

	return header, rows
}

// hasNextPage reports whether the pagination links reference the page after
// the current one.
func hasNextPage(doc *goquery.Document, current int) bool {
	next := fmt.Sprintf("page=%d", current+1)

	found := false
	doc.Find("div.pagination a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if strings.Contains(href, next) {
			found = true
			return false
		}
		return true
	})

	return found
}

// normalizeCell collapses the whitespace runs server-rendered cells carry.
func normalizeCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func browserUserAgent() string {
	if ua := viper.GetString("playwright.user_agent"); ua != "" {
		return ua
	}
	return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
}
