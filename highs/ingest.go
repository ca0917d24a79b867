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
package highs

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const insertSnapshotSQL = `INSERT INTO highs (
	"date",
	"name",
	"bse_code",
	"nse_code",
	"industry",
	"current_price",
	"market_cap",
	"sales",
	"operating_profit",
	"opm",
	"opm_last_year",
	"pe",
	"pbv",
	"peg",
	"roa",
	"debt_to_equity",
	"roe",
	"working_capital",
	"other_income",
	"down_from_52w_high",
	"first_seen_date",
	"first_market_cap"
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Ingest appends every usable row of the extract as a snapshot dated
// observationDate and returns the number of rows inserted.
//
// The extract must carry the Name and Market Capitalization columns or the
// whole call fails with ErrSchemaMismatch and nothing is inserted. Rows with
// a blank name or an unparseable market cap are skipped individually. The
// batch commits as a unit: on any storage error no row from this call is
// visible. Duplicate (date, name) rows from re-ingesting the same extract
// accumulate; they are not rejected here.
func (store *Store) Ingest(ctx context.Context, extract *Extract, observationDate time.Time) (int, error) {
	if err := extract.checkSchema(); err != nil {
		return 0, err
	}

	obsDate := observationDate.Format(DateLayout)
	ingestLog := log.With().Str("ObservationDate", obsDate).Str("ExtractPath", extract.Path).Logger()

	tx, err := store.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err := tx.Rollback(); err != nil {
			if !errors.Is(err, sql.ErrTxDone) {
				ingestLog.Error().Err(err).Msg("error rolling back ingest tx")
			}
		}
	}()

	inserted := 0
	skipped := 0

	for _, row := range extract.Rows {
		row.Name = strings.TrimSpace(row.Name)
		if row.Name == "" {
			skipped++
			ingestLog.Debug().Msg("skipping row with empty company name")
			continue
		}

		if !row.MarketCap.Valid {
			skipped++
			ingestLog.Debug().Str("Name", row.Name).Msg("skipping row with unparseable market cap")
			continue
		}

		row.Date = obsDate

		firstSeen, firstCap, err := firstSeenInTx(ctx, tx, row.Name)
		if err != nil {
			return 0, err
		}

		if firstSeen == "" {
			// first sighting of this company ever
			row.FirstSeenDate = obsDate
			row.FirstMarketCap = row.MarketCap
		} else {
			row.FirstSeenDate = firstSeen
			row.FirstMarketCap = firstCap
		}

		if _, err := tx.ExecContext(ctx, insertSnapshotSQL,
			row.Date, row.Name, row.BSECode, row.NSECode, row.Industry,
			row.CurrentPrice, row.MarketCap, row.Sales, row.OperatingProfit,
			row.OPM, row.OPMLastYear, row.PE, row.PBV, row.PEG, row.ROA,
			row.DebtToEquity, row.ROE, row.WorkingCapital, row.OtherIncome,
			row.DownFrom52wHigh, row.FirstSeenDate, row.FirstMarketCap); err != nil {
			return 0, err
		}

		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	store.invalidateSummaries()

	ingestLog.Info().Int("Inserted", inserted).Int("Skipped", skipped).Msg("ingested screen extract")
	return inserted, nil
}

// firstSeenInTx looks up the earliest stored snapshot for a company and
// returns its date and the market cap recorded on that date. Rows inserted
// earlier in the same transaction count as prior history, so a company
// appearing twice in one extract keeps a single first-seen value. An empty
// date means the company has never been seen.
func firstSeenInTx(ctx context.Context, tx *sql.Tx, name string) (string, Real, error) {
	var (
		firstSeen string
		firstCap  Real
	)

	err := tx.QueryRowContext(ctx,
		"SELECT date, market_cap FROM highs WHERE name = ? ORDER BY date ASC, id ASC LIMIT 1",
		name).Scan(&firstSeen, &firstCap)
	if errors.Is(err, sql.ErrNoRows) {
		return "", Real{}, nil
	}
	if err != nil {
		return "", Real{}, err
	}

	return firstSeen, firstCap, nil
}
