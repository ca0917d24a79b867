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
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DateLayout is the calendar-date format used everywhere in the store:
// observation dates, first-seen dates and query parameters.
const DateLayout = "2006-01-02"

// ObservationDate returns the current calendar date on the exchange clock.
func ObservationDate() time.Time {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Panic().Err(err).Msg("could not load timezone")
	}

	now := time.Now().In(ist)

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Snapshot is one company's recorded fundamentals on one observation date.
// Rows are immutable once inserted; ingestion only ever appends. FirstSeenDate
// and FirstMarketCap are computed at insert time and copied onto every
// subsequent row for the same company.
type Snapshot struct {
	ID              int64  `db:"id" json:"-" csv:"-"`
	Date            string `db:"date" json:"date" csv:"Date"`
	Name            string `db:"name" json:"name" csv:"Name"`
	BSECode         string `db:"bse_code" json:"bse_code" csv:"BSE Code"`
	NSECode         string `db:"nse_code" json:"nse_code" csv:"NSE Code"`
	Industry        string `db:"industry" json:"industry" csv:"Industry"`
	CurrentPrice    Real   `db:"current_price" json:"current_price" csv:"Current Price"`
	MarketCap       Real   `db:"market_cap" json:"market_cap" csv:"Market Capitalization"`
	Sales           Real   `db:"sales" json:"sales" csv:"Sales"`
	OperatingProfit Real   `db:"operating_profit" json:"operating_profit" csv:"Operating profit"`
	OPM             Real   `db:"opm" json:"opm" csv:"OPM"`
	OPMLastYear     Real   `db:"opm_last_year" json:"opm_last_year" csv:"OPM last year"`
	PE              Real   `db:"pe" json:"pe" csv:"Price to Earning"`
	PBV             Real   `db:"pbv" json:"pbv" csv:"Price to book value"`
	PEG             Real   `db:"peg" json:"peg" csv:"PEG Ratio"`
	ROA             Real   `db:"roa" json:"roa" csv:"Return on assets"`
	DebtToEquity    Real   `db:"debt_to_equity" json:"debt_to_equity" csv:"Debt to equity"`
	ROE             Real   `db:"roe" json:"roe" csv:"Return on equity"`
	WorkingCapital  Real   `db:"working_capital" json:"working_capital" csv:"Working capital"`
	OtherIncome     Real   `db:"other_income" json:"other_income" csv:"Other income"`
	DownFrom52wHigh Real   `db:"down_from_52w_high" json:"down_from_52w_high" csv:"Down from 52w high"`
	FirstSeenDate   string `db:"first_seen_date" json:"first_seen_date" csv:"First Seen Date"`
	FirstMarketCap  Real   `db:"first_market_cap" json:"first_market_cap" csv:"First Market Cap"`
}

func (snapshot *Snapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Name", snapshot.Name).Str("Date", snapshot.Date)
	if snapshot.MarketCap.Valid {
		e.Float64("MarketCap", snapshot.MarketCap.Float64)
	}
}

// CompanySummary is one company's latest snapshot together with the derived
// momentum metrics: trailing-window hit counts and the market-cap gain since
// the company was first seen.
type CompanySummary struct {
	Snapshot

	// PercentGain is unknown when the first-seen market cap is zero or
	// unknown; it is never substituted with zero or infinity.
	PercentGain Real `json:"percent_gain_since_first" csv:"% Gain Since First"`

	Hits7  int `json:"hits_7" csv:"Hits 7d"`
	Hits30 int `json:"hits_30" csv:"Hits 30d"`
	Hits60 int `json:"hits_60" csv:"Hits 60d"`
}

func (summary *CompanySummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Name", summary.Name).Str("LatestDate", summary.Date).
		Int("Hits30", summary.Hits30)
	if summary.PercentGain.Valid {
		e.Float64("PercentGain", summary.PercentGain.Float64)
	}
}
