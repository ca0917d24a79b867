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
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Real is a nullable real number. Screen extracts leave many fundamentals
// blank and those blanks must stay unknown all the way to the database; a
// missing value is never coerced to zero.
type Real struct {
	Float64 float64
	Valid   bool
}

// NewReal returns a valid Real holding v.
func NewReal(v float64) Real {
	return Real{Float64: v, Valid: true}
}

// ParseReal converts a single extract cell to a Real. Thousands separators
// and a trailing percent sign are tolerated; empty cells and the markers
// screener.in uses for missing data parse as unknown rather than an error.
func ParseReal(field string) Real {
	v := strings.TrimSpace(field)
	switch v {
	case "", "-", "--", "NA", "N/A", "nan", "NaN":
		return Real{}
	}

	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSuffix(v, "%")

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Real{}
	}

	// ParseFloat accepts NaN and Inf spellings; neither survives a round trip
	// through a REAL column, so treat them as unknown up front.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Real{}
	}

	return Real{Float64: f, Valid: true}
}

// UnmarshalCSV implements the gocsv field interface. Unparseable cells
// become unknown values so a single bad cell never rejects a whole extract.
func (r *Real) UnmarshalCSV(field string) error {
	*r = ParseReal(field)
	return nil
}

// MarshalCSV implements the gocsv field interface.
func (r Real) MarshalCSV() (string, error) {
	if !r.Valid {
		return "", nil
	}

	return strconv.FormatFloat(r.Float64, 'f', -1, 64), nil
}

// Scan implements sql.Scanner; NULL columns scan as unknown.
func (r *Real) Scan(src interface{}) error {
	if src == nil {
		*r = Real{}
		return nil
	}

	switch v := src.(type) {
	case float64:
		*r = Real{Float64: v, Valid: true}
	case int64:
		*r = Real{Float64: float64(v), Valid: true}
	case []byte:
		*r = ParseReal(string(v))
	case string:
		*r = ParseReal(v)
	default:
		return fmt.Errorf("cannot scan %T into Real", src)
	}

	return nil
}

// Value implements driver.Valuer; unknown values store as NULL.
func (r Real) Value() (driver.Value, error) {
	if !r.Valid {
		return nil, nil
	}

	return r.Float64, nil
}

// MarshalJSON renders unknown values as null.
func (r Real) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatFloat(r.Float64, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts either a number or null.
func (r *Real) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*r = Real{}
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}

	*r = Real{Float64: f, Valid: true}
	return nil
}

func (r Real) String() string {
	if !r.Valid {
		return ""
	}

	return strconv.FormatFloat(r.Float64, 'f', 2, 64)
}
