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
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Column names an extract must carry. Matching is case-sensitive after
// trimming incidental whitespace from the header row.
const (
	ColumnName      = "Name"
	ColumnMarketCap = "Market Capitalization"
)

// ErrSchemaMismatch reports an extract whose header is missing a required
// column. The whole extract is rejected and nothing is inserted; the caller
// may retry with a corrected file.
var ErrSchemaMismatch = errors.New("screen extract schema mismatch")

// Extract is one downloaded screen result: the trimmed header and one
// partially-populated snapshot per data row. Ingest fills in the observation
// date and the first-seen fields before anything is stored.
type Extract struct {
	Path    string
	Columns []string
	Rows    []*Snapshot
}

func init() {
	// Extract headers frequently carry incidental whitespace.
	gocsv.SetHeaderNormalizer(strings.TrimSpace)
}

// ParseExtract reads a screen extract from a CSV file.
func ParseExtract(path string) (*Extract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	extract, err := ParseExtractBytes(data)
	if err != nil {
		return nil, err
	}

	extract.Path = path
	return extract, nil
}

// ParseExtractBytes parses raw CSV content into an extract. Columns that do
// not map onto the snapshot schema are ignored; recognized columns with blank
// cells stay unknown. Header presence is recorded but not validated here --
// required-column enforcement happens at ingest time.
func ParseExtractBytes(data []byte) (*Extract, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read extract header: %w", err)
	}

	columns := make([]string, 0, len(header))
	for _, col := range header {
		columns = append(columns, strings.TrimSpace(col))
	}

	rows := make([]*Snapshot, 0)
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse extract: %w", err)
	}

	return &Extract{Columns: columns, Rows: rows}, nil
}

// HasColumn reports whether the extract header carries the named column.
func (extract *Extract) HasColumn(name string) bool {
	for _, col := range extract.Columns {
		if col == name {
			return true
		}
	}

	return false
}

// checkSchema verifies the required columns are present.
func (extract *Extract) checkSchema() error {
	for _, required := range []string{ColumnName, ColumnMarketCap} {
		if !extract.HasColumn(required) {
			return fmt.Errorf("%w: missing required column %q", ErrSchemaMismatch, required)
		}
	}

	return nil
}
