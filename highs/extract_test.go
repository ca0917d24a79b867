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
	"errors"
	"testing"
)

const sampleExtract = `Name,BSE Code,NSE Code,Industry,Current Price,Market Capitalization,Sales,OPM
Acme Industries,500001,ACME,Chemicals,120.50,"1,500.25",300,12.5%
Beta Mills,500002,BETA,Textiles,88,640,150,
Gamma Power,500003,,Power,55.25,--,90,8
`

func TestParseExtractBytes(t *testing.T) {
	extract, err := ParseExtractBytes([]byte(sampleExtract))
	if err != nil {
		t.Fatalf("ParseExtractBytes returned error: %v", err)
	}

	if len(extract.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(extract.Rows))
	}

	acme := extract.Rows[0]
	if acme.Name != "Acme Industries" {
		t.Errorf("Name = %q, want %q", acme.Name, "Acme Industries")
	}
	if acme.BSECode != "500001" {
		t.Errorf("BSECode = %q, want %q", acme.BSECode, "500001")
	}
	if !acme.MarketCap.Valid || acme.MarketCap.Float64 != 1500.25 {
		t.Errorf("MarketCap = %+v, want {1500.25 true}", acme.MarketCap)
	}
	if !acme.OPM.Valid || acme.OPM.Float64 != 12.5 {
		t.Errorf("OPM = %+v, want {12.5 true}", acme.OPM)
	}

	beta := extract.Rows[1]
	if beta.OPM.Valid {
		t.Errorf("blank OPM cell parsed as %+v, want unknown", beta.OPM)
	}

	gamma := extract.Rows[2]
	if gamma.MarketCap.Valid {
		t.Errorf("-- market cap parsed as %+v, want unknown", gamma.MarketCap)
	}
	if gamma.NSECode != "" {
		t.Errorf("NSECode = %q, want empty", gamma.NSECode)
	}
}

func TestParseExtractBytesTrimsHeader(t *testing.T) {
	data := []byte("  Name , Market Capitalization \nAcme,100\n")

	extract, err := ParseExtractBytes(data)
	if err != nil {
		t.Fatalf("ParseExtractBytes returned error: %v", err)
	}

	if !extract.HasColumn(ColumnName) {
		t.Errorf("HasColumn(%q) = false after header trim", ColumnName)
	}
	if !extract.HasColumn(ColumnMarketCap) {
		t.Errorf("HasColumn(%q) = false after header trim", ColumnMarketCap)
	}

	if len(extract.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(extract.Rows))
	}
	if extract.Rows[0].Name != "Acme" {
		t.Errorf("Name = %q, want %q", extract.Rows[0].Name, "Acme")
	}
	if !extract.Rows[0].MarketCap.Valid || extract.Rows[0].MarketCap.Float64 != 100 {
		t.Errorf("MarketCap = %+v, want {100 true}", extract.Rows[0].MarketCap)
	}
}

func TestParseExtractBytesIgnoresUnknownColumns(t *testing.T) {
	data := []byte("Name,Market Capitalization,Analyst Rating\nAcme,100,Buy\n")

	extract, err := ParseExtractBytes(data)
	if err != nil {
		t.Fatalf("ParseExtractBytes returned error: %v", err)
	}

	if !extract.HasColumn("Analyst Rating") {
		t.Error("unknown column missing from recorded header")
	}
	if len(extract.Rows) != 1 || extract.Rows[0].Name != "Acme" {
		t.Errorf("Rows = %+v, want a single Acme row", extract.Rows)
	}
}

func TestCheckSchema(t *testing.T) {
	good := &Extract{Columns: []string{ColumnName, "Industry", ColumnMarketCap}}
	if err := good.checkSchema(); err != nil {
		t.Errorf("checkSchema on complete header returned error: %v", err)
	}

	missing := &Extract{Columns: []string{ColumnName, "Industry"}}
	err := missing.checkSchema()
	if err == nil {
		t.Fatal("checkSchema did not flag a missing required column")
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("checkSchema error = %v, want ErrSchemaMismatch", err)
	}
}
