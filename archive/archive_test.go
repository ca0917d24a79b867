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
package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/high-watch/hwdata/highs"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func TestMoveExtract(t *testing.T) {
	downloadDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")
	viper.Set("archive.dir", archiveDir)
	t.Cleanup(func() { viper.Set("archive.dir", "") })

	src := filepath.Join(downloadDir, "screener_2024-01-01.csv")
	if err := os.WriteFile(src, []byte("Name,Market Capitalization\nAcme,100\n"), 0644); err != nil {
		t.Fatalf("cannot write source file: %v", err)
	}

	dest, err := MoveExtract(src)
	if err != nil {
		t.Fatalf("MoveExtract returned error: %v", err)
	}

	want := filepath.Join(archiveDir, "screener_2024-01-01.csv")
	if dest != want {
		t.Errorf("MoveExtract = %q, want %q", dest, want)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file still exists after archiving")
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("cannot read archived file: %v", err)
	}
	if len(data) == 0 {
		t.Error("archived file is empty")
	}
}

func TestMoveExtractMissingSource(t *testing.T) {
	viper.Set("archive.dir", t.TempDir())
	t.Cleanup(func() { viper.Set("archive.dir", "") })

	if _, err := MoveExtract("/nonexistent/screener_2024-01-01.csv"); err == nil {
		t.Error("MoveExtract succeeded on a missing source file")
	}
}

func TestWriteParquet(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "screener_2024-01-01.parquet")

	rows := []*highs.Snapshot{
		{
			Date:           "2024-01-01",
			Name:           "Acme Industries",
			Industry:       "Chemicals",
			MarketCap:      highs.NewReal(1500.25),
			FirstSeenDate:  "2024-01-01",
			FirstMarketCap: highs.NewReal(1500.25),
		},
		{
			Date:          "2024-01-01",
			Name:          "Beta Mills",
			Industry:      "Textiles",
			MarketCap:     highs.NewReal(640),
			FirstSeenDate: "2023-11-20",
		},
	}

	if err := WriteParquet(rows, fn); err != nil {
		t.Fatalf("WriteParquet returned error: %v", err)
	}

	info, err := os.Stat(fn)
	if err != nil {
		t.Fatalf("parquet file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("parquet file is empty")
	}
}

func TestRealPtr(t *testing.T) {
	if got := realPtr(highs.Real{}); got != nil {
		t.Errorf("realPtr(unknown) = %v, want nil", *got)
	}

	got := realPtr(highs.NewReal(12.5))
	if got == nil || *got != 12.5 {
		t.Errorf("realPtr(12.5) = %v, want pointer to 12.5", got)
	}
}

func TestFromSnapshotKeepsNulls(t *testing.T) {
	snapshot := &highs.Snapshot{
		Date:      "2024-01-01",
		Name:      "Acme Industries",
		MarketCap: highs.NewReal(100),
	}

	row := fromSnapshot(snapshot)
	if row.MarketCap == nil || *row.MarketCap != 100 {
		t.Errorf("MarketCap = %v, want pointer to 100", row.MarketCap)
	}
	if row.Sales != nil {
		t.Errorf("Sales = %v, want nil for an unknown value", *row.Sales)
	}
	if row.FirstMarketCap != nil {
		t.Errorf("FirstMarketCap = %v, want nil for an unknown value", *row.FirstMarketCap)
	}
}
