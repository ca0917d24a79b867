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

// Package archive retires ingested screen extracts: the CSV moves to the
// archive directory, optionally gains a parquet rendition, and both upload to
// backblaze when credentials are configured.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/high-watch/hwdata/highs"
)

var ErrBucketNotFound = errors.New("bucket not found")

// snapshotRow is the parquet projection of a stored snapshot. Unknown numeric
// values stay null in the column data rather than collapsing to zero.
type snapshotRow struct {
	Date            string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Name            string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	BSECode         string   `parquet:"name=bse_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	NSECode         string   `parquet:"name=nse_code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Industry        string   `parquet:"name=industry, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CurrentPrice    *float64 `parquet:"name=current_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarketCap       *float64 `parquet:"name=market_cap, type=DOUBLE, repetitiontype=OPTIONAL"`
	Sales           *float64 `parquet:"name=sales, type=DOUBLE, repetitiontype=OPTIONAL"`
	OperatingProfit *float64 `parquet:"name=operating_profit, type=DOUBLE, repetitiontype=OPTIONAL"`
	OPM             *float64 `parquet:"name=opm, type=DOUBLE, repetitiontype=OPTIONAL"`
	OPMLastYear     *float64 `parquet:"name=opm_last_year, type=DOUBLE, repetitiontype=OPTIONAL"`
	PE              *float64 `parquet:"name=pe, type=DOUBLE, repetitiontype=OPTIONAL"`
	PBV             *float64 `parquet:"name=pbv, type=DOUBLE, repetitiontype=OPTIONAL"`
	PEG             *float64 `parquet:"name=peg, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROA             *float64 `parquet:"name=roa, type=DOUBLE, repetitiontype=OPTIONAL"`
	DebtToEquity    *float64 `parquet:"name=debt_to_equity, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROE             *float64 `parquet:"name=roe, type=DOUBLE, repetitiontype=OPTIONAL"`
	WorkingCapital  *float64 `parquet:"name=working_capital, type=DOUBLE, repetitiontype=OPTIONAL"`
	OtherIncome     *float64 `parquet:"name=other_income, type=DOUBLE, repetitiontype=OPTIONAL"`
	DownFrom52wHigh *float64 `parquet:"name=down_from_52w_high, type=DOUBLE, repetitiontype=OPTIONAL"`
	FirstSeenDate   string   `parquet:"name=first_seen_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	FirstMarketCap  *float64 `parquet:"name=first_market_cap, type=DOUBLE, repetitiontype=OPTIONAL"`
}

func fromSnapshot(snapshot *highs.Snapshot) *snapshotRow {
	return &snapshotRow{
		Date:            snapshot.Date,
		Name:            snapshot.Name,
		BSECode:         snapshot.BSECode,
		NSECode:         snapshot.NSECode,
		Industry:        snapshot.Industry,
		CurrentPrice:    realPtr(snapshot.CurrentPrice),
		MarketCap:       realPtr(snapshot.MarketCap),
		Sales:           realPtr(snapshot.Sales),
		OperatingProfit: realPtr(snapshot.OperatingProfit),
		OPM:             realPtr(snapshot.OPM),
		OPMLastYear:     realPtr(snapshot.OPMLastYear),
		PE:              realPtr(snapshot.PE),
		PBV:             realPtr(snapshot.PBV),
		PEG:             realPtr(snapshot.PEG),
		ROA:             realPtr(snapshot.ROA),
		DebtToEquity:    realPtr(snapshot.DebtToEquity),
		ROE:             realPtr(snapshot.ROE),
		WorkingCapital:  realPtr(snapshot.WorkingCapital),
		OtherIncome:     realPtr(snapshot.OtherIncome),
		DownFrom52wHigh: realPtr(snapshot.DownFrom52wHigh),
		FirstSeenDate:   snapshot.FirstSeenDate,
		FirstMarketCap:  realPtr(snapshot.FirstMarketCap),
	}
}

func realPtr(r highs.Real) *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Float64
	return &v
}

// Archive retires an ingested extract. It returns the archived CSV path.
func Archive(extractPath string, date time.Time, rows []*highs.Snapshot) (string, error) {
	archivedPath, err := MoveExtract(extractPath)
	if err != nil {
		return "", err
	}

	uploads := []string{archivedPath}

	if viper.GetBool("archive.parquet") {
		parquetPath := strings.TrimSuffix(archivedPath, filepath.Ext(archivedPath)) + ".parquet"
		if err := WriteParquet(rows, parquetPath); err != nil {
			return "", err
		}
		uploads = append(uploads, parquetPath)
	}

	bucketName := viper.GetString("backblaze.bucket")
	if viper.GetString("backblaze.application_id") == "" || bucketName == "" {
		log.Debug().Msg("backblaze not configured, keeping archive local only")
		return archivedPath, nil
	}

	dirname := date.Format("2006")
	for _, fn := range uploads {
		if err := Upload(fn, bucketName, dirname); err != nil {
			return "", err
		}
	}

	return archivedPath, nil
}

// MoveExtract relocates a file into the archive directory, falling back to
// copy and delete when the directories sit on different filesystems.
func MoveExtract(fn string) (string, error) {
	archiveDir := viper.GetString("archive.dir")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", err
	}

	dest := filepath.Join(archiveDir, filepath.Base(fn))

	err := os.Rename(fn, dest)
	if err == nil {
		log.Info().Str("Path", dest).Msg("archived extract")
		return dest, nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return "", err
	}

	if err := copyFile(fn, dest); err != nil {
		return "", err
	}
	if err := os.Remove(fn); err != nil {
		return "", err
	}

	log.Info().Str("Path", dest).Msg("archived extract")
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// WriteParquet stores the day's snapshots as a parquet file.
func WriteParquet(rows []*highs.Snapshot, fn string) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(snapshotRow), 4)
	if err != nil {
		log.Error().Err(err).Msg("parquet writer creation failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, row := range rows {
		if err := pw.Write(fromSnapshot(row)); err != nil {
			log.Error().Err(err).Str("Name", row.Name).Str("Date", row.Date).Msg("parquet write failed for row")
		}
	}

	if err := pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRows", len(rows)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}

// Upload saves a file to the configured backblaze bucket under dirname.
func Upload(fn, bucketName, dirname string) error {
	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		log.Error().Err(err).Str("BucketName", bucketName).Msg("lookup bucket failed")
		return err
	}
	if bucket == nil {
		log.Error().Str("BucketName", bucketName).Msg("bucket does not exist")
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucketName)
	}

	reader, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer reader.Close()

	outName := fmt.Sprintf("%s/%s", dirname, filepath.Base(fn))
	metadata := make(map[string]string)

	file, err := bucket.UploadFile(outName, metadata, reader)
	if err != nil {
		log.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	log.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return nil
}
