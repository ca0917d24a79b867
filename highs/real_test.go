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

import "testing"

func TestParseReal(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  float64
		valid bool
	}{
		{"plain number", "123.45", 123.45, true},
		{"integer", "42", 42, true},
		{"negative", "-7.5", -7.5, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"thousands separators", "1,234,567.89", 1234567.89, true},
		{"percent suffix", "42.5%", 42.5, true},
		{"surrounding whitespace", "  99.9  ", 99.9, true},
		{"empty cell", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"single dash", "-", 0, false},
		{"double dash", "--", 0, false},
		{"NA marker", "NA", 0, false},
		{"slash NA marker", "N/A", 0, false},
		{"nan marker", "nan", 0, false},
		{"NaN marker", "NaN", 0, false},
		{"uppercase NAN", "NAN", 0, false},
		{"infinity", "Inf", 0, false},
		{"negative infinity", "-Inf", 0, false},
		{"trailing garbage", "12abc", 0, false},
		{"words", "pending", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReal(tt.field)
			if got.Valid != tt.valid {
				t.Fatalf("ParseReal(%q).Valid = %v, want %v", tt.field, got.Valid, tt.valid)
			}
			if got.Valid && got.Float64 != tt.want {
				t.Errorf("ParseReal(%q) = %v, want %v", tt.field, got.Float64, tt.want)
			}
		})
	}
}

func TestRealScan(t *testing.T) {
	var r Real

	if err := r.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if r.Valid {
		t.Error("Scan(nil) produced a valid value, want unknown")
	}

	if err := r.Scan(float64(3.14)); err != nil {
		t.Fatalf("Scan(float64) returned error: %v", err)
	}
	if !r.Valid || r.Float64 != 3.14 {
		t.Errorf("Scan(float64) = %+v, want {3.14 true}", r)
	}

	if err := r.Scan(int64(7)); err != nil {
		t.Fatalf("Scan(int64) returned error: %v", err)
	}
	if !r.Valid || r.Float64 != 7 {
		t.Errorf("Scan(int64) = %+v, want {7 true}", r)
	}

	if err := r.Scan([]byte("12.5")); err != nil {
		t.Fatalf("Scan([]byte) returned error: %v", err)
	}
	if !r.Valid || r.Float64 != 12.5 {
		t.Errorf("Scan([]byte) = %+v, want {12.5 true}", r)
	}

	if err := r.Scan(true); err == nil {
		t.Error("Scan(bool) did not return an error")
	}
}

func TestRealValue(t *testing.T) {
	v, err := NewReal(2.5).Value()
	if err != nil {
		t.Fatalf("Value() returned error: %v", err)
	}
	if v != 2.5 {
		t.Errorf("Value() = %v, want 2.5", v)
	}

	v, err = (Real{}).Value()
	if err != nil {
		t.Fatalf("Value() on unknown returned error: %v", err)
	}
	if v != nil {
		t.Errorf("Value() on unknown = %v, want nil", v)
	}
}

func TestRealJSON(t *testing.T) {
	data, err := NewReal(10.5).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	if string(data) != "10.5" {
		t.Errorf("MarshalJSON = %s, want 10.5", data)
	}

	data, err = (Real{}).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON on unknown returned error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("MarshalJSON on unknown = %s, want null", data)
	}

	var r Real
	if err := r.UnmarshalJSON([]byte("null")); err != nil {
		t.Fatalf("UnmarshalJSON(null) returned error: %v", err)
	}
	if r.Valid {
		t.Error("UnmarshalJSON(null) produced a valid value, want unknown")
	}

	if err := r.UnmarshalJSON([]byte("99.5")); err != nil {
		t.Fatalf("UnmarshalJSON(99.5) returned error: %v", err)
	}
	if !r.Valid || r.Float64 != 99.5 {
		t.Errorf("UnmarshalJSON(99.5) = %+v, want {99.5 true}", r)
	}
}

func TestRealCSV(t *testing.T) {
	s, err := NewReal(1234.5).MarshalCSV()
	if err != nil {
		t.Fatalf("MarshalCSV returned error: %v", err)
	}
	if s != "1234.5" {
		t.Errorf("MarshalCSV = %q, want %q", s, "1234.5")
	}

	s, err = (Real{}).MarshalCSV()
	if err != nil {
		t.Fatalf("MarshalCSV on unknown returned error: %v", err)
	}
	if s != "" {
		t.Errorf("MarshalCSV on unknown = %q, want empty", s)
	}

	var r Real
	if err := r.UnmarshalCSV("1,000"); err != nil {
		t.Fatalf("UnmarshalCSV returned error: %v", err)
	}
	if !r.Valid || r.Float64 != 1000 {
		t.Errorf("UnmarshalCSV(1,000) = %+v, want {1000 true}", r)
	}

	if err := r.UnmarshalCSV("garbage"); err != nil {
		t.Fatalf("UnmarshalCSV on bad cell returned error: %v", err)
	}
	if r.Valid {
		t.Error("UnmarshalCSV on bad cell produced a valid value, want unknown")
	}
}

func TestRealString(t *testing.T) {
	if got := NewReal(3.14159).String(); got != "3.14" {
		t.Errorf("String() = %q, want %q", got, "3.14")
	}
	if got := (Real{}).String(); got != "" {
		t.Errorf("String() on unknown = %q, want empty", got)
	}
}
