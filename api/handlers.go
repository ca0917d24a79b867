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
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/high-watch/hwdata/highs"
)

// Handlers serves store queries over HTTP.
type Handlers struct {
	store *highs.Store
}

func NewHandlers(store *highs.Store) *Handlers {
	return &Handlers{store: store}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Dates lists every observation date in the store, oldest first.
func (h *Handlers) Dates(c *gin.Context) {
	dates, err := h.store.DistinctDates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dates})
}

// Snapshots returns stored rows for a single date (?date=) or the first
// appearance of each company over a range (?from=&to=).
func (h *Handlers) Snapshots(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		if !validDate(date) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
			return
		}

		rows, err := h.store.RowsForDate(c.Request.Context(), date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either date or from and to query parameters are required"})
		return
	}
	if !validDate(from) || !validDate(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be formatted YYYY-MM-DD"})
		return
	}

	rows, err := h.store.RowsForDateRange(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// Summary returns per-company momentum summaries filtered by the min_hits and
// min_gain thresholds.
func (h *Handlers) Summary(c *gin.Context) {
	asOf, ok := h.asOfParam(c)
	if !ok {
		return
	}

	minHits, err := strconv.Atoi(c.DefaultQuery("min_hits", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_hits must be an integer"})
		return
	}

	minGain, err := strconv.ParseFloat(c.DefaultQuery("min_gain", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_gain must be a number"})
		return
	}

	summaries, err := h.store.Summarize(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filtered := highs.FilterThresholds(summaries, minHits, minGain)

	c.JSON(http.StatusOK, gin.H{
		"as_of": asOf.Format(highs.DateLayout),
		"data":  filtered,
	})
}

// IndustrySummary groups the momentum summaries by industry, ranked by gain
// within each group.
func (h *Handlers) IndustrySummary(c *gin.Context) {
	asOf, ok := h.asOfParam(c)
	if !ok {
		return
	}

	summaries, err := h.store.Summarize(c.Request.Context(), asOf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	groups := highs.GroupSummaries(summaries,
		func(s *highs.CompanySummary) string {
			if s.Industry == "" {
				return "Unclassified"
			}
			return s.Industry
		},
		func(s *highs.CompanySummary) highs.Real { return s.PercentGain })

	c.JSON(http.StatusOK, gin.H{
		"as_of": asOf.Format(highs.DateLayout),
		"data":  groups,
	})
}

// History returns every stored row in a date range, duplicates included.
func (h *Handlers) History(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}
	if !validDate(from) || !validDate(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be formatted YYYY-MM-DD"})
		return
	}

	rows, err := h.store.History(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *Handlers) asOfParam(c *gin.Context) (time.Time, bool) {
	param := c.Query("as_of")
	if param == "" {
		return highs.ObservationDate(), true
	}

	asOf, err := time.Parse(highs.DateLayout, param)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be formatted YYYY-MM-DD"})
		return time.Time{}, false
	}

	return asOf, true
}

func validDate(s string) bool {
	_, err := time.Parse(highs.DateLayout, s)
	return err == nil
}
