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

// Package api exposes the high-watch store over a small read-only JSON API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server wraps the gin router and its http server.
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer builds the router with all routes registered.
func NewServer(address string, handlers *Handlers) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	server := &Server{
		router: router,
		srv: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	server.setupRoutes(handlers)

	return server
}

func (s *Server) setupRoutes(handlers *Handlers) {
	s.router.GET("/healthz", handlers.Health)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/dates", handlers.Dates)
		v1.GET("/snapshots", handlers.Snapshots)
		v1.GET("/summary", handlers.Summary)
		v1.GET("/summary/industries", handlers.IndustrySummary)
		v1.GET("/history", handlers.History)
	}
}

// Run serves requests until the context is canceled, then drains in-flight
// connections before returning.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)

	go func() {
		log.Info().Str("Address", s.srv.Addr).Msg("api server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("Method", c.Request.Method).
			Str("Path", c.Request.URL.Path).
			Int("Status", c.Writer.Status()).
			Dur("Elapsed", time.Since(start)).
			Msg("handled request")
	}
}
