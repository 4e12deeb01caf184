// Package server exposes the monitor's health and prometheus metrics
// over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/damionirving/gpumon-aws/pkg/log"
	"github.com/damionirving/gpumon-aws/version"
)

const (
	urlPathHealthz = "/healthz"
	urlPathMetrics = "/metrics"
)

type Healthz struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

var DefaultHealthz = Healthz{
	Status:  "ok",
	Version: version.Version,
}

type Server struct {
	srv *http.Server
}

// New creates the HTTP server serving /healthz and the prometheus
// /metrics of the given registry.
func New(listenAddress string, promReg *prometheus.Registry) *Server {
	if err := promReg.Register(collectors.NewGoCollector()); err != nil {
		log.Logger.Warnw("failed to register go collector", "error", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(urlPathHealthz, createHealthzHandler())

	promHandler := promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
	router.GET(urlPathMetrics, func(ctx *gin.Context) {
		promHandler.ServeHTTP(ctx.Writer, ctx.Request)
	})

	return &Server{
		srv: &http.Server{
			Addr:    listenAddress,
			Handler: router,
		},
	}
}

func createHealthzHandler() func(ctx *gin.Context) {
	return func(c *gin.Context) {
		if c.GetHeader("json-indent") == "true" {
			c.IndentedJSON(http.StatusOK, DefaultHealthz)
			return
		}
		c.JSON(http.StatusOK, DefaultHealthz)
	}
}

// Start serves until the context is canceled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		_ = s.srv.Shutdown(cctx)
	}()

	go func() {
		log.Logger.Infow("serving metrics", "address", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Errorw("metrics server failed", "error", err)
		}
	}()
}
