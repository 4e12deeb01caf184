// Package run implements the "run" command.
package run

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/damionirving/gpumon-aws/pkg/cloudwatch"
	"github.com/damionirving/gpumon-aws/pkg/config"
	"github.com/damionirving/gpumon-aws/pkg/imds"
	"github.com/damionirving/gpumon-aws/pkg/log"
	pkgmetrics "github.com/damionirving/gpumon-aws/pkg/metrics"
	metricsstore "github.com/damionirving/gpumon-aws/pkg/metrics/store"
	"github.com/damionirving/gpumon-aws/pkg/monitor"
	pkgnvml "github.com/damionirving/gpumon-aws/pkg/nvml"
	"github.com/damionirving/gpumon-aws/pkg/server"
	"github.com/damionirving/gpumon-aws/pkg/sqlite"
	"github.com/damionirving/gpumon-aws/version"
)

func Command(cliContext *cli.Context) error {
	logLevel := cliContext.String("log-level")
	logFile := cliContext.String("log-file")
	zapLvl, err := log.ParseLogLevel(logLevel)
	if err != nil {
		return err
	}
	log.Logger = log.CreateLogger(zapLvl, logFile)

	log.Logger.Infow("starting gpumon", "version", version.Version)

	if zapLvl.Level() > zap.DebugLevel { // e.g., info, warn, error
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	cfg := config.DefaultConfig()
	cfg.SampleInterval = cliContext.Duration("sample-interval")
	cfg.StorageResolution = cliContext.Int("storage-resolution")
	cfg.Namespace = cliContext.String("namespace")
	cfg.RetentionPeriod = cliContext.Duration("retention-period")
	cfg.ListenAddress = cliContext.String("listen-address")
	cfg.DBFile = cliContext.String("db-file")
	cfg.DryRun = cliContext.Bool("dry-run")
	if err := cfg.Validate(); err != nil {
		return err
	}

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// identity dimensions are required for every published datum,
	// fail fast when the metadata service is unreachable
	cctx, ccancel := context.WithTimeout(rootCtx, time.Minute)
	identity, err := imds.FetchIdentity(cctx)
	ccancel()
	if err != nil {
		return err
	}
	log.Logger.Infow("fetched instance identity",
		"instanceID", identity.InstanceID,
		"imageID", identity.ImageID,
		"instanceType", identity.InstanceType,
		"region", identity.Region,
	)

	nvmlInstance, err := pkgnvml.New()
	if err != nil {
		return err
	}
	defer func() {
		if err := nvmlInstance.Shutdown(); err != nil {
			log.Logger.Warnw("failed to shutdown nvml", "error", err)
		}
	}()

	var publisher cloudwatch.Publisher
	if cfg.DryRun {
		log.Logger.Infow("dry run, not publishing to CloudWatch")
	} else {
		publisher, err = cloudwatch.New(identity.Region, cfg.Namespace)
		if err != nil {
			return err
		}
	}

	var store pkgmetrics.Store
	if cfg.DBFile != "" {
		dbRW, err := sqlite.Open(cfg.DBFile)
		if err != nil {
			return err
		}
		defer dbRW.Close()

		dbRO, err := sqlite.Open(cfg.DBFile, sqlite.WithReadOnly(true))
		if err != nil {
			return err
		}
		defer dbRO.Close()

		store, err = metricsstore.NewSQLiteStore(rootCtx, dbRW, dbRO, metricsstore.DefaultTableName)
		if err != nil {
			return err
		}
	}

	if cfg.ListenAddress != "" {
		promReg := prometheus.NewRegistry()
		if err := monitor.RegisterCollectors(promReg); err != nil {
			return err
		}
		server.New(cfg.ListenAddress, promReg).Start(rootCtx)
	}

	monitor.New(cfg, identity, nvmlInstance, publisher, store).Run(rootCtx)

	return nil
}
