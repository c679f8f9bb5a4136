// Command dashboard builds the Central Park squirrel census dashboard from a
// CSV export, writes it as HTML, optionally publishes each block to Kafka,
// and serves it over HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/squirrel-census-etl/internal/adapter/csvsource"
	httpadapter "github.com/couchcryptid/squirrel-census-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/squirrel-census-etl/internal/adapter/kafka"
	"github.com/couchcryptid/squirrel-census-etl/internal/adapter/render"
	"github.com/couchcryptid/squirrel-census-etl/internal/config"
	"github.com/couchcryptid/squirrel-census-etl/internal/observability"
	"github.com/couchcryptid/squirrel-census-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	page := render.NewPage(render.Options{
		Title:  "Squirrels in Central Park",
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
	}, logger)

	sinks := []pipeline.Sink{page}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("publishing dashboard blocks", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	source := csvsource.NewFile(cfg.SightingsCSV, logger)
	p := pipeline.New(source, pipeline.Tee(sinks...), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, page, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	code := 0
	if err := build(ctx, p, page, cfg.DashboardOutput); err != nil {
		logger.Error("failed to build dashboard", "error", err)
		code = 1
	} else if srv != nil {
		logger.Info("dashboard ready", "addr", cfg.HTTPAddr)
		<-ctx.Done()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return code
}

func build(ctx context.Context, p *pipeline.Pipeline, page *render.Page, output string) error {
	if err := p.Run(ctx); err != nil {
		return err
	}
	if output == "" {
		return nil
	}
	return page.WriteFile(output)
}
