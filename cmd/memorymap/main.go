package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/memory-map/internal/adapter/console"
	"github.com/couchcryptid/memory-map/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/memory-map/internal/adapter/kafka"
	"github.com/couchcryptid/memory-map/internal/adapter/mapbox"
	"github.com/couchcryptid/memory-map/internal/app"
	"github.com/couchcryptid/memory-map/internal/basemap"
	"github.com/couchcryptid/memory-map/internal/camera"
	"github.com/couchcryptid/memory-map/internal/config"
	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/mapengine"
	"github.com/couchcryptid/memory-map/internal/observability"
	"github.com/couchcryptid/memory-map/internal/pill"
	"github.com/couchcryptid/memory-map/internal/pipeline"
	"github.com/couchcryptid/memory-map/internal/source"
	"github.com/couchcryptid/memory-map/internal/store"
	"github.com/couchcryptid/memory-map/internal/view"
)

// viewportHeight is the headless engine's viewport, in pixels.
const viewportHeight = 800

const loadFailedNotice = "Could not load the memory map data. Please try again later."

// sessionState is the /state document.
type sessionState struct {
	App   app.State     `json:"app"`
	Views view.Snapshot `json:"views"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	httpClient := source.NewHTTPClient(cfg.SourceTimeout)
	if !cfg.SheetsConfigured() {
		logger.Info("sheets source not configured, starting with the mirror")
	}
	chain := source.NewChain(logger, metrics,
		source.NewSheets(cfg.SheetsBaseURL, cfg.SheetsID, cfg.SheetsRange, cfg.SheetsAPIKey, httpClient),
		source.NewMirror(cfg.MirrorURL, cfg.DataField, httpClient),
		source.NewFile(cfg.LocalDataPath, cfg.DataField),
	)

	records := store.New()
	avatars := domain.AvatarPath{Dir: cfg.AvatarDir, Ext: cfg.AvatarExt}
	p := pipeline.New(chain, pipeline.NewTransformer(avatars, geocoder, logger, metrics), records, logger, metrics)

	var sink app.EventSink = app.NopSink{}
	var telemetry *kafkaadapter.TelemetryWriter
	if cfg.TelemetryEnabled() {
		telemetry = kafkaadapter.NewTelemetryWriter(cfg.KafkaBrokers, cfg.KafkaTelemetryTopic, logger, metrics)
		sink = telemetry
		go func() {
			if err := telemetry.Run(ctx); err != nil {
				logger.Error("telemetry error", "error", err)
			}
		}()
		logger.Info("interaction telemetry enabled", "topic", cfg.KafkaTelemetryTopic)
	}

	printer := console.NewPrinter(os.Stdout, cfg.ConsoleVerbose)
	rt, err := newRuntime(cfg, records, printer, sink, logger, metrics)
	if err != nil {
		logger.Error("failed to build session", "error", err)
		os.Exit(1)
	}

	state := httpadapter.StateReaderFunc(func(ctx context.Context) (any, error) {
		if err := p.CheckReadiness(ctx); err != nil {
			return nil, err
		}
		var s sessionState
		err := rt.Do(ctx, func(a *app.App) {
			s = sessionState{App: a.Snapshot(), Views: printer.Memory().Snapshot()}
		})
		return s, err
	})
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, state, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, loadFailedNotice)
	} else {
		go func() {
			if err := rt.Run(ctx); err != nil {
				logger.Error("runtime error", "error", err)
			}
		}()

		var startErr error
		if err := rt.Do(ctx, func(a *app.App) { startErr = a.Start(cfg.InitialQuery) }); err == nil && startErr != nil {
			logger.Error("failed to start session", "error", startErr)
		}

		if cfg.ConsoleEnabled {
			go func() {
				if err := console.New(rt, os.Stdin, os.Stdout, logger).Run(ctx); err != nil && ctx.Err() == nil {
					logger.Error("console error", "error", err)
				}
				stop()
			}()
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if telemetry != nil {
		if err := telemetry.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newRuntime wires the map engine, views, camera, pill and basemaps into a
// session runtime.
func newRuntime(cfg *config.Config, records *store.Store, printer *console.Printer, sink app.EventSink, logger *slog.Logger, metrics *observability.Metrics) (*app.Runtime, error) {
	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))

	catalog, fellBack, err := basemap.NewCatalog(basemap.DefaultCatalog(), cfg.DefaultBasemap)
	if err != nil {
		return nil, err
	}
	if fellBack {
		logger.Warn("unknown default basemap, using first entry", "basemap", cfg.DefaultBasemap, "active", catalog.Active().ID)
	}

	engine := mapengine.NewHeadless(viewportHeight)
	views := view.NewSynchronizer(engine, printer, printer, printer, rng, logger, metrics)

	camOpts := camera.DefaultOptions()
	camOpts.Zoom = cfg.FlyToZoom
	camOpts.Speed = cfg.FlyToSpeed
	camOpts.OffsetRatio = cfg.PopupOffsetRatio
	camOpts.DegPerSec = cfg.RotationDegPerSec
	camOpts.FitBounds = cfg.FitBoundsEnabled
	cam := camera.New(engine, records, views, camOpts, logger, metrics)

	timing := pill.Timing{Dwell: cfg.PillDwell, Fade: cfg.PillFade, Hold: cfg.PillHold, Gap: cfg.PillGap}
	sched := pill.New(clock, records, printer, rng, timing, logger, metrics)

	a := app.New(app.Deps{
		Store:    records,
		Views:    views,
		Camera:   cam,
		Pill:     sched,
		Basemaps: catalog,
		Engine:   engine,
		Sink:     sink,
		Clock:    clock,
		Logger:   logger,
		Metrics:  metrics,
	})
	return app.NewRuntime(a, clock, cfg.FrameInterval, logger), nil
}
