// Command whiteboard starts the collaborative whiteboard backend: a
// single process hosting both the WebSocket room protocol and the
// administrative HTTP surface against one shared Registry (spec §4.K).
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/haal01/whiteboard/internal/fanout"
	"github.com/haal01/whiteboard/internal/httpapi"
	"github.com/haal01/whiteboard/internal/membership"
	"github.com/haal01/whiteboard/internal/metrics"
	"github.com/haal01/whiteboard/internal/ratelimit"
	"github.com/haal01/whiteboard/internal/registry"
	"github.com/haal01/whiteboard/internal/session"
	"github.com/haal01/whiteboard/internal/validate"
	"github.com/haal01/whiteboard/internal/wsserver"
)

func main() {
	fs := pflag.NewFlagSet("whiteboard", pflag.ContinueOnError)
	var (
		listenAddr        = fs.StringP("listen-addr", "l", ":8080", "HTTP+WebSocket listen address")
		logLevel          = fs.String("log-level", "info", "zerolog log level")
		clearCooldown     = fs.Duration("clear-cooldown", 1000*time.Millisecond, "minimum gap between accepted CLEAR_CANVAS events")
		maxEventsPerRoom  = fs.Int("max-events-per-room", 10000, "soft cap on stored events before a room is saturated")
		maxPointsPerEvent = fs.Int("max-points-per-event", 1000, "max coordinate pairs per DRAW_LINE/DRAW_PATH event")
		maxFrameBytes     = fs.Int64("max-event-size", 100*1024, "max inbound websocket frame size in bytes")
		rateLimit         = fs.Int("rate-limit", ratelimit.DefaultLimit, "max whiteboard events a session may submit per rate-limit-window")
		rateLimitWindow   = fs.Duration("rate-limit-window", ratelimit.DefaultWindow, "sliding window duration for the rate limiter")
		idleRoomTTL       = fs.Duration("idle-room-ttl", 0, "evict a room after this long with no accepted event (0 disables the reaper)")
		pingInterval      = fs.Duration("ping-interval", session.DefaultPingInterval, "heartbeat ping interval")
		pongTimeout       = fs.Duration("pong-timeout", session.DefaultPongTimeout, "heartbeat pong deadline")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid log level")
	}
	logger = logger.Level(lvl)

	reg := registry.New(registry.Config{
		MaxEventsPerRoom: *maxEventsPerRoom,
		ClearCooldown:    *clearCooldown,
	})
	table := membership.New()
	publisher := fanout.New(table)
	limiter := ratelimit.New(*rateLimit, *rateLimitWindow)
	metricsSet := metrics.New()
	validation := validate.Limits{MaxPointsPerEvent: *maxPointsPerEvent}

	wsHandler := &wsserver.Handler{
		Registry:      reg,
		Membership:    table,
		Publisher:     publisher,
		Limiter:       limiter,
		Metrics:       metricsSet,
		Validation:    validation,
		Logger:        logger,
		MaxFrameBytes: *maxFrameBytes,
		PingInterval:  *pingInterval,
		PongTimeout:   *pongTimeout,
	}
	apiHandler := &httpapi.Handler{
		Registry:   reg,
		Membership: table,
		Publisher:  publisher,
		Metrics:    metricsSet,
		Validation: validation,
		Logger:     logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ws", wsHandler.ServeWS)
	apiHandler.Register(router)

	srv := newHTTPServer(*listenAddr, router)
	reaper := registry.NewReaper(reg, *idleRoomTTL, 0, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		runHTTPServer(ctx, srv, logger)
	}()
	go func() {
		defer wg.Done()
		reaper.Run(ctx)
	}()

	logger.Info().Str("addr", *listenAddr).Msg("whiteboard server started")

	<-ctx.Done()
	logger.Warn().Msg("shutting down")
	wg.Wait()
}
