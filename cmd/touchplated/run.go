package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/touchplate/touchplate/internal/app"
	"github.com/touchplate/touchplate/internal/config"
	"github.com/touchplate/touchplate/internal/evinput"
	"github.com/touchplate/touchplate/internal/mqtt"
	"github.com/touchplate/touchplate/internal/pointer"
	"github.com/touchplate/touchplate/internal/touch"
)

// run wires the application and blocks until shutdown.
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logStartup(cfg)

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	appInstance, err := app.New(cfg, src)
	if err != nil {
		return err
	}

	if cfg.MQTT.Enabled {
		pub := mqtt.NewPublisher(
			cfg.MQTT.Addr,
			cfg.MQTT.ClientID,
			cfg.MQTT.Topic,
			time.Duration(cfg.MQTT.TimeoutMs)*time.Millisecond,
			slog.Default(),
		)
		if err := pub.Connect(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Printf("mqtt close: %v", err)
			}
		}()
		appInstance.AddSink(pub)
		log.Printf("mqtt: publishing to %s at %s", cfg.MQTT.Topic, cfg.MQTT.Addr)
	}

	if cfg.Pointer.Enabled {
		inj, err := pointer.NewInjector()
		if err != nil {
			return fmt.Errorf("pointer injector: %w", err)
		}
		target := pointer.Rect{
			X: cfg.Pointer.X, Y: cfg.Pointer.Y,
			W: cfg.Pointer.W, H: cfg.Pointer.H,
		}
		bridge, err := pointer.NewBridge(inj, cfg.DisplayWidth, cfg.DisplayHeight, target)
		if err != nil {
			return fmt.Errorf("pointer bridge: %w", err)
		}
		appInstance.AddSink(bridge)
		log.Printf("pointer: bridging touches into %dx%d at (%d,%d)",
			target.W, target.H, target.X, target.Y)
	}

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := appInstance.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openSource opens the configured touch sample source.
func openSource(cfg config.Config) (touch.Source, func(), error) {
	switch cfg.Source {
	case "evdev":
		src, err := evinput.Open(cfg.DevicePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", cfg.DevicePath, err)
		}
		return src, func() {
			if err := src.Close(); err != nil {
				log.Printf("close source: %v", err)
			}
		}, nil
	case "spi":
		// The SPI driver talks to the controller directly and is only
		// wired up in firmware builds with a machine SPI bus.
		return nil, nil, errors.New("spi source is not available in the host daemon")
	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks and connection info.
func logStartup(cfg config.Config) {
	log.Printf("touchplated starting")
	log.Printf("display: %dx%d rotation %d", cfg.DisplayWidth, cfg.DisplayHeight, cfg.Rotation)
	log.Printf("source: %s (%s)", cfg.Source, cfg.DevicePath)
	log.Printf("poll: every %dms, debounce %dms", cfg.PollIntervalMs, cfg.DebounceMs)
	log.Printf("listening on %s", cfg.ListenAddr)
}
