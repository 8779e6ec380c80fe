// Package app wires the touch pipeline, event sinks, and HTTP surface together.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/touchplate/touchplate/internal/calib"
	"github.com/touchplate/touchplate/internal/config"
	"github.com/touchplate/touchplate/internal/display"
	"github.com/touchplate/touchplate/internal/stream"
	"github.com/touchplate/touchplate/internal/touch"
	"github.com/touchplate/touchplate/internal/tsmap"
)

// EventSink consumes poll results. The stream server, MQTT publisher,
// and pointer bridge all implement it.
type EventSink interface {
	HandleEvent(res touch.PollResult) error
}

// App coordinates the poll loop, the coordinate mapper, and the sinks
// that fan touch events out.
type App struct {
	mu       sync.Mutex
	cfg      config.Config
	mapper   *tsmap.Mapper
	detector *touch.Detector
	stream   *stream.Server
	sinks    []EventSink
}

// New creates an application polling src, with calibration loaded from
// disk when a saved record exists.
func New(cfg config.Config, src touch.Source) (*App, error) {
	if src == nil {
		return nil, errors.New("touch source is required")
	}

	rot, err := display.ParseRotation(cfg.Rotation)
	if err != nil {
		return nil, err
	}
	screen := display.Screen{W: cfg.DisplayWidth, H: cfg.DisplayHeight, Rot: rot}
	mapper, err := tsmap.FromSurface(screen)
	if err != nil {
		return nil, err
	}

	params, ok, err := calib.Load(cfg.CalibPath)
	if err != nil {
		return nil, err
	}
	if ok {
		mapper.SetParams(params)
		log.Printf("calibration loaded from %s", cfg.CalibPath)
	} else {
		log.Printf("no saved calibration, using rotation defaults")
	}

	detector, err := touch.NewDetector(src, mapper, touch.Config{
		DebounceMillis:     uint32(cfg.DebounceMs),
		MinTouchPressure:   int16(cfg.MinTouchPressure),
		MaxReleasePressure: int16(cfg.MaxReleasePressure),
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		mapper:   mapper,
		detector: detector,
	}
	a.stream = stream.NewServer(mapper, a.applyCalibration, cfg.StreamSteady)
	a.sinks = []EventSink{a.stream}
	return a, nil
}

// AddSink registers an extra event sink. Must be called before Run.
func (a *App) AddSink(sink EventSink) {
	if sink == nil {
		return
	}
	a.sinks = append(a.sinks, sink)
}

// Stream returns the websocket event server.
func (a *App) Stream() *stream.Server {
	return a.stream
}

// Run polls the touch source at the configured interval and fans each
// result out to the sinks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(a.cfg.PollIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.pollOnce()
		}
	}
}

// pollOnce runs one detector poll and dispatches the result. Sink
// failures are logged, not fatal; one slow consumer must not stop the
// touch pipeline.
func (a *App) pollOnce() {
	a.mu.Lock()
	res := a.detector.Poll()
	a.mu.Unlock()

	for _, sink := range a.sinks {
		if err := sink.HandleEvent(res); err != nil {
			log.Printf("event sink: %v", err)
		}
	}
}

// applyCalibration commits solved parameters to the mapper and
// persists them. All mapper mutation funnels through here so it is
// serialized under the app lock against the poll loop's reads; the
// stream server and the HTTP handler both call it.
func (a *App) applyCalibration(p tsmap.Params) error {
	a.mu.Lock()
	a.mapper.SetParams(p)
	a.mu.Unlock()
	return a.saveCalibration(p)
}

// saveCalibration persists applied parameters to disk.
func (a *App) saveCalibration(p tsmap.Params) error {
	if err := calib.Save(a.cfg.CalibPath, p); err != nil {
		return err
	}
	log.Printf("calibration saved to %s", a.cfg.CalibPath)
	return nil
}
