package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/internal/config"
	"github.com/akmonengine/motor/internal/loop"
	"github.com/akmonengine/motor/internal/telemetry"
)

// Publisher receives the controller state and events, the telemetry hub in practice
type Publisher interface {
	PublishState(state motor.State)
	PublishEvent(event motor.Event)
}

// attach publishes the state every few ticks and every controller event
func attach(scene *Scene, l *loop.Loop, publisher Publisher, every int) {
	if publisher == nil {
		return
	}
	every = max(1, every)

	tick := l.Tick
	l.Tick = func(dt float64) {
		tick(dt)
		if l.Ticks()%uint64(every) == 0 {
			publisher.PublishState(scene.Controller.State())
		}
	}

	for _, kind := range []motor.EventType{
		motor.GROUND_ENTER,
		motor.GROUND_EXIT,
		motor.JUMP,
		motor.STRAFE_CHANGED,
		motor.CAMERA_MODE_CHANGED,
		motor.ROTATION_MODE_CHANGED,
	} {
		scene.Controller.Subscribe(kind, publisher.PublishEvent)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// serveTelemetry starts the hub when enabled and wires it to the scene and loop.
// Commands from clients are posted onto l.
func serveTelemetry(cfg *config.Config, scene *Scene, l *loop.Loop, logger *slog.Logger) (io.Closer, error) {
	if !cfg.Telemetry.Enabled {
		return nopCloser{}, nil
	}

	applier := telemetry.LoopApplier{
		Loop:         l,
		Options:      scene.Controller,
		SetFrameRate: l.SetFrameRate,
		Logger:       logger,
	}
	srv, err := startTelemetry(cfg.Telemetry, applier, logger)
	if err != nil {
		return nil, err
	}
	attach(scene, l, srv.hub, cfg.Telemetry.Every)

	return srv, nil
}

// telemetryServer serves the hub until Close
type telemetryServer struct {
	hub    *telemetry.Hub
	server *http.Server
}

func startTelemetry(cfg config.TelemetryConfig, applier telemetry.Applier, logger *slog.Logger) (*telemetryServer, error) {
	hub := telemetry.NewHub(applier, logger.With("component", "telemetry"))

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, hub.Handle)

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("start telemetry: %w", err)
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("telemetry server stopped", "error", err)
		}
	}()
	logger.Info("telemetry listening", "addr", "ws://"+listener.Addr().String()+cfg.Path)

	return &telemetryServer{hub: hub, server: server}, nil
}

func (t *telemetryServer) Close() error {
	t.hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return t.server.Shutdown(ctx)
}
