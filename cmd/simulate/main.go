// cmd/simulate/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-physics2d/pkg/config"
	"github.com/opd-ai/go-physics2d/pkg/engine"
	"github.com/opd-ai/go-physics2d/pkg/health"
	"github.com/opd-ai/go-physics2d/pkg/logging"
	"github.com/opd-ai/go-physics2d/pkg/metrics"
	"github.com/opd-ai/go-physics2d/pkg/physics"
	"github.com/opd-ai/go-physics2d/pkg/render"
)

func main() {
	configPath := flag.String("config", "scene.yaml", "Path to configuration file (.yaml, .yml or .json)")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	frames := flag.Int("frames", 600, "Number of fixed steps to simulate")
	renderFrames := flag.Bool("render", false, "Print an ASCII view of every frame")
	width := flag.Int("width", 80, "ASCII view width in characters")
	height := flag.Int("height", 24, "ASCII view height in characters")
	scale := flag.Float64("scale", 1, "World units per character")
	realtime := flag.Bool("realtime", false, "Sleep one time step between frames")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics, /health and /ready on this address")
	frameBudget := flag.Duration("frame-budget", 5*time.Millisecond, "Readiness fails when a frame takes longer")
	logLevel := flag.String("log-level", "", "Log level, overriding "+logging.LevelEnvVar)
	runID := flag.String("run-id", "", "Run ID attached to every log line")
	flag.Parse()

	logger := logging.NewLogger()
	if *logLevel != "" {
		logger = logging.NewLoggerWithWriter(os.Stderr, logging.ParseLevel(*logLevel))
	}
	ctx := logging.WithRunID(context.Background(), *runID)

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	monitor := health.NewSimulationMonitor()
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRunID(logging.GetRunID(ctx)),
	}

	view := viewOptions{
		ascii:  *renderFrames,
		width:  *width,
		height: *height,
		scale:  *scale,
	}
	if b := cfg.Scene.Bounds; b != nil {
		view.center = b.Center
	}
	renderer := selectRenderer(ctx, logger, view)
	if renderer != nil {
		opts = append(opts, engine.WithDebugDrawer(renderer))
	}

	var drawn drawTotals
	opts = append(opts, engine.WithFrameHook(func(s *engine.Scene) {
		monitor.Record(s.CurrentFrame, s.Finite(), s.LastFrame().Duration)
		if renderer != nil {
			if err := drawFrame(s, renderer, os.Stdout, &drawn); err != nil {
				logger.Warn(ctx, "Failed to present frame", "error", err.Error())
			}
		}
		if *realtime {
			time.Sleep(time.Duration(cfg.Physics.FixedTimeStep * float64(time.Second)))
		}
	}))

	var server *http.Server
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, engine.WithMetrics(metrics.NewPhysicsMetrics(reg)))
		server = startServer(ctx, logger, *metricsAddr, reg, monitor, *frameBudget)
	}

	scene, err := engine.NewScene(cfg, opts...)
	if err != nil {
		logger.Error(ctx, "Failed to build scene", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := scene.Run(runCtx, *frames)
	logSummary(ctx, logger, scene, drawn)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Metrics server shutdown failed", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error(ctx, "Simulation failed", runErr)
		os.Exit(1)
	}
	if monitor.Diverged() {
		logger.Error(ctx, "Simulation diverged", nil, "frame", monitor.Frames())
		os.Exit(2)
	}
}

// loadConfig reads path, falling back to the default scene when the file
// does not exist.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func startServer(ctx context.Context, logger *logging.Logger, addr string, reg *prometheus.Registry, monitor *health.SimulationMonitor, budget time.Duration) *http.Server {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(monitor))
	checker.AddCheck(health.NewFrameBudgetHealthCheck(monitor, budget))
	checker.AddCheck(health.NewMemoryHealthCheck(500, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", checker.LivenessHandler)
	mux.HandleFunc("/ready", checker.ReadinessHandler)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting metrics server", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Metrics server failed", err)
		}
	}()
	return server
}

// viewOptions describes the ASCII view requested on the command line.
type viewOptions struct {
	ascii         bool
	width, height int
	scale         float64
	center        physics.Vector2D
}

// drawTotals accumulates debug geometry counted by a NullRenderer.
type drawTotals struct {
	lines  int
	points int
}

// selectRenderer returns the debug sink for the run: an ASCII view when
// one was requested, a counting renderer when debug logging is enabled,
// and nil otherwise.
func selectRenderer(ctx context.Context, logger *logging.Logger, view viewOptions) render.Renderer {
	if view.ascii {
		terminal := render.NewTerminalRenderer(view.width, view.height, view.scale)
		terminal.ClearScreen = true
		terminal.SetCenter(view.center)
		return terminal
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		return render.NewNullRenderer(logger)
	}
	return nil
}

// drawFrame draws every collider of s, presents the frame to w and
// clears the renderer. Counts from a NullRenderer are added to drawn.
func drawFrame(s *engine.Scene, r render.Renderer, w io.Writer, drawn *drawTotals) error {
	s.Physics.DebugDraw(s.Registry)
	if counter, ok := r.(*render.NullRenderer); ok {
		lines, points := counter.Counts()
		drawn.lines += lines
		drawn.points += points
	}
	err := r.Present(w)
	r.Clear()
	return err
}

func logSummary(ctx context.Context, logger *logging.Logger, scene *engine.Scene, drawn drawTotals) {
	totals := scene.Totals()
	logger.Info(ctx, "Simulation summary",
		"frames", totals.Frames,
		"simulated_seconds", scene.ElapsedTime,
		"pairs_tested", totals.PairsTested,
		"manifolds", totals.Manifolds,
		"contacts", totals.Contacts,
		"physics_time", totals.Duration.String(),
	)
	if drawn.lines > 0 || drawn.points > 0 {
		logger.Debug(ctx, "Debug geometry drawn",
			"lines", drawn.lines,
			"points", drawn.points,
		)
	}

	for _, body := range scene.Config.Scene.Bodies {
		e, ok := scene.Body(body.Name)
		if !ok {
			continue
		}
		pos, ok := scene.Registry.Position(e)
		if !ok {
			continue
		}
		vel := physics.Velocity{}
		if v, ok := scene.Registry.Velocity(e); ok {
			vel = *v
		}
		logger.Info(ctx, "Body state",
			"name", body.Name,
			"x", pos.Point.X,
			"y", pos.Point.Y,
			"rotation", pos.Rotation,
			"vx", vel.Linear.X,
			"vy", vel.Linear.Y,
			"angular", vel.Angular,
		)
	}
}
