// cmd/rigid2d-sim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-rigid2d/pkg/config"
	"github.com/opd-ai/go-rigid2d/pkg/event"
	"github.com/opd-ai/go-rigid2d/pkg/health"
	"github.com/opd-ai/go-rigid2d/pkg/logging"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
	"github.com/opd-ai/go-rigid2d/pkg/render"
	"github.com/opd-ai/go-rigid2d/pkg/scene"
	"github.com/opd-ai/go-rigid2d/pkg/world"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), "")

	configPath := flag.String("config", "rigid2d.json", "Path to physics configuration file (JSON or YAML)")
	createDefault := flag.Bool("default", false, "Create default configuration file and exit")
	scenePath := flag.String("scene", "", "Scene file to load (JSON or YAML); empty runs a demo pile")
	ticks := flag.Int("ticks", 600, "Number of fixed ticks to run")
	snapshotPath := flag.String("snapshot", "", "Write a msgpack snapshot of the final body states to this file")
	seed := flag.Uint64("seed", 1, "Seed for the demo pile")
	draw := flag.Bool("draw", false, "Draw the colliders as ASCII after the run")
	maxSpeed := flag.Float64("max-speed", 1000, "Speed above which the run is reported unstable (0 disables)")
	viewScale := flag.Float64("view-scale", 0.5, "World units per character cell when drawing")
	flag.Parse()

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

	var sceneFile *scene.File
	if *scenePath != "" {
		f, err := scene.LoadFile(*scenePath)
		if err != nil {
			logger.Error(ctx, "Failed to load scene", err, "scene_path", *scenePath)
			os.Exit(1)
		}
		sceneFile = f
	} else {
		sceneFile = demoScene(*seed)
	}

	cfg, err := loadConfig(ctx, logger, *configPath, sceneFile)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}

	sim := world.NewSimulation(cfg.Physics, logger)
	sim.WithContext(ctx)
	bus := event.NewEventBus()
	// owner IDs and subscription IDs overlap, so each gets its own guard
	bus.SetGuard(event.NewGuard(event.DefaultGuardSettings(), logger))
	sim.SetGuard(event.NewGuard(event.DefaultGuardSettings(), logger))
	sim.SetEventBus(bus)

	enters := 0
	bus.Subscribe(event.CollisionEntered, func(e event.Event) { enters++ })
	bus.Subscribe(event.TriggerEntered, func(e event.Event) {
		ce := e.(*event.CollisionEvent)
		logger.Debug(ctx, "trigger entered", "self", uint64(ce.Info.Self), "other", uint64(ce.Info.Other))
	})

	sc := scene.NewScene(sim, logger)
	nodes, err := sc.Load(sceneFile)
	if err != nil {
		logger.Error(ctx, "Failed to build scene", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Scene loaded",
		"nodes", len(nodes),
		"ticks", *ticks,
		"fixed_timestep", cfg.Physics.FixedTimestep,
	)

	// Stop early on SIGINT/SIGTERM
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ran := 0
	for ran < *ticks {
		if runCtx.Err() != nil {
			logger.Info(ctx, "Interrupted", "ticks_run", ran)
			break
		}
		sc.Tick(cfg.Physics.FixedTimestep)
		ran++
	}

	stats := sim.Stats()
	logger.Info(ctx, "Simulation finished",
		"ticks_run", ran,
		"collision_enters", enters,
		"last_substeps", stats.Substeps,
		"last_contacts_processed", stats.ContactsProcessed,
		"last_step_time", stats.StepTime,
	)

	if *draw {
		r := render.NewTerminalRenderer(80, 40, *viewScale)
		r.SetCenter(physics.Vector2D{X: 0, Y: 5})
		render.DrawDetector(r, sim.Detector())
	}

	snap := sim.Snapshot()
	for _, line := range snap.Lines() {
		fmt.Print(line)
	}

	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewStabilityCheck(sim.Snapshot, *maxSpeed))
	budget := time.Duration(cfg.Physics.FixedTimestep * float64(time.Second))
	checker.AddCheck(health.NewStepBudgetCheck(budget, sim.Stats))
	status := checker.CheckHealth(ctx)
	for _, name := range status.Failed() {
		logger.Warn(ctx, "Health check failed",
			"check", name,
			"message", status.Checks[name].Message,
		)
	}

	if *snapshotPath != "" {
		if err := writeSnapshot(snap, *snapshotPath); err != nil {
			logger.Error(ctx, "Failed to write snapshot", err, "snapshot_path", *snapshotPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Snapshot written", "snapshot_path", *snapshotPath)
	}

	if !status.Healthy() {
		os.Exit(2)
	}
}

// loadConfig resolves the physics configuration: the config file when it
// exists, else the scene's own physics block, then environment overrides.
func loadConfig(ctx context.Context, logger *logging.Logger, path string, f *scene.File) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using scene or default configuration",
			"config_path", path,
		)
		if f != nil && f.Physics != nil {
			cfg.Physics = *f.Physics
		}
	} else {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	return config.LoadConfigFromEnv(cfg)
}

func writeSnapshot(snap world.Snapshot, path string) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return logging.WrapError(err, "failed to write %s", path)
	}
	return nil
}

// demoScene is a walled bin with a seeded pile of circles and boxes
func demoScene(seed uint64) *scene.File {
	wall := func(name string, x, y, w, h float64) scene.NodeSpec {
		return scene.NodeSpec{
			Name:     name,
			Position: physics.Vector2D{X: x, Y: y},
			Shape:    &scene.ShapeSpec{Type: "box", Width: w, Height: h},
			Body:     &scene.BodySpec{Type: "static"},
		}
	}
	return &scene.File{
		Nodes: []scene.NodeSpec{
			wall("floor", 0, 10, 20, 1),
			wall("left", -10, 5, 1, 10),
			wall("right", 10, 5, 1, 10),
		},
		Scatter: &scene.ScatterSpec{
			Count:       40,
			Seed:        seed,
			Min:         physics.Vector2D{X: -8, Y: -4},
			Max:         physics.Vector2D{X: 8, Y: 4},
			MinSize:     0.4,
			MaxSize:     1.0,
			Restitution: 0.3,
			BoxRatio:    0.5,
			Speed:       2,
			Prefix:      "demo",
		},
	}
}
