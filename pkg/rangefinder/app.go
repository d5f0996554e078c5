package rangefinder

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/depth"
	"github.com/teslashibe/depthsense/pkg/detection"
	"github.com/teslashibe/depthsense/pkg/detection/engine"
	"github.com/teslashibe/depthsense/pkg/labels"
	"github.com/teslashibe/depthsense/pkg/pipeline"
	"github.com/teslashibe/depthsense/pkg/render"
	"github.com/teslashibe/depthsense/pkg/render/stream"
	"github.com/teslashibe/depthsense/pkg/render/window"
	"github.com/teslashibe/depthsense/pkg/sensor"
	"github.com/teslashibe/depthsense/pkg/sensor/remote"
	"github.com/teslashibe/depthsense/pkg/sensor/replay"
	"github.com/teslashibe/depthsense/pkg/web"
)

// App is the range finder orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	log    *slog.Logger

	labels    labels.Table
	detector  pipeline.Detector
	estimator *depth.Estimator
	sensor    sensor.Sensor
	renderer  render.Renderer
	loop      *pipeline.Loop

	// Live view
	webServer *web.Server
	webCancel context.CancelFunc

	// Set once Run hands ownership to the loop
	ran bool

	// Component constructors
	openDetector func(detection.Config) (pipeline.Detector, error)
	newSensor    func(Config) sensor.Sensor
	newWindow    func(window.Config) (render.Renderer, error)
}

// New creates a range finder with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &App{
		config:       cfg,
		log:          log.Component("rangefinder"),
		openDetector: openEngine,
		newSensor:    newSensor,
		newWindow:    newWindow,
	}, nil
}

// Init loads the labels and model, starts the outputs and the sensor.
// Any error here is fatal; whatever was already opened is released.
func (a *App) Init(ctx context.Context) (err error) {
	fmt.Println("📏 depthsense - depth camera range finder")
	fmt.Println("=========================================")
	if a.config.Debug {
		fmt.Println("🐛 Debug mode enabled")
	}

	defer func() {
		if err != nil {
			err = multierr.Append(err, a.close())
		}
	}()

	fmt.Print("🏷️  Loading labels... ")
	if a.labels, err = labels.Load(a.config.LabelsPath); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("labels: %w", err)
	}
	fmt.Printf("✅ %d classes\n", len(a.labels))

	fmt.Print("🧠 Loading model... ")
	if a.detector, err = a.openDetector(a.config.Detection); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("model: %w", err)
	}
	h, w := a.detector.InputShape()
	fmt.Printf("✅ %s (%dx%d, %s)\n", a.config.Detection.ModelPath, w, h, engine.BackendFor(a.config.Detection))

	a.estimator, err = depth.NewEstimator(a.config.EstimatorConfig(), depth.NewRandSampler(a.config.Seed))
	if err != nil {
		return fmt.Errorf("estimator: %w", err)
	}

	if err := a.initRenderers(ctx); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	fmt.Print("📷 Starting sensor... ")
	a.sensor = a.newSensor(a.config)
	if err := a.sensor.Start(ctx, a.config.Sensor); err != nil {
		fmt.Println("❌")
		return err
	}
	fmt.Printf("✅ %dx%d @ %d FPS\n", a.config.Sensor.Width, a.config.Sensor.Height, a.config.Sensor.FPS)

	a.loop, err = pipeline.New(a.config.Pipeline, pipeline.Components{
		Sensor:    a.sensor,
		Detector:  a.detector,
		Labels:    a.labels,
		Estimator: a.estimator,
		Renderer:  a.renderer,
	})
	if err != nil {
		return err
	}

	if a.webServer != nil {
		loop := a.loop
		a.webServer.SetStatusFunc(func() any { return loop.Stats() })
	}
	return nil
}

func (a *App) initRenderers(ctx context.Context) error {
	var outputs render.Multi

	if a.config.Window {
		win, err := a.newWindow(a.config.WindowConfig)
		if err != nil {
			return err
		}
		outputs = append(outputs, win)
	}

	if a.config.StreamAddr != "" {
		a.webServer = web.NewServer(a.config.StreamAddr)
		webCtx, cancel := context.WithCancel(ctx)
		if err := a.webServer.Start(webCtx); err != nil {
			cancel()
			a.webServer = nil
			outputs.Close()
			return err
		}
		a.webCancel = cancel

		s, err := stream.New(a.config.StreamConfig, a.webServer)
		if err != nil {
			outputs.Close()
			return err
		}
		outputs = append(outputs, s)
	}

	switch len(outputs) {
	case 0:
		a.renderer = render.NewLogger(log.Component("objects"))
	case 1:
		a.renderer = outputs[0]
	default:
		a.renderer = outputs
	}
	return nil
}

// Run processes frames until ctx is cancelled, the operator quits, or a
// fatal error occurs. The loop releases the sensor, model and renderers
// before Run returns.
func (a *App) Run(ctx context.Context) error {
	if a.loop == nil {
		return fmt.Errorf("rangefinder: Init not called")
	}
	a.ran = true

	fmt.Println("\n🎯 Ranging! Press q in the window or Ctrl+C to exit")
	if a.webServer != nil {
		fmt.Printf("🌐 Live view: http://%s\n", a.webServer.Addr())
	}
	return a.loop.Run(ctx)
}

// Stats returns the loop counters, zero before Init.
func (a *App) Stats() pipeline.Stats {
	if a.loop == nil {
		return pipeline.Stats{}
	}
	return a.loop.Stats()
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() error {
	fmt.Println("\n👋 Goodbye!")
	return a.close()
}

func (a *App) close() error {
	var err error
	if !a.ran {
		err = a.release()
	}
	if a.webCancel != nil {
		a.webCancel()
		a.webCancel = nil
	}
	if a.webServer != nil {
		err = multierr.Append(err, a.webServer.Shutdown())
		a.webServer = nil
	}
	return err
}

// release closes components the loop has not taken over.
func (a *App) release() error {
	var err error
	if a.sensor != nil {
		err = multierr.Append(err, a.sensor.Stop())
		a.sensor = nil
	}
	if a.renderer != nil {
		err = multierr.Append(err, a.renderer.Close())
		a.renderer = nil
	}
	if a.detector != nil {
		err = multierr.Append(err, a.detector.Close())
		a.detector = nil
	}
	return err
}

func openEngine(cfg detection.Config) (pipeline.Detector, error) {
	d, err := engine.Open(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func newSensor(cfg Config) sensor.Sensor {
	if cfg.RemoteURL != "" {
		return remote.New(cfg.RemoteURL)
	}
	return replay.New(replay.Options{
		Dir:  cfg.ReplayDir,
		Loop: cfg.ReplayLoop,
		Pace: true,
	})
}

func newWindow(cfg window.Config) (render.Renderer, error) {
	w, err := window.New(cfg)
	if err != nil {
		return nil, err
	}
	return w, nil
}
