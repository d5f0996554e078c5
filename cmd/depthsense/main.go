// depthsense - live object range finder for depth cameras.
// Detects objects in the color stream and reports how far away each one is
// using the aligned depth stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/teslashibe/depthsense/internal/config"
	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/rangefinder"
	"github.com/teslashibe/depthsense/pkg/sensor"
)

// The preview window has to be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	app, err := rangefinder.New(cfg)
	if err != nil {
		fatalf("❌ Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Init(ctx); err != nil {
		fatalf("❌ Initialization failed: %v", err)
	}

	runErr := app.Run(ctx)
	if err := app.Shutdown(); err != nil {
		log.Warn("shutdown", "error", err)
	}
	if runErr != nil {
		fatalf("❌ Runtime error: %v", runErr)
	}

	s := app.Stats()
	log.Info("done",
		"run_id", s.RunID,
		"processed", s.Processed,
		"gaps", s.Gaps,
		"detections", s.Detections,
		"avg_latency", s.AvgLatency)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// parseFlags builds the configuration. Later sources win:
// defaults, config file, environment, then flags given on the command line.
func parseFlags(args []string) (rangefinder.Config, error) {
	cfg := rangefinder.DefaultConfig()
	fs := flag.NewFlagSet("depthsense", flag.ContinueOnError)

	configPath := fs.String("config", "", "YAML or JSON config file (overrides "+config.EnvConfig+")")
	debug := fs.Bool("debug", false, "Enable verbose debug logging")
	model := fs.String("model", "", "Detection model (.tflite, .onnx or .pb)")
	graph := fs.String("graph", "", "OpenCV DNN graph description (.pbtxt)")
	backend := fs.String("backend", "", "Inference backend: tflite, onnxruntime, opencv (default: by model extension)")
	labelsPath := fs.String("labels", "", "Label file matching the model")
	threshold := fs.Float64("threshold", cfg.Pipeline.Threshold, "Minimum detection score")
	preset := fs.String("preset", "", "Stream preset: "+strings.Join(sensor.PresetNames(), ", "))
	width := fs.Int("width", cfg.Sensor.Width, "Stream width")
	height := fs.Int("height", cfg.Sensor.Height, "Stream height")
	fps := fs.Int("fps", cfg.Sensor.FPS, "Stream frame rate")
	samples := fs.Int("samples", cfg.Samples, "Depth samples per object")
	precision := fs.Int("precision", cfg.Precision, "Decimals in reported distances")
	seed := fs.Uint64("seed", cfg.Seed, "Sampler seed")
	stride := fs.Int("stride", cfg.Pipeline.Stride, "Process every n-th complete frame")
	timeout := fs.Duration("timeout", cfg.Pipeline.AcquireTimeout, "Per-frame acquire timeout (0 waits forever)")
	replayDir := fs.String("replay", "", "Recorded session directory")
	replayLoop := fs.Bool("loop", cfg.ReplayLoop, "Loop the recorded session")
	remoteURL := fs.String("remote", "", "Camera bridge websocket URL")
	window := fs.Bool("window", false, "Show the preview window")
	streamAddr := fs.String("stream", "", "Serve the live view on this address, e.g. :8181")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.LoadEnvConfig()
	if lvl := os.Getenv(config.EnvLogLevel); strings.EqualFold(lvl, "debug") {
		cfg.Debug = true
	}

	var presetErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = *debug
		case "model":
			cfg.Detection.ModelPath = *model
		case "graph":
			cfg.Detection.ConfigPath = *graph
		case "backend":
			cfg.Detection.Backend = *backend
		case "labels":
			cfg.LabelsPath = *labelsPath
		case "threshold":
			cfg.Detection.Threshold = *threshold
			cfg.Pipeline.Threshold = *threshold
		case "preset":
			p := sensor.GetPreset(*preset)
			if p == nil {
				presetErr = fmt.Errorf("unknown preset %q (have %s)", *preset, strings.Join(sensor.PresetNames(), ", "))
				return
			}
			cfg.Sensor.Width, cfg.Sensor.Height, cfg.Sensor.FPS = p.Width, p.Height, p.FPS
		case "samples":
			cfg.Samples = *samples
		case "precision":
			cfg.Precision = *precision
		case "seed":
			cfg.Seed = *seed
		case "stride":
			cfg.Pipeline.Stride = *stride
		case "timeout":
			cfg.Pipeline.AcquireTimeout = *timeout
		case "replay":
			cfg.ReplayDir = *replayDir
		case "loop":
			cfg.ReplayLoop = *replayLoop
		case "remote":
			cfg.RemoteURL = *remoteURL
		case "window":
			cfg.Window = *window
		case "stream":
			cfg.StreamAddr = *streamAddr
		}
	})
	if presetErr != nil {
		return cfg, presetErr
	}

	// Explicit sizes refine a preset.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Sensor.Width = *width
		case "height":
			cfg.Sensor.Height = *height
		case "fps":
			cfg.Sensor.FPS = *fps
		}
	})

	return cfg, nil
}
