// Package web serves the live range finder view: annotated JPEG frames
// and annotation JSON over websockets, plus a small REST status API.
package web

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/hub"
)

//go:embed index.html
var indexHTML []byte

// StatusFunc reports the current loop state for /api/status.
type StatusFunc func() any

// Server is the live view server
type Server struct {
	app  *fiber.App
	addr string
	log  *slog.Logger

	// Hubs for websocket broadcast
	frameHub      *hub.Hub
	annotationHub *hub.Hub

	statusMu sync.RWMutex
	status   StatusFunc

	ln           net.Listener
	shutdownOnce sync.Once
}

// NewServer creates a server listening on addr (":8181", "127.0.0.1:0").
func NewServer(addr string) *Server {
	s := &Server{
		addr:          addr,
		log:           log.Component("web"),
		frameHub:      hub.New("frames"),
		annotationHub: hub.New("annotations"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "depthsense",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/annotations", s.handleAnnotations)
	api.Get("/frame.jpg", s.handleFrame)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/annotations", websocket.New(s.handleAnnotationsWS))

	s.app = app
	return s
}

// SetStatusFunc installs the /api/status source.
func (s *Server) SetStatusFunc(fn StatusFunc) {
	s.statusMu.Lock()
	s.status = fn
	s.statusMu.Unlock()
}

// Start binds the port, then serves and runs the hubs in the background
// until ctx is done. A bind failure is returned directly.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.addr, err)
	}
	s.ln = ln

	go s.frameHub.Run(ctx)
	go s.annotationHub.Run(ctx)

	go func() {
		if err := s.app.Listener(ln); err != nil {
			s.log.Warn("server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	s.log.Info("🌐 live view", "url", "http://"+ln.Addr().String())
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// PublishFrame sends an encoded JPEG to frame viewers.
func (s *Server) PublishFrame(jpegData []byte) {
	s.frameHub.BroadcastBinary(jpegData)
}

// PublishAnnotations sends v as JSON to annotation viewers.
func (s *Server) PublishAnnotations(v any) error {
	return s.annotationHub.BroadcastJSON(v)
}

// Viewers returns the number of connected frame and annotation clients.
func (s *Server) Viewers() int {
	return s.frameHub.ClientCount() + s.annotationHub.ClientCount()
}

// Shutdown stops the server. Later calls are no-ops.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.app.Shutdown()
	})
	return err
}
