package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/depthsense/pkg/hub"
)

// handleIndex serves the viewer page
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(indexHTML)
}

// handleStatus returns the loop state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.statusMu.RLock()
	fn := s.status
	s.statusMu.RUnlock()

	if fn == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "status not available",
		})
	}
	return c.JSON(fn())
}

// handleAnnotations returns the most recent frame's annotations
func (s *Server) handleAnnotations(c *fiber.Ctx) error {
	msg, ok := s.annotationHub.Latest()
	if !ok {
		return c.JSON([]any{})
	}
	c.Type("json")
	return c.Send(msg.Data)
}

// handleFrame returns the most recent annotated frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	msg, ok := s.frameHub.Latest()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(msg.Data)
}

// handleFramesWS streams JPEG frames
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

// handleAnnotationsWS streams annotation JSON
func (s *Server) handleAnnotationsWS(c *websocket.Conn) {
	hub.NewClient(s.annotationHub, c).Run()
}
