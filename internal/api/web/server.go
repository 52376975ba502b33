// Package web serves the guidance HTTP API and pushes every guidance
// update to websocket clients.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"frame-guide/internal/container"
	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
	"frame-guide/internal/log"
)

const (
	bodyLimit       = 16 << 20
	shutdownTimeout = 5 * time.Second
)

// TranscriptRequest is the body of POST /api/transcript.
type TranscriptRequest struct {
	Text string `json:"text"`
}

// Server is the HTTP boundary of the guidance engine.
type Server struct {
	app       *fiber.App
	container *container.Container
	hub       *hub

	// ctx bounds websocket clients; set by Run
	ctx context.Context
}

func NewServer(c *container.Container) *Server {
	s := &Server{
		container: c,
		hub:       newHub(),
		ctx:       context.Background(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "frame-guide",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/start", s.handleStart)
	api.Post("/stop", s.handleStop)
	api.Post("/transcript", s.handleTranscript)
	api.Get("/frame", s.handleFrameDimensions)
	api.Post("/frame", s.handlePushFrame)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/guidance", websocket.New(s.handleGuidanceWS))

	s.app = app
	return s
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.ctx = ctx
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("web server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Warn("web server shutdown", "error", err)
		}
		return nil
	}
}

// NotifyGuidance pushes state to websocket clients.
func (s *Server) NotifyGuidance(ctx context.Context, state entity.GuidanceState) {
	if err := s.hub.BroadcastJSON(newGuidanceView(state)); err != nil {
		log.Error("encode guidance update", "error", err)
	}
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(newGuidanceView(s.container.Snapshot()))
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	started := s.container.StartGuidance(c.UserContext())
	return c.JSON(fiber.Map{
		"started": started,
		"state":   newGuidanceView(s.container.Snapshot()),
	})
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	stopped := s.container.StopGuidance(c.UserContext())
	return c.JSON(fiber.Map{
		"stopped": stopped,
		"state":   newGuidanceView(s.container.Snapshot()),
	})
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	var req TranscriptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	state := s.container.Find(c.UserContext(), req.Text)
	return c.JSON(newGuidanceView(state))
}

func (s *Server) handleFrameDimensions(c *fiber.Ctx) error {
	return c.JSON(s.container.FrameDimensions())
}

// handlePushFrame accepts an encoded still (JPEG, PNG or WebP) as the raw body.
func (s *Server) handlePushFrame(c *fiber.Ctx) error {
	dims, err := s.container.PushFrame(c.Body())
	switch {
	case errors.Is(err, container.ErrPushDisabled):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		log.Debug("rejected pushed frame", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, "unreadable image")
	}
	return c.Status(fiber.StatusAccepted).JSON(dims)
}

func (s *Server) handleGuidanceWS(conn *websocket.Conn) {
	first, err := json.Marshal(newGuidanceView(s.container.Snapshot()))
	if err != nil {
		log.Error("encode guidance state", "error", err)
		return
	}
	newClient(s.hub, conn).serve(s.ctx, first)
}

// guidanceView is the state as rendered for clients: the message is never
// empty and detection lists are never null.
type guidanceView struct {
	entity.GuidanceState
	Message string `json:"message"`
}

func newGuidanceView(state entity.GuidanceState) guidanceView {
	if state.Detections == nil {
		state.Detections = []entity.DetectedObject{}
	}
	if state.Matched == nil {
		state.Matched = []entity.DetectedObject{}
	}
	if state.Covered == nil {
		state.Covered = []entity.DetectedObject{}
	}
	return guidanceView{GuidanceState: state, Message: state.DisplayMessage()}
}

var _ port.GuidanceNotifier = (*Server)(nil)
