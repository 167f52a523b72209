package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/dudu/snapfilter/internal/codec"
	"github.com/dudu/snapfilter/internal/filter"
	"github.com/dudu/snapfilter/internal/screenshot"
)

var errRateLimited = errors.New("too many frames, slow down")

func (s *Server) health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) filters(ctx *fiber.Ctx) error {
	kinds := filter.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return ctx.JSON(FiltersResponse{Filters: names})
}

func (s *Server) processFrame(ctx *fiber.Ctx) error {
	var req FrameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}
	if err := s.validator.Struct(req); err != nil {
		return s.badRequest(ctx, "No image received")
	}

	if !s.limiter.Allow() {
		return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: errRateLimited.Error()})
	}

	data, err := codec.DecodeDataURL(req.Image)
	if err != nil {
		return s.badRequest(ctx, "Failed to decode image")
	}

	resp, err := s.runFrame(data, req.Filter)
	if err != nil {
		if errors.Is(err, codec.ErrUndecodableImage) {
			return s.badRequest(ctx, "Failed to decode image")
		}
		return s.internalError(ctx, err, "Failed to process frame. Please try again.")
	}

	return ctx.JSON(resp)
}

// runFrame decodes, filters and re-encodes one frame
func (s *Server) runFrame(data []byte, filterName string) (FrameResponse, error) {
	frame, err := codec.DecodeImage(data)
	if err != nil {
		return FrameResponse{}, err
	}
	defer frame.Close()

	result, err := s.processor.Process(&frame, filterName)
	if err != nil {
		return FrameResponse{}, err
	}

	encoded, err := codec.EncodeBase64JPEG(frame, s.jpegQuality)
	if err != nil {
		return FrameResponse{}, err
	}

	return FrameResponse{
		Image:             encoded,
		LandmarksDetected: result.LandmarksDetected(),
		NumFaces:          result.Faces,
	}, nil
}

func (s *Server) screenshot(ctx *fiber.Ctx) error {
	var req ScreenshotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}
	if err := s.validator.Struct(req); err != nil {
		return s.badRequest(ctx, "No image data provided")
	}

	data, err := codec.DecodeDataURL(req.Image)
	if err != nil {
		return s.badRequest(ctx, "Failed to decode image")
	}

	name, err := s.store.Save(ctx.UserContext(), data)
	if err != nil {
		if errors.Is(err, screenshot.ErrEmptyImage) {
			return s.badRequest(ctx, "No image data provided")
		}
		return s.internalError(ctx, err, "Failed to save screenshot. Please try again.")
	}

	return ctx.JSON(ScreenshotResponse{Success: true, Filename: name})
}

func (s *Server) badRequest(ctx *fiber.Ctx, msg string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// internalError logs err and hides it from the client unless debug is on
func (s *Server) internalError(ctx *fiber.Ctx, err error, msg string) error {
	s.log.WithFields(logrus.Fields{
		"path":  ctx.Path(),
		"error": err.Error(),
	}).Error(msg)

	resp := ErrorResponse{Error: msg}
	if s.debug {
		resp.Details = err.Error()
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(resp)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := logrus.Fields{
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"response_size": len(c.Response().Body()),
		}

		if status >= 500 {
			s.log.WithFields(fields).Error("Server error")
		} else if status >= 400 {
			s.log.WithFields(fields).Warn("Client error")
		} else {
			s.log.WithFields(fields).Debug("Success")
		}

		return err
	}
}
