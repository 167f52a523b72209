package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

// NewFiber creates the HTTP app. Frames arrive as data URLs, so the body
// limit is sized for full-resolution JPEG/PNG captures.
func NewFiber() *fiber.App {
	app := fiber.New(
		fiber.Config{
			AppName:               "SnapFilter",
			BodyLimit:             20 * 1024 * 1024,
			StrictRouting:         true,
			CaseSensitive:         true,
			DisableStartupMessage: true,
			JSONEncoder:           jsoniter.Marshal,
			JSONDecoder:           jsoniter.Unmarshal,
		})

	return app
}

// NewValidator creates the request validator
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
