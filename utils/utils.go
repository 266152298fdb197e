package utils

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorResponse writes the standard error body. Server-side failures are
// also captured for later diagnosis.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	if status >= fiber.StatusInternalServerError && err != nil {
		LogError(message, err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
	}
	return c.Status(status).JSON(body)
}

// SuccessResponse wraps payloads for success bodies.
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"message": "success",
		"data":    data,
	}
}

// LogError logs with structured fields and forwards to Sentry.
func LogError(message string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error": err.Error(),
	})
	for k, v := range context {
		log = log.WithField(k, v)
	}
	log.Error(message)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", message)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// ParseUint safely parses a string to uint, returning 0 on failure.
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// Pointer returns a pointer to the given value.
func Pointer[T any](v T) *T {
	return &v
}
