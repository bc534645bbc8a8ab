package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/distribution"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to HTTP status codes. Zero means the error is
// not a client error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, distribution.ErrNoRecipients):
		return fiber.StatusBadRequest
	case errors.Is(err, ingest.ErrParseFailure):
		return fiber.StatusUnprocessableEntity
	case ingest.IsClientError(err):
		return fiber.StatusBadRequest
	}
	return 0
}

// fail writes the JSON error body for err. Unknown errors are handed to the
// app's ErrorHandler, which hides their detail.
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == 0 {
		return err
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: clientMessage(err)})
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, distribution.ErrNoRecipients):
		return "No recipients available. Create agents or sub-agents before uploading."
	case errors.Is(err, ingest.ErrParseFailure):
		return "The file could not be parsed. Please upload a valid CSV, XLS or XLSX file."
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "Unsupported file type."
	}
	return err.Error()
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// ErrorHandler is the Fiber error handler. Details of 5xx errors are logged
// and reported but never returned to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
