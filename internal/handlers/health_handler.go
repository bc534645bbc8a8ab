package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping   func(ctx context.Context) error
	driver string
}

func NewHealthHandler(ping func(ctx context.Context) error, driver string) *HealthHandler {
	return &HealthHandler{ping: ping, driver: driver}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, storeStatus := "ok", "ok"
	if err := h.ping(ctx); err != nil {
		status = "degraded"
		storeStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
		Driver:    h.driver,
	})
}

// Root answers GET / so load balancers and humans get a quick banner.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "agent-distribution",
		"status":  "running",
	})
}
