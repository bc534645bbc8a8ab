package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ActorLoader resolves a token subject to a principal that still exists.
type ActorLoader interface {
	LoadActor(ctx context.Context, kind models.PrincipalKind, id uuid.UUID) (authz.Actor, error)
}

// RealmRequired verifies the bearer token, checks that it belongs to realm
// and loads the principal into the request. Tokens from the other realm and
// tokens whose principal was deleted are rejected with 401.
func RealmRequired(cfg *config.Config, realm string, loader ActorLoader) []fiber.Handler {
	return []fiber.Handler{JWTProtected(cfg), loadPrincipal(realm, loader)}
}

func loadPrincipal(realm string, loader ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claimed, err := principal.ActorFromToken(c, realm)
		if err != nil {
			return unauthorized(c, "Unauthorized: token is not valid for this resource")
		}

		actor, err := loader.LoadActor(c.UserContext(), claimed.Kind, claimed.ID)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				return unauthorized(c, "Unauthorized: account no longer exists")
			}
			slog.Error("failed to load principal", "realm", realm, "principal_id", claimed.ID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}

		principal.SetActor(c, actor)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
