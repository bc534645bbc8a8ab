// Package principal reads the authenticated caller out of a Fiber request.
package principal

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RealmAdmin = "admin"
	RealmAgent = "agent"

	// TokenKey is where the JWT middleware stores the verified token.
	TokenKey = "user"
	actorKey = "actor"
)

var (
	ErrNoToken     = errors.New("invalid token in context")
	ErrClaims      = errors.New("invalid claims")
	ErrWrongRealm  = errors.New("token realm does not match")
	ErrNoPrincipal = errors.New("no authenticated principal")
)

// Claims are the fields this service puts into every access token.
type Claims struct {
	Subject uuid.UUID
	Email   string
	Realm   string
}

// KindForRealm maps a token realm to the principal kind it authenticates.
func KindForRealm(realm string) (models.PrincipalKind, bool) {
	switch realm {
	case RealmAdmin:
		return models.KindAdministrator, true
	case RealmAgent:
		return models.KindAgent, true
	}
	return "", false
}

func RealmForKind(kind models.PrincipalKind) string {
	if kind == models.KindAdministrator {
		return RealmAdmin
	}
	return RealmAgent
}

// TokenClaims extracts the claims of the verified JWT stored by jwtware.
func TokenClaims(c *fiber.Ctx) (*Claims, error) {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrClaims
	}

	sub, _ := mc["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrClaims
	}
	realm, _ := mc["realm"].(string)
	email, _ := mc["email"].(string)

	return &Claims{Subject: id, Email: email, Realm: realm}, nil
}

// ActorFromToken builds the actor for a token that must belong to realm.
func ActorFromToken(c *fiber.Ctx, realm string) (authz.Actor, error) {
	claims, err := TokenClaims(c)
	if err != nil {
		return authz.Actor{}, err
	}
	if claims.Realm != realm {
		return authz.Actor{}, ErrWrongRealm
	}
	kind, _ := KindForRealm(realm)
	return authz.Actor{Kind: kind, ID: claims.Subject, Email: claims.Email}, nil
}

func SetActor(c *fiber.Ctx, a authz.Actor) {
	c.Locals(actorKey, a)
}

// Actor returns the principal loaded by the realm middleware.
func Actor(c *fiber.Ctx) (authz.Actor, error) {
	a, ok := c.Locals(actorKey).(authz.Actor)
	if !ok {
		return authz.Actor{}, ErrNoPrincipal
	}
	return a, nil
}
