package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/validate"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	admins store.AdminStore
	agents store.AgentStore
	tokens *TokenIssuer
	cost   int
}

func NewAuthService(stores store.Stores, cfg *config.Config) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		admins: stores.Admins,
		agents: stores.Agents,
		tokens: NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		cost:   cost,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) RegisterAdmin(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := validate.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalidf("please provide email and password")
	}
	if err := validate.Email(email); err != nil {
		return nil, invalid(err)
	}
	if err := validate.Password(req.Password); err != nil {
		return nil, invalid(err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, duplicate("admin with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{ID: uuid.New(), Email: email, Password: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicate("admin with this email already exists")
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return s.adminSession(admin)
}

func (s *AuthService) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validate.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalidf("please provide email and password")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.adminSession(admin)
}

func (s *AuthService) LoginAgent(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validate.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalidf("please provide email and password")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(models.KindAgent, agent.ID, agent.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		Realm:       principal.RealmAgent,
		Agent:       dto.NewAgentResponse(agent),
	}, nil
}

func (s *AuthService) adminSession(admin *models.Admin) (*dto.AuthResponse, error) {
	token, exp, err := s.tokens.Issue(models.KindAdministrator, admin.ID, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		Realm:       principal.RealmAdmin,
		Admin:       dto.NewAdminResponse(admin),
	}, nil
}

// LoadActor resolves a verified token subject to a principal that still
// exists. Deleted principals come back as ErrUnauthorized.
func (s *AuthService) LoadActor(ctx context.Context, kind models.PrincipalKind, id uuid.UUID) (authz.Actor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	switch kind {
	case models.KindAdministrator:
		admin, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return authz.Actor{}, unauthorizedIfMissing(err)
		}
		return authz.Actor{Kind: kind, ID: admin.ID, Email: admin.Email}, nil
	case models.KindAgent:
		agent, err := s.agents.GetByID(ctx, id)
		if err != nil {
			return authz.Actor{}, unauthorizedIfMissing(err)
		}
		return authz.Actor{Kind: kind, ID: agent.ID, Email: agent.Email}, nil
	}
	return authz.Actor{}, ErrUnauthorized
}

func unauthorizedIfMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnauthorized
	}
	return err
}

func (s *AuthService) AdminProfile(ctx context.Context, actor authz.Actor) (*models.Admin, error) {
	if !actor.IsAdministrator() {
		return nil, ErrUnauthorized
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	admin, err := s.admins.GetByID(ctx, actor.ID)
	return admin, translate(err, "admin")
}

func (s *AuthService) AgentProfile(ctx context.Context, actor authz.Actor) (*models.Agent, error) {
	if !actor.IsAgent() {
		return nil, ErrUnauthorized
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	agent, err := s.agents.GetByID(ctx, actor.ID)
	return agent, translate(err, "agent")
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor authz.Actor, req *dto.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return invalidf("please provide current and new password")
	}
	if err := validate.Password(req.NewPassword); err != nil {
		return invalid(err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var current string
	switch actor.Kind {
	case models.KindAdministrator:
		admin, err := s.admins.GetByID(ctx, actor.ID)
		if err != nil {
			return translate(err, "admin")
		}
		current = admin.Password
	case models.KindAgent:
		agent, err := s.agents.GetByID(ctx, actor.ID)
		if err != nil {
			return translate(err, "agent")
		}
		current = agent.Password
	default:
		return ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if actor.IsAdministrator() {
		return translate(s.admins.UpdatePassword(ctx, actor.ID, hash), "admin")
	}
	return translate(s.agents.UpdatePassword(ctx, actor.ID, hash), "agent")
}
