package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/validate"
	"github.com/google/uuid"
)

// AgentService manages both tiers of the hierarchy: administrators manage
// agents, agents manage their own sub-agents.
type AgentService struct {
	agents store.AgentStore
	auth   *AuthService
}

func NewAgentService(stores store.Stores, auth *AuthService) *AgentService {
	return &AgentService{agents: stores.Agents, auth: auth}
}

type agentInput struct {
	name, email, mobile, password string
}

func checkAgentInput(req *dto.CreateAgentRequest) (agentInput, error) {
	in := agentInput{
		name:     strings.TrimSpace(req.Name),
		email:    validate.NormalizeEmail(req.Email),
		mobile:   strings.TrimSpace(req.Mobile),
		password: req.Password,
	}
	if in.name == "" || in.email == "" || in.mobile == "" || in.password == "" {
		return in, invalidf("please provide all required fields: name, email, mobile, password")
	}
	if err := validate.Email(in.email); err != nil {
		return in, invalid(err)
	}
	if err := validate.Mobile(in.mobile); err != nil {
		return in, invalid(err)
	}
	if err := validate.Password(in.password); err != nil {
		return in, invalid(err)
	}
	return in, nil
}

func (s *AgentService) create(ctx context.Context, in agentInput, build func(hash string) *models.Agent) (*models.Agent, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	exists, err := s.agents.ExistsByEmailOrMobile(ctx, in.email, in.mobile)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate("agent with this email or mobile number already exists")
	}

	hash, err := s.auth.HashPassword(in.password)
	if err != nil {
		return nil, err
	}

	agent := build(hash)
	if err := s.agents.Create(ctx, agent); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, duplicate("agent with this email or mobile number already exists")
		}
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return agent, nil
}

func (s *AgentService) CreateAgent(ctx context.Context, actor authz.Actor, req *dto.CreateAgentRequest) (*models.Agent, error) {
	if err := authz.CanCreateAgent(actor); err != nil {
		return nil, translate(err, "agent")
	}
	in, err := checkAgentInput(req)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, in, func(hash string) *models.Agent {
		return models.NewAgent(actor.ID, in.name, in.email, in.mobile, hash)
	})
}

func (s *AgentService) ListAgents(ctx context.Context, actor authz.Actor) ([]models.Agent, error) {
	if err := authz.CanListAgents(actor); err != nil {
		return nil, translate(err, "agent")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.agents.List(ctx)
}

// DeleteAgent removes an agent. Records already distributed to it and any
// sub-agents it created are left in place.
func (s *AgentService) DeleteAgent(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	target, err := s.agents.GetByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := authz.CanDeleteAgent(actor, target); err != nil {
		return translate(err, "agent")
	}
	return translate(s.agents.Delete(ctx, id), "agent")
}

func (s *AgentService) CreateSubAgent(ctx context.Context, actor authz.Actor, req *dto.CreateAgentRequest) (*models.Agent, error) {
	if err := authz.CanCreateSubAgent(actor); err != nil {
		return nil, translate(err, "sub-agent")
	}
	in, err := checkAgentInput(req)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, in, func(hash string) *models.Agent {
		return models.NewSubAgent(actor.ID, in.name, in.email, in.mobile, hash)
	})
}

func (s *AgentService) ListSubAgents(ctx context.Context, actor authz.Actor) ([]models.Agent, error) {
	parentID, err := authz.SubAgentScope(actor)
	if err != nil {
		return nil, translate(err, "sub-agent")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.agents.ListByParent(ctx, parentID)
}

// DeleteSubAgent removes one of the caller's sub-agents. Any other id,
// including a sub-agent of a different parent, is reported as not found.
func (s *AgentService) DeleteSubAgent(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	parentID, err := authz.SubAgentScope(actor)
	if err != nil {
		return translate(err, "sub-agent")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	target, err := s.agents.GetByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if !authz.OwnsSubAgent(actor, target) {
		return notFound("sub-agent not found")
	}
	return translate(s.agents.DeleteOwned(ctx, id, parentID), "sub-agent")
}
