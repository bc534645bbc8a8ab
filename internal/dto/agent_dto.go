package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
)

type CreateAgentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type AgentResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Mobile         string               `json:"mobile"`
	CreatedByModel models.PrincipalKind `json:"created_by_model"`
	CreatedBy      uuid.UUID            `json:"created_by"`
	ParentAgentID  *uuid.UUID           `json:"parent_agent_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

func NewAgentResponse(a *models.Agent) *AgentResponse {
	return &AgentResponse{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		Mobile:         a.Mobile,
		CreatedByModel: a.CreatedBy.Kind,
		CreatedBy:      a.CreatedBy.PrincipalID,
		ParentAgentID:  a.ParentAgentID,
		CreatedAt:      a.CreatedAt,
	}
}

type AgentListResponse struct {
	Count  int             `json:"count"`
	Agents []AgentResponse `json:"agents"`
}

func NewAgentListResponse(agents []models.Agent) *AgentListResponse {
	out := &AgentListResponse{Count: len(agents), Agents: make([]AgentResponse, 0, len(agents))}
	for i := range agents {
		out.Agents = append(out.Agents, *NewAgentResponse(&agents[i]))
	}
	return out
}
