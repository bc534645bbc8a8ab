package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent covers both tiers of the hierarchy. A sub-agent is an Agent whose
// ParentAgentID is set and whose owner is the parent agent.
type Agent struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string     `gorm:"not null;size:255" json:"name"`
	Email         string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Mobile        string     `gorm:"not null;size:32;uniqueIndex" json:"mobile"`
	Password      string     `gorm:"not null" json:"-"`
	CreatedBy     Owner      `gorm:"embedded;embeddedPrefix:created_by_" json:"created_by"`
	ParentAgentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_agent_id,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewAgent builds a top-level agent owned by an administrator.
func NewAgent(adminID uuid.UUID, name, email, mobile, passwordHash string) *Agent {
	return &Agent{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Mobile:    mobile,
		Password:  passwordHash,
		CreatedBy: Owner{Kind: KindAdministrator, PrincipalID: adminID},
	}
}

// NewSubAgent builds an agent owned by, and parented to, another agent.
func NewSubAgent(parentID uuid.UUID, name, email, mobile, passwordHash string) *Agent {
	parent := parentID
	return &Agent{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		Mobile:        mobile,
		Password:      passwordHash,
		CreatedBy:     Owner{Kind: KindAgent, PrincipalID: parentID},
		ParentAgentID: &parent,
	}
}

func (a *Agent) IsSubAgent() bool {
	return a.ParentAgentID != nil
}

// ChildOf reports whether a is a sub-agent of parentID.
func (a *Agent) ChildOf(parentID uuid.UUID) bool {
	return a.ParentAgentID != nil && *a.ParentAgentID == parentID
}
