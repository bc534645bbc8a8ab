// Package authz decides what an authenticated principal may do to the agent
// hierarchy and which distribution records it may read. Every function is
// pure; callers pass the loaded target and act on the verdict.
package authz

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrUnauthorized means the actor belongs to the wrong realm for the operation.
	ErrUnauthorized = errors.New("not authorized for this operation")
	// ErrNotFound hides targets the actor does not own.
	ErrNotFound = errors.New("not found")
)

// Actor is the authenticated caller, built from verified token claims.
type Actor struct {
	Kind  models.PrincipalKind
	ID    uuid.UUID
	Email string
}

func (a Actor) IsAdministrator() bool { return a.Kind == models.KindAdministrator }
func (a Actor) IsAgent() bool         { return a.Kind == models.KindAgent }

func CanCreateAgent(a Actor) error {
	if !a.IsAdministrator() {
		return ErrUnauthorized
	}
	return nil
}

func CanCreateSubAgent(a Actor) error {
	if !a.IsAgent() {
		return ErrUnauthorized
	}
	return nil
}

func CanListAgents(a Actor) error {
	return CanCreateAgent(a)
}

// CanDeleteAgent allows administrators to delete any agent and agents to
// delete only their own sub-agents. A sub-agent of someone else is reported
// as not found.
func CanDeleteAgent(a Actor, target *models.Agent) error {
	switch {
	case target == nil:
		return ErrNotFound
	case a.IsAdministrator():
		return nil
	case a.IsAgent():
		if OwnsSubAgent(a, target) {
			return nil
		}
		return ErrNotFound
	}
	return ErrUnauthorized
}

func OwnsSubAgent(a Actor, target *models.Agent) bool {
	return a.IsAgent() && target != nil && target.ChildOf(a.ID)
}

// SubAgentScope returns the parent id that bounds an agent's sub-agent listing.
func SubAgentScope(a Actor) (uuid.UUID, error) {
	if !a.IsAgent() {
		return uuid.Nil, ErrUnauthorized
	}
	return a.ID, nil
}

// RecordField selects which principal column a RecordScope filters on.
type RecordField int

const (
	ByRecipient RecordField = iota + 1
	ByDistributor
)

// RecordScope is a read filter over distribution records.
type RecordScope struct {
	Field           RecordField
	PrincipalID     uuid.UUID
	DistributorKind models.PrincipalKind
}

// AssignedScope covers records an administrator handed to the agent.
func AssignedScope(a Actor) (RecordScope, error) {
	if !a.IsAgent() {
		return RecordScope{}, ErrUnauthorized
	}
	return RecordScope{Field: ByRecipient, PrincipalID: a.ID, DistributorKind: models.KindAdministrator}, nil
}

// DistributedScope covers records the agent itself handed to its sub-agents.
// It never overlaps with AssignedScope for the same actor.
func DistributedScope(a Actor) (RecordScope, error) {
	if !a.IsAgent() {
		return RecordScope{}, ErrUnauthorized
	}
	return RecordScope{Field: ByDistributor, PrincipalID: a.ID, DistributorKind: models.KindAgent}, nil
}

// Allows reports whether rec falls inside the scope.
func (s RecordScope) Allows(rec *models.DistributionRecord) bool {
	if rec.DistributedByModel != s.DistributorKind {
		return false
	}
	switch s.Field {
	case ByRecipient:
		return rec.RecipientID == s.PrincipalID
	case ByDistributor:
		return rec.DistributedBy == s.PrincipalID
	}
	return false
}
