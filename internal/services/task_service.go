package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
)

// TaskService answers the read side of distribution. The assigned and
// distributed views are separate queries and are never merged.
type TaskService struct {
	records store.RecordStore
}

func NewTaskService(stores store.Stores) *TaskService {
	return &TaskService{records: stores.Records}
}

// Assigned returns records an administrator distributed to the agent.
func (s *TaskService) Assigned(ctx context.Context, actor authz.Actor) ([]models.DistributionRecord, error) {
	scope, err := authz.AssignedScope(actor)
	if err != nil {
		return nil, translate(err, "records")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.records.FindByRecipient(ctx, scope.PrincipalID, scope.DistributorKind)
}

// Distributed returns records the agent distributed to its sub-agents.
func (s *TaskService) Distributed(ctx context.Context, actor authz.Actor) ([]models.DistributionRecord, error) {
	scope, err := authz.DistributedScope(actor)
	if err != nil {
		return nil, translate(err, "records")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.records.FindByDistributor(ctx, scope.PrincipalID, scope.DistributorKind)
}

func (s *TaskService) DistributedGrouped(ctx context.Context, actor authz.Actor) ([]store.RecipientGroup, error) {
	records, err := s.Distributed(ctx, actor)
	if err != nil {
		return nil, err
	}
	return store.GroupByRecipient(records), nil
}

// AllGrouped returns every record in the system grouped by recipient. Only
// administrators may call it.
func (s *TaskService) AllGrouped(ctx context.Context, actor authz.Actor) ([]store.RecipientGroup, error) {
	if !actor.IsAdministrator() {
		return nil, ErrUnauthorized
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return s.records.FindAllGroupedByRecipient(ctx)
}
