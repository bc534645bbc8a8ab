// Package store defines the persistence gateway used by the services. Each
// backend package (pgstore, mongostore, memstore) implements the interfaces
// below with the same semantics.
package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
)

var (
	ErrDuplicate = errors.New("duplicate entity")
	ErrNotFound  = errors.New("entity not found")
)

type AdminStore interface {
	Create(ctx context.Context, a *models.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type AgentStore interface {
	Create(ctx context.Context, a *models.Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	GetByEmail(ctx context.Context, email string) (*models.Agent, error)
	ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error)
	// List returns every agent, newest first.
	List(ctx context.Context) ([]models.Agent, error)
	// ListByParent returns the sub-agents of parentID, newest first.
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.Agent, error)
	// ListRecipientsForAdmin returns every agent in creation order.
	ListRecipientsForAdmin(ctx context.Context) ([]*models.Agent, error)
	// ListRecipientsForParent returns the sub-agents of parentID in creation order.
	ListRecipientsForParent(ctx context.Context, parentID uuid.UUID) ([]*models.Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteOwned deletes id only when it is a sub-agent of parentID.
	DeleteOwned(ctx context.Context, id, parentID uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type RecordStore interface {
	// InsertBatch persists every record or none.
	InsertBatch(ctx context.Context, records []models.DistributionRecord) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error)
	FindByDistributor(ctx context.Context, distributorID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error)
	FindAllGroupedByRecipient(ctx context.Context) ([]RecipientGroup, error)
}

// Stores bundles one backend's gateways.
type Stores struct {
	Admins  AdminStore
	Agents  AgentStore
	Records RecordStore

	// Ping reports backend liveness for the health endpoint.
	Ping func(ctx context.Context) error
	// Close releases the backend connection.
	Close func(ctx context.Context) error
}
