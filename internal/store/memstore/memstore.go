// Package memstore is an in-process backend for tests and local development.
// Agents keep insertion order, which stands in for creation time.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/google/uuid"
)

type db struct {
	mu sync.RWMutex

	admins  []models.Admin
	agents  []models.Agent
	records []models.DistributionRecord
}

// New builds an empty backend.
func New() store.Stores {
	d := &db{}
	return store.Stores{
		Admins:  &AdminStore{db: d},
		Agents:  &AgentStore{db: d},
		Records: &RecordStore{db: d},
		Ping:    func(context.Context) error { return nil },
		Close:   func(context.Context) error { return nil },
	}
}

type AdminStore struct{ db *db }

func (s *AdminStore) Create(_ context.Context, a *models.Admin) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return store.ErrDuplicate
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.db.admins = append(s.db.admins, *a)
	return nil
}

func (s *AdminStore) GetByID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.admins {
		if a.ID == id {
			out := a
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *AdminStore) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.admins {
		if strings.EqualFold(a.Email, email) {
			out := a
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *AdminStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.admins {
		if s.db.admins[i].ID == id {
			s.db.admins[i].Password = hash
			s.db.admins[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return store.ErrNotFound
}

type AgentStore struct{ db *db }

func (s *AgentStore) Create(_ context.Context, a *models.Agent) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.agents {
		if strings.EqualFold(existing.Email, a.Email) || existing.Mobile == a.Mobile {
			return store.ErrDuplicate
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.db.agents = append(s.db.agents, *a)
	return nil
}

func (s *AgentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if i := s.db.agentIndex(id); i >= 0 {
		out := s.db.agents[i]
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (s *AgentStore) GetByEmail(_ context.Context, email string) (*models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.agents {
		if strings.EqualFold(a.Email, email) {
			out := a
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *AgentStore) ExistsByEmailOrMobile(_ context.Context, email, mobile string) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, a := range s.db.agents {
		if strings.EqualFold(a.Email, email) || a.Mobile == mobile {
			return true, nil
		}
	}
	return false, nil
}

func (s *AgentStore) List(_ context.Context) ([]models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]models.Agent, 0, len(s.db.agents))
	for i := len(s.db.agents) - 1; i >= 0; i-- {
		out = append(out, s.db.agents[i])
	}
	return out, nil
}

func (s *AgentStore) ListByParent(_ context.Context, parentID uuid.UUID) ([]models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]models.Agent, 0)
	for i := len(s.db.agents) - 1; i >= 0; i-- {
		if s.db.agents[i].ChildOf(parentID) {
			out = append(out, s.db.agents[i])
		}
	}
	return out, nil
}

func (s *AgentStore) ListRecipientsForAdmin(_ context.Context) ([]*models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*models.Agent, 0, len(s.db.agents))
	for _, a := range s.db.agents {
		a := a
		out = append(out, &a)
	}
	return out, nil
}

func (s *AgentStore) ListRecipientsForParent(_ context.Context, parentID uuid.UUID) ([]*models.Agent, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*models.Agent, 0)
	for _, a := range s.db.agents {
		if a.ChildOf(parentID) {
			a := a
			out = append(out, &a)
		}
	}
	return out, nil
}

func (s *AgentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.db.agentIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.db.agents = append(s.db.agents[:i], s.db.agents[i+1:]...)
	return nil
}

func (s *AgentStore) DeleteOwned(_ context.Context, id, parentID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.db.agentIndex(id)
	if i < 0 || !s.db.agents[i].ChildOf(parentID) {
		return store.ErrNotFound
	}
	s.db.agents = append(s.db.agents[:i], s.db.agents[i+1:]...)
	return nil
}

func (s *AgentStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := s.db.agentIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.db.agents[i].Password = hash
	s.db.agents[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (d *db) agentIndex(id uuid.UUID) int {
	for i := range d.agents {
		if d.agents[i].ID == id {
			return i
		}
	}
	return -1
}

type RecordStore struct{ db *db }

func (s *RecordStore) InsertBatch(_ context.Context, records []models.DistributionRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(s.db.records)+len(records))
	for _, r := range s.db.records {
		seen[r.ID] = struct{}{}
	}
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return store.ErrDuplicate
		}
		seen[r.ID] = struct{}{}
	}
	s.db.records = append(s.db.records, records...)
	return nil
}

func (s *RecordStore) FindByRecipient(_ context.Context, recipientID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	scope := authz.RecordScope{Field: authz.ByRecipient, PrincipalID: recipientID, DistributorKind: kind}
	return s.filter(scope.Allows), nil
}

func (s *RecordStore) FindByDistributor(_ context.Context, distributorID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	scope := authz.RecordScope{Field: authz.ByDistributor, PrincipalID: distributorID, DistributorKind: kind}
	return s.filter(scope.Allows), nil
}

func (s *RecordStore) FindAllGroupedByRecipient(_ context.Context) ([]store.RecipientGroup, error) {
	all := s.filter(func(*models.DistributionRecord) bool { return true })
	return store.GroupByRecipient(all), nil
}

// filter returns matching records newest first.
func (s *RecordStore) filter(keep func(*models.DistributionRecord) bool) []models.DistributionRecord {
	s.db.mu.RLock()
	out := make([]models.DistributionRecord, 0)
	for i := range s.db.records {
		if keep(&s.db.records[i]) {
			out = append(out, s.db.records[i])
		}
	}
	s.db.mu.RUnlock()

	store.SortNewestFirst(out)
	return out
}
