// Package pgstore is the PostgreSQL backend, built on GORM.
package pgstore

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 500

// New wraps an open connection. The connection must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) store.Stores {
	return store.Stores{
		Admins:  &AdminStore{db: db},
		Agents:  &AgentStore{db: db},
		Records: &RecordStore{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

type AdminStore struct{ db *gorm.DB }

func (s *AdminStore) Create(ctx context.Context, a *models.Admin) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *AdminStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	var a models.Admin
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AdminStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type AgentStore struct{ db *gorm.DB }

func (s *AgentStore) Create(ctx context.Context, a *models.Agent) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *AgentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var a models.Agent
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AgentStore) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	var a models.Agent
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *AgentStore) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Agent{}).
		Where("email = ? OR mobile = ?", email, mobile).
		Count(&n).Error
	return n > 0, err
}

func (s *AgentStore) List(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&agents).Error
	return agents, err
}

func (s *AgentStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.Agent, error) {
	var agents []models.Agent
	err := s.db.WithContext(ctx).Scopes(ForParent(parentID)).Order("created_at DESC").Find(&agents).Error
	return agents, err
}

func (s *AgentStore) ListRecipientsForAdmin(ctx context.Context) ([]*models.Agent, error) {
	var agents []*models.Agent
	err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&agents).Error
	return agents, err
}

func (s *AgentStore) ListRecipientsForParent(ctx context.Context, parentID uuid.UUID) ([]*models.Agent, error) {
	var agents []*models.Agent
	err := s.db.WithContext(ctx).Scopes(ForParent(parentID)).Order("created_at ASC").Order("id ASC").Find(&agents).Error
	return agents, err
}

func (s *AgentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Agent{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AgentStore) DeleteOwned(ctx context.Context, id, parentID uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(ForParent(parentID)).Delete(&models.Agent{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AgentStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.Agent{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type RecordStore struct{ db *gorm.DB }

func (s *RecordStore) InsertBatch(ctx context.Context, records []models.DistributionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&records, insertBatchSize).Error
	}))
}

func (s *RecordStore) FindByRecipient(ctx context.Context, recipientID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	var out []models.DistributionRecord
	err := s.db.WithContext(ctx).Scopes(ForRecipient(recipientID, kind), NewestFirst).Find(&out).Error
	return out, err
}

func (s *RecordStore) FindByDistributor(ctx context.Context, distributorID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	var out []models.DistributionRecord
	err := s.db.WithContext(ctx).Scopes(ForDistributor(distributorID, kind), NewestFirst).Find(&out).Error
	return out, err
}

func (s *RecordStore) FindAllGroupedByRecipient(ctx context.Context) ([]store.RecipientGroup, error) {
	var out []models.DistributionRecord
	if err := s.db.WithContext(ctx).Scopes(NewestFirst).Find(&out).Error; err != nil {
		return nil, err
	}
	return store.GroupByRecipient(out), nil
}
