package pgstore

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForParent returns a GORM scope that filters agents by parent agent.
func ForParent(parentID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_agent_id = ?", parentID)
	}
}

// ForRecipient returns a GORM scope over records assigned to recipientID by a
// distributor of the given kind.
func ForRecipient(recipientID uuid.UUID, kind models.PrincipalKind) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("recipient_id = ? AND distributed_by_model = ?", recipientID, kind)
	}
}

// ForDistributor returns a GORM scope over records handed out by distributorID.
func ForDistributor(distributorID uuid.UUID, kind models.PrincipalKind) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("distributed_by = ? AND distributed_by_model = ?", distributorID, kind)
	}
}

// NewestFirst orders records by upload date, newest first, and keeps rows of
// one batch in file order.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("upload_date DESC").Order("created_at ASC").Order("sequence ASC")
}
