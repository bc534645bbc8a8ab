package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DistributionRecord is one contact row assigned to one recipient. Records are
// append-only: recipient name and email are copied at distribution time and
// never re-resolved. Sequence is the row's position within its batch.
type DistributionRecord struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"batch_id"`
	RecipientID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_id"`
	RecipientName      string         `gorm:"not null;size:255" json:"recipient_name"`
	RecipientEmail     string         `gorm:"not null;size:255" json:"recipient_email"`
	FirstName          string         `gorm:"not null;size:255" json:"first_name"`
	Phone              string         `gorm:"not null;size:64" json:"phone"`
	Notes              string         `gorm:"type:text" json:"notes"`
	Extra              datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra,omitempty"`
	UploadDate         time.Time      `gorm:"not null;index" json:"upload_date"`
	DistributedBy      uuid.UUID      `gorm:"type:uuid;not null;index" json:"distributed_by"`
	DistributedByModel PrincipalKind  `gorm:"size:20;not null;index" json:"distributed_by_model"`
	DistributedByEmail string         `gorm:"not null;size:255" json:"distributed_by_email"`
	Sequence           int            `gorm:"not null;default:0" json:"sequence"`
	CreatedAt          time.Time      `json:"created_at"`
}
