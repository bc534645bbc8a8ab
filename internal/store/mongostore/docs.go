package mongostore

import (
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Documents use the string form of the uuid as _id so ids round-trip
// unchanged between backends.

type adminDoc struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toAdminDoc(a *models.Admin) adminDoc {
	return adminDoc{
		ID:        a.ID.String(),
		Email:     a.Email,
		Password:  a.Password,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d adminDoc) model() (*models.Admin, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &models.Admin{ID: id, Email: d.Email, Password: d.Password, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

type agentDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	Mobile         string    `bson:"mobile"`
	Password       string    `bson:"password"`
	CreatedByModel string    `bson:"created_by_model"`
	CreatedBy      string    `bson:"created_by"`
	ParentAgentID  *string   `bson:"parent_agent_id,omitempty"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toAgentDoc(a *models.Agent) agentDoc {
	d := agentDoc{
		ID:             a.ID.String(),
		Name:           a.Name,
		Email:          a.Email,
		Mobile:         a.Mobile,
		Password:       a.Password,
		CreatedByModel: string(a.CreatedBy.Kind),
		CreatedBy:      a.CreatedBy.PrincipalID.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.ParentAgentID != nil {
		p := a.ParentAgentID.String()
		d.ParentAgentID = &p
	}
	return d
}

func (d agentDoc) model() (*models.Agent, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.CreatedBy)
	if err != nil {
		return nil, err
	}
	a := &models.Agent{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Mobile:    d.Mobile,
		Password:  d.Password,
		CreatedBy: models.Owner{Kind: models.PrincipalKind(d.CreatedByModel), PrincipalID: owner},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ParentAgentID != nil {
		parent, err := uuid.Parse(*d.ParentAgentID)
		if err != nil {
			return nil, err
		}
		a.ParentAgentID = &parent
	}
	return a, nil
}

type recordDoc struct {
	ID                 string            `bson:"_id"`
	BatchID            string            `bson:"batch_id"`
	RecipientID        string            `bson:"recipient_id"`
	RecipientName      string            `bson:"recipient_name"`
	RecipientEmail     string            `bson:"recipient_email"`
	FirstName          string            `bson:"first_name"`
	Phone              string            `bson:"phone"`
	Notes              string            `bson:"notes"`
	Extra              map[string]string `bson:"extra,omitempty"`
	UploadDate         time.Time         `bson:"upload_date"`
	DistributedBy      string            `bson:"distributed_by"`
	DistributedByModel string            `bson:"distributed_by_model"`
	DistributedByEmail string            `bson:"distributed_by_email"`
	Sequence           int               `bson:"sequence"`
	CreatedAt          time.Time         `bson:"created_at"`
}

func toRecordDoc(r *models.DistributionRecord) (recordDoc, error) {
	d := recordDoc{
		ID:                 r.ID.String(),
		BatchID:            r.BatchID.String(),
		RecipientID:        r.RecipientID.String(),
		RecipientName:      r.RecipientName,
		RecipientEmail:     r.RecipientEmail,
		FirstName:          r.FirstName,
		Phone:              r.Phone,
		Notes:              r.Notes,
		UploadDate:         r.UploadDate,
		DistributedBy:      r.DistributedBy.String(),
		DistributedByModel: string(r.DistributedByModel),
		DistributedByEmail: r.DistributedByEmail,
		Sequence:           r.Sequence,
		CreatedAt:          r.CreatedAt,
	}
	if len(r.Extra) > 0 {
		var extra map[string]string
		if err := json.Unmarshal(r.Extra, &extra); err != nil {
			return recordDoc{}, err
		}
		if len(extra) > 0 {
			d.Extra = extra
		}
	}
	return d, nil
}

func (d recordDoc) model() (models.DistributionRecord, error) {
	var (
		r   models.DistributionRecord
		err error
	)
	if r.ID, err = uuid.Parse(d.ID); err != nil {
		return r, err
	}
	if r.BatchID, err = uuid.Parse(d.BatchID); err != nil {
		return r, err
	}
	if r.RecipientID, err = uuid.Parse(d.RecipientID); err != nil {
		return r, err
	}
	if r.DistributedBy, err = uuid.Parse(d.DistributedBy); err != nil {
		return r, err
	}
	r.RecipientName = d.RecipientName
	r.RecipientEmail = d.RecipientEmail
	r.FirstName = d.FirstName
	r.Phone = d.Phone
	r.Notes = d.Notes
	r.UploadDate = d.UploadDate
	r.DistributedByModel = models.PrincipalKind(d.DistributedByModel)
	r.DistributedByEmail = d.DistributedByEmail
	r.Sequence = d.Sequence
	r.CreatedAt = d.CreatedAt

	r.Extra = datatypes.JSON("{}")
	if len(d.Extra) > 0 {
		b, err := json.Marshal(d.Extra)
		if err != nil {
			return r, err
		}
		r.Extra = datatypes.JSON(b)
	}
	return r, nil
}
