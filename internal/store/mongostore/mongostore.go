// Package mongostore is the MongoDB backend. It keeps one collection per
// entity keyed by the principal or record UUID.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	adminsCollection  = "admins"
	agentsCollection  = "agents"
	recordsCollection = "distribution_records"
)

// New builds the stores over db. Call EnsureIndexes once at startup.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Admins:  &AdminStore{c: db.Collection(adminsCollection)},
		Agents:  &AgentStore{c: db.Collection(agentsCollection)},
		Records: &RecordStore{c: db.Collection(recordsCollection), client: db.Client()},
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

// EnsureIndexes creates the unique and lookup indexes for every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetName(name).SetUnique(true)
	}

	if _, err := db.Collection(adminsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("uniq_admin_email")},
	}); err != nil {
		return fmt.Errorf("admins indexes: %w", err)
	}

	if _, err := db.Collection(agentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("uniq_agent_email")},
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: unique("uniq_agent_mobile")},
		{
			Keys:    bson.D{{Key: "parent_agent_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_agent_parent"),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_agent_created")},
	}); err != nil {
		return fmt.Errorf("agents indexes: %w", err)
	}

	if _, err := db.Collection(recordsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "distributed_by_model", Value: 1}, {Key: "upload_date", Value: -1}},
			Options: options.Index().SetName("idx_record_recipient"),
		},
		{
			Keys:    bson.D{{Key: "distributed_by", Value: 1}, {Key: "distributed_by_model", Value: 1}, {Key: "upload_date", Value: -1}},
			Options: options.Index().SetName("idx_record_distributor"),
		},
		{Keys: bson.D{{Key: "batch_id", Value: 1}}, Options: options.Index().SetName("idx_record_batch")},
	}); err != nil {
		return fmt.Errorf("records indexes: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	}
	return err
}

// emailFilter matches an address case-insensitively.
func emailFilter(email string) bson.M {
	return bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
}

type AdminStore struct{ c *mongo.Collection }

func (s *AdminStore) Create(ctx context.Context, a *models.Admin) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := s.c.InsertOne(ctx, toAdminDoc(a))
	return translate(err)
}

func (s *AdminStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return s.findOne(ctx, emailFilter(email))
}

func (s *AdminStore) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var d adminDoc
	if err := s.c.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return d.model()
}

func (s *AdminStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type AgentStore struct{ c *mongo.Collection }

func (s *AgentStore) Create(ctx context.Context, a *models.Agent) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := s.c.InsertOne(ctx, toAgentDoc(a))
	return translate(err)
}

func (s *AgentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *AgentStore) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	return s.findOne(ctx, emailFilter(email))
}

func (s *AgentStore) findOne(ctx context.Context, filter bson.M) (*models.Agent, error) {
	var d agentDoc
	if err := s.c.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return d.model()
}

func (s *AgentStore) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"$or": bson.A{
		emailFilter(email),
		bson.M{"mobile": mobile},
	}}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *AgentStore) List(ctx context.Context) ([]models.Agent, error) {
	return s.find(ctx, bson.M{}, -1)
}

func (s *AgentStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.Agent, error) {
	return s.find(ctx, bson.M{"parent_agent_id": parentID.String()}, -1)
}

func (s *AgentStore) ListRecipientsForAdmin(ctx context.Context) ([]*models.Agent, error) {
	agents, err := s.find(ctx, bson.M{}, 1)
	return pointers(agents), err
}

func (s *AgentStore) ListRecipientsForParent(ctx context.Context, parentID uuid.UUID) ([]*models.Agent, error) {
	agents, err := s.find(ctx, bson.M{"parent_agent_id": parentID.String()}, 1)
	return pointers(agents), err
}

func (s *AgentStore) find(ctx context.Context, filter bson.M, order int) ([]models.Agent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}, {Key: "_id", Value: order}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Agent, 0)
	for cur.Next(ctx) {
		var d agentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		a, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, cur.Err()
}

func pointers(agents []models.Agent) []*models.Agent {
	out := make([]*models.Agent, len(agents))
	for i := range agents {
		out[i] = &agents[i]
	}
	return out
}

func (s *AgentStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteOne(ctx, bson.M{"_id": id.String()})
}

func (s *AgentStore) DeleteOwned(ctx context.Context, id, parentID uuid.UUID) error {
	return s.deleteOne(ctx, bson.M{"_id": id.String(), "parent_agent_id": parentID.String()})
}

func (s *AgentStore) deleteOne(ctx context.Context, filter bson.M) error {
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AgentStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type RecordStore struct {
	c      *mongo.Collection
	client *mongo.Client
}

// InsertBatch writes the batch inside a multi-document transaction.
func (s *RecordStore) InsertBatch(ctx context.Context, records []models.DistributionRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for i := range records {
		d, err := toRecordDoc(&records[i])
		if err != nil {
			return fmt.Errorf("encode record %s: %w", records[i].ID, err)
		}
		docs = append(docs, d)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return s.c.InsertMany(sc, docs, options.InsertMany().SetOrdered(true))
	})
	return translate(err)
}

func (s *RecordStore) FindByRecipient(ctx context.Context, recipientID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	return s.find(ctx, bson.M{"recipient_id": recipientID.String(), "distributed_by_model": string(kind)})
}

func (s *RecordStore) FindByDistributor(ctx context.Context, distributorID uuid.UUID, kind models.PrincipalKind) ([]models.DistributionRecord, error) {
	return s.find(ctx, bson.M{"distributed_by": distributorID.String(), "distributed_by_model": string(kind)})
}

func (s *RecordStore) FindAllGroupedByRecipient(ctx context.Context) ([]store.RecipientGroup, error) {
	records, err := s.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return store.GroupByRecipient(records), nil
}

func (s *RecordStore) find(ctx context.Context, filter bson.M) ([]models.DistributionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "upload_date", Value: -1}, {Key: "created_at", Value: 1}, {Key: "sequence", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.DistributionRecord, 0)
	for cur.Next(ctx) {
		var d recordDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		r, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, cur.Err()
}
