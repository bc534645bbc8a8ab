package pgstore

import (
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds a connection that renders SQL without dialing a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=none"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func TestScopes_SQL(t *testing.T) {
	db := dryRunDB(t)
	id := uuid.New()

	tests := []struct {
		name  string
		query func(tx *gorm.DB) *gorm.DB
		want  []string
	}{
		{
			name: "sub-agents of parent",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(ForParent(id)).Find(&[]models.Agent{})
			},
			want: []string{`"agents"`, "parent_agent_id = '" + id.String() + "'"},
		},
		{
			name: "assigned records",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(ForRecipient(id, models.KindAdministrator), NewestFirst).Find(&[]models.DistributionRecord{})
			},
			want: []string{"recipient_id = '" + id.String() + "'", "distributed_by_model = 'Administrator'", "ORDER BY upload_date DESC", "created_at ASC", "sequence ASC"},
		},
		{
			name: "distributed records",
			query: func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(ForDistributor(id, models.KindAgent)).Find(&[]models.DistributionRecord{})
			},
			want: []string{"distributed_by = '" + id.String() + "'", "distributed_by_model = 'Agent'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(tt.query)
			for _, w := range tt.want {
				if !strings.Contains(sql, w) {
					t.Errorf("SQL %q does not contain %q", sql, w)
				}
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if translate(gorm.ErrRecordNotFound) == gorm.ErrRecordNotFound {
		t.Error("record not found should map to store.ErrNotFound")
	}
	if translate(gorm.ErrDuplicatedKey) == gorm.ErrDuplicatedKey {
		t.Error("duplicated key should map to store.ErrDuplicate")
	}
	if translate(nil) != nil {
		t.Error("nil should stay nil")
	}
}
