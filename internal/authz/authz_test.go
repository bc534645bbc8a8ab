package authz

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
)

func TestCreateGuards(t *testing.T) {
	admin := Actor{Kind: models.KindAdministrator, ID: uuid.New()}
	agent := Actor{Kind: models.KindAgent, ID: uuid.New()}

	if err := CanCreateAgent(admin); err != nil {
		t.Errorf("admin should create agents: %v", err)
	}
	if err := CanCreateAgent(agent); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("agent creating agent: got %v", err)
	}
	if err := CanCreateSubAgent(agent); err != nil {
		t.Errorf("agent should create sub-agents: %v", err)
	}
	if err := CanCreateSubAgent(admin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("admin creating sub-agent: got %v", err)
	}
}

func TestCanDeleteAgent(t *testing.T) {
	admin := Actor{Kind: models.KindAdministrator, ID: uuid.New()}
	parent := Actor{Kind: models.KindAgent, ID: uuid.New()}
	stranger := Actor{Kind: models.KindAgent, ID: uuid.New()}

	top := models.NewAgent(admin.ID, "Top", "top@example.com", "+919000000001", "h")
	child := models.NewSubAgent(parent.ID, "Child", "child@example.com", "+919000000002", "h")

	tests := []struct {
		name   string
		actor  Actor
		target *models.Agent
		want   error
	}{
		{"admin deletes top-level", admin, top, nil},
		{"admin deletes sub-agent", admin, child, nil},
		{"parent deletes own child", parent, child, nil},
		{"stranger deletes child", stranger, child, ErrNotFound},
		{"agent deletes top-level", parent, top, ErrNotFound},
		{"missing target", admin, nil, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteAgent(tt.actor, tt.target); !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordScopesAreDisjoint(t *testing.T) {
	me := Actor{Kind: models.KindAgent, ID: uuid.New()}
	assigned, err := AssignedScope(me)
	if err != nil {
		t.Fatal(err)
	}
	distributed, err := DistributedScope(me)
	if err != nil {
		t.Fatal(err)
	}

	fromAdmin := &models.DistributionRecord{RecipientID: me.ID, DistributedBy: uuid.New(), DistributedByModel: models.KindAdministrator}
	fromMe := &models.DistributionRecord{RecipientID: uuid.New(), DistributedBy: me.ID, DistributedByModel: models.KindAgent}
	fromPeer := &models.DistributionRecord{RecipientID: me.ID, DistributedBy: uuid.New(), DistributedByModel: models.KindAgent}

	for _, rec := range []*models.DistributionRecord{fromAdmin, fromMe, fromPeer} {
		if assigned.Allows(rec) && distributed.Allows(rec) {
			t.Errorf("record %+v is visible through both scopes", rec)
		}
	}
	if !assigned.Allows(fromAdmin) || assigned.Allows(fromPeer) {
		t.Error("assigned scope must only admit administrator-distributed records")
	}
	if !distributed.Allows(fromMe) {
		t.Error("distributed scope must admit own records")
	}
}

func TestScopesRejectAdministrators(t *testing.T) {
	admin := Actor{Kind: models.KindAdministrator, ID: uuid.New()}
	if _, err := AssignedScope(admin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("AssignedScope: got %v", err)
	}
	if _, err := SubAgentScope(admin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("SubAgentScope: got %v", err)
	}
}
