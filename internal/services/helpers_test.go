package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store/memstore"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret!1"

type fixture struct {
	stores store.Stores
	auth   *AuthService
	agents *AgentService
	dist   *DistributionService
	tasks  *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	stores := memstore.New()
	auth := NewAuthService(stores, cfg)
	return &fixture{
		stores: stores,
		auth:   auth,
		agents: NewAgentService(stores, auth),
		dist:   NewDistributionService(stores),
		tasks:  NewTaskService(stores),
	}
}

func (f *fixture) admin(t *testing.T, email string) authz.Actor {
	t.Helper()
	resp, err := f.auth.RegisterAdmin(context.Background(), &dto.RegisterRequest{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	return authz.Actor{Kind: models.KindAdministrator, ID: resp.Admin.ID, Email: resp.Admin.Email}
}

func agentActor(a *models.Agent) authz.Actor {
	return authz.Actor{Kind: models.KindAgent, ID: a.ID, Email: a.Email}
}

func (f *fixture) agent(t *testing.T, by authz.Actor, name, mobile string) *models.Agent {
	t.Helper()
	req := &dto.CreateAgentRequest{Name: name, Email: name + "@example.com", Mobile: mobile, Password: testPassword}
	var (
		a   *models.Agent
		err error
	)
	if by.IsAdministrator() {
		a, err = f.agents.CreateAgent(context.Background(), by, req)
	} else {
		a, err = f.agents.CreateSubAgent(context.Background(), by, req)
	}
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return a
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
