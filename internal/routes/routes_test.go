package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/routes"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store/memstore"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const password = "secret!1"

type server struct {
	t         *testing.T
	app       *fiber.App
	uploadDir string
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		RateLimitMax:     1000,
		AuthRateLimitMax: 1000,
		StoreDriver:      config.DriverMemory,
	}
	uploadDir := t.TempDir()

	stores := memstore.New()
	authService := services.NewAuthService(stores, cfg)

	app := fiber.New(fiber.Config{
		BodyLimit:    ingest.MaxUploadSize + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})
	routes.Setup(app, cfg, authService, nil,
		handlers.NewAuthHandler(authService),
		handlers.NewAgentHandler(services.NewAgentService(stores, authService)),
		handlers.NewUploadHandler(services.NewDistributionService(stores), uploadDir),
		handlers.NewTaskHandler(services.NewTaskService(stores)),
		handlers.NewHealthHandler(stores.Ping, cfg.StoreDriver),
	)
	return &server{t: t, app: app, uploadDir: uploadDir}
}

func (s *server) do(req *http.Request, token string) (int, map[string]any) {
	s.t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", req.Method, req.URL.Path, raw, err)
		}
	}
	return resp.StatusCode, body
}

func (s *server) json(method, path, token string, payload any) (int, map[string]any) {
	s.t.Helper()
	var r io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(req, token)
}

func (s *server) upload(path, token, filename string, content []byte) (int, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		s.t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return s.do(req, token)
}

func (s *server) registerAdmin(email string) string {
	s.t.Helper()
	status, body := s.json(fiber.MethodPost, "/api/admin/register", "", map[string]string{"email": email, "password": password})
	if status != fiber.StatusCreated {
		s.t.Fatalf("register: status %d body %v", status, body)
	}
	return body["access_token"].(string)
}

func (s *server) createAgent(path, token, name, mobile string) string {
	s.t.Helper()
	status, body := s.json(fiber.MethodPost, path, token, map[string]string{
		"name": name, "email": name + "@example.com", "mobile": mobile, "password": password,
	})
	if status != fiber.StatusCreated {
		s.t.Fatalf("create %s: status %d body %v", name, status, body)
	}
	return body["id"].(string)
}

func (s *server) loginAgent(name string) string {
	s.t.Helper()
	status, body := s.json(fiber.MethodPost, "/api/agent-auth/login", "", map[string]string{"email": name + "@example.com", "password": password})
	if status != fiber.StatusOK {
		s.t.Fatalf("agent login: status %d body %v", status, body)
	}
	return body["access_token"].(string)
}

func contacts(n int) []byte {
	var b strings.Builder
	b.WriteString("FirstName,Phone,Notes\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "Contact%d,+91900000%04d,note %d\n", i, i, i)
	}
	return []byte(b.String())
}

func counts(t *testing.T, body map[string]any) []int {
	t.Helper()
	var out []int
	for _, d := range body["distribution"].([]any) {
		out = append(out, int(d.(map[string]any)["count"].(float64)))
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDistributionFlow(t *testing.T) {
	s := newServer(t)
	admin := s.registerAdmin("boss@example.com")

	for i, name := range []string{"alice", "bob", "carol"} {
		s.createAgent("/api/agents", admin, name, fmt.Sprintf("+9190000000%02d", i+1))
	}

	status, body := s.json(fiber.MethodGet, "/api/agents", admin, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 3 {
		t.Fatalf("list agents: status %d body %v", status, body)
	}

	status, body = s.upload("/api/upload", admin, "leads.csv", contacts(10))
	if status != fiber.StatusCreated {
		t.Fatalf("admin upload: status %d body %v", status, body)
	}
	if got := counts(t, body); !equalInts(got, []int{4, 3, 3}) {
		t.Errorf("admin distribution = %v, want [4 3 3]", got)
	}
	if body["remainder_records"].(float64) != 1 || body["records_per_agent"].(float64) != 3 {
		t.Errorf("summary = %v", body)
	}

	alice := s.loginAgent("alice")

	status, body = s.json(fiber.MethodGet, "/api/agent-tasks", alice, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 4 {
		t.Fatalf("assigned: status %d body %v", status, body)
	}
	first := body["records"].([]any)[0].(map[string]any)
	if first["first_name"] != "Contact1" || first["distributed_by_model"] != "Administrator" {
		t.Errorf("first assigned record = %v", first)
	}

	s.createAgent("/api/sub-agents", alice, "dave", "+919000000011")
	s.createAgent("/api/sub-agents", alice, "erin", "+919000000012")

	status, body = s.upload("/api/agent-upload", alice, "mine.csv", contacts(5))
	if status != fiber.StatusCreated {
		t.Fatalf("agent upload: status %d body %v", status, body)
	}
	if got := counts(t, body); !equalInts(got, []int{3, 2}) {
		t.Errorf("agent distribution = %v, want [3 2]", got)
	}

	status, body = s.json(fiber.MethodGet, "/api/agent-tasks/distributed?group=recipient", alice, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 2 || body["total_records"].(float64) != 5 {
		t.Errorf("grouped distributed: status %d body %v", status, body)
	}

	// records given to alice's sub-agents do not show up as alice's tasks
	status, body = s.json(fiber.MethodGet, "/api/agent-tasks", alice, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 4 {
		t.Errorf("assigned after agent upload: status %d body %v", status, body)
	}

	status, body = s.json(fiber.MethodGet, "/api/upload/distributed", admin, nil)
	if status != fiber.StatusOK || body["total_records"].(float64) != 15 {
		t.Errorf("all distributed: status %d body %v", status, body)
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir still holds %d files", len(entries))
	}
}

func TestRealmSeparation(t *testing.T) {
	s := newServer(t)
	admin := s.registerAdmin("boss@example.com")
	s.createAgent("/api/agents", admin, "alice", "+919000000001")
	alice := s.loginAgent("alice")

	tests := []struct {
		name, method, path, token string
	}{
		{"agent lists agents", fiber.MethodGet, "/api/agents", alice},
		{"agent reads admin profile", fiber.MethodGet, "/api/admin/profile", alice},
		{"admin lists sub-agents", fiber.MethodGet, "/api/sub-agents", admin},
		{"admin reads agent tasks", fiber.MethodGet, "/api/agent-tasks", admin},
		{"anonymous lists agents", fiber.MethodGet, "/api/agents", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, body := s.json(tt.method, tt.path, tt.token, nil); status != fiber.StatusUnauthorized {
				t.Errorf("status %d body %v, want 401", status, body)
			}
		})
	}
}

func TestDeletedAgentTokenRejected(t *testing.T) {
	s := newServer(t)
	admin := s.registerAdmin("boss@example.com")
	id := s.createAgent("/api/agents", admin, "alice", "+919000000001")
	alice := s.loginAgent("alice")

	if status, body := s.json(fiber.MethodDelete, "/api/agents/"+id, admin, nil); status != fiber.StatusOK {
		t.Fatalf("delete: status %d body %v", status, body)
	}
	if status, _ := s.json(fiber.MethodGet, "/api/agent-auth/profile", alice, nil); status != fiber.StatusUnauthorized {
		t.Errorf("profile after delete: status %d, want 401", status)
	}
	if status, _ := s.json(fiber.MethodDelete, "/api/agents/"+id, admin, nil); status != fiber.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", status)
	}
}

func TestUploadErrors(t *testing.T) {
	s := newServer(t)
	admin := s.registerAdmin("boss@example.com")

	status, body := s.upload("/api/upload", admin, "leads.csv", contacts(3))
	if status != fiber.StatusBadRequest {
		t.Errorf("no recipients: status %d body %v, want 400", status, body)
	}

	s.createAgent("/api/agents", admin, "alice", "+919000000001")
	alice := s.loginAgent("alice")

	tests := []struct {
		name     string
		path     string
		token    string
		filename string
		content  []byte
		want     int
	}{
		{"missing columns", "/api/upload", admin, "leads.csv", []byte("Name,Phone\nA,1\n"), fiber.StatusBadRequest},
		{"header only", "/api/upload", admin, "leads.csv", []byte("FirstName,Phone,Notes\n"), fiber.StatusBadRequest},
		{"unsupported extension", "/api/upload", admin, "leads.pdf", []byte("%PDF"), fiber.StatusBadRequest},
		{"corrupt xlsx", "/api/upload", admin, "leads.xlsx", []byte("not a zip"), fiber.StatusUnprocessableEntity},
		{"agent sends xlsx", "/api/agent-upload", alice, "leads.xlsx", []byte("not a zip"), fiber.StatusBadRequest},
		{"agent without sub-agents", "/api/agent-upload", alice, "leads.csv", contacts(2), fiber.StatusBadRequest},
		{"too large", "/api/upload", admin, "big.csv", bytes.Repeat([]byte("a"), ingest.MaxUploadSize+1), fiber.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.upload(tt.path, tt.token, tt.filename, tt.content)
			if status != tt.want {
				t.Errorf("status %d body %v, want %d", status, body, tt.want)
			}
			if body["error"] != true {
				t.Errorf("body %v is not an error response", body)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	status, body := s.json(fiber.MethodGet, "/api/health", "", nil)
	if status != fiber.StatusOK || body["status"] != "ok" || body["driver"] != config.DriverMemory {
		t.Errorf("health: status %d body %v", status, body)
	}
}
