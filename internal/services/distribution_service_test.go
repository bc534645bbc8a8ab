package services

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/distribution"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
)

func contactsCSV(n int) string {
	var b strings.Builder
	b.WriteString("FirstName,Phone,Notes\n")
	for i := 0; i < n; i++ {
		b.WriteString("contact" + strconv.Itoa(i) + ",+9100000" + strconv.Itoa(i) + ",note\n")
	}
	return b.String()
}

func TestDistributeFile_AdminToAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "boss@example.com")
	a1 := f.agent(t, admin, "one", "+919000000001")
	a2 := f.agent(t, admin, "two", "+919000000002")
	a3 := f.agent(t, admin, "three", "+919000000003")

	path := writeUpload(t, "contacts.csv", contactsCSV(10))
	res, err := f.dist.DistributeFile(ctx, admin, Upload{Path: path, Format: ingest.FormatCSV})
	if err != nil {
		t.Fatalf("DistributeFile: %v", err)
	}
	if !reflect.DeepEqual(res.Counts, []int{4, 3, 3}) {
		t.Errorf("counts = %v", res.Counts)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("uploaded file should be removed after distribution")
	}

	for i, a := range []*models.Agent{a1, a2, a3} {
		got, err := f.tasks.Assigned(ctx, agentActor(a))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != res.Counts[i] {
			t.Errorf("%s received %d records, want %d", a.Name, len(got), res.Counts[i])
		}
	}

	groups, err := f.tasks.AllGrouped(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Errorf("expected 3 recipient groups, got %d", len(groups))
	}
}

func TestDistributeFile_AgentToSubAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "boss@example.com")
	lead := agentActor(f.agent(t, admin, "lead", "+919000000001"))
	s1 := f.agent(t, lead, "subone", "+919000000011")
	s2 := f.agent(t, lead, "subtwo", "+919000000012")

	res, err := f.dist.DistributeFile(ctx, lead, Upload{Path: writeUpload(t, "c.csv", contactsCSV(3)), Format: ingest.FormatCSV})
	if err != nil {
		t.Fatalf("DistributeFile: %v", err)
	}
	if !reflect.DeepEqual(res.Counts, []int{2, 1}) {
		t.Errorf("counts = %v", res.Counts)
	}

	distributed, err := f.tasks.Distributed(ctx, lead)
	if err != nil {
		t.Fatal(err)
	}
	if len(distributed) != 3 {
		t.Errorf("lead distributed %d records", len(distributed))
	}
	for _, r := range distributed {
		if r.RecipientID != s1.ID && r.RecipientID != s2.ID {
			t.Errorf("record went outside the lead's sub-agents: %+v", r)
		}
		if r.DistributedByModel != models.KindAgent || r.DistributedByEmail != lead.Email {
			t.Errorf("distributor not recorded: %+v", r)
		}
	}

	// records from an agent never show up as tasks assigned by an administrator
	assigned, err := f.tasks.Assigned(ctx, agentActor(s1))
	if err != nil {
		t.Fatal(err)
	}
	if len(assigned) != 0 {
		t.Errorf("sub-agent sees %d agent-distributed records as admin tasks", len(assigned))
	}

	grouped, err := f.tasks.DistributedGrouped(ctx, lead)
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped) != 2 {
		t.Errorf("expected 2 groups, got %d", len(grouped))
	}
}

func TestDistributeFile_NoSubAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "boss@example.com")
	lonely := agentActor(f.agent(t, admin, "lonely", "+919000000001"))

	path := writeUpload(t, "c.csv", contactsCSV(5))
	_, err := f.dist.DistributeFile(ctx, lonely, Upload{Path: path, Format: ingest.FormatCSV})
	if !errors.Is(err, distribution.ErrNoRecipients) {
		t.Fatalf("got %v, want ErrNoRecipients", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("uploaded file should be removed on failure")
	}

	groups, _ := f.stores.Records.FindAllGroupedByRecipient(ctx)
	if len(groups) != 0 {
		t.Error("nothing should be written when there are no recipients")
	}
}

func TestDistributeFile_BadContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "boss@example.com")
	f.agent(t, admin, "one", "+919000000001")

	tests := []struct {
		name    string
		content string
		format  ingest.Format
		want    error
	}{
		{"wrong headers", "Name,Mobile,Comment\nAlice,1,x\n", ingest.FormatCSV, ingest.ErrMissingColumns},
		{"only header", "FirstName,Phone,Notes\n", ingest.FormatCSV, ingest.ErrEmptyFile},
		{"no usable rows", "FirstName,Phone,Notes\n,,just a note\n", ingest.FormatCSV, ingest.ErrEmptyFile},
		{"broken xlsx", "garbage", ingest.FormatXLSX, ingest.ErrParseFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeUpload(t, "upload."+string(tt.format), tt.content)
			_, err := f.dist.DistributeFile(ctx, admin, Upload{Path: path, Format: tt.format})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	var mc *ingest.MissingColumnsError
	_, err := f.dist.DistributeFile(ctx, admin, Upload{Path: writeUpload(t, "x.csv", "Name,Mobile,Comment\n"), Format: ingest.FormatCSV})
	if !errors.As(err, &mc) || strings.Join(mc.Columns, ",") != "firstname,phone,notes" {
		t.Errorf("missing columns: %v", err)
	}
}

func TestDistributeFile_AgentCSVOnly(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t, "boss@example.com")
	lead := agentActor(f.agent(t, admin, "lead", "+919000000001"))
	f.agent(t, lead, "sub", "+919000000011")

	_, err := f.dist.DistributeFile(context.Background(), lead, Upload{Path: writeUpload(t, "c.xlsx", "x"), Format: ingest.FormatXLSX})
	if !errors.Is(err, ingest.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}
