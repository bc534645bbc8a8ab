package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/authz"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/distribution"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/google/uuid"
)

// Upload is a file the transport layer has already written to disk.
type Upload struct {
	Path     string
	Format   ingest.Format
	Filename string
}

type DistributionService struct {
	agents  store.AgentStore
	records store.RecordStore
	now     func() time.Time
}

func NewDistributionService(stores store.Stores) *DistributionService {
	return &DistributionService{agents: stores.Agents, records: stores.Records, now: time.Now}
}

// AllowedFormats lists the upload formats each tier may send.
func AllowedFormats(kind models.PrincipalKind) []ingest.Format {
	if kind == models.KindAdministrator {
		return []ingest.Format{ingest.FormatCSV, ingest.FormatXLS, ingest.FormatXLSX}
	}
	return []ingest.Format{ingest.FormatCSV}
}

func formatAllowed(kind models.PrincipalKind, f ingest.Format) bool {
	for _, allowed := range AllowedFormats(kind) {
		if allowed == f {
			return true
		}
	}
	return false
}

// DistributeFile runs the whole upload pipeline for actor: resolve recipients,
// decode, validate headers, normalize, partition and persist. The uploaded
// file is removed on every path. Administrators distribute to every agent,
// agents to their own sub-agents; both in creation order.
func (s *DistributionService) DistributeFile(ctx context.Context, actor authz.Actor, up Upload) (*distribution.Result, error) {
	defer removeUpload(up.Path)

	if !actor.Kind.Valid() {
		return nil, ErrUnauthorized
	}
	if !formatAllowed(actor.Kind, up.Format) {
		return nil, ingest.ErrUnsupportedFormat
	}

	recipients, err := s.recipients(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, distribution.ErrNoRecipients
	}

	table, err := ingest.DecodeFile(up.Path, up.Format)
	if err != nil {
		return nil, err
	}
	if err := ingest.ValidateHeaders(table.Headers); err != nil {
		return nil, err
	}
	rows := ingest.Normalize(table.Rows)
	if len(rows) == 0 {
		return nil, ingest.ErrEmptyFile
	}

	by := distribution.Distributor{ID: actor.ID, Kind: actor.Kind, Email: actor.Email}
	result, err := distribution.Distribute(rows, recipients, by, uuid.New(), s.now().UTC())
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.records.InsertBatch(ctx, result.Records); err != nil {
		return nil, fmt.Errorf("failed to save distributed records: %w", err)
	}

	slog.Info("records distributed",
		"action", "distribute",
		"realm", principal.RealmForKind(actor.Kind),
		"principal_id", actor.ID.String(),
		"batch_id", result.BatchID.String(),
		"file", up.Filename,
		"total", result.Total,
		"recipients", result.Recipients,
	)
	return result, nil
}

func (s *DistributionService) recipients(ctx context.Context, actor authz.Actor) ([]*models.Agent, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if actor.IsAdministrator() {
		return s.agents.ListRecipientsForAdmin(ctx)
	}
	parentID, err := authz.SubAgentScope(actor)
	if err != nil {
		return nil, translate(err, "agent")
	}
	return s.agents.ListRecipientsForParent(ctx, parentID)
}

func removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove uploaded file", "path", path, "error", err)
	}
}
