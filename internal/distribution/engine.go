package distribution

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNoRecipients        = errors.New("no recipients available for distribution")
	ErrSelfDistribution    = errors.New("a distributor cannot receive its own records")
	ErrInvalidDistributor  = errors.New("distributor kind is not valid")
	ErrNegativeRecordCount = errors.New("record count cannot be negative")
)

// Distributor identifies the principal that uploaded a batch.
type Distributor struct {
	ID    uuid.UUID
	Kind  models.PrincipalKind
	Email string
}

// Allocation is the share of a batch one recipient received.
type Allocation struct {
	RecipientID   uuid.UUID
	RecipientName string
	Count         int
}

// Result describes one distributed batch.
type Result struct {
	BatchID     uuid.UUID
	Total       int
	Recipients  int
	Base        int
	Remainder   int
	Counts      []int
	Allocations []Allocation
	Records     []models.DistributionRecord
}

// Counts returns how many of n records each of m recipients receives. The
// first n%m recipients get one record more than the rest.
func Counts(n, m int) ([]int, error) {
	if m <= 0 {
		return nil, ErrNoRecipients
	}
	if n < 0 {
		return nil, ErrNegativeRecordCount
	}

	base, remainder := n/m, n%m
	counts := make([]int, m)
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts, nil
}

// Partition splits records into m contiguous blocks sized by Counts. Blocks
// may be empty when there are fewer records than recipients.
func Partition(records []ingest.Row, m int) ([][]ingest.Row, error) {
	counts, err := Counts(len(records), m)
	if err != nil {
		return nil, err
	}

	blocks := make([][]ingest.Row, m)
	offset := 0
	for i, c := range counts {
		blocks[i] = records[offset : offset+c]
		offset += c
	}
	return blocks, nil
}

// Distribute assigns records to recipients in list order and builds the
// records to persist. Nothing is written; the caller owns persistence.
func Distribute(records []ingest.Row, recipients []*models.Agent, by Distributor, batchID uuid.UUID, now time.Time) (*Result, error) {
	if !by.Kind.Valid() {
		return nil, ErrInvalidDistributor
	}
	for _, r := range recipients {
		if r.ID == by.ID {
			return nil, fmt.Errorf("%w: %s", ErrSelfDistribution, r.ID)
		}
	}

	blocks, err := Partition(records, len(recipients))
	if err != nil {
		return nil, err
	}

	n, m := len(records), len(recipients)
	res := &Result{
		BatchID:     batchID,
		Total:       n,
		Recipients:  m,
		Base:        n / m,
		Remainder:   n % m,
		Counts:      make([]int, m),
		Allocations: make([]Allocation, m),
		Records:     make([]models.DistributionRecord, 0, n),
	}

	for i, block := range blocks {
		recipient := recipients[i]
		res.Counts[i] = len(block)
		res.Allocations[i] = Allocation{RecipientID: recipient.ID, RecipientName: recipient.Name, Count: len(block)}
		for _, row := range block {
			extra, err := extraJSON(row)
			if err != nil {
				return nil, err
			}
			res.Records = append(res.Records, models.DistributionRecord{
				ID:                 uuid.New(),
				BatchID:            batchID,
				RecipientID:        recipient.ID,
				RecipientName:      recipient.Name,
				RecipientEmail:     recipient.Email,
				FirstName:          row.FirstName(),
				Phone:              row.Phone(),
				Notes:              row.Notes(),
				Extra:              extra,
				UploadDate:         now,
				DistributedBy:      by.ID,
				DistributedByModel: by.Kind,
				DistributedByEmail: by.Email,
				Sequence:           len(res.Records),
				CreatedAt:          now,
			})
		}
	}
	return res, nil
}

func extraJSON(row ingest.Row) (datatypes.JSON, error) {
	extras := row.Extras()
	if extras == nil {
		return datatypes.JSON("{}"), nil
	}
	b, err := json.Marshal(extras)
	if err != nil {
		return nil, fmt.Errorf("encode extra columns: %w", err)
	}
	return datatypes.JSON(b), nil
}
