package store

import (
	"sort"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/google/uuid"
)

// RecipientGroup is every record assigned to one recipient.
type RecipientGroup struct {
	RecipientID    uuid.UUID                   `json:"recipient_id"`
	RecipientName  string                      `json:"recipient_name"`
	RecipientEmail string                      `json:"recipient_email"`
	Records        []models.DistributionRecord `json:"records"`
}

// SortNewestFirst orders records by upload date, newest first. Records from
// the same upload are ordered by their sequence within the batch.
func SortNewestFirst(records []models.DistributionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.After(b.UploadDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Sequence < b.Sequence
	})
}

// GroupByRecipient groups records by recipient id. Groups appear in the order
// their recipient is first seen and records keep their input order.
func GroupByRecipient(records []models.DistributionRecord) []RecipientGroup {
	groups := make([]RecipientGroup, 0)
	index := make(map[uuid.UUID]int)
	for _, rec := range records {
		i, ok := index[rec.RecipientID]
		if !ok {
			i = len(groups)
			index[rec.RecipientID] = i
			groups = append(groups, RecipientGroup{
				RecipientID:    rec.RecipientID,
				RecipientName:  rec.RecipientName,
				RecipientEmail: rec.RecipientEmail,
			})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}
