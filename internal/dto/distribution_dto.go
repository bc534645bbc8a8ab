package dto

import (
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/store"
	"github.com/google/uuid"
)

// UploadResponse summarizes one distributed upload.
type UploadResponse struct {
	Message          string                `json:"message"`
	BatchID          uuid.UUID             `json:"batch_id"`
	TotalRecords     int                   `json:"total_records"`
	Recipients       int                   `json:"recipients"`
	RecordsPerAgent  int                   `json:"records_per_agent"`
	RemainderRecords int                   `json:"remainder_records"`
	Distribution     []RecipientAllocation `json:"distribution"`
}

type RecipientAllocation struct {
	RecipientID   uuid.UUID `json:"recipient_id"`
	RecipientName string    `json:"recipient_name"`
	Count         int       `json:"count"`
}

type RecordListResponse struct {
	Count   int                         `json:"count"`
	Records []models.DistributionRecord `json:"records"`
}

func NewRecordListResponse(records []models.DistributionRecord) *RecordListResponse {
	if records == nil {
		records = []models.DistributionRecord{}
	}
	return &RecordListResponse{Count: len(records), Records: records}
}

type GroupedRecordsResponse struct {
	Count  int                    `json:"count"`
	Total  int                    `json:"total_records"`
	Groups []store.RecipientGroup `json:"groups"`
}

func NewGroupedRecordsResponse(groups []store.RecipientGroup) *GroupedRecordsResponse {
	if groups == nil {
		groups = []store.RecipientGroup{}
	}
	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	return &GroupedRecordsResponse{Count: len(groups), Total: total, Groups: groups}
}
