package models

import "github.com/google/uuid"

// PrincipalKind discriminates the two principal families.
type PrincipalKind string

const (
	KindAdministrator PrincipalKind = "Administrator"
	KindAgent         PrincipalKind = "Agent"
)

func (k PrincipalKind) Valid() bool {
	return k == KindAdministrator || k == KindAgent
}

// Owner is the polymorphic created-by reference carried by every Agent.
type Owner struct {
	Kind        PrincipalKind `gorm:"column:kind;size:20;not null;index" json:"kind"`
	PrincipalID uuid.UUID     `gorm:"column:id;type:uuid;not null;index" json:"id"`
}
