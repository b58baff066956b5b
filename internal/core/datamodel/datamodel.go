package datamodel

import "time"

// AuditFields is embedded by every persisted entity. CreatedAt/CreatedBy are
// written once; UpdatedAt/UpdatedBy are re-stamped on every successful write.
// IsActive=false marks a logically deleted row; rows are never removed.
// RowVersion is the optimistic concurrency token, bumped on every write.
type AuditFields struct {
	CreatedAt  time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
	CreatedBy  string    `gorm:"column:created_by;not null" json:"created_by"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
	UpdatedBy  string    `gorm:"column:updated_by;not null" json:"updated_by"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	RowVersion int64     `gorm:"column:row_version;not null;default:0" json:"row_version"`
}

// Audit gives the repository access to the embedded audit fields.
func (f *AuditFields) Audit() *AuditFields { return f }
