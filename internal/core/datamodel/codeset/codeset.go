package codeset

import (
	"strings"

	"github.com/mlavigne/client-management/internal/core/datamodel"
)

// CodeSet is one labeled option of a named enumeration (e.g. type PROVINCE,
// code QC). The logical key is (TypeCode, Code), case-normalized upper; ID is
// a stable surrogate identifier for external references. Retired options are
// deactivated, never removed, so historical records keep resolving.
type CodeSet struct {
	ID            string `gorm:"column:id;primaryKey" json:"id"`
	TypeCode      string `gorm:"column:type_code;not null" json:"type_code"`
	Code          string `gorm:"column:code;not null" json:"code"`
	DescriptionFr string `gorm:"column:description_fr;not null" json:"description_fr"`
	DescriptionEn string `gorm:"column:description_en" json:"description_en"`
	SortOrder     int    `gorm:"column:sort_order;not null;default:0" json:"sort_order"`

	datamodel.AuditFields
}

func (CodeSet) TableName() string {
	return "code_sets"
}

func (c *CodeSet) PrimaryKey() map[string]any {
	return map[string]any{"id": c.ID}
}

// UniqueKey enforces one active row per (type_code, code) on Add/Reactivate.
func (c *CodeSet) UniqueKey() map[string]any {
	return map[string]any{"type_code": c.TypeCode, "code": c.Code}
}

// CacheGroup reports which cached group a write to this row touches.
func (c *CodeSet) CacheGroup() string {
	return NormalizeCode(c.TypeCode)
}

// NormalizeCode upper-cases and trims a type or option code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
