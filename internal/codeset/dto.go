package codeset

import (
	"time"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/core/common/validation"
	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
)

type CreateCodeSetRequest struct {
	TypeCode      string `json:"type_code"`
	Code          string `json:"code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
	SortOrder     int    `json:"sort_order"`
}

func (r *CreateCodeSetRequest) Validate() *internal.AppError {
	r.TypeCode = codesetDatamodel.NormalizeCode(r.TypeCode)
	r.Code = codesetDatamodel.NormalizeCode(r.Code)

	v := validation.NewValidator()
	v.Field("type_code", r.TypeCode).Required().MaxLength(30).CodeFormat()
	v.Field("code", r.Code).Required().MaxLength(30).CodeFormat()
	v.Field("description_fr", r.DescriptionFr).Required().MaxLength(200)
	v.Field("description_en", r.DescriptionEn).MaxLength(200)
	return v.Validate()
}

// UpdateCodeSetRequest edits the labels and ordering of an entry. The type
// and code are immutable: records elsewhere reference them. RowVersion is the
// concurrency token read alongside the entry being edited.
type UpdateCodeSetRequest struct {
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
	SortOrder     int    `json:"sort_order"`
	RowVersion    int64  `json:"row_version"`
}

func (r *UpdateCodeSetRequest) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("description_fr", r.DescriptionFr).Required().MaxLength(200)
	v.Field("description_en", r.DescriptionEn).MaxLength(200)
	return v.Validate()
}

type CodeSetResponse struct {
	ID            string    `json:"id"`
	TypeCode      string    `json:"type_code"`
	Code          string    `json:"code"`
	DescriptionFr string    `json:"description_fr"`
	DescriptionEn string    `json:"description_en,omitempty"`
	SortOrder     int       `json:"sort_order"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
	RowVersion    int64     `json:"row_version"`
}

func FromDataModel(m *codesetDatamodel.CodeSet) CodeSetResponse {
	return CodeSetResponse{
		ID:            m.ID,
		TypeCode:      m.TypeCode,
		Code:          m.Code,
		DescriptionFr: m.DescriptionFr,
		DescriptionEn: m.DescriptionEn,
		SortOrder:     m.SortOrder,
		IsActive:      m.IsActive,
		UpdatedAt:     m.UpdatedAt,
		RowVersion:    m.RowVersion,
	}
}

type GroupResponse struct {
	TypeCode string   `json:"type_code"`
	Culture  string   `json:"culture"`
	Options  []Option `json:"options"`
}
