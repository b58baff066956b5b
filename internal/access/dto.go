package access

import (
	"strings"
	"time"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/core/common/validation"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type CreateViewRequest struct {
	ViewCode      string `json:"view_code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
}

func (r *CreateViewRequest) Validate() *internal.AppError {
	r.ViewCode = normalizeCode(r.ViewCode)

	v := validation.NewValidator()
	v.Field("view_code", r.ViewCode).Required().MaxLength(60).CodeFormat()
	v.Field("description_fr", r.DescriptionFr).Required().MaxLength(200)
	v.Field("description_en", r.DescriptionEn).MaxLength(200)
	return v.Validate()
}

type CreateAccessTypeRequest struct {
	AccessTypeCode string `json:"access_type_code"`
	DescriptionFr  string `json:"description_fr"`
	DescriptionEn  string `json:"description_en"`
}

func (r *CreateAccessTypeRequest) Validate() *internal.AppError {
	r.AccessTypeCode = normalizeCode(r.AccessTypeCode)

	v := validation.NewValidator()
	v.Field("access_type_code", r.AccessTypeCode).Required().MaxLength(30).CodeFormat()
	v.Field("description_fr", r.DescriptionFr).Required().MaxLength(200)
	v.Field("description_en", r.DescriptionEn).MaxLength(200)
	return v.Validate()
}

type SetGrantRequest struct {
	PrivilegeCode string `json:"privilege_code"`
}

func (r *SetGrantRequest) Validate() *internal.AppError {
	r.PrivilegeCode = strings.ToLower(strings.TrimSpace(r.PrivilegeCode))

	v := validation.NewValidator()
	v.Field("privilege_code", r.PrivilegeCode).Required().
		OneOf(PrivilegeCodes(), internal.ErrCodeInvalidPrivilege)
	return v.Validate()
}

type AssignAccessTypeRequest struct {
	AccessTypeCode string `json:"access_type_code"`
}

func (r *AssignAccessTypeRequest) Validate() *internal.AppError {
	r.AccessTypeCode = normalizeCode(r.AccessTypeCode)

	v := validation.NewValidator()
	v.Field("access_type_code", r.AccessTypeCode).Required().MaxLength(30).CodeFormat()
	return v.Validate()
}

type ViewResponse struct {
	ViewCode      string `json:"view_code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func ViewFromDataModel(m *accessDatamodel.AppView) ViewResponse {
	return ViewResponse{
		ViewCode:      m.ViewCode,
		DescriptionFr: m.DescriptionFr,
		DescriptionEn: m.DescriptionEn,
		IsActive:      m.IsActive,
	}
}

type AccessTypeResponse struct {
	AccessTypeCode string `json:"access_type_code"`
	DescriptionFr  string `json:"description_fr"`
	DescriptionEn  string `json:"description_en,omitempty"`
	IsActive       bool   `json:"is_active"`
}

func AccessTypeFromDataModel(m *accessDatamodel.AccessType) AccessTypeResponse {
	return AccessTypeResponse{
		AccessTypeCode: m.AccessTypeCode,
		DescriptionFr:  m.DescriptionFr,
		DescriptionEn:  m.DescriptionEn,
		IsActive:       m.IsActive,
	}
}

type GrantResponse struct {
	UserID        string    `json:"user_id"`
	ViewCode      string    `json:"view_code"`
	PrivilegeCode string    `json:"privilege_code"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedBy     string    `json:"updated_by"`
}

func GrantFromDataModel(m *accessDatamodel.UserViewAccess) GrantResponse {
	return GrantResponse{
		UserID:        m.UserID,
		ViewCode:      m.ViewCode,
		PrivilegeCode: m.PrivilegeCode,
		UpdatedAt:     m.UpdatedAt,
		UpdatedBy:     m.UpdatedBy,
	}
}
