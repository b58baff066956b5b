package client

import (
	"strings"
	"time"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/core/common/validation"
	clientDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/client"
)

type CreateClientRequest struct {
	ClientCode   string `json:"client_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	LanguageCode string `json:"language_code"`
	ProvinceCode string `json:"province_code"`
}

func (r *CreateClientRequest) Validate() *internal.AppError {
	r.ClientCode = strings.ToUpper(strings.TrimSpace(r.ClientCode))
	r.LanguageCode = strings.ToUpper(strings.TrimSpace(r.LanguageCode))
	r.ProvinceCode = strings.ToUpper(strings.TrimSpace(r.ProvinceCode))
	r.Email = strings.TrimSpace(r.Email)

	v := validation.NewValidator()
	v.Field("client_code", r.ClientCode).Required().MaxLength(20).CodeFormat()
	v.Field("first_name", r.FirstName).Required().MaxLength(100)
	v.Field("last_name", r.LastName).Required().MaxLength(100)
	v.Field("email", r.Email).MaxLength(254)
	v.Field("language_code", r.LanguageCode).Required().CodeFormat()
	v.Field("province_code", r.ProvinceCode).Required().CodeFormat()
	return v.Validate()
}

// UpdateClientRequest edits a client. The client code is immutable.
// RowVersion is the concurrency token read alongside the record being edited.
type UpdateClientRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	LanguageCode string `json:"language_code"`
	ProvinceCode string `json:"province_code"`
	RowVersion   int64  `json:"row_version"`
}

func (r *UpdateClientRequest) Validate() *internal.AppError {
	r.LanguageCode = strings.ToUpper(strings.TrimSpace(r.LanguageCode))
	r.ProvinceCode = strings.ToUpper(strings.TrimSpace(r.ProvinceCode))
	r.Email = strings.TrimSpace(r.Email)

	v := validation.NewValidator()
	v.Field("first_name", r.FirstName).Required().MaxLength(100)
	v.Field("last_name", r.LastName).Required().MaxLength(100)
	v.Field("email", r.Email).MaxLength(254)
	v.Field("language_code", r.LanguageCode).Required().CodeFormat()
	v.Field("province_code", r.ProvinceCode).Required().CodeFormat()
	return v.Validate()
}

// ClientResponse carries the record plus the localized labels of its coded
// fields, so list screens need no extra lookups.
type ClientResponse struct {
	ID            string    `json:"id"`
	ClientCode    string    `json:"client_code"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email,omitempty"`
	LanguageCode  string    `json:"language_code"`
	LanguageLabel string    `json:"language_label,omitempty"`
	ProvinceCode  string    `json:"province_code"`
	ProvinceLabel string    `json:"province_label,omitempty"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
	RowVersion    int64     `json:"row_version"`
}

func FromDataModel(m *clientDatamodel.Client) ClientResponse {
	return ClientResponse{
		ID:           m.ID,
		ClientCode:   m.ClientCode,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		LanguageCode: m.LanguageCode,
		ProvinceCode: m.ProvinceCode,
		IsActive:     m.IsActive,
		UpdatedAt:    m.UpdatedAt,
		RowVersion:   m.RowVersion,
	}
}
