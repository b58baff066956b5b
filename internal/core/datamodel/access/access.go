package access

import "github.com/mlavigne/client-management/internal/core/datamodel"

// AccessType is a coarse default privilege profile assignable to a user
// (e.g. ADMIN, AGENT, LECTURE).
type AccessType struct {
	AccessTypeCode string `gorm:"column:access_type_code;primaryKey" json:"access_type_code"`
	DescriptionFr  string `gorm:"column:description_fr;not null" json:"description_fr"`
	DescriptionEn  string `gorm:"column:description_en" json:"description_en"`

	datamodel.AuditFields
}

func (AccessType) TableName() string { return "access_types" }

func (t *AccessType) PrimaryKey() map[string]any {
	return map[string]any{"access_type_code": t.AccessTypeCode}
}

// AppView is the unit of authorization granularity: one row per protected
// screen or operation, keyed by a code derived from controller+action.
type AppView struct {
	ViewCode      string `gorm:"column:view_code;primaryKey" json:"view_code"`
	DescriptionFr string `gorm:"column:description_fr;not null" json:"description_fr"`
	DescriptionEn string `gorm:"column:description_en" json:"description_en"`

	datamodel.AuditFields
}

func (AppView) TableName() string { return "app_views" }

func (v *AppView) PrimaryKey() map[string]any {
	return map[string]any{"view_code": v.ViewCode}
}

// AccessTypeView is the default privilege an access type grants on one view.
type AccessTypeView struct {
	AccessTypeCode string `gorm:"column:access_type_code;primaryKey" json:"access_type_code"`
	ViewCode       string `gorm:"column:view_code;primaryKey" json:"view_code"`
	PrivilegeCode  string `gorm:"column:privilege_code;not null" json:"privilege_code"`

	datamodel.AuditFields
}

func (AccessTypeView) TableName() string { return "access_type_views" }

func (d *AccessTypeView) PrimaryKey() map[string]any {
	return map[string]any{"access_type_code": d.AccessTypeCode, "view_code": d.ViewCode}
}

// UserViewAccess is an explicit per-user per-view grant. When present it
// overrides the access-type default, including an explicit "none" deny.
type UserViewAccess struct {
	UserID        string `gorm:"column:user_id;primaryKey" json:"user_id"`
	ViewCode      string `gorm:"column:view_code;primaryKey" json:"view_code"`
	PrivilegeCode string `gorm:"column:privilege_code;not null" json:"privilege_code"`

	datamodel.AuditFields
}

func (UserViewAccess) TableName() string { return "user_view_access" }

func (g *UserViewAccess) PrimaryKey() map[string]any {
	return map[string]any{"user_id": g.UserID, "view_code": g.ViewCode}
}

// UserProfile assigns the coarse access type to an authenticated user id.
// The identity record itself (credentials, names) lives in the external
// identity store; this table only carries the authorization assignment.
type UserProfile struct {
	UserID         string `gorm:"column:user_id;primaryKey" json:"user_id"`
	AccessTypeCode string `gorm:"column:access_type_code;not null" json:"access_type_code"`

	datamodel.AuditFields
}

func (UserProfile) TableName() string { return "user_profiles" }

func (p *UserProfile) PrimaryKey() map[string]any {
	return map[string]any{"user_id": p.UserID}
}
