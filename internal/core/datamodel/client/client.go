package client

import "github.com/mlavigne/client-management/internal/core/datamodel"

// Client is an administered client record. LanguageCode and ProvinceCode
// reference the LANGUE and PROVINCE code sets rather than foreign tables.
type Client struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	ClientCode   string `gorm:"column:client_code;not null" json:"client_code"`
	FirstName    string `gorm:"column:first_name;not null" json:"first_name"`
	LastName     string `gorm:"column:last_name;not null" json:"last_name"`
	Email        string `gorm:"column:email" json:"email"`
	LanguageCode string `gorm:"column:language_code;not null" json:"language_code"`
	ProvinceCode string `gorm:"column:province_code;not null" json:"province_code"`

	datamodel.AuditFields
}

func (Client) TableName() string { return "clients" }

func (c *Client) PrimaryKey() map[string]any {
	return map[string]any{"id": c.ID}
}

func (c *Client) UniqueKey() map[string]any {
	return map[string]any{"client_code": c.ClientCode}
}
