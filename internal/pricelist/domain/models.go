package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

var (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type TaxMode string

var (
	TaxIncluded TaxMode = "tax_included"
	TaxExcluded TaxMode = "tax_excluded"
)

type PriceList struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrgID          snowflake.ID  `json:"organization_id" gorm:"column:org_id;not null;index"`
	Name           string        `json:"name" gorm:"type:text;not null"`
	Currency       string        `json:"currency" gorm:"type:text;not null"`
	IsDefault      bool          `json:"is_default" gorm:"not null;default:false"`
	Status         Status        `json:"status" gorm:"type:text;not null;default:active"`
	PricingTaxMode *TaxMode      `json:"pricing_tax_mode,omitempty" gorm:"type:text"`
	TaxClassID     *snowflake.ID `json:"tax_class_id,omitempty" gorm:""`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceList) TableName() string { return "price_lists" }

func (p *PriceList) IsActive() bool {
	return p.Status == StatusActive
}

func (p *PriceList) HasTaxMode() bool {
	return p.PricingTaxMode != nil && *p.PricingTaxMode != ""
}
