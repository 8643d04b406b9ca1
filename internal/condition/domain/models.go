package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ConditionType string

var (
	TypeAmount       ConditionType = "amount"
	TypeQuantity     ConditionType = "quantity"
	TypeDateRange    ConditionType = "date_range"
	TypeCustomerType ConditionType = "customer_type"
)

type Operator string

var (
	OpEquals         Operator = "equals"
	OpGreaterThan    Operator = "greater_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessThan       Operator = "less_than"
	OpLessOrEqual    Operator = "less_or_equal"
	OpBetween        Operator = "between"
	OpAfter          Operator = "after"
	OpBefore         Operator = "before"
)

type DiscountType string

var (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

type Status string

var (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type PriceListCondition struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrgID          snowflake.ID      `json:"organization_id" gorm:"column:org_id;not null;index"`
	PriceListID    snowflake.ID      `json:"price_list_id" gorm:"column:price_list_id;not null;index"`
	ConditionType  ConditionType     `json:"condition_type" gorm:"type:text;not null"`
	Operator       Operator          `json:"operator" gorm:"type:text;not null"`
	ConditionValue datatypes.JSON    `json:"condition_value" gorm:"type:jsonb;not null"`
	DiscountType   DiscountType      `json:"discount_type" gorm:"type:text;not null"`
	DiscountValue  float64           `json:"discount_value" gorm:"type:numeric;not null"`
	Priority       int               `json:"priority" gorm:"not null;default:0"`
	Status         Status            `json:"status" gorm:"type:text;not null;default:active"`
	ValidFrom      *time.Time        `json:"valid_from,omitempty" gorm:""`
	ValidTo        *time.Time        `json:"valid_to,omitempty" gorm:""`
	Config         datatypes.JSONMap `json:"config,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceListCondition) TableName() string { return "price_list_conditions" }

func (c *PriceListCondition) IsActive() bool {
	return c.Status == StatusActive
}

// IsValidNow reports whether the condition is active and inside its
// [ValidFrom, ValidTo] window at the given instant. Unset bounds are open.
func (c *PriceListCondition) IsValidNow(now time.Time) bool {
	if !c.IsActive() {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}
	return true
}
