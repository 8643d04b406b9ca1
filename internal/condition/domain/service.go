package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, priceListID string, req CreateRequest) (*Response, error)
	ListByPriceList(ctx context.Context, priceListID string) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	ConditionType  ConditionType  `json:"condition_type"`
	Operator       Operator       `json:"operator"`
	ConditionValue map[string]any `json:"condition_value"`
	DiscountType   DiscountType   `json:"discount_type"`
	DiscountValue  float64        `json:"discount_value"`
	Priority       *int           `json:"priority"`
	Status         *Status        `json:"status"`
	ValidFrom      *time.Time     `json:"valid_from"`
	ValidTo        *time.Time     `json:"valid_to"`
	Config         map[string]any `json:"config"`
}

// UpdateRequest leaves nil fields unchanged. The window bounds are cleared
// back to open-ended through the explicit clear flags, since a nil pointer
// cannot distinguish "unchanged" from "unset".
type UpdateRequest struct {
	ConditionType  *ConditionType `json:"condition_type"`
	Operator       *Operator      `json:"operator"`
	ConditionValue map[string]any `json:"condition_value"`
	DiscountType   *DiscountType  `json:"discount_type"`
	DiscountValue  *float64       `json:"discount_value"`
	Priority       *int           `json:"priority"`
	Status         *Status        `json:"status"`
	ValidFrom      *time.Time     `json:"valid_from"`
	ValidTo        *time.Time     `json:"valid_to"`
	ClearValidFrom bool           `json:"clear_valid_from"`
	ClearValidTo   bool           `json:"clear_valid_to"`
	Config         map[string]any `json:"config"`
}

type Response struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	PriceListID    string         `json:"price_list_id"`
	ConditionType  ConditionType  `json:"condition_type"`
	Operator       Operator       `json:"operator"`
	ConditionValue map[string]any `json:"condition_value"`
	DiscountType   DiscountType   `json:"discount_type"`
	DiscountValue  float64        `json:"discount_value"`
	Priority       int            `json:"priority"`
	Status         Status         `json:"status"`
	ValidFrom      *time.Time     `json:"valid_from,omitempty"`
	ValidTo        *time.Time     `json:"valid_to,omitempty"`
	Config         map[string]any `json:"config,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	IsActive       bool           `json:"is_active"`
	IsValidNow     bool           `json:"is_valid_now"`
}

// ToResponse converts the row to its caller-facing shape, attaching the
// derived is_active / is_valid_now fields for the given instant.
func (c *PriceListCondition) ToResponse(now time.Time) Response {
	var value map[string]any
	if err := json.Unmarshal(c.ConditionValue, &value); err != nil {
		zap.L().Warn("condition payload failed to decode",
			zap.String("condition_id", c.ID.String()),
			zap.Error(err),
		)
	}

	return Response{
		ID:             c.ID.String(),
		OrganizationID: c.OrgID.String(),
		PriceListID:    c.PriceListID.String(),
		ConditionType:  c.ConditionType,
		Operator:       c.Operator,
		ConditionValue: value,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		Priority:       c.Priority,
		Status:         c.Status,
		ValidFrom:      c.ValidFrom,
		ValidTo:        c.ValidTo,
		Config:         c.Config,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		IsActive:       c.IsActive(),
		IsValidNow:     c.IsValidNow(now),
	}
}

var (
	ErrInvalidOrganization           = errors.New("invalid_organization")
	ErrInvalidPriceList              = errors.New("invalid_price_list")
	ErrInvalidID                     = errors.New("invalid_id")
	ErrInvalidDiscountType           = errors.New("invalid_discount_type")
	ErrInvalidDiscountValue          = errors.New("invalid_discount_value")
	ErrInvalidStatus                 = errors.New("invalid_status")
	ErrInvalidConditionConfiguration = errors.New("invalid_condition_configuration")
	ErrNotFound                      = errors.New("not_found")
)
