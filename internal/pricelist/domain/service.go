package domain

import (
	"context"
	"errors"
	"time"

	conditiondomain "github.com/smallbiznis/pricelist/internal/condition/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetDefault(ctx context.Context) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	ListProductPrices(ctx context.Context, id string, req ProductPricesRequest) (*ProductPricesResponse, error)
}

type ListRequest struct {
	Status *Status
}

type CreateRequest struct {
	Name           string   `json:"name"`
	Currency       string   `json:"currency"`
	IsDefault      bool     `json:"is_default"`
	Status         *Status  `json:"status"`
	PricingTaxMode *TaxMode `json:"pricing_tax_mode"`
	TaxClassID     *string  `json:"tax_class_id"`
}

type UpdateRequest struct {
	Name           *string  `json:"name"`
	Currency       *string  `json:"currency"`
	IsDefault      *bool    `json:"is_default"`
	Status         *Status  `json:"status"`
	PricingTaxMode *TaxMode `json:"pricing_tax_mode"`
	TaxClassID     *string  `json:"tax_class_id"`
}

type Response struct {
	ID             string                     `json:"id"`
	OrganizationID string                     `json:"organization_id"`
	Name           string                     `json:"name"`
	Currency       string                     `json:"currency"`
	IsDefault      bool                       `json:"is_default"`
	Status         Status                     `json:"status"`
	PricingTaxMode *TaxMode                   `json:"pricing_tax_mode,omitempty"`
	TaxClassID     *string                    `json:"tax_class_id,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	IsActive       bool                       `json:"is_active"`
	HasTaxMode     bool                       `json:"has_tax_mode"`
	Conditions     []conditiondomain.Response `json:"conditions"`
}

type ProductPricesRequest struct {
	Page   int
	Limit  int
	Search string
}

type ProductPrice struct {
	ProductID           string   `json:"product_id"`
	Name                string   `json:"name"`
	SKU                 string   `json:"sku"`
	BasePriceCents      int64    `json:"base_price_cents"`
	ResolvedPriceCents  int64    `json:"resolved_price_cents"`
	AppliedConditionIDs []string `json:"applied_condition_ids"`
}

type ProductPricesResponse struct {
	Products   []ProductPrice `json:"products"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

var (
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidName             = errors.New("invalid_name")
	ErrInvalidCurrency         = errors.New("invalid_currency")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidTaxMode          = errors.New("invalid_tax_mode")
	ErrInvalidTaxClass         = errors.New("invalid_tax_class")
	ErrInvalidID               = errors.New("invalid_id")
	ErrNotFound                = errors.New("not_found")
	ErrCannotRemoveOnlyDefault = errors.New("cannot_remove_only_default")
	ErrCannotDeleteDefault     = errors.New("cannot_delete_default_list")
	ErrDefaultConflict         = errors.New("default_conflict")
)
